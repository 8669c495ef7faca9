// Package shutdown coordinates graceful process termination.
//
// Components register hooks with OnShutdown; Wait blocks until SIGINT,
// SIGTERM or context cancellation, then runs the hooks newest first under
// a shared deadline:
//
//	h := shutdown.NewHandler(15*time.Second, logger)
//	h.OnShutdown("http", srv.Shutdown)
//	h.OnShutdown("store", func(context.Context) error { return store.Close() })
//	err := h.Wait(ctx)
package shutdown
