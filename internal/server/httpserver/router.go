package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/projsnap/internal/core/service"
	"github.com/yndnr/projsnap/internal/server/httpserver/handler"
	"github.com/yndnr/projsnap/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// SnapshotService handles snapshot operations.
	SnapshotService *service.SnapshotService

	// Metrics receives request metrics and backs /metrics. Optional.
	Metrics *metric.Registry

	// Logger for request logging.
	Logger *slog.Logger

	// RateLimit is the per-IP rate limit (requests/second). Zero disables it.
	RateLimit float64

	// RateBurst is the per-IP burst size.
	RateBurst int

	// EnableAudit enables audit logging for all requests.
	EnableAudit bool
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	h := handler.New(cfg.SnapshotService, cfg.Metrics, log)

	// Order: Recover -> RequestID -> RateLimit -> Audit -> Instrument -> Handler
	middlewares := []Middleware{
		Recover(log),
		RequestID(),
	}
	if cfg.RateLimit > 0 {
		middlewares = append(middlewares, RateLimit(cfg.RateLimit, cfg.RateBurst))
	}
	if cfg.EnableAudit {
		middlewares = append(middlewares, Audit(log))
	}
	if cfg.Metrics != nil {
		middlewares = append(middlewares, Instrument(cfg.Metrics))
	}

	return Chain(h, middlewares...)
}
