// Package connection provides the HTTP client the CLI uses to reach
// projsnap-server.
//
// Responses are unwrapped from the server's envelope; error envelopes become
// *APIError values carrying the server's error code.
package connection
