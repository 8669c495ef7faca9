package httpserver

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yndnr/projsnap/internal/server/httpserver/handler"
	"github.com/yndnr/projsnap/internal/telemetry/logger"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func contains(s, sub string) bool {
	return strings.Contains(s, sub)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(okHandler(), mark("a"), mark("b"), mark("c"))
	get(t, h, "/")

	if strings.Join(order, ",") != "a,b,c" {
		t.Errorf("order = %v, want [a b c]", order)
	}
}

func TestRequestID_Generated(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestIDFromContext(r.Context())
	}))

	rec := get(t, h, "/")

	if !strings.HasPrefix(seen, "req-") {
		t.Errorf("request id = %q, want req- prefix", seen)
	}
	if rec.Header().Get("X-Request-ID") != seen {
		t.Errorf("X-Request-ID = %q, want %q", rec.Header().Get("X-Request-ID"), seen)
	}

	// Two requests get different ids
	rec2 := get(t, h, "/")
	if rec2.Header().Get("X-Request-ID") == rec.Header().Get("X-Request-ID") {
		t.Error("request ids should be unique")
	}
}

func TestRequestID_Propagated(t *testing.T) {
	h := RequestID()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-client")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-client" {
		t.Errorf("X-Request-ID = %q, want req-client", got)
	}
}

func TestRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), Recover(quietLogger()), RequestID())

	rec := get(t, h, "/")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if rec.Header().Get("X-Error-Code") != "PS-SYS-5000" {
		t.Errorf("X-Error-Code = %q, want PS-SYS-5000", rec.Header().Get("X-Error-Code"))
	}

	var resp handler.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Code != "PS-SYS-5000" {
		t.Errorf("code = %q, want PS-SYS-5000", resp.Code)
	}
}

func TestRateLimit(t *testing.T) {
	// One token, refilled far slower than the test runs
	h := Chain(okHandler(), RequestID(), RateLimit(0.001, 1))

	first := get(t, h, "/")
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", first.Code)
	}

	second := get(t, h, "/")
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}

	var resp handler.Response
	if err := json.Unmarshal(second.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Code != "PS-SYS-4290" {
		t.Errorf("code = %q, want PS-SYS-4290", resp.Code)
	}
	if resp.RequestID == "" {
		t.Error("request_id missing from rate limit response")
	}
}

func TestRateLimit_PerIP(t *testing.T) {
	h := RateLimit(0.001, 1)(okHandler())

	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", ip)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("first request from %s status = %d, want 200", ip, rec.Code)
		}
	}
}

func TestAudit(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}), RequestID(), Audit(log))

	get(t, h, "/snapshots/backup_1")

	out := buf.String()
	if !strings.Contains(out, "request completed with client error") {
		t.Errorf("audit log = %q, want client error entry", out)
	}
	if !strings.Contains(out, `"status":404`) {
		t.Errorf("audit log = %q, want status 404", out)
	}
	if !strings.Contains(out, `"path":"/snapshots/backup_1"`) {
		t.Errorf("audit log = %q, want request path", out)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{"forwarded for", map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"}, "9.9.9.9:1", "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": "1.2.3.4"}, "9.9.9.9:1", "1.2.3.4"},
		{"remote addr", nil, "9.9.9.9:1234", "9.9.9.9"},
		{"ipv6 remote addr", nil, "[::1]:8080", "::1"},
		{"no port", nil, "9.9.9.9", "9.9.9.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
