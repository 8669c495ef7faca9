package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/projsnap/internal/core/domain"
	"github.com/yndnr/projsnap/internal/core/service"
	"github.com/yndnr/projsnap/internal/storage/snapshot"
	"github.com/yndnr/projsnap/internal/telemetry/metric"
)

// envelope mirrors Response with the payload left undecoded.
type envelope struct {
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := snapshot.DefaultConfig(filepath.Join(t.TempDir(), "backups"))
	cfg.Logger = quiet

	next := time.UnixMilli(1700000000000)
	cfg.Now = func() time.Time {
		next = next.Add(time.Millisecond)
		return next
	}

	store, err := snapshot.Open(cfg)
	if err != nil {
		t.Fatalf("snapshot.Open() error = %v", err)
	}

	m := metric.NewRegistry()
	return New(service.NewSnapshotService(store, m), m, quiet)
}

func writeProjectFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("json.Marshal() error = %v", err)
		}
		reader = strings.NewReader(string(data))
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-Request-ID", "req-test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
		}
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, v any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data: %v (data %s)", err, env.Data)
	}
}

func createSnapshot(t *testing.T, h http.Handler, root string) domain.SnapshotSummary {
	t.Helper()
	rec, env := doRequest(t, h, http.MethodPost, "/snapshots", CreateSnapshotRequest{Root: root})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /snapshots status = %d, body %s", rec.Code, rec.Body.String())
	}
	var summary domain.SnapshotSummary
	decodeData(t, env, &summary)
	return summary
}

func TestHandler_Health(t *testing.T) {
	h := newTestHandler(t)

	rec, env := doRequest(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if env.Code != "OK" {
		t.Errorf("code = %q, want OK", env.Code)
	}
	if env.RequestID != "req-test" {
		t.Errorf("request_id = %q, want req-test", env.RequestID)
	}

	var data map[string]string
	decodeData(t, env, &data)
	if data["status"] != "healthy" {
		t.Errorf("status = %q, want healthy", data["status"])
	}
	if data["version"] == "" || data["uptime"] == "" {
		t.Errorf("health = %v, want version and uptime", data)
	}
}

func TestHandler_Ready(t *testing.T) {
	h := newTestHandler(t)
	root := t.TempDir()
	writeProjectFile(t, root, "a.txt", "a")
	createSnapshot(t, h, root)

	rec, env := doRequest(t, h, http.MethodGet, "/ready", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var data struct {
		Status    string `json:"status"`
		Snapshots int    `json:"snapshots"`
	}
	decodeData(t, env, &data)
	if data.Status != "ready" || data.Snapshots != 1 {
		t.Errorf("ready = %+v, want status ready with 1 snapshot", data)
	}
}

func TestHandler_CreateSnapshot(t *testing.T) {
	h := newTestHandler(t)
	root := t.TempDir()
	writeProjectFile(t, root, "src/main.go", "package main\n")
	writeProjectFile(t, root, "README.md", "# demo\n")

	rec, env := doRequest(t, h, http.MethodPost, "/snapshots", CreateSnapshotRequest{
		Root:  root,
		Label: "first",
		Note:  "initial import",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(string(env.Data), `"files"`) {
		t.Error("create response should not carry file contents")
	}

	var summary domain.SnapshotSummary
	decodeData(t, env, &summary)
	if !domain.IsValidSnapshotID(summary.ID) {
		t.Errorf("id = %q is not a valid snapshot id", summary.ID)
	}
	if summary.FileCount != 2 {
		t.Errorf("file_count = %d, want 2", summary.FileCount)
	}
	if summary.Kind != domain.KindManual {
		t.Errorf("type = %q, want %q", summary.Kind, domain.KindManual)
	}
	if summary.Label == nil || *summary.Label != "first" {
		t.Errorf("name = %v, want first", summary.Label)
	}
	if summary.Note == nil || *summary.Note != "initial import" {
		t.Errorf("description = %v, want 'initial import'", summary.Note)
	}
}

func TestHandler_CreateSnapshot_Errors(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"malformed body", "{", http.StatusBadRequest, "PS-SYS-4000"},
		{"missing root", CreateSnapshotRequest{}, http.StatusBadRequest, "PS-ARG-1002"},
		{"no body", nil, http.StatusBadRequest, "PS-ARG-1002"},
		{"missing directory", CreateSnapshotRequest{Root: filepath.Join(t.TempDir(), "gone")}, http.StatusInternalServerError, "PS-SNAP-5000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doRequest(t, h, http.MethodPost, "/snapshots", tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if env.Code != tt.code {
				t.Errorf("code = %q, want %q", env.Code, tt.code)
			}
			if got := rec.Header().Get("X-Error-Code"); got != tt.code {
				t.Errorf("X-Error-Code = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestHandler_ListSnapshots(t *testing.T) {
	h := newTestHandler(t)

	rec, env := doRequest(t, h, http.MethodGet, "/snapshots", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var empty ListSnapshotsResponse
	decodeData(t, env, &empty)
	if empty.Total != 0 || empty.Items == nil {
		t.Errorf("empty list = %+v, want zero items as []", empty)
	}

	root := t.TempDir()
	writeProjectFile(t, root, "a.txt", "a")
	first := createSnapshot(t, h, root)
	second := createSnapshot(t, h, root)

	_, env = doRequest(t, h, http.MethodGet, "/snapshots", nil)
	var list ListSnapshotsResponse
	decodeData(t, env, &list)
	if list.Total != 2 || len(list.Items) != 2 {
		t.Fatalf("total = %d, items = %d, want 2", list.Total, len(list.Items))
	}
	if list.Items[0].ID != second.ID || list.Items[1].ID != first.ID {
		t.Errorf("order = [%s %s], want newest first [%s %s]",
			list.Items[0].ID, list.Items[1].ID, second.ID, first.ID)
	}
}

func TestHandler_GetSnapshot(t *testing.T) {
	h := newTestHandler(t)
	root := t.TempDir()
	path := writeProjectFile(t, root, "a.txt", "hello")
	summary := createSnapshot(t, h, root)

	rec, env := doRequest(t, h, http.MethodGet, "/snapshots/"+summary.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var snap domain.Snapshot
	decodeData(t, env, &snap)
	if snap.ID != summary.ID {
		t.Errorf("id = %q, want %q", snap.ID, summary.ID)
	}
	if len(snap.Files) != 1 || snap.Files[0].Path != path || snap.Files[0].Content != "hello" {
		t.Errorf("files = %+v, want one record for %s", snap.Files, path)
	}
}

func TestHandler_GetSnapshot_NotFound(t *testing.T) {
	h := newTestHandler(t)

	rec, env := doRequest(t, h, http.MethodGet, "/snapshots/backup_1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if env.Code != domain.ErrSnapshotNotFound.Code {
		t.Errorf("code = %q, want %q", env.Code, domain.ErrSnapshotNotFound.Code)
	}
	if !strings.Contains(env.Message, "backup_1") {
		t.Errorf("message = %q, want it to name the id", env.Message)
	}
}

func TestHandler_RestoreSnapshot(t *testing.T) {
	h := newTestHandler(t)
	root := t.TempDir()
	path := writeProjectFile(t, root, "a.txt", "original")
	summary := createSnapshot(t, h, root)

	if err := os.WriteFile(path, []byte("changed"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	rec, env := doRequest(t, h, http.MethodPost, "/snapshots/"+summary.ID+"/restore", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var result service.RestoreResult
	decodeData(t, env, &result)
	if result.ID != summary.ID || result.Files != 1 {
		t.Errorf("result = %+v, want id %s with 1 file", result, summary.ID)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "original" {
		t.Errorf("content = %q, want original", data)
	}
}

func TestHandler_RestoreSnapshot_Relocated(t *testing.T) {
	h := newTestHandler(t)
	root := t.TempDir()
	writeProjectFile(t, root, "pkg/a.txt", "relocated")
	summary := createSnapshot(t, h, root)

	target := t.TempDir()
	rec, _ := doRequest(t, h, http.MethodPost, "/snapshots/"+summary.ID+"/restore", RestoreSnapshotRequest{
		SourceRoot: root,
		TargetRoot: target,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	data, err := os.ReadFile(filepath.Join(target, "pkg", "a.txt"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "relocated" {
		t.Errorf("content = %q, want relocated", data)
	}
}

func TestHandler_RestoreSnapshot_Errors(t *testing.T) {
	h := newTestHandler(t)
	root := t.TempDir()
	writeProjectFile(t, root, "a.txt", "a")
	summary := createSnapshot(t, h, root)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
		code   string
	}{
		{"unknown id", "/snapshots/backup_1/restore", nil, http.StatusNotFound, "PS-SNAP-4040"},
		{"malformed body", "/snapshots/" + summary.ID + "/restore", "[", http.StatusBadRequest, "PS-SYS-4000"},
		{"half relocation", "/snapshots/" + summary.ID + "/restore", RestoreSnapshotRequest{TargetRoot: t.TempDir()}, http.StatusBadRequest, "PS-ARG-1001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doRequest(t, h, http.MethodPost, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if env.Code != tt.code {
				t.Errorf("code = %q, want %q", env.Code, tt.code)
			}
		})
	}
}

func TestHandler_DeleteSnapshot(t *testing.T) {
	h := newTestHandler(t)
	root := t.TempDir()
	writeProjectFile(t, root, "a.txt", "a")
	summary := createSnapshot(t, h, root)

	rec, env := doRequest(t, h, http.MethodPost, "/snapshots/"+summary.ID+"/delete", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp DeleteSnapshotResponse
	decodeData(t, env, &resp)
	if resp.ID != summary.ID {
		t.Errorf("id = %q, want %q", resp.ID, summary.ID)
	}

	rec, _ = doRequest(t, h, http.MethodGet, "/snapshots/"+summary.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET after delete status = %d, want 404", rec.Code)
	}

	rec, _ = doRequest(t, h, http.MethodPost, "/snapshots/"+summary.ID+"/delete", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestHandler_CompareSnapshot(t *testing.T) {
	h := newTestHandler(t)
	root := t.TempDir()
	path := writeProjectFile(t, root, "a.txt", "same")
	summary := createSnapshot(t, h, root)

	rec, env := doRequest(t, h, http.MethodPost, "/snapshots/"+summary.ID+"/compare", CompareSnapshotRequest{Path: path})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var result service.CompareResult
	decodeData(t, env, &result)
	if !result.Identical {
		t.Errorf("identical = false, want true (live %q, snapshot %q)", result.Live, result.Snapshot)
	}
	if result.LiveDigest != result.SnapshotDigest {
		t.Errorf("digests differ: %s vs %s", result.LiveDigest, result.SnapshotDigest)
	}

	// A missing live file compares as the placeholder text.
	rec, env = doRequest(t, h, http.MethodPost, "/snapshots/"+summary.ID+"/compare",
		CompareSnapshotRequest{Path: filepath.Join(root, "missing.txt")})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	decodeData(t, env, &result)
	if result.Live != snapshot.NotFoundContent || result.Identical {
		t.Errorf("result = %+v, want placeholder live content", result)
	}
}

func TestHandler_CompareSnapshot_Errors(t *testing.T) {
	h := newTestHandler(t)
	emptyRoot := t.TempDir()
	empty := createSnapshot(t, h, emptyRoot)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
		code   string
	}{
		{"unknown id", "/snapshots/backup_1/compare", CompareSnapshotRequest{Path: "/tmp/x"}, http.StatusNotFound, "PS-SNAP-4040"},
		{"empty snapshot", "/snapshots/" + empty.ID + "/compare", CompareSnapshotRequest{Path: "/tmp/x"}, http.StatusUnprocessableEntity, "PS-SNAP-4220"},
		{"missing path", "/snapshots/" + empty.ID + "/compare", nil, http.StatusBadRequest, "PS-ARG-1002"},
		{"malformed body", "/snapshots/" + empty.ID + "/compare", "{path", http.StatusBadRequest, "PS-SYS-4000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doRequest(t, h, http.MethodPost, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if env.Code != tt.code {
				t.Errorf("code = %q, want %q", env.Code, tt.code)
			}
		})
	}
}

func TestHandler_PruneSnapshots(t *testing.T) {
	h := newTestHandler(t)
	root := t.TempDir()
	writeProjectFile(t, root, "a.txt", "a")

	var ids []string
	for i := 0; i < 3; i++ {
		ids = append(ids, createSnapshot(t, h, root).ID)
	}

	rec, env := doRequest(t, h, http.MethodPost, "/snapshots/prune", PruneSnapshotsRequest{Kind: domain.KindManual, Keep: 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp PruneSnapshotsResponse
	decodeData(t, env, &resp)
	if len(resp.Removed) != 2 {
		t.Fatalf("removed = %v, want 2 ids", resp.Removed)
	}
	for _, id := range resp.Removed {
		if id == ids[2] {
			t.Errorf("newest snapshot %s was pruned", id)
		}
	}

	// Nothing left to prune.
	_, env = doRequest(t, h, http.MethodPost, "/snapshots/prune", PruneSnapshotsRequest{Kind: domain.KindManual, Keep: 1})
	decodeData(t, env, &resp)
	if resp.Removed == nil || len(resp.Removed) != 0 {
		t.Errorf("removed = %v, want []", resp.Removed)
	}
}

func TestHandler_PruneSnapshots_Errors(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		body any
		code string
	}{
		{"zero keep", PruneSnapshotsRequest{Kind: domain.KindAuto}, "PS-ARG-1001"},
		{"missing kind", PruneSnapshotsRequest{Keep: 1}, "PS-ARG-1002"},
		{"malformed body", "{", "PS-SYS-4000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doRequest(t, h, http.MethodPost, "/snapshots/prune", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if env.Code != tt.code {
				t.Errorf("code = %q, want %q", env.Code, tt.code)
			}
		})
	}
}

func TestHandler_Metrics(t *testing.T) {
	h := newTestHandler(t)
	root := t.TempDir()
	writeProjectFile(t, root, "a.txt", "a")
	createSnapshot(t, h, root)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "projsnap_snapshots_created_total") {
		t.Error("metrics output missing projsnap_snapshots_created_total")
	}
}

func TestHandler_NoMetricsRegistry(t *testing.T) {
	cfg := snapshot.DefaultConfig(filepath.Join(t.TempDir(), "backups"))
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := snapshot.Open(cfg)
	if err != nil {
		t.Fatalf("snapshot.Open() error = %v", err)
	}
	h := New(service.NewSnapshotService(store, nil), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without a registry", rec.Code)
	}
}

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"PS-SNAP-4040", http.StatusNotFound},
		{"PS-SNAP-4220", http.StatusUnprocessableEntity},
		{"PS-SYS-4290", http.StatusTooManyRequests},
		{"PS-SYS-4000", http.StatusBadRequest},
		{"PS-ARG-1001", http.StatusBadRequest},
		{"PS-ARG-1002", http.StatusBadRequest},
		{"PS-SNAP-5000", http.StatusInternalServerError},
		{"PS-STOR-5002", http.StatusInternalServerError},
		{"UNKNOWN", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := errorCodeToHTTPStatus(tt.code); got != tt.want {
				t.Errorf("errorCodeToHTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestNewResponse(t *testing.T) {
	resp := NewResponse("req-1", map[string]int{"n": 1})
	if resp.Code != "OK" || resp.Message != "Success" {
		t.Errorf("NewResponse() = %+v, want OK/Success", resp)
	}
	if resp.Timestamp == 0 {
		t.Error("NewResponse() timestamp not set")
	}

	errResp := NewErrorResponse("req-2", "PS-SNAP-4040", "snapshot not found", nil)
	if errResp.Code != "PS-SNAP-4040" || errResp.RequestID != "req-2" || errResp.Data != nil {
		t.Errorf("NewErrorResponse() = %+v", errResp)
	}
}
