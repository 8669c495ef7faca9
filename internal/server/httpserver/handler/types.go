package handler

import (
	"time"

	"github.com/yndnr/projsnap/internal/core/domain"
)

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics which uses Prometheus format).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"` // Additional error details
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// CreateSnapshotRequest is the request body for POST /snapshots.
type CreateSnapshotRequest struct {
	Root  string `json:"root"`
	Label string `json:"label,omitempty"`
	Note  string `json:"note,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// ListSnapshotsResponse is the response body for GET /snapshots.
type ListSnapshotsResponse struct {
	Items []domain.SnapshotSummary `json:"items"`
	Total int                      `json:"total"`
}

// RestoreSnapshotRequest is the optional request body for POST /snapshots/{id}/restore.
// Both roots must be set together to restore into a different tree.
type RestoreSnapshotRequest struct {
	SourceRoot string `json:"source_root,omitempty"`
	TargetRoot string `json:"target_root,omitempty"`
}

// DeleteSnapshotResponse is the response body for POST /snapshots/{id}/delete.
type DeleteSnapshotResponse struct {
	ID string `json:"id"`
}

// CompareSnapshotRequest is the request body for POST /snapshots/{id}/compare.
type CompareSnapshotRequest struct {
	Path string `json:"path"`
}

// PruneSnapshotsRequest is the request body for POST /snapshots/prune.
type PruneSnapshotsRequest struct {
	Kind string `json:"kind"`
	Keep int    `json:"keep"`
}

// PruneSnapshotsResponse is the response body for POST /snapshots/prune.
type PruneSnapshotsResponse struct {
	Removed []string `json:"removed"`
}
