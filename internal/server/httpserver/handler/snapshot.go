package handler

import (
	"net/http"

	"github.com/yndnr/projsnap/internal/core/domain"
	"github.com/yndnr/projsnap/internal/core/service"
)

// handleCreateSnapshot handles POST /snapshots.
func (h *Handler) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	var req CreateSnapshotRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, domain.ErrBadRequest.Code, "invalid request body", nil)
		return
	}

	snap, err := h.snapshotSvc.Create(r.Context(), &service.CreateSnapshotRequest{
		Root:  req.Root,
		Label: req.Label,
		Note:  req.Note,
		Kind:  req.Kind,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	// File contents stay out of the response
	h.writeJSON(w, r, http.StatusCreated, snap.Summary())
}

// handleListSnapshots handles GET /snapshots.
func (h *Handler) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	items, err := h.snapshotSvc.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, ListSnapshotsResponse{
		Items: items,
		Total: len(items),
	})
}

// handleGetSnapshot handles GET /snapshots/{id}.
func (h *Handler) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, r, http.StatusBadRequest, domain.ErrMissingArgument.Code, "snapshot id is required", nil)
		return
	}

	snap, err := h.snapshotSvc.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, snap)
}

// handleRestoreSnapshot handles POST /snapshots/{id}/restore.
func (h *Handler) handleRestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	var req RestoreSnapshotRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, domain.ErrBadRequest.Code, "invalid request body", nil)
		return
	}

	result, err := h.snapshotSvc.Restore(r.Context(), &service.RestoreSnapshotRequest{
		ID:         r.PathValue("id"),
		SourceRoot: req.SourceRoot,
		TargetRoot: req.TargetRoot,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, result)
}

// handleDeleteSnapshot handles POST /snapshots/{id}/delete.
func (h *Handler) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.snapshotSvc.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, DeleteSnapshotResponse{ID: id})
}

// handleCompareSnapshot handles POST /snapshots/{id}/compare.
func (h *Handler) handleCompareSnapshot(w http.ResponseWriter, r *http.Request) {
	var req CompareSnapshotRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, domain.ErrBadRequest.Code, "invalid request body", nil)
		return
	}

	result, err := h.snapshotSvc.Compare(r.Context(), r.PathValue("id"), req.Path)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, result)
}

// handlePruneSnapshots handles POST /snapshots/prune.
func (h *Handler) handlePruneSnapshots(w http.ResponseWriter, r *http.Request) {
	var req PruneSnapshotsRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, domain.ErrBadRequest.Code, "invalid request body", nil)
		return
	}

	removed, err := h.snapshotSvc.Prune(r.Context(), req.Kind, req.Keep)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if removed == nil {
		removed = []string{}
	}

	h.writeJSON(w, r, http.StatusOK, PruneSnapshotsResponse{Removed: removed})
}
