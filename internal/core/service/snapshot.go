package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/yndnr/projsnap/internal/core/domain"
	"github.com/yndnr/projsnap/internal/telemetry/logger"
	"github.com/yndnr/projsnap/internal/telemetry/metric"
	"github.com/yndnr/projsnap/pkg/digest"
)

// SnapshotRepository defines the storage interface for snapshot operations.
// *snapshot.Store implements it.
type SnapshotRepository interface {
	Create(root string, label, note *string, kind string) (*domain.Snapshot, error)
	Get(id string) (*domain.Snapshot, error)
	List() []*domain.Snapshot
	Restore(id string) error
	RestoreTo(id, sourceRoot, targetRoot string) error
	Delete(id string) error
	Compare(id, livePath string) (string, string, error)
	Prune(kind string, keep int) ([]string, error)
	Len() int
}

// SnapshotService handles snapshot lifecycle operations.
type SnapshotService struct {
	repo    SnapshotRepository
	metrics *metric.Registry
}

// NewSnapshotService creates a new SnapshotService.
// metrics may be nil.
func NewSnapshotService(repo SnapshotRepository, metrics *metric.Registry) *SnapshotService {
	return &SnapshotService{
		repo:    repo,
		metrics: metrics,
	}
}

// ============================================================================
// Create
// ============================================================================

// CreateSnapshotRequest contains parameters for snapshot creation.
type CreateSnapshotRequest struct {
	Root  string // Required
	Label string // Optional
	Note  string // Optional
	Kind  string // Optional, defaults to domain.KindManual
}

// Create captures a snapshot of req.Root.
func (s *SnapshotService) Create(ctx context.Context, req *CreateSnapshotRequest) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req == nil || strings.TrimSpace(req.Root) == "" {
		return nil, domain.ErrMissingArgument.WithDetails("root is required")
	}

	kind := strings.TrimSpace(req.Kind)
	if kind == "" {
		kind = domain.KindManual
	}

	start := time.Now()
	snap, err := s.repo.Create(req.Root, domain.StringPtr(req.Label), domain.StringPtr(req.Note), kind)
	s.record("create", err)
	if err != nil {
		logger.L(ctx).Error("snapshot create failed", "root", req.Root, "kind", kind, "error", err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordSnapshotCreated(kind, snap.FileCount, snap.TotalSize, time.Since(start).Seconds())
	}
	logger.L(ctx).Info("snapshot captured",
		"id", snap.ID,
		"kind", kind,
		"file_count", snap.FileCount,
		"size", snap.TotalSize,
		"duration", time.Since(start))

	return snap, nil
}

// ============================================================================
// Read
// ============================================================================

// Get returns the full snapshot with the given id.
func (s *SnapshotService) Get(ctx context.Context, id string) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, err
	}

	snap, err := s.repo.Get(id)
	s.record("get", err)
	return snap, err
}

// List returns the summaries of every snapshot, newest first.
func (s *SnapshotService) List(ctx context.Context) ([]domain.SnapshotSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snaps := s.repo.List()
	items := make([]domain.SnapshotSummary, 0, len(snaps))
	for _, snap := range snaps {
		items = append(items, snap.Summary())
	}
	SortNewestFirst(items)

	s.record("list", nil)
	return items, nil
}

// SortNewestFirst orders summaries by creation time, newest first, with the
// id as tie breaker.
func SortNewestFirst(items []domain.SnapshotSummary) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt != items[j].CreatedAt {
			return items[i].CreatedAt > items[j].CreatedAt
		}
		return items[i].ID > items[j].ID
	})
}

// Count returns the number of indexed snapshots.
func (s *SnapshotService) Count() int {
	return s.repo.Len()
}

// ============================================================================
// Restore
// ============================================================================

// RestoreSnapshotRequest contains parameters for a restore.
//
// With SourceRoot and TargetRoot empty the snapshot is written back to its
// recorded paths. With both set, recorded paths under SourceRoot are written
// under TargetRoot instead.
type RestoreSnapshotRequest struct {
	ID         string
	SourceRoot string
	TargetRoot string
}

// RestoreResult reports a completed restore.
type RestoreResult struct {
	ID    string `json:"id"`
	Files int    `json:"files"`
}

// Restore writes the snapshot's files back to disk.
func (s *SnapshotService) Restore(ctx context.Context, req *RestoreSnapshotRequest) (*RestoreResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrMissingArgument.WithDetails("id is required")
	}
	if err := checkID(req.ID); err != nil {
		return nil, err
	}
	if (req.SourceRoot == "") != (req.TargetRoot == "") {
		return nil, domain.ErrInvalidArgument.WithDetails("source_root and target_root must be set together")
	}

	snap, err := s.repo.Get(req.ID)
	if err != nil {
		s.record("restore", err)
		return nil, err
	}

	if req.TargetRoot != "" {
		err = s.repo.RestoreTo(req.ID, req.SourceRoot, req.TargetRoot)
	} else {
		err = s.repo.Restore(req.ID)
	}
	s.record("restore", err)
	if err != nil {
		logger.L(ctx).Error("snapshot restore failed", "id", req.ID, "error", err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AddRestoredFiles(snap.FileCount)
	}
	logger.L(ctx).Info("snapshot restored",
		"id", req.ID,
		"files", snap.FileCount,
		"target", req.TargetRoot)

	return &RestoreResult{ID: req.ID, Files: snap.FileCount}, nil
}

// ============================================================================
// Delete / Prune
// ============================================================================

// Delete removes a snapshot.
func (s *SnapshotService) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkID(id); err != nil {
		return err
	}

	err := s.repo.Delete(id)
	s.record("delete", err)
	if err != nil {
		logger.L(ctx).Warn("snapshot delete failed", "id", id, "error", err)
		return err
	}

	logger.L(ctx).Info("snapshot deleted", "id", id)
	return nil
}

// Prune keeps the newest keep snapshots of kind and deletes the rest.
func (s *SnapshotService) Prune(ctx context.Context, kind string, keep int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if kind == "" {
		return nil, domain.ErrMissingArgument.WithDetails("kind is required")
	}
	if keep < 1 {
		return nil, domain.ErrInvalidArgument.WithDetails("keep must be at least 1")
	}

	removed, err := s.repo.Prune(kind, keep)
	s.record("prune", err)
	if s.metrics != nil {
		s.metrics.AddPruned(len(removed))
	}
	if len(removed) > 0 {
		logger.L(ctx).Info("snapshots pruned", "kind", kind, "keep", keep, "removed", len(removed))
	}
	if err != nil {
		logger.L(ctx).Warn("snapshot prune incomplete", "kind", kind, "error", err)
	}
	return removed, err
}

// ============================================================================
// Compare
// ============================================================================

// CompareResult holds both sides of a comparison with their digests.
type CompareResult struct {
	ID             string `json:"id"`
	Path           string `json:"path"`
	Live           string `json:"live"`
	Snapshot       string `json:"snapshot"`
	LiveDigest     string `json:"live_digest"`
	SnapshotDigest string `json:"snapshot_digest"`
	Identical      bool   `json:"identical"`
}

// Compare returns the live content of path next to the snapshot's first
// recorded file.
func (s *SnapshotService) Compare(ctx context.Context, id, path string) (*CompareResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, err
	}
	if path == "" {
		return nil, domain.ErrMissingArgument.WithDetails("path is required")
	}

	live, recorded, err := s.repo.Compare(id, path)
	s.record("compare", err)
	if err != nil {
		return nil, err
	}

	res := &CompareResult{
		ID:             id,
		Path:           path,
		Live:           live,
		Snapshot:       recorded,
		LiveDigest:     digest.String(live),
		SnapshotDigest: digest.String(recorded),
	}
	res.Identical = digest.Verify([]byte(live), res.SnapshotDigest)
	return res, nil
}

// checkID rejects ids that cannot name any snapshot before the store is
// consulted. Well-formed ids that are not indexed are reported by the store.
func checkID(id string) error {
	if id == "" {
		return domain.ErrMissingArgument.WithDetails("id is required")
	}
	if !domain.IsValidSnapshotID(id) {
		return domain.ErrSnapshotNotFound.WithDetails(id)
	}
	return nil
}

func (s *SnapshotService) record(op string, err error) {
	if s.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = domain.GetErrorCode(err)
		if result == "" {
			result = "error"
		}
	}
	s.metrics.RecordOperation(op, result)
}
