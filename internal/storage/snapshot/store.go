package snapshot

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yndnr/projsnap/internal/core/domain"
)

// NotFoundContent is returned by Compare in place of the live file content
// when the live file cannot be read.
const NotFoundContent = "File not found"

// Config configures the snapshot store.
type Config struct {
	// Dir is the storage location holding one record per snapshot.
	Dir string

	// Exclude lists extra glob patterns left out of every snapshot.
	Exclude []string

	// SkipCorrupt makes Open log and skip unparsable records instead of failing.
	SkipCorrupt bool

	// Now is the capture clock. Defaults to time.Now.
	Now func() time.Time

	Logger *slog.Logger
}

// DefaultConfig returns a configuration storing records in dir.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:    dir,
		Now:    time.Now,
		Logger: slog.Default(),
	}
}

// Store owns the snapshot index and every persisted record under its directory.
// The directory is assumed to be owned by a single Store.
type Store struct {
	cfg      Config
	excluder *Excluder
	logger   *slog.Logger
	now      func() time.Time

	mu    sync.Mutex
	index map[string]*domain.Snapshot
}

// Open creates the storage directory if needed and loads every record in it.
//
// It fails with domain.ErrStorageInit when the directory cannot be created or
// listed, and with domain.ErrCorruptRecord when a record cannot be parsed
// (unless Config.SkipCorrupt is set).
func Open(cfg Config) (*Store, error) {
	if cfg.Dir == "" {
		return nil, domain.ErrStorageInit.WithDetails("dir is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	excluder, err := NewExcluder(cfg.Exclude)
	if err != nil {
		return nil, domain.ErrInvalidArgument.Wrap(err)
	}

	if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
		return nil, domain.ErrStorageInit.Wrap(fmt.Errorf("create dir: %w", err))
	}

	s := &Store{
		cfg:      cfg,
		excluder: excluder,
		logger:   cfg.Logger,
		now:      cfg.Now,
		index:    make(map[string]*domain.Snapshot),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	s.logger.Info("snapshot store opened",
		"dir", cfg.Dir,
		"snapshots", len(s.index))

	return s, nil
}

func (s *Store) load() error {
	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		return domain.ErrStorageInit.Wrap(fmt.Errorf("read dir: %w", err))
	}

	for _, e := range entries {
		if e.IsDir() || !isRecordFile(e.Name()) {
			continue
		}

		path := filepath.Join(s.cfg.Dir, e.Name())
		snap, err := readRecord(path)
		if err != nil {
			if s.cfg.SkipCorrupt {
				s.logger.Warn("skipping corrupt snapshot record",
					"path", path,
					"error", err)
				continue
			}
			return domain.ErrCorruptRecord.Wrap(fmt.Errorf("%s: %w", e.Name(), err))
		}

		if !snap.Consistent() {
			s.logger.Warn("snapshot record totals disagree with its files",
				"path", path,
				"file_count", snap.FileCount,
				"files", len(snap.Files),
				"size", snap.TotalSize)
		}
		s.index[snap.ID] = snap
	}

	return nil
}

// Dir returns the storage location.
func (s *Store) Dir() string {
	return s.cfg.Dir
}

// Len returns the number of indexed snapshots.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.index)
}

// Create captures every eligible text file under root and persists the result.
//
// A snapshot created in the same millisecond as an existing one replaces it.
func (s *Store) Create(root string, label, note *string, kind string) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	id := domain.NewSnapshotID(now)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, domain.ErrSnapshotIO.Wrap(fmt.Errorf("resolve root: %w", err))
	}

	w := newWalker(absRoot, s.excluder)
	if err := w.walk(absRoot); err != nil {
		return nil, domain.ErrSnapshotIO.Wrap(err)
	}

	snap := &domain.Snapshot{
		ID:        id,
		Label:     cloneString(label),
		Note:      cloneString(note),
		CreatedAt: now.UnixMilli(),
		Kind:      kind,
		FileCount: len(w.files),
		TotalSize: w.totalSize,
		Files:     w.files,
	}

	if err := writeRecord(s.cfg.Dir, snap); err != nil {
		return nil, domain.ErrSnapshotIO.Wrap(err)
	}

	if _, exists := s.index[id]; exists {
		s.logger.Warn("snapshot id collision, replacing existing snapshot", "id", id)
	}
	s.index[id] = snap

	s.logger.Info("snapshot created",
		"id", id,
		"root", absRoot,
		"kind", kind,
		"file_count", snap.FileCount,
		"size", snap.TotalSize)

	return snap.Clone(), nil
}

// Get returns a copy of the snapshot with the given id.
func (s *Store) Get(id string) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.index[id]
	if !ok {
		return nil, notFound(id)
	}
	return snap.Clone(), nil
}

// List returns copies of all indexed snapshots in no particular order.
func (s *Store) List() []*domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Snapshot, 0, len(s.index))
	for _, snap := range s.index {
		out = append(out, snap.Clone())
	}
	return out
}

// Restore overwrites every recorded path with its captured content, in
// record order. Restoration is not transactional: when a write fails, the
// files written before it stay written.
func (s *Store) Restore(id string) error {
	return s.restore(id, func(path string) (string, error) { return path, nil })
}

// RestoreTo writes the snapshot into targetRoot instead of the original
// location. Recorded paths are relocated from sourceRoot; a recorded path
// outside sourceRoot fails the restore.
func (s *Store) RestoreTo(id, sourceRoot, targetRoot string) error {
	absSource, err := filepath.Abs(sourceRoot)
	if err != nil {
		return domain.ErrSnapshotIO.Wrap(fmt.Errorf("resolve source root: %w", err))
	}

	return s.restore(id, func(path string) (string, error) {
		rel, err := filepath.Rel(absSource, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("path %s is outside %s", path, absSource)
		}
		return filepath.Join(targetRoot, rel), nil
	})
}

func (s *Store) restore(id string, target func(string) (string, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.index[id]
	if !ok {
		return notFound(id)
	}

	for i, f := range snap.Files {
		path, err := target(f.Path)
		if err != nil {
			return domain.ErrSnapshotIO.Wrap(err)
		}

		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return domain.ErrSnapshotIO.Wrap(fmt.Errorf("create directory: %w", err))
		}
		if err := os.WriteFile(path, []byte(f.Content), 0644); err != nil {
			s.logger.Error("snapshot restore aborted",
				"id", id,
				"written", i,
				"total", len(snap.Files),
				"error", err)
			return domain.ErrSnapshotIO.Wrap(fmt.Errorf("restore file: %w", err))
		}
	}

	s.logger.Info("snapshot restored", "id", id, "file_count", len(snap.Files))
	return nil
}

// Delete removes the persisted record and then the index entry. If the
// record cannot be removed (including when it is already gone) the index
// entry is kept.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(id)
}

func (s *Store) deleteLocked(id string) error {
	if _, ok := s.index[id]; !ok {
		return notFound(id)
	}

	if err := os.Remove(recordPath(s.cfg.Dir, id)); err != nil {
		return domain.ErrSnapshotIO.Wrap(fmt.Errorf("delete record: %w", err))
	}
	delete(s.index, id)

	s.logger.Info("snapshot deleted", "id", id)
	return nil
}

// Compare returns the current content of livePath and the recorded content
// of the snapshot's first file. The comparison is by position, not by path:
// livePath is not matched against the recorded paths.
//
// A live file that cannot be read, or is not UTF-8 text, yields
// NotFoundContent rather than an error.
func (s *Store) Compare(id, livePath string) (live string, recorded string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.index[id]
	if !ok {
		return "", "", notFound(id)
	}
	if len(snap.Files) == 0 {
		return "", "", domain.ErrSnapshotEmpty.WithDetails(id)
	}

	live, ok = readText(livePath)
	if !ok {
		live = NotFoundContent
	}

	return live, snap.Files[0].Content, nil
}

// Prune deletes the oldest snapshots of the given kind so that at most keep
// remain. It returns the removed ids. keep <= 0 disables pruning.
func (s *Store) Prune(kind string, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var candidates []*domain.Snapshot
	for _, snap := range s.index {
		if snap.Kind == kind {
			candidates = append(candidates, snap)
		}
	}
	if len(candidates) <= keep {
		return nil, nil
	}

	// Newest first.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].CreatedAt != candidates[j].CreatedAt {
			return candidates[i].CreatedAt > candidates[j].CreatedAt
		}
		return candidates[i].ID > candidates[j].ID
	})

	var removed []string
	var errs []error
	for _, snap := range candidates[keep:] {
		if err := s.deleteLocked(snap.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, snap.ID)
	}

	return removed, errors.Join(errs...)
}

func notFound(id string) error {
	return domain.ErrSnapshotNotFound.WithDetails(id)
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
