package service

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yndnr/projsnap/internal/core/domain"
	"github.com/yndnr/projsnap/internal/telemetry/metric"
)

// DefaultDebounce is the quiet period after the last change before an
// automatic snapshot is taken.
const DefaultDebounce = 30 * time.Second

// PathFilter decides which entries are ignored. *snapshot.Excluder
// implements it.
type PathFilter interface {
	Skip(rel, name string) bool
}

// AutoSnapshotter watches a project tree and captures an "auto" snapshot
// once changes have been quiet for the debounce period.
type AutoSnapshotter struct {
	svc      *SnapshotService
	root     string
	filter   PathFilter
	debounce time.Duration
	keep     int
	ignored  []string
	metrics  *metric.Registry
	logger   *slog.Logger
	onCreate func(*domain.Snapshot)

	watcher  *fsnotify.Watcher
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// AutoOption configures an AutoSnapshotter.
type AutoOption func(*AutoSnapshotter)

// WithDebounce sets the quiet period. Non-positive values are ignored.
func WithDebounce(d time.Duration) AutoOption {
	return func(a *AutoSnapshotter) {
		if d > 0 {
			a.debounce = d
		}
	}
}

// WithKeep prunes automatic snapshots to the newest n after each capture.
// Zero keeps everything.
func WithKeep(n int) AutoOption {
	return func(a *AutoSnapshotter) {
		a.keep = n
	}
}

// WithFilter sets the exclusion filter applied to events and watched directories.
func WithFilter(f PathFilter) AutoOption {
	return func(a *AutoSnapshotter) {
		a.filter = f
	}
}

// WithIgnoredPaths ignores events under the given directories, typically the
// snapshot storage location when it lives inside the watched tree.
func WithIgnoredPaths(paths ...string) AutoOption {
	return func(a *AutoSnapshotter) {
		for _, p := range paths {
			if abs, err := filepath.Abs(p); err == nil {
				a.ignored = append(a.ignored, abs)
			}
		}
	}
}

// WithAutoMetrics records watcher events.
func WithAutoMetrics(m *metric.Registry) AutoOption {
	return func(a *AutoSnapshotter) {
		a.metrics = m
	}
}

// WithAutoLogger sets the logger.
func WithAutoLogger(l *slog.Logger) AutoOption {
	return func(a *AutoSnapshotter) {
		a.logger = l
	}
}

// WithOnSnapshot registers a callback invoked after each automatic snapshot.
func WithOnSnapshot(fn func(*domain.Snapshot)) AutoOption {
	return func(a *AutoSnapshotter) {
		a.onCreate = fn
	}
}

// NewAutoSnapshotter creates an AutoSnapshotter for root.
func NewAutoSnapshotter(svc *SnapshotService, root string, opts ...AutoOption) (*AutoSnapshotter, error) {
	if svc == nil {
		return nil, domain.ErrMissingArgument.WithDetails("snapshot service is required")
	}
	if root == "" {
		return nil, domain.ErrMissingArgument.WithDetails("watch root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, domain.ErrInvalidArgument.Wrap(err)
	}

	a := &AutoSnapshotter{
		svc:      svc,
		root:     abs,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Start registers watches on every non-excluded directory under the root and
// begins processing events in a background goroutine.
func (a *AutoSnapshotter) Start(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	a.watcher = w

	if err := a.addTree(a.root); err != nil {
		w.Close()
		return err
	}

	a.wg.Add(1)
	go a.loop(ctx)

	a.logger.Info("auto-snapshot watcher started",
		"root", a.root,
		"debounce", a.debounce,
		"keep", a.keep)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit. A pending
// capture is dropped.
func (a *AutoSnapshotter) Stop() error {
	var err error
	a.stopOnce.Do(func() {
		close(a.done)
		if a.watcher != nil {
			err = a.watcher.Close()
		}
		a.wg.Wait()
		a.logger.Info("auto-snapshot watcher stopped")
	})
	return err
}

func (a *AutoSnapshotter) loop(ctx context.Context) {
	defer a.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-a.watcher.Events:
			if !ok {
				return
			}
			if !a.relevant(event) {
				continue
			}
			if a.metrics != nil {
				a.metrics.IncWatchEvents()
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
					if err := a.addTree(event.Name); err != nil {
						a.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
				}
			}

			if timer == nil {
				timer = time.NewTimer(a.debounce)
			} else {
				timer.Reset(a.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			a.capture(ctx)

		case err, ok := <-a.watcher.Errors:
			if !ok {
				return
			}
			a.logger.Error("auto-snapshot watcher error", "error", err)

		case <-ctx.Done():
			return

		case <-a.done:
			return
		}
	}
}

func (a *AutoSnapshotter) capture(ctx context.Context) {
	snap, err := a.svc.Create(ctx, &CreateSnapshotRequest{
		Root: a.root,
		Kind: domain.KindAuto,
	})
	if err != nil {
		a.logger.Error("automatic snapshot failed", "root", a.root, "error", err)
		return
	}

	if a.keep > 0 {
		if _, err := a.svc.Prune(ctx, domain.KindAuto, a.keep); err != nil {
			a.logger.Warn("automatic snapshot retention failed", "error", err)
		}
	}

	if a.onCreate != nil {
		a.onCreate(snap)
	}
}

// relevant reports whether an event should schedule a capture.
func (a *AutoSnapshotter) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	return !a.skip(event.Name)
}

// skip reports whether path is outside the root, under an ignored
// directory, or has an excluded component.
func (a *AutoSnapshotter) skip(path string) bool {
	for _, ignored := range a.ignored {
		if path == ignored || strings.HasPrefix(path, ignored+string(filepath.Separator)) {
			return true
		}
	}

	rel, err := filepath.Rel(a.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return true
	}
	if rel == "." || a.filter == nil {
		return false
	}

	rel = filepath.ToSlash(rel)
	parts := strings.Split(rel, "/")
	for i, name := range parts {
		if a.filter.Skip(strings.Join(parts[:i+1], "/"), name) {
			return true
		}
	}
	return false
}

// addTree watches dir and every non-excluded directory below it. Symlinked
// directories are not followed.
func (a *AutoSnapshotter) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			a.logger.Warn("skipping unreadable directory", "path", path, "error", err)
			return fs.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if path != a.root && a.skip(path) {
			return fs.SkipDir
		}
		if err := a.watcher.Add(path); err != nil {
			return err
		}
		return nil
	})
}
