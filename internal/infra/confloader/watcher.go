package confloader

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultReloadDelay is how long a watched file must stay quiet before
// callbacks run. Editors often write a file in several steps.
const DefaultReloadDelay = 200 * time.Millisecond

// Watcher reports changes to configuration files. Directories are watched
// rather than files so rename-on-save editors are seen, and events for
// other files in those directories are dropped.
type Watcher struct {
	fsw    *fsnotify.Watcher
	delay  time.Duration
	logger *slog.Logger

	mu        sync.Mutex
	pending   map[string]*time.Timer // keyed by watched file; nil while idle
	callbacks []func(string)
	stopped   bool
	fireMu    sync.Mutex

	stop chan struct{}
	wg   sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger for the watcher.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithReloadDelay overrides DefaultReloadDelay. Zero fires on every event.
func WithReloadDelay(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.delay = d
	}
}

// NewWatcher creates a configuration file watcher. Call Watch for each
// file, then Start.
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		delay:   DefaultReloadDelay,
		logger:  slog.Default(),
		pending: make(map[string]*time.Timer),
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch adds a file. The file need not exist yet but its directory must.
func (w *Watcher) Watch(path string) error {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	if err := w.fsw.Add(dir); err != nil {
		return err
	}

	w.mu.Lock()
	if _, ok := w.pending[path]; !ok {
		w.pending[path] = nil
	}
	w.mu.Unlock()

	w.logger.Debug("watching config file", "file", path)
	return nil
}

// OnChange registers fn to run with the file's path after it changes.
// Callbacks run sequentially, never concurrently with each other.
func (w *Watcher) OnChange(fn func(string)) {
	w.mu.Lock()
	w.callbacks = append(w.callbacks, fn)
	w.mu.Unlock()
}

// Start begins processing events in the background.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.loop()
	}()
	w.logger.Info("configuration watcher started")
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.schedule(filepath.Clean(event.Name))
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("configuration watcher error", "error", err)
		case <-w.stop:
			return
		}
	}
}

// schedule (re)arms the reload timer for a watched file.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	t, watched := w.pending[path]
	if !watched || w.stopped {
		return
	}
	if t != nil {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.delay, func() { w.fire(path) })
}

// fire runs the callbacks for path unless the watcher has stopped.
func (w *Watcher) fire(path string) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	if _, ok := w.pending[path]; ok {
		w.pending[path] = nil
	}
	callbacks := append([]func(string){}, w.callbacks...)
	w.mu.Unlock()

	w.fireMu.Lock()
	defer w.fireMu.Unlock()

	w.logger.Debug("configuration file changed", "file", path)
	for _, fn := range callbacks {
		fn(path)
	}
}

// Stop ends event processing and cancels pending reloads. It is safe to
// call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	for path, t := range w.pending {
		if t != nil {
			t.Stop()
			w.pending[path] = nil
		}
	}
	w.mu.Unlock()

	close(w.stop)
	w.wg.Wait()

	if err := w.fsw.Close(); err != nil {
		return err
	}
	w.logger.Info("configuration watcher stopped")
	return nil
}
