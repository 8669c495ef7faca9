package config

import (
	"path/filepath"
	"time"
)

// ServerConfig is the root configuration for projsnap-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Storage  StorageSection  `koanf:"storage"`
	Snapshot SnapshotSection `koanf:"snapshot"`
	Watch    WatchSection    `koanf:"watch"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP            HTTPConfig    `koanf:"http"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr string `koanf:"addr"`

	// RateLimit is the per-client request rate in requests per second.
	// Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	// Audit logs every request after it completes.
	Audit bool `koanf:"audit"`
}

// StorageSection configures where snapshots are kept.
type StorageSection struct {
	DataDir string `koanf:"data_dir"`
}

// SnapshotDir returns the directory holding snapshot records.
func (s StorageSection) SnapshotDir() string {
	return filepath.Join(s.DataDir, "backups")
}

// SnapshotSection configures capture and load behavior.
type SnapshotSection struct {
	// Exclude lists glob patterns excluded in addition to the built-in names.
	Exclude []string `koanf:"exclude"`

	// SkipCorrupt skips unparsable records at startup instead of failing.
	SkipCorrupt bool `koanf:"skip_corrupt"`
}

// WatchSection configures automatic snapshots.
type WatchSection struct {
	Enabled  bool          `koanf:"enabled"`
	Root     string        `koanf:"root"`
	Debounce time.Duration `koanf:"debounce"`
	Keep     int           `koanf:"keep"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
