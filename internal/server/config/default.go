package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr        = "127.0.0.1:5090"
	DefaultRateLimit       = 50.0
	DefaultRateBurst       = 100
	DefaultShutdownTimeout = 10 * time.Second

	DefaultDataDir = "~/.projsnap"

	DefaultWatchDebounce = 30 * time.Second
	DefaultWatchKeep     = 10

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:      DefaultHTTPAddr,
				RateLimit: DefaultRateLimit,
				RateBurst: DefaultRateBurst,
				Audit:     true,
			},
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Storage: StorageSection{
			DataDir: DefaultDataDir,
		},
		Snapshot: SnapshotSection{
			Exclude: []string{},
		},
		Watch: WatchSection{
			Debounce: DefaultWatchDebounce,
			Keep:     DefaultWatchKeep,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// DefaultMap returns the defaults keyed by koanf path, for
// confloader.WithDefaults.
func DefaultMap() map[string]any {
	d := Default()
	return map[string]any{
		"server.http.addr":        d.Server.HTTP.Addr,
		"server.http.rate_limit":  d.Server.HTTP.RateLimit,
		"server.http.rate_burst":  d.Server.HTTP.RateBurst,
		"server.http.audit":       d.Server.HTTP.Audit,
		"server.shutdown_timeout": d.Server.ShutdownTimeout,
		"storage.data_dir":        d.Storage.DataDir,
		"snapshot.exclude":        d.Snapshot.Exclude,
		"snapshot.skip_corrupt":   d.Snapshot.SkipCorrupt,
		"watch.enabled":           d.Watch.Enabled,
		"watch.root":              d.Watch.Root,
		"watch.debounce":          d.Watch.Debounce,
		"watch.keep":              d.Watch.Keep,
		"log.level":               d.Log.Level,
		"log.format":              d.Log.Format,
	}
}
