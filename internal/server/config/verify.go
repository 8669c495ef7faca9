package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/gobwas/glob"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifySnapshot(&cfg.Snapshot); err != nil {
		return err
	}
	if err := verifyWatch(&cfg.Watch); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.HTTP.Addr == "" {
		return errors.New("server.http.addr is required")
	}
	if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		return fmt.Errorf("server.http.addr: %w", err)
	}
	if cfg.HTTP.RateLimit < 0 {
		return errors.New("server.http.rate_limit must not be negative")
	}
	if cfg.HTTP.RateLimit > 0 && cfg.HTTP.RateBurst < 1 {
		return errors.New("server.http.rate_burst must be at least 1 when rate limiting is enabled")
	}
	if cfg.ShutdownTimeout < 0 {
		return errors.New("server.shutdown_timeout must not be negative")
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	if cfg.DataDir == "" {
		return errors.New("storage.data_dir is required")
	}
	return nil
}

func verifySnapshot(cfg *SnapshotSection) error {
	for _, pattern := range cfg.Exclude {
		if strings.TrimSpace(pattern) == "" {
			continue
		}
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("snapshot.exclude: invalid pattern '%s': %w", pattern, err)
		}
	}
	return nil
}

func verifyWatch(cfg *WatchSection) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Root == "" {
		return errors.New("watch.root is required when watch.enabled is true")
	}
	if cfg.Debounce <= 0 {
		return errors.New("watch.debounce must be positive")
	}
	if cfg.Keep < 0 {
		return errors.New("watch.keep must not be negative")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level: unknown level '%s'", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		return fmt.Errorf("log.format: unknown format '%s'", cfg.Format)
	}
	return nil
}
