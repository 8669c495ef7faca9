package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome replaces a leading "~" with the current user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ResolvePaths expands "~" in every path setting.
func ResolvePaths(cfg *ServerConfig) error {
	var err error
	if cfg.Storage.DataDir, err = ExpandHome(cfg.Storage.DataDir); err != nil {
		return err
	}
	if cfg.Watch.Root, err = ExpandHome(cfg.Watch.Root); err != nil {
		return err
	}
	return nil
}
