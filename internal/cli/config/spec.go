package config

import "time"

// CLIConfig is the configuration for the projsnap CLI.
type CLIConfig struct {
	// Server is the projsnap-server address used when --server is not given.
	Server string `yaml:"server"`

	// Output is the default output format: table, json, yaml.
	Output string `yaml:"output"`

	// Timeout bounds each request to the server.
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:  "http://127.0.0.1:5090",
		Output:  "table",
		Timeout: 60 * time.Second,
	}
}
