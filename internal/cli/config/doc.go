// Package config provides the CLI's local configuration, stored as YAML in
// ~/.projsnap/cli.yaml.
package config
