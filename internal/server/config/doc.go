// Package config provides server configuration for projsnap.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values, also exported as a koanf default map
//   - verify.go: validation
//   - paths.go: home directory expansion for path settings
//
// Configuration is loaded via internal/infra/confloader from a YAML file
// and PROJSNAP_ environment variables.
package config
