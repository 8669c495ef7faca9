// Package confloader loads layered configuration with koanf.
//
// Sources, lowest priority first:
//
//  1. Defaults (WithDefaults, dotted keys)
//  2. YAML file (WithConfigFile)
//  3. Environment variables (PROJSNAP_ prefix)
//
// After Load, Source and KeysFrom report which layer set each key.
// Watcher reports settled changes to configuration files so the server can
// apply reloadable settings such as the log level.
package confloader
