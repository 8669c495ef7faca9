package confloader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "PROJSNAP_"

// Source names where a configuration value came from.
type Source string

const (
	SourceUnset   Source = ""
	SourceDefault Source = "default"
	SourceFile    Source = "file"
	SourceEnv     Source = "env"
)

// Loader merges defaults, an optional YAML file and environment variables
// into a typed struct, remembering which source set each key.
type Loader struct {
	envPrefix string
	filePath  string
	defaults  map[string]any

	k      *koanf.Koanf
	origin map[string]Source
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile sets the YAML file to load. A missing file is an error.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithDefaults sets the lowest-priority values, keyed by dotted path
// (e.g. "server.http.addr").
func WithDefaults(defaults map[string]any) Option {
	return func(l *Loader) {
		l.defaults = defaults
	}
}

// NewLoader creates a configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load merges every source and unmarshals the result into target using
// koanf struct tags. Each call starts from scratch.
func (l *Loader) Load(target any) error {
	l.k = koanf.New(".")
	l.origin = make(map[string]Source)

	for _, ly := range l.layers() {
		part := koanf.New(".")
		if err := part.Load(ly.provider, ly.parser); err != nil {
			return fmt.Errorf("load %s config: %w", ly.source, err)
		}
		for _, key := range part.Keys() {
			l.origin[key] = ly.source
		}
		if err := l.k.Merge(part); err != nil {
			return fmt.Errorf("merge %s config: %w", ly.source, err)
		}
	}

	if err := l.k.Unmarshal("", target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

func (l *Loader) layers() []layer {
	var layers []layer
	if len(l.defaults) > 0 {
		layers = append(layers, layer{source: SourceDefault, provider: staticProvider(l.defaults)})
	}
	if l.filePath != "" {
		layers = append(layers, layer{source: SourceFile, provider: file.Provider(l.filePath), parser: yaml.Parser()})
	}
	return append(layers, layer{
		source:   SourceEnv,
		provider: env.Provider(l.envPrefix, ".", l.envKey),
	})
}

// envKey maps PROJSNAP_STORAGE_DATA_DIR to storage.data_dir. Keys already
// known from earlier layers win, so underscores inside a key name survive;
// anything else splits on every underscore.
func (l *Loader) envKey(name string) string {
	s := strings.ToLower(strings.TrimPrefix(name, l.envPrefix))
	for _, key := range l.k.Keys() {
		if strings.ReplaceAll(key, ".", "_") == s {
			return key
		}
	}
	return strings.ReplaceAll(s, "_", ".")
}

// Source reports which layer last set key, or SourceUnset.
func (l *Loader) Source(key string) Source {
	return l.origin[key]
}

// KeysFrom returns the sorted keys whose value came from src.
func (l *Loader) KeysFrom(src Source) []string {
	var keys []string
	for key, s := range l.origin {
		if s == src {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// All returns the merged configuration as a nested map.
func (l *Loader) All() map[string]any {
	if l.k == nil {
		return map[string]any{}
	}
	return l.k.Raw()
}
