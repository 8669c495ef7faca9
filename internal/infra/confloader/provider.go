package confloader

import (
	"errors"

	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/v2"
)

// staticProvider serves an in-memory map. Dotted keys such as
// "server.http.addr" are expanded into nested sections on Read.
type staticProvider map[string]any

func (p staticProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("confloader: static provider has no byte form")
}

func (p staticProvider) Read() (map[string]any, error) {
	return maps.Unflatten(p, "."), nil
}

// layer is one configuration source. Layers are merged in order, so later
// layers override earlier ones key by key.
type layer struct {
	source   Source
	provider koanf.Provider
	parser   koanf.Parser
}
