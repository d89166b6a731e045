// Package configbind converts a generic configuration tree (as produced by
// any external parser - JSON, YAML, TOML; parsing itself is out of scope for
// the core) into the typed option structs the core consumes. This is the
// target-language replacement for the teacher's unretrieved
// `utils/maps.Map2Struct` helper, built directly on the dependency the
// teacher already declares for the same purpose.
package configbind

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Warning records an unrecognized configuration key; unknown options are
// reported as warnings and never fail initialization.
type Warning struct {
	Key     string
	Message string
}

// BridgeOptions binds the "bridges.*" configuration surface.
type BridgeOptions struct {
	Capacity int             `mapstructure:"capacity"`
	Enabled  map[string]bool `mapstructure:"enabled"`
}

// TopologyOptions binds the "topology.*" configuration surface.
type TopologyOptions struct {
	// Transitions is a flattened legality matrix: "from->to" -> allowed.
	Transitions map[string]bool `mapstructure:"transitions"`
}

// SecurityOptions binds the "security.*" configuration surface.
type SecurityOptions struct {
	RequireAuth       bool   `mapstructure:"require_auth"`
	EnforceEncryption bool   `mapstructure:"enforce_encryption"`
	IsolationLevel    string `mapstructure:"isolation_level"`
}

// ResourceOptions binds the "resource.<component>.*" configuration surface
// for one component; callers decode one ResourceOptions per component key.
type ResourceOptions struct {
	MemoryQuota int64 `mapstructure:"memory_quota"`
	CPUQuota    int64 `mapstructure:"cpu_quota"`
	IOQuota     int64 `mapstructure:"io_quota"`
}

// ErrorOptions binds the "error.propagation.<component>" configuration surface.
type ErrorOptions struct {
	Propagation map[string]string `mapstructure:"propagation"`
}

// IdentifierOptions binds the "identifier.*" configuration surface.
type IdentifierOptions struct {
	DefaultFormat string `mapstructure:"default_format"`
}

// Tree is the full decoded configuration surface of §6.
type Tree struct {
	Bridges    BridgeOptions               `mapstructure:"bridges"`
	Topology   TopologyOptions             `mapstructure:"topology"`
	Security   SecurityOptions             `mapstructure:"security"`
	Resource   map[string]ResourceOptions  `mapstructure:"resource"`
	Error      ErrorOptions                `mapstructure:"error"`
	Identifier IdentifierOptions           `mapstructure:"identifier"`
}

// Decode decodes a raw configuration map into a Tree, collecting unrecognized
// keys as warnings rather than failing.
func Decode(raw map[string]any) (Tree, []Warning, error) {
	var tree Tree
	md := &mapstructure.Metadata{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &tree,
		WeaklyTypedInput: true,
		Metadata:         md,
	})
	if err != nil {
		return tree, nil, fmt.Errorf("configbind: build decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return tree, nil, fmt.Errorf("configbind: decode: %w", err)
	}
	unused := md.Unused
	warnings := make([]Warning, 0, len(unused))
	for _, k := range unused {
		warnings = append(warnings, Warning{Key: k, Message: "unrecognized configuration key"})
	}
	return tree, warnings, nil
}
