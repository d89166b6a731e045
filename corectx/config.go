// Package corectx implements the lifecycle and context root: the process-wide
// object that owns the service registry, the global property bag, and the
// composition of every other package (identity, policy, resource, bridge
// registry, gateway, topology) behind the strict creation/teardown ordering
// described for the core context.
package corectx

import (
	"github.com/bridgemesh/core/corectx/logging"
)

// Properties is a global key/value property bag, grounded on the teacher's
// types.Properties. Unlike the teacher it has no "${global.x}" templating
// step; components read values directly from the context that owns them.
type Properties map[string]string

// Clone returns a shallow copy safe for a caller to mutate independently.
func (p Properties) Clone() Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Config configures a Context. Zero value is not usable; build one with
// NewConfig and Option funcs, mirroring the teacher's types.Config /
// types.Option pair.
type Config struct {
	Logger         logging.Logger
	Properties     Properties
	BridgeCapacity int
}

// Option mutates a Config during NewConfig.
type Option func(*Config) error

// WithLogger overrides the default logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Config) error {
		c.Logger = l
		return nil
	}
}

// WithProperties sets the initial global property bag.
func WithProperties(p Properties) Option {
	return func(c *Config) error {
		c.Properties = p
		return nil
	}
}

// WithBridgeCapacity bounds how many bridges the registry accepts.
func WithBridgeCapacity(n int) Option {
	return func(c *Config) error {
		c.BridgeCapacity = n
		return nil
	}
}

// NewConfig builds a Config with defaults, applying opts in order. A failing
// Option aborts and returns its error.
func NewConfig(opts ...Option) (Config, error) {
	c := Config{
		Logger:         logging.DefaultLogger(),
		Properties:     make(Properties),
		BridgeCapacity: 64,
	}
	for _, opt := range opts {
		if err := opt(&c); err != nil {
			return Config{}, err
		}
	}
	return c, nil
}
