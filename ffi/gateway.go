package ffi

import (
	"sync/atomic"
	"time"

	"github.com/bridgemesh/core/errs"
)

// Gateway exposes the single cross-language call entry point of §4.1. It
// holds no per-call state; registration and lookup go through the
// BridgeRegistry. The atomic initialized flag follows the teacher's
// engine/chain_engine.go init-flag idiom.
type Gateway struct {
	registry    *BridgeRegistry
	initialized int32
}

// NewGateway creates a gateway over a bridge registry bounded to capacity.
func NewGateway(capacity int) *Gateway {
	return &Gateway{registry: NewBridgeRegistry(capacity)}
}

// Initialize marks the gateway ready to accept registrations and calls.
// Calling twice fails with AlreadyInitialized.
func (g *Gateway) Initialize() error {
	if !atomic.CompareAndSwapInt32(&g.initialized, 0, 1) {
		return errs.New("gateway", errs.CodeAlreadyInitialized, "gateway already initialized")
	}
	return nil
}

func (g *Gateway) isInitialized() bool {
	return atomic.LoadInt32(&g.initialized) == 1
}

// RegisterBridge registers a bridge for its language.
func (g *Gateway) RegisterBridge(b Bridge) error {
	if !g.isInitialized() {
		return errs.New("gateway", errs.CodeNotInitialized, "gateway not initialized")
	}
	return g.registry.Register(b)
}

// BridgeCount returns the number of registered bridges.
func (g *Gateway) BridgeCount() int {
	return g.registry.Count()
}

// SetCapacity overrides the gateway's bridge-registry capacity bound
// (bridges.capacity), taking precedence over the constructor default.
func (g *Gateway) SetCapacity(capacity int) {
	g.registry.SetCapacity(capacity)
}

// SetEnabledLanguages restricts future bridge registrations to the
// languages configured enabled (bridges.<language>.enabled).
func (g *Gateway) SetEnabledLanguages(enabled map[string]bool) {
	g.registry.SetEnabledLanguages(enabled)
}

// Call implements the §4.1 algorithm: verify initialized, find bridge under
// a reader lock, fail if absent, delegate, return.
func (g *Gateway) Call(cc *CallContext) (Value, error) {
	start := time.Now()
	if !g.isInitialized() {
		return Value{}, errs.New("gateway", errs.CodeNotInitialized, "gateway not initialized")
	}
	b, ok := g.registry.Find(cc.TargetLanguage)
	if !ok {
		metricCallsTotal.WithLabelValues(cc.TargetLanguage, "unknown_language").Inc()
		return Value{}, errs.New("gateway", errs.CodeUnknownLanguage, "no bridge registered for language: "+cc.TargetLanguage)
	}
	if err := Yield(cc); err != nil {
		return Value{}, err
	}
	result, err := b.Call(cc, cc.TargetFunction, cc.Argument)
	metricCallDuration.WithLabelValues(cc.TargetLanguage).Observe(time.Since(start).Seconds())
	if err != nil {
		metricCallsTotal.WithLabelValues(cc.TargetLanguage, "failed").Inc()
		if ce, ok := err.(*errs.CoreError); ok {
			return Value{}, ce
		}
		return Value{}, errs.Wrap("gateway", errs.CodeBridgeCallFailed, "bridge call failed", err)
	}
	metricCallsTotal.WithLabelValues(cc.TargetLanguage, "ok").Inc()
	return result, nil
}

// Cleanup tells every bridge to clean up in reverse-registration order.
func (g *Gateway) Cleanup() error {
	return g.registry.Cleanup()
}
