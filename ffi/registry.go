package ffi

import (
	"sync"

	"github.com/bridgemesh/core/errs"
)

// BridgeRegistry is a bounded-capacity mapping from language name to bridge,
// grounded on the teacher's RWMutex-protected map registry
// (engine/registry.go's RuleComponentRegistry) generalized with a capacity
// bound per §3 ("BridgeLimitExceeded error exists").
type BridgeRegistry struct {
	mu       sync.RWMutex
	bridges  map[string]Bridge
	order    []string // registration order, for reverse-order cleanup
	capacity int

	// enabled, when non-nil, restricts registration to languages present
	// and true in the map (bridges.<language>.enabled). A nil or empty map
	// means no restriction.
	enabled map[string]bool
}

// NewBridgeRegistry creates a registry bounded to capacity bridges. A
// capacity <= 0 means unbounded.
func NewBridgeRegistry(capacity int) *BridgeRegistry {
	return &BridgeRegistry{
		bridges:  make(map[string]Bridge),
		capacity: capacity,
	}
}

// SetCapacity overrides the registry's capacity bound, e.g. when
// configuration decoded after construction (bridges.capacity) should take
// precedence over the constructor default. A capacity <= 0 means unbounded.
func (r *BridgeRegistry) SetCapacity(capacity int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capacity = capacity
}

// SetEnabledLanguages restricts future registrations to the languages
// marked true in enabled (bridges.<language>.enabled). Passing a nil or
// empty map lifts any restriction.
func (r *BridgeRegistry) SetEnabledLanguages(enabled map[string]bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
}

// Register adds a bridge under its Language() name. Fails with
// AlreadyRegistered, BridgeLimitExceeded, or InvalidParameter; with
// UnknownLanguage when the language is not in a non-empty enabled set; and
// with BridgeCallFailed when the bridge's Init fails.
func (r *BridgeRegistry) Register(b Bridge) error {
	if b == nil || b.Language() == "" {
		return errs.New("gateway", errs.CodeInvalidParameter, "bridge must have a non-empty language name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.enabled) > 0 && !r.enabled[b.Language()] {
		return errs.New("gateway", errs.CodeUnknownLanguage, "registration disabled for language: "+b.Language())
	}
	if _, ok := r.bridges[b.Language()]; ok {
		return errs.New("gateway", errs.CodeAlreadyRegistered, "bridge for language already registered: "+b.Language())
	}
	if r.capacity > 0 && len(r.bridges) >= r.capacity {
		return errs.New("gateway", errs.CodeBridgeLimitExceeded, "bridge registry at capacity")
	}
	if err := b.Init(); err != nil {
		return errs.Wrap("gateway", errs.CodeBridgeCallFailed, "bridge init failed", err)
	}
	r.bridges[b.Language()] = b
	r.order = append(r.order, b.Language())
	return nil
}

// Find looks up a bridge by language name. Lookup is wait-free from the
// caller's perspective (a single RLock acquisition; registration and call
// never block each other for reads).
func (r *BridgeRegistry) Find(language string) (Bridge, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bridges[language]
	return b, ok
}

// Count returns the number of registered bridges.
func (r *BridgeRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bridges)
}

// Cleanup tells every bridge to clean up in reverse registration order.
// Errors are aggregated and returned, never silently dropped.
func (r *BridgeRegistry) Cleanup() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var aggregate []error
	for i := len(r.order) - 1; i >= 0; i-- {
		lang := r.order[i]
		b, ok := r.bridges[lang]
		if !ok {
			continue
		}
		if err := b.Cleanup(); err != nil {
			aggregate = append(aggregate, err)
		}
		delete(r.bridges, lang)
	}
	r.order = nil
	if len(aggregate) == 0 {
		return nil
	}
	return &CleanupError{Errors: aggregate}
}

// CleanupError aggregates every error raised while cleaning up bridges.
type CleanupError struct {
	Errors []error
}

func (e *CleanupError) Error() string {
	msg := "bridge cleanup encountered errors:"
	for _, err := range e.Errors {
		msg += " [" + err.Error() + "]"
	}
	return msg
}
