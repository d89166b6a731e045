package topology

import "sync/atomic"

// Adapter is the per-language runtime facade of §4.2: bound to one bridge
// and to exactly one topology layer. The six-operation vtable from the
// source is replaced, per §9's redesign note, with an interface value
// implementing the capability set - dispatch is static at the call site and
// dynamic only at the registry boundary.
type Adapter interface {
	// Init binds the adapter to the orchestrating Manager and acquires any
	// language-specific startup resources.
	Init(mgr *Manager) error
	// EnterLayer positions threadID in this adapter's layer.
	EnterLayer(threadID ThreadID, target Layer) error
	// ExitLayer un-positions threadID from this adapter's layer. Idempotent.
	ExitLayer(threadID ThreadID) error
	// Cleanup releases everything acquired in Init. Called exactly once.
	// The adapters in topology/adapters return nil on a repeated call; none
	// of them reports NotInitialized.
	Cleanup() error
}

// TransitionValidator is optionally implemented by an Adapter to override
// the global transition matrix for transitions originating at its layer.
type TransitionValidator interface {
	ValidateTransition(from, to Layer) bool
}

// TraceEmitter is optionally implemented by an Adapter to sink
// adapter-visible events into the trace collector (§6).
type TraceEmitter interface {
	EmitTrace(event string, fields map[string]any)
}

// RefCounted wraps an Adapter with the atomic reference count from §4.2:
// acquire increments, release decrements and invokes Cleanup at zero. This
// is the sole ownership mechanism - there is no shared-ownership graph.
type RefCounted struct {
	Adapter
	refs int32
}

// NewRefCounted wraps adapter with an initial reference count of one.
func NewRefCounted(adapter Adapter) *RefCounted {
	return &RefCounted{Adapter: adapter, refs: 1}
}

// Acquire increments the reference count.
func (r *RefCounted) Acquire() {
	atomic.AddInt32(&r.refs, 1)
}

// Release decrements the reference count and, if it reaches zero, invokes
// Cleanup and reports that the adapter was destroyed.
func (r *RefCounted) Release() (destroyed bool, err error) {
	if atomic.AddInt32(&r.refs, -1) == 0 {
		return true, r.Cleanup()
	}
	return false, nil
}
