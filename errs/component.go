package errs

import "sync"

// IsolationLevel is the strictness dial governing how a component is
// separated at runtime. The core does not implement OS-level isolation
// itself; this is a flag consumed by external launchers/sandbox tooling and
// by the policy layer. Container > Process > Thread > None in strictness.
type IsolationLevel int

const (
	IsolationNone IsolationLevel = iota
	IsolationThread
	IsolationProcess
	IsolationContainer
)

// State is a component's lifecycle state.
type State int

const (
	StateInit State = iota
	StateReady
	StateRunning
	StateStopped
	StateError
)

// SecurityContext carries the owner/group/permission/label attributes of a
// component, consumed by the policy layer when evaluating resource access.
type SecurityContext struct {
	Owner      string
	Group      string
	Permission uint32
	Label      string
}

// Component is a named node in both the error hierarchy and the
// resource-tracking tree, forming a tree rooted at "core".
type Component struct {
	Name      string
	Parent    string
	Isolation IsolationLevel
	State     State
	Security  SecurityContext
}

// PropagationMode controls which direction a raised error notifies along
// the component tree.
type PropagationMode int

const (
	PropagateNone PropagationMode = iota
	PropagateUpward
	PropagateDownward
	PropagateBidirectional
)

// Handler receives a raised error; it MUST NOT itself raise. A handler that
// panics is caught by the tree and treated as a no-op; the panic is not
// logged.
type Handler func(component string, source Code, code Code, severity Severity, message string)

// Tree is the hierarchical error system's runtime: it tracks components,
// their declared parents, per-component propagation mode and handler, and
// aggregates errors raised during shutdown.
type Tree struct {
	mu         sync.RWMutex
	components map[string]Component
	modes      map[string]PropagationMode
	handlers   map[string]Handler
	aggregated []*CoreError
}

// NewTree creates an error tree rooted at "core".
func NewTree() *Tree {
	return &Tree{
		components: map[string]Component{"core": {Name: "core", State: StateReady}},
		modes:      map[string]PropagationMode{"core": PropagateNone},
		handlers:   map[string]Handler{},
	}
}

// Register adds or replaces a component. Parent must already be registered;
// Register does not check this. "core" is the root and has no parent.
func (t *Tree) Register(c Component, mode PropagationMode, handler Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.components[c.Name] = c
	t.modes[c.Name] = mode
	if handler != nil {
		t.handlers[c.Name] = handler
	}
}

// Raise records an error entry for component, routes it per its propagation
// mode, and appends it to the aggregation slice read back by Aggregate.
// Fatal severity transitions the component to StateError and releases it
// from further consideration by callers that check State.
func (t *Tree) Raise(component string, source Code, err *CoreError) {
	t.mu.Lock()
	mode := t.modes[component]
	handler := t.handlers[component]
	parent := t.components[component].Parent
	if err.Severity == SeverityFatal {
		comp := t.components[component]
		comp.State = StateError
		t.components[component] = comp
	}
	t.aggregated = append(t.aggregated, err)
	t.mu.Unlock()

	t.invoke(handler, component, source, err)

	if mode == PropagateUpward || mode == PropagateBidirectional {
		if parent != "" && parent != component {
			t.Raise(parent, source, err)
		}
	}
	if mode == PropagateDownward || mode == PropagateBidirectional {
		for _, child := range t.childrenOf(component) {
			t.Raise(child, source, err)
		}
	}
}

func (t *Tree) childrenOf(parent string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var children []string
	for name, c := range t.components {
		if c.Parent == parent {
			children = append(children, name)
		}
	}
	return children
}

// invoke calls the handler synchronously on the raising thread, per the
// handler contract; a panicking handler is recovered and swallowed without
// being logged.
func (t *Tree) invoke(h Handler, component string, source Code, err *CoreError) {
	if h == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	h(component, source, err.Code, err.Severity, err.Message)
}

// Aggregate returns every error raised so far, e.g. for shutdown-time
// reporting where cleanup errors "are aggregated and returned, never
// silently dropped".
func (t *Tree) Aggregate() []*CoreError {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*CoreError, len(t.aggregated))
	copy(out, t.aggregated)
	return out
}

// ComponentState reports a component's current lifecycle state.
func (t *Tree) ComponentState(name string) (State, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.components[name]
	return c.State, ok
}
