package topology

import (
	"sync"

	"github.com/bridgemesh/core/errs"
)

// TransitionMatrix is the legality policy over (from, to) layer pairs,
// treated as configuration per §9's resolved open question: the
// conservative default is "all transitions denied" until explicitly
// populated.
type TransitionMatrix struct {
	mu      sync.RWMutex
	allowed map[Layer]map[Layer]bool
}

// NewTransitionMatrix creates an empty (deny-all) matrix.
func NewTransitionMatrix() *TransitionMatrix {
	return &TransitionMatrix{allowed: make(map[Layer]map[Layer]bool)}
}

// Allow marks (from, to) as a legal transition.
func (m *TransitionMatrix) Allow(from, to Layer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.allowed[from] == nil {
		m.allowed[from] = make(map[Layer]bool)
	}
	m.allowed[from][to] = true
}

// IsAllowed reports whether (from, to) is a legal transition.
func (m *TransitionMatrix) IsAllowed(from, to Layer) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.allowed[from][to]
}

// Manager is the fixed-size adapter registry of §4.2: one slot per closed
// layer value, readers-writer locked, reads never blocking reads.
type Manager struct {
	mu       sync.RWMutex
	adapters [layerCount]*RefCounted
	matrix   *TransitionMatrix
}

// NewManager creates an adapter registry over the given transition matrix.
func NewManager(matrix *TransitionMatrix) *Manager {
	if matrix == nil {
		matrix = NewTransitionMatrix()
	}
	return &Manager{matrix: matrix}
}

// RegisterAdapter binds adapter to layer, replacing and releasing any
// existing adapter at that slot.
func (m *Manager) RegisterAdapter(layer Layer, adapter Adapter) error {
	if layer < 0 || layer >= layerCount {
		return errs.New("topology", errs.CodeUnknownLayer, "layer out of range")
	}
	if err := adapter.Init(m); err != nil {
		return errs.Wrap("topology", errs.CodeInvalidParameter, "adapter init failed", err)
	}
	wrapped := NewRefCounted(adapter)

	m.mu.Lock()
	prev := m.adapters[layer]
	m.adapters[layer] = wrapped
	m.mu.Unlock()

	if prev != nil {
		_, _ = prev.Release()
	}
	return nil
}

// Get resolves the adapter at layer under a reader lock.
func (m *Manager) Get(layer Layer) (*RefCounted, bool) {
	if layer < 0 || layer >= layerCount {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	a := m.adapters[layer]
	return a, a != nil
}

// Matrix exposes the transition legality matrix for configuration-time
// population.
func (m *Manager) Matrix() *TransitionMatrix { return m.matrix }
