// Package resource implements the per-component quota enforcement described
// in §4.4: memory/CPU/I/O limiters, threshold callbacks, and isolation
// levels, instrumented with the teacher's prometheus registration idiom
// (engine/metrics.go).
package resource

import (
	"sync"

	"github.com/bridgemesh/core/errs"
)

// Kind selects which tracked resource a quota or usage figure refers to.
type Kind int

const (
	KindMemory Kind = iota
	KindCPU
	KindIO
)

// ThresholdCallback is invoked with the lock released, in registration
// order, after every successful Allocate, with the new usage and the quota;
// the limiter has no threshold values of its own, so deciding whether a
// threshold was crossed is left to the callback. A callback that
// panics is treated as a no-op from the limiter's perspective; its recovered
// value is forwarded to onCallbackError if set.
type ThresholdCallback func(kind Kind, current, limit int64)

// Limiter is the per-component resource-limiter state.
type Limiter struct {
	component string
	isolation IsolationLevel

	mu sync.Mutex

	quota   [3]int64
	current [3]int64
	peak    [3]int64

	allocCount int64
	freeCount  int64
	violations int64

	enforcement bool
	tracking    bool

	callbacks []ThresholdCallback

	onCallbackError func(err error)
}

// NewLimiter creates a limiter for component with the given per-kind quotas.
// Enforcement and tracking both default to enabled.
func NewLimiter(component string, memoryQuota, cpuQuota, ioQuota int64) *Limiter {
	l := &Limiter{
		component:   component,
		enforcement: true,
		tracking:    true,
	}
	l.quota[KindMemory] = memoryQuota
	l.quota[KindCPU] = cpuQuota
	l.quota[KindIO] = ioQuota
	metricQuota.WithLabelValues(component, "memory").Set(float64(memoryQuota))
	metricQuota.WithLabelValues(component, "cpu").Set(float64(cpuQuota))
	metricQuota.WithLabelValues(component, "io").Set(float64(ioQuota))
	return l
}

// SetIsolation records the isolation level a component was launched under,
// per §4.4's "isolation levels influence but do not determine quotas". The
// limiter itself never enforces isolation; this is a flag external
// launchers and the policy layer can read back via Isolation.
func (l *Limiter) SetIsolation(level IsolationLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.isolation = level
}

// Isolation returns the component's recorded isolation level, IsolationNone
// if SetIsolation was never called.
func (l *Limiter) Isolation() IsolationLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.isolation
}

// SetEnforcement toggles whether quota overruns are rejected.
func (l *Limiter) SetEnforcement(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enforcement = on
}

// OnThreshold registers a threshold callback, called whenever an allocation
// succeeds, in registration order.
func (l *Limiter) OnThreshold(cb ThresholdCallback) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.callbacks = append(l.callbacks, cb)
}

// OnCallbackError sets the handler invoked when a threshold callback panics.
func (l *Limiter) OnCallbackError(fn func(err error)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onCallbackError = fn
}

// Allocate runs the §4.4 allocation protocol for a single resource kind.
func (l *Limiter) Allocate(kind Kind, size int64) error {
	l.mu.Lock()
	if l.enforcement && l.current[kind]+size > l.quota[kind] {
		l.violations++
		metricViolations.WithLabelValues(l.component, kindLabel(kind)).Inc()
		l.mu.Unlock()
		return errs.New(l.component, errs.CodeQuotaExceeded, "quota exceeded")
	}
	l.current[kind] += size
	if l.current[kind] > l.peak[kind] {
		l.peak[kind] = l.current[kind]
	}
	l.allocCount++
	current := l.current[kind]
	quota := l.quota[kind]
	cbs := append([]ThresholdCallback(nil), l.callbacks...)
	onErr := l.onCallbackError
	l.mu.Unlock()

	metricUsage.WithLabelValues(l.component, kindLabel(kind)).Set(float64(current))
	metricPeak.WithLabelValues(l.component, kindLabel(kind)).Set(float64(l.peakOf(kind)))

	l.runCallbacks(cbs, onErr, kind, current, quota)
	return nil
}

func (l *Limiter) peakOf(kind Kind) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.peak[kind]
}

func (l *Limiter) runCallbacks(cbs []ThresholdCallback, onErr func(error), kind Kind, current, limit int64) {
	for _, cb := range cbs {
		func() {
			defer func() {
				if r := recover(); r != nil && onErr != nil {
					onErr(panicToError(r))
				}
			}()
			cb(kind, current, limit)
		}()
	}
}

// Free releases size units of kind, decrementing current usage. It never
// fails: frees below zero are clamped at zero and counted.
func (l *Limiter) Free(kind Kind, size int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current[kind] -= size
	if l.current[kind] < 0 {
		l.current[kind] = 0
	}
	l.freeCount++
	metricUsage.WithLabelValues(l.component, kindLabel(kind)).Set(float64(l.current[kind]))
}

// Snapshot returns a point-in-time view of the limiter's counters for kind.
// Violations counts rejected allocations across all kinds.
type Snapshot struct {
	Quota      int64
	Current    int64
	Peak       int64
	Violations int64
}

func (l *Limiter) Snapshot(kind Kind) Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot{
		Quota:      l.quota[kind],
		Current:    l.current[kind],
		Peak:       l.peak[kind],
		Violations: l.violations,
	}
}

func kindLabel(k Kind) string {
	switch k {
	case KindMemory:
		return "memory"
	case KindCPU:
		return "cpu"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

func panicToError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return errs.New("resource", errs.CodeInternalInvariantViolated, "threshold callback panicked")
}
