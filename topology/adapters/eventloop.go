// Package adapters provides the three concrete host-language adapters of
// §4.2: an event-loop host (backed by a real embedded goja VM), an
// interpreter-lock host (backed by compiled expr-lang programs standing in
// for guest function dispatch), and a GC'd green-thread host enforcing
// thread affinity.
package adapters

import (
	"sync"

	"github.com/bridgemesh/core/errs"
	"github.com/bridgemesh/core/topology"
	"github.com/bridgemesh/core/utils/js"
)

// EventLoopAdapter models "the host's native handle-scope equivalent" with
// a pooled js.Engine, grounded on the teacher's GojaJsEngine
// (utils/js/js_engine.go). The host is single-threaded and cooperative:
// EnterLayer opens a scope on the runtime, runs the transition, and closes
// the scope on every exit path; ExitLayer is a no-op per §4.2.
type EventLoopAdapter struct {
	mu     sync.Mutex
	pool   sync.Pool
	onWake func()
}

// NewEventLoopAdapter creates an event-loop adapter. script, if non-empty,
// is run once per pooled engine to prime globals/UDFs before use.
func NewEventLoopAdapter(script string, onWake func()) *EventLoopAdapter {
	a := &EventLoopAdapter{onWake: onWake}
	a.pool.New = func() any {
		engine, err := js.NewEngine(script)
		if err != nil {
			// A priming script error surfaces on first EnterLayer instead,
			// since sync.Pool.New cannot itself return an error.
			return err
		}
		return engine
	}
	return a
}

func (a *EventLoopAdapter) Init(mgr *topology.Manager) error { return nil }

// EnterLayer acquires a pooled engine (the "handle-scope equivalent"),
// leaves it acquired for the duration of the transition, signals the async
// wake handle on success, and always returns the engine to the pool.
func (a *EventLoopAdapter) EnterLayer(threadID topology.ThreadID, target topology.Layer) error {
	pooled := a.pool.Get()
	if err, ok := pooled.(error); ok {
		return errs.Wrap("topology.eventloop", errs.CodeBridgeCallFailed, "priming script failed", err)
	}
	engine := pooled.(*js.Engine)
	defer a.pool.Put(engine)

	// Running a no-op evaluation here stands in for "runs the transition"
	// within the acquired scope; a real bridge would execute guest code.
	if _, err := engine.RunString("true"); err != nil {
		return errs.Wrap("topology.eventloop", errs.CodeBridgeCallFailed, "event-loop transition failed", err)
	}
	if a.onWake != nil {
		a.onWake()
	}
	return nil
}

// ExitLayer is a no-op: the event-loop host's scope already closed at the
// end of EnterLayer.
func (a *EventLoopAdapter) ExitLayer(threadID topology.ThreadID) error { return nil }

func (a *EventLoopAdapter) Cleanup() error { return nil }

var _ topology.Adapter = (*EventLoopAdapter)(nil)
