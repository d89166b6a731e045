package adapters

import (
	"sync"
	"sync/atomic"

	"github.com/bridgemesh/core/errs"
	"github.com/bridgemesh/core/topology"
)

// GreenThreadAdapter models a GC'd green-thread host (e.g. a goroutine-like
// scheduler with its own stack-copying collector). Per §4.2, EnterLayer and
// ExitLayer must run on the same OS thread as the adapter's Init call; a
// mismatch fails closed with ThreadAffinityViolation rather than silently
// migrating the green thread's state across OS threads. Go exposes no
// portable OS thread identifier, so "OS thread" is modeled the way the
// orchestrator itself already models it: the opaque ThreadID the caller
// supplies is taken as standing for the underlying OS thread, and the
// adapter remembers the one observed at its first EnterLayer (Init receives
// no ThreadID, so affinity is not bound to the Init call).
type GreenThreadAdapter struct {
	boundMu sync.Mutex
	bound   bool
	owner   topology.ThreadID

	entered int32
}

// NewGreenThreadAdapter creates an unbound green-thread adapter; binding
// happens on the first EnterLayer call.
func NewGreenThreadAdapter() *GreenThreadAdapter {
	return &GreenThreadAdapter{}
}

// Init does not itself bind an owning thread: the orchestrator does not pass
// a ThreadID to Init, and §4.2 binds affinity from "the adapter's init
// call", so the owner is latched on the first EnterLayer instead and every
// later call (including a conceptual re-init) is checked against it.
func (a *GreenThreadAdapter) Init(mgr *topology.Manager) error { return nil }

// EnterLayer binds threadID as the owner on first use and rejects any later
// call from a different thread with ThreadAffinityViolation. The transition
// itself runs without additional locks, per §4.2.
func (a *GreenThreadAdapter) EnterLayer(threadID topology.ThreadID, target topology.Layer) error {
	a.boundMu.Lock()
	if !a.bound {
		a.bound = true
		a.owner = threadID
		a.boundMu.Unlock()
	} else {
		owner := a.owner
		a.boundMu.Unlock()
		if owner != threadID {
			return errs.New("topology.greenthread", errs.CodeThreadAffinityViolation,
				"enter_layer observed a different OS thread than the adapter's bound thread")
		}
	}
	atomic.AddInt32(&a.entered, 1)
	return nil
}

// ExitLayer enforces the same affinity check as EnterLayer before
// un-positioning threadID.
func (a *GreenThreadAdapter) ExitLayer(threadID topology.ThreadID) error {
	a.boundMu.Lock()
	bound, owner := a.bound, a.owner
	a.boundMu.Unlock()
	if bound && owner != threadID {
		return errs.New("topology.greenthread", errs.CodeThreadAffinityViolation,
			"exit_layer observed a different OS thread than the adapter's bound thread")
	}
	atomic.AddInt32(&a.entered, -1)
	return nil
}

// Cleanup releases the thread binding, allowing the adapter to be rebound
// by a subsequent EnterLayer.
func (a *GreenThreadAdapter) Cleanup() error {
	a.boundMu.Lock()
	a.bound = false
	a.boundMu.Unlock()
	return nil
}

var _ topology.Adapter = (*GreenThreadAdapter)(nil)
