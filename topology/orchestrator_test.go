package topology

import (
	"testing"

	"github.com/bridgemesh/core/errs"
)

type recordingAdapter struct {
	layer       Layer
	exitCalls   int
	enterCalls  []Layer
	failEnterAt Layer
	failOnce    bool
}

func (a *recordingAdapter) Init(mgr *Manager) error { return nil }

func (a *recordingAdapter) EnterLayer(threadID ThreadID, target Layer) error {
	a.enterCalls = append(a.enterCalls, target)
	if a.failOnce && target == a.failEnterAt {
		a.failOnce = false
		return errs.New("adapter", errs.CodeCancelled, "forced failure")
	}
	return nil
}

func (a *recordingAdapter) ExitLayer(threadID ThreadID) error {
	a.exitCalls++
	return nil
}

func (a *recordingAdapter) Cleanup() error { return nil }

func TestScenario3TransitionSuccess(t *testing.T) {
	matrix := NewTransitionMatrix()
	matrix.Allow(LayerInterpreterLock, LayerEventLoop)
	mgr := NewManager(matrix)

	py := &recordingAdapter{layer: LayerInterpreterLock}
	node := &recordingAdapter{layer: LayerEventLoop}
	_ = mgr.RegisterAdapter(LayerInterpreterLock, py)
	_ = mgr.RegisterAdapter(LayerEventLoop, node)

	orch := NewOrchestrator(mgr)
	if err := orch.Orchestrate(1, LayerInterpreterLock, LayerEventLoop); err != nil {
		t.Fatalf("orchestrate: %v", err)
	}
	if py.exitCalls != 1 {
		t.Fatalf("python exit calls = %d, want 1", py.exitCalls)
	}
	if len(node.enterCalls) != 1 || node.enterCalls[0] != LayerEventLoop {
		t.Fatalf("node enter calls = %v, want [EventLoop]", node.enterCalls)
	}
}

func TestScenario4TransitionRollback(t *testing.T) {
	matrix := NewTransitionMatrix()
	matrix.Allow(LayerInterpreterLock, LayerEventLoop)
	mgr := NewManager(matrix)

	py := &recordingAdapter{layer: LayerInterpreterLock}
	node := &recordingAdapter{layer: LayerEventLoop, failEnterAt: LayerEventLoop, failOnce: true}
	_ = mgr.RegisterAdapter(LayerInterpreterLock, py)
	_ = mgr.RegisterAdapter(LayerEventLoop, node)

	orch := NewOrchestrator(mgr)
	err := orch.Orchestrate(1, LayerInterpreterLock, LayerEventLoop)
	ce, ok := err.(*errs.CoreError)
	if !ok || ce.Code != errs.CodeCancelled {
		t.Fatalf("err = %v, want Cancelled", err)
	}
	if py.exitCalls != 1 {
		t.Fatalf("python exit calls = %d, want 1", py.exitCalls)
	}
	if len(py.enterCalls) != 1 || py.enterCalls[0] != LayerInterpreterLock {
		t.Fatalf("python enter calls = %v, want restoration re-enter", py.enterCalls)
	}
}

func TestDenyAllDefault(t *testing.T) {
	mgr := NewManager(nil)
	py := &recordingAdapter{layer: LayerInterpreterLock}
	node := &recordingAdapter{layer: LayerEventLoop}
	_ = mgr.RegisterAdapter(LayerInterpreterLock, py)
	_ = mgr.RegisterAdapter(LayerEventLoop, node)

	orch := NewOrchestrator(mgr)
	err := orch.Orchestrate(1, LayerInterpreterLock, LayerEventLoop)
	if err == nil {
		t.Fatal("expected transition to be denied by default")
	}
	if py.exitCalls != 0 {
		t.Fatalf("exit should not run when transition denied: got %d calls", py.exitCalls)
	}
}

func TestRefCountedReleaseCleansUpAtZero(t *testing.T) {
	cleaned := false
	r := NewRefCounted(&cleanupTrackingAdapter{onCleanup: func() { cleaned = true }})
	r.Acquire()
	if destroyed, _ := r.Release(); destroyed {
		t.Fatal("should not destroy while refs remain")
	}
	if destroyed, _ := r.Release(); !destroyed {
		t.Fatal("should destroy when refs reach zero")
	}
	if !cleaned {
		t.Fatal("cleanup was not invoked")
	}
}

type cleanupTrackingAdapter struct {
	onCleanup func()
}

func (a *cleanupTrackingAdapter) Init(mgr *Manager) error                           { return nil }
func (a *cleanupTrackingAdapter) EnterLayer(threadID ThreadID, target Layer) error  { return nil }
func (a *cleanupTrackingAdapter) ExitLayer(threadID ThreadID) error                 { return nil }
func (a *cleanupTrackingAdapter) Cleanup() error                                    { a.onCleanup(); return nil }
