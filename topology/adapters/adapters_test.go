package adapters

import (
	"testing"

	"github.com/bridgemesh/core/errs"
	"github.com/bridgemesh/core/topology"
)

func TestEventLoopAdapterEnterExit(t *testing.T) {
	woke := false
	a := NewEventLoopAdapter("", func() { woke = true })
	if err := a.Init(nil); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := a.EnterLayer(1, topology.LayerEventLoop); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if !woke {
		t.Fatal("expected onWake to fire")
	}
	if err := a.ExitLayer(1); err != nil {
		t.Fatalf("exit: %v", err)
	}
}

func TestEventLoopAdapterPrimesScript(t *testing.T) {
	a := NewEventLoopAdapter("globalThis.ready = true", nil)
	if err := a.EnterLayer(1, topology.LayerEventLoop); err != nil {
		t.Fatalf("enter: %v", err)
	}
}

func TestInterpreterLockAdapterEvaluatesConditionWhileHeld(t *testing.T) {
	a := NewInterpreterLockAdapter()
	if err := a.EnterLayer(1, topology.LayerInterpreterLock); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if err := a.CompileCondition("gt", "msg.value > 10"); err != nil {
		t.Fatalf("compile: %v", err)
	}
	ok, err := a.EvalCondition("gt", map[string]any{"msg": map[string]any{"value": 20}})
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !ok {
		t.Fatal("expected condition to evaluate true")
	}
	if err := a.ExitLayer(1); err != nil {
		t.Fatalf("exit: %v", err)
	}
}

func TestInterpreterLockAdapterUnknownCondition(t *testing.T) {
	a := NewInterpreterLockAdapter()
	if _, err := a.EvalCondition("missing", nil); err == nil {
		t.Fatal("expected error for unknown condition")
	}
}

func TestInterpreterLockAdapterCompileIsIdempotent(t *testing.T) {
	a := NewInterpreterLockAdapter()
	if err := a.CompileCondition("c", "1 == 1"); err != nil {
		t.Fatalf("compile: %v", err)
	}
	if err := a.CompileCondition("c", "1 == 1"); err != nil {
		t.Fatalf("recompile: %v", err)
	}
}

func TestGreenThreadAdapterBindsOnFirstEnter(t *testing.T) {
	a := NewGreenThreadAdapter()
	if err := a.EnterLayer(7, topology.LayerGreenThread); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if err := a.ExitLayer(7); err != nil {
		t.Fatalf("exit from bound thread: %v", err)
	}
}

func TestGreenThreadAdapterRejectsForeignThread(t *testing.T) {
	a := NewGreenThreadAdapter()
	if err := a.EnterLayer(7, topology.LayerGreenThread); err != nil {
		t.Fatalf("enter: %v", err)
	}
	err := a.EnterLayer(8, topology.LayerGreenThread)
	ce, ok := err.(*errs.CoreError)
	if !ok || ce.Code != errs.CodeThreadAffinityViolation {
		t.Fatalf("err = %v, want ThreadAffinityViolation", err)
	}
}

func TestGreenThreadAdapterExitRejectsForeignThread(t *testing.T) {
	a := NewGreenThreadAdapter()
	if err := a.EnterLayer(7, topology.LayerGreenThread); err != nil {
		t.Fatalf("enter: %v", err)
	}
	err := a.ExitLayer(9)
	ce, ok := err.(*errs.CoreError)
	if !ok || ce.Code != errs.CodeThreadAffinityViolation {
		t.Fatalf("err = %v, want ThreadAffinityViolation", err)
	}
}

func TestGreenThreadAdapterRebindsAfterCleanup(t *testing.T) {
	a := NewGreenThreadAdapter()
	if err := a.EnterLayer(7, topology.LayerGreenThread); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if err := a.Cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if err := a.EnterLayer(42, topology.LayerGreenThread); err != nil {
		t.Fatalf("rebind enter: %v", err)
	}
}
