package adapters

import (
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/bridgemesh/core/errs"
	"github.com/bridgemesh/core/topology"
)

// ticket is the interpreter-lock reference stored in the adapter while
// held, per §4.2 ("stores the resulting ticket in the adapter").
type ticket struct {
	owner topology.ThreadID
}

// InterpreterLockAdapter serializes concurrent calls at a single mutex,
// modeling the interpreter global lock of §4.2. It compiles and caches expr
// programs (mirroring components/transform/expr_filter_node.go's compiled-
// program cache) to stand in for dispatching into guest interpreter code
// while holding the lock.
type InterpreterLockAdapter struct {
	lock   sync.Mutex
	ticket *ticket

	programMu sync.Mutex
	programs  map[string]*vm.Program
}

// NewInterpreterLockAdapter creates an adapter with an empty program cache.
func NewInterpreterLockAdapter() *InterpreterLockAdapter {
	return &InterpreterLockAdapter{programs: make(map[string]*vm.Program)}
}

func (a *InterpreterLockAdapter) Init(mgr *topology.Manager) error { return nil }

// EnterLayer acquires the interpreter lock before running the transition
// and stores the resulting ticket; concurrent calls serialize here.
func (a *InterpreterLockAdapter) EnterLayer(threadID topology.ThreadID, target topology.Layer) error {
	a.lock.Lock()
	a.ticket = &ticket{owner: threadID}
	return nil
}

// ExitLayer releases the ticket acquired in EnterLayer. Idempotent: calling
// without a held ticket is a safe no-op, as required at error unwind.
func (a *InterpreterLockAdapter) ExitLayer(threadID topology.ThreadID) error {
	if a.ticket == nil {
		return nil
	}
	a.ticket = nil
	a.lock.Unlock()
	return nil
}

func (a *InterpreterLockAdapter) Cleanup() error { return nil }

// CompileCondition compiles and caches an expr-lang boolean expression,
// used by guest-side dispatch decisions made while the lock is held.
func (a *InterpreterLockAdapter) CompileCondition(name, source string) error {
	a.programMu.Lock()
	defer a.programMu.Unlock()
	if _, ok := a.programs[name]; ok {
		return nil
	}
	program, err := expr.Compile(source, expr.AsBool())
	if err != nil {
		return errs.Wrap("topology.interpreterlock", errs.CodeInvalidParameter, "condition compile failed", err)
	}
	a.programs[name] = program
	return nil
}

// EvalCondition runs a previously compiled condition against env. Must be
// called while the lock is held (i.e. between EnterLayer and ExitLayer).
func (a *InterpreterLockAdapter) EvalCondition(name string, env map[string]any) (bool, error) {
	a.programMu.Lock()
	program, ok := a.programs[name]
	a.programMu.Unlock()
	if !ok {
		return false, errs.New("topology.interpreterlock", errs.CodeInvalidParameter, "unknown condition: "+name)
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return false, errs.Wrap("topology.interpreterlock", errs.CodeBridgeCallFailed, "condition eval failed", err)
	}
	result, _ := out.(bool)
	return result, nil
}

var _ topology.Adapter = (*InterpreterLockAdapter)(nil)
