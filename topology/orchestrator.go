package topology

import "github.com/bridgemesh/core/errs"

// Orchestrator runs the §4.2 transition algorithm: resolve both adapters,
// exit the source, enter the destination, and roll back the source on
// destination failure.
type Orchestrator struct {
	mgr *Manager
}

// NewOrchestrator binds an orchestrator to a manager.
func NewOrchestrator(mgr *Manager) *Orchestrator {
	return &Orchestrator{mgr: mgr}
}

// Orchestrate moves threadID from "from" to "to". On success, the
// destination adapter's EnterLayer ran exactly once and the source
// adapter's ExitLayer ran exactly once. On destination failure after a
// successful exit, the source adapter's EnterLayer is re-invoked to restore
// it before the original error is returned; if restoration itself fails,
// the error is promoted to Fatal and the topology is reported corrupt via
// a TopologyCorrupt error wrapping the original one.
func (o *Orchestrator) Orchestrate(threadID ThreadID, from, to Layer) error {
	srcRef, ok := o.mgr.Get(from)
	if !ok {
		return errs.New("topology", errs.CodeUnknownLayer, "unknown source layer")
	}
	dstRef, ok := o.mgr.Get(to)
	if !ok {
		return errs.New("topology", errs.CodeUnknownLayer, "unknown destination layer")
	}

	if !o.validateTransition(srcRef.Adapter, from, to) {
		return errs.New("topology", errs.CodeInvalidParameter, "transition not permitted by topology.transitions")
	}

	if err := srcRef.ExitLayer(threadID); err != nil {
		return err
	}

	if err := dstRef.EnterLayer(threadID, to); err != nil {
		// Destination failed after the source already exited: restore the
		// source by re-entering it, then surface the original error.
		if restoreErr := srcRef.EnterLayer(threadID, from); restoreErr != nil {
			return errs.Wrap("topology", errs.CodeTopologyCorrupt,
				"rollback failed after failed transition; thread topology state is corrupt", err).
				WithSeverity(errs.SeverityFatal)
		}
		return err
	}
	return nil
}

// validateTransition consults the source adapter's override if present,
// otherwise the global transition matrix.
func (o *Orchestrator) validateTransition(src Adapter, from, to Layer) bool {
	if v, ok := src.(TransitionValidator); ok {
		return v.ValidateTransition(from, to)
	}
	return o.mgr.Matrix().IsAllowed(from, to)
}
