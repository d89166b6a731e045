package corectx

import (
	"github.com/bridgemesh/core/audit"
	"github.com/bridgemesh/core/errs"
	"github.com/bridgemesh/core/ffi"
	"github.com/bridgemesh/core/topology"
)

// RegisterBridge registers b with the gateway, wrapped in the §6
// bridge-registered trace point.
func (c *Context) RegisterBridge(b ffi.Bridge) error {
	err := c.Gateway.RegisterBridge(b)

	fields := map[string]any{"ok": err == nil}
	if b != nil {
		fields["language"] = b.Language()
	}
	event, evErr := audit.NewEvent(audit.PointBridgeRegistered, fields)
	if evErr == nil {
		if err != nil {
			event.Fields["error"] = err.Error()
			c.Audit.RunOnError(event)
		} else {
			c.Audit.RunAfter(event)
		}
	}
	return err
}

// Call runs a gateway call wrapped in the §6 bridge-call-start/end trace
// points, dispatching the configured audit chain around ffi.Gateway.Call.
// It first enforces security.require_auth and security.enforce_encryption
// against cc's Authenticated/Secure flags.
func (c *Context) Call(cc *ffi.CallContext) (ffi.Value, error) {
	startEvent, err := audit.NewEvent(audit.PointBridgeCallStart, map[string]any{
		"language": cc.TargetLanguage,
		"function": cc.TargetFunction,
	})
	if err == nil {
		c.Audit.RunBefore(startEvent)
	}

	result, callErr := c.guardedCall(cc)

	endEvent, evErr := audit.NewEvent(audit.PointBridgeCallEnd, map[string]any{
		"language": cc.TargetLanguage,
		"function": cc.TargetFunction,
		"ok":       callErr == nil,
	})
	if evErr != nil {
		return result, callErr
	}
	if callErr != nil {
		endEvent.Fields["error"] = callErr.Error()
		c.Audit.RunOnError(endEvent)
	} else {
		c.Audit.RunAfter(endEvent)
	}
	return result, callErr
}

// guardedCall applies the security.* gates before delegating to the gateway.
func (c *Context) guardedCall(cc *ffi.CallContext) (ffi.Value, error) {
	if c.requireAuth && !cc.Authenticated {
		return ffi.Value{}, errs.New("corectx", errs.CodeAuthenticationFailed, "call requires an authenticated caller")
	}
	if c.enforceEncryption && !cc.Secure {
		return ffi.Value{}, errs.New("corectx", errs.CodeAuthorizationDenied, "call requires a secure channel")
	}
	return c.Gateway.Call(cc)
}

// Transition runs a topology transition wrapped in the §6 topology-enter and
// topology-exit trace points.
func (c *Context) Transition(threadID topology.ThreadID, from, to topology.Layer) error {
	exitEvent, err := audit.NewEvent(audit.PointTopologyExit, map[string]any{"from": from.String()})
	if err == nil {
		c.Audit.RunBefore(exitEvent)
	}

	transErr := c.Orchestr.Orchestrate(threadID, from, to)

	enterEvent, evErr := audit.NewEvent(audit.PointTopologyEnter, map[string]any{
		"to": to.String(), "ok": transErr == nil,
	})
	if evErr != nil {
		return transErr
	}
	if transErr != nil {
		enterEvent.Fields["error"] = transErr.Error()
		c.Audit.RunOnError(enterEvent)
	} else {
		c.Audit.RunAfter(enterEvent)
	}
	return transErr
}

// Authorize evaluates a policy decision wrapped in the §6 policy-decision
// trace point.
func (c *Context) Authorize(identityName, resource, action string) bool {
	decision := c.Policies.Evaluate(identityName, resource, action)
	event, err := audit.NewEvent(audit.PointPolicyDecision, map[string]any{
		"identity": identityName,
		"resource": resource,
		"action":   action,
		"allowed":  decision.Allowed,
		"reason":   decision.Reason,
	})
	if err == nil {
		if decision.Allowed {
			c.Audit.RunAfter(event)
		} else {
			c.Audit.RunOnError(event)
		}
	}
	return decision.Allowed
}
