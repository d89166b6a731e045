package ffi

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/bridgemesh/core/identifier"
)

// CallContext is the per-invocation record of §3: carries caller identity,
// target language/function, argument payload, timeout/deadline/cancellation
// (via the embedded context.Context, the idiomatic replacement for the
// source's hand-rolled deadline/cancellation-flag pair), a correlation
// identifier, and a parent pointer for nested calls.
type CallContext struct {
	ctx context.Context

	CallerIdentity string
	TargetLanguage string
	TargetFunction string
	Argument       Value
	Correlation    identifier.ID
	Parent         *CallContext

	// Authenticated and Secure record whether the caller already completed
	// the challenge-response protocol (policy.Authenticate) and arrived
	// over an encrypted channel, respectively. The gateway itself performs
	// neither check; security.require_auth/security.enforce_encryption
	// gate on these flags at the corectx.Context.Call boundary.
	Authenticated bool
	Secure        bool

	cancelled atomic.Bool
}

// NewCallContext creates a root call context bound to ctx, which carries the
// deadline and cancellation signal.
func NewCallContext(ctx context.Context, callerIdentity, language, function string, arg Value, correlation identifier.ID) *CallContext {
	return &CallContext{
		ctx:            ctx,
		CallerIdentity: callerIdentity,
		TargetLanguage: language,
		TargetFunction: function,
		Argument:       arg,
		Correlation:    correlation,
	}
}

// Nested creates a child call context sharing the parent's deadline/cancel
// signal, with a new correlation identifier and a parent pointer.
func (c *CallContext) Nested(language, function string, arg Value, correlation identifier.ID) *CallContext {
	return &CallContext{
		ctx:            c.ctx,
		CallerIdentity: c.CallerIdentity,
		TargetLanguage: language,
		TargetFunction: function,
		Argument:       arg,
		Correlation:    correlation,
		Parent:         c,
	}
}

// MarkAuthenticated records that the caller already passed the
// challenge-response protocol, satisfying security.require_auth.
func (c *CallContext) MarkAuthenticated() *CallContext {
	c.Authenticated = true
	return c
}

// MarkSecure records that the call arrived over an encrypted channel,
// satisfying security.enforce_encryption.
func (c *CallContext) MarkSecure() *CallContext {
	c.Secure = true
	return c
}

// Context returns the underlying context.Context.
func (c *CallContext) Context() context.Context { return c.ctx }

// Deadline reports the call's deadline, if any.
func (c *CallContext) Deadline() (time.Time, bool) { return c.ctx.Deadline() }

// Cancel marks this call context cancelled. Bridges check this at
// well-defined yield points before and after delegating to host code.
func (c *CallContext) Cancel() { c.cancelled.Store(true) }

// Cancelled reports whether Cancel was called or the underlying context was
// cancelled/deadline-exceeded.
func (c *CallContext) Cancelled() bool {
	if c.cancelled.Load() {
		return true
	}
	select {
	case <-c.ctx.Done():
		return true
	default:
		return false
	}
}

// Expired reports whether the call's deadline has passed - used at yield
// points to fail with Timeout "the next time a yield point is reached"
// rather than via a sleep-then-check loop.
func (c *CallContext) Expired() bool {
	if dl, ok := c.Deadline(); ok {
		return time.Now().After(dl)
	}
	return false
}
