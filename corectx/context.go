package corectx

import (
	"sync"

	"github.com/bridgemesh/core/audit"
	"github.com/bridgemesh/core/corectx/configbind"
	"github.com/bridgemesh/core/corectx/logging"
	"github.com/bridgemesh/core/errs"
	"github.com/bridgemesh/core/ffi"
	"github.com/bridgemesh/core/identifier"
	"github.com/bridgemesh/core/policy"
	"github.com/bridgemesh/core/resource"
	"github.com/bridgemesh/core/topology"
)

// Context is the process-wide root described for the core context: it owns
// the service registry, the error tree, and the lifetime of every bridge and
// adapter built on top of it. Exactly one Context exists per process; it is
// created first and destroyed last, matching the composition order Identity
// → Policy → Resource Manager → Bridge → Registry → Gateway → Adapter →
// Orchestrator → Error System → Core Context.
type Context struct {
	cfg Config

	mu         sync.Mutex
	properties Properties
	services   *ServiceRegistry

	Identities *policy.IdentityStore
	Policies   *policy.Store
	Errors     *errs.Tree
	Gateway    *ffi.Gateway
	Topology   *topology.Manager
	Orchestr   *topology.Orchestrator
	Audit      *audit.Chain

	limiterMu sync.Mutex
	limiters  map[string]*resource.Limiter

	defaultIsolation errs.IsolationLevel

	// requireAuth, enforceEncryption, and identifierFormat are the security.*
	// and identifier.* configuration options, applied from ApplyConfigTree
	// and read back by Call and the identifier-rendering call sites.
	requireAuth       bool
	enforceEncryption bool
	identifierFormat  identifier.Format

	started bool
	closed  bool
}

// New builds a Context and wires the standard dependency graph. The gateway
// is not yet Initialize()'d; call Start to bring the context up.
func New(cfg Config) *Context {
	identities := policy.NewIdentityStore()
	matrix := topology.NewTransitionMatrix()
	mgr := topology.NewManager(matrix)

	return &Context{
		cfg:        cfg,
		properties: cfg.Properties.Clone(),
		services:   NewServiceRegistry(),
		Identities: identities,
		Policies:   policy.NewStore(identities),
		Errors:     errs.NewTree(),
		Gateway:    ffi.NewGateway(cfg.BridgeCapacity),
		Topology:   mgr,
		Orchestr:   topology.NewOrchestrator(mgr),
		Audit:      audit.NewChain(audit.NewSinkAspect(audit.NewLogSink(cfg.Logger, identifier.FormatUUIDUpper), 100)),
		limiters:   make(map[string]*resource.Limiter),
	}
}

// UseAuditSinks replaces the context's audit chain with one dispatching to
// the given sinks (e.g. adding an audit.MQTTSink alongside the default log
// sink), dispatched in the order given (orders 100, 101, ...).
func (c *Context) UseAuditSinks(sinks ...audit.Sink) {
	aspects := make([]audit.Aspect, 0, len(sinks))
	for i, s := range sinks {
		aspects = append(aspects, audit.NewSinkAspect(s, 100+i))
	}
	c.Audit = audit.NewChain(aspects...)
}

// ApplyConfigTree folds a decoded configbind.Tree into the context: the
// topology transition matrix; bridge-registry capacity and per-language
// enablement; security gates consulted by Call; per-component resource
// quotas and their isolation level; the error hierarchy's per-component
// propagation modes; and the default identifier rendering. This is the
// production counterpart to configbind.Decode — see cmd/gatewayctl's
// --config flag for the call site outside tests.
func (c *Context) ApplyConfigTree(tree configbind.Tree) {
	for pair, allowed := range tree.Topology.Transitions {
		if !allowed {
			continue
		}
		from, to, ok := splitTransition(pair)
		if !ok {
			continue
		}
		c.Topology.Matrix().Allow(from, to)
	}

	if tree.Bridges.Capacity > 0 {
		c.Gateway.SetCapacity(tree.Bridges.Capacity)
	}
	if len(tree.Bridges.Enabled) > 0 {
		c.Gateway.SetEnabledLanguages(tree.Bridges.Enabled)
	}

	c.requireAuth = tree.Security.RequireAuth
	c.enforceEncryption = tree.Security.EnforceEncryption
	c.defaultIsolation = errs.IsolationLevel(resource.ParseIsolationLevel(tree.Security.IsolationLevel))

	for component, opts := range tree.Resource {
		limiter := c.Limiter(component, opts.MemoryQuota, opts.CPUQuota, opts.IOQuota)
		limiter.SetIsolation(resource.ParseIsolationLevel(tree.Security.IsolationLevel))
	}

	for component, mode := range tree.Error.Propagation {
		c.Errors.Register(errs.Component{
			Name:      component,
			Parent:    "core",
			Isolation: c.defaultIsolation,
			State:     errs.StateReady,
		}, parsePropagationMode(mode), nil)
	}

	if format, ok := identifier.ParseFormat(tree.Identifier.DefaultFormat); ok {
		c.identifierFormat = format
		c.UseAuditSinks(audit.NewLogSink(c.cfg.Logger, format))
	}
}

// DefaultIsolation returns the isolation level most recently applied from
// configuration (security.isolation_level), IsolationNone if
// ApplyConfigTree was never called.
func (c *Context) DefaultIsolation() errs.IsolationLevel {
	return c.defaultIsolation
}

// RequireAuth reports whether Call rejects calls whose CallContext is not
// marked Authenticated (security.require_auth).
func (c *Context) RequireAuth() bool { return c.requireAuth }

// EnforceEncryption reports whether Call rejects calls whose CallContext is
// not marked Secure (security.enforce_encryption).
func (c *Context) EnforceEncryption() bool { return c.enforceEncryption }

// IdentifierFormat returns the default rendering configured for new
// identifiers (identifier.default_format), identifier.FormatUUIDUpper if
// never configured.
func (c *Context) IdentifierFormat() identifier.Format { return c.identifierFormat }

func parsePropagationMode(s string) errs.PropagationMode {
	switch s {
	case "upward":
		return errs.PropagateUpward
	case "downward":
		return errs.PropagateDownward
	case "bidirectional":
		return errs.PropagateBidirectional
	default:
		return errs.PropagateNone
	}
}

func splitTransition(pair string) (from, to topology.Layer, ok bool) {
	for i := 0; i+1 < len(pair); i++ {
		if pair[i] == '-' && pair[i+1] == '>' {
			return parseLayer(pair[:i]), parseLayer(pair[i+2:]), true
		}
	}
	return 0, 0, false
}

func parseLayer(s string) topology.Layer {
	switch s {
	case "interpreter-lock":
		return topology.LayerInterpreterLock
	case "event-loop":
		return topology.LayerEventLoop
	case "green-thread":
		return topology.LayerGreenThread
	default:
		return -1
	}
}

// Start initializes the gateway. Calling Start twice returns
// AlreadyInitialized from the gateway itself.
func (c *Context) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.Gateway.Initialize(); err != nil {
		return err
	}
	c.started = true
	return nil
}

// Logger returns the context's configured logger.
func (c *Context) Logger() logging.Logger { return c.cfg.Logger }

// Limiter returns the resource limiter for component, creating one with the
// given quotas on first use. Subsequent calls ignore the quota arguments and
// return the existing limiter, since quotas are fixed at component
// registration time. A newly created limiter's threshold callback emits the
// §6 resource-threshold trace point through the context's audit chain.
func (c *Context) Limiter(component string, memoryQuota, cpuQuota, ioQuota int64) *resource.Limiter {
	c.limiterMu.Lock()
	defer c.limiterMu.Unlock()
	if l, ok := c.limiters[component]; ok {
		return l
	}
	l := resource.NewLimiter(component, memoryQuota, cpuQuota, ioQuota)
	l.OnThreshold(func(kind resource.Kind, current, limit int64) {
		event, err := audit.NewEvent(audit.PointResourceThreshold, map[string]any{
			"component": component,
			"current":   current,
			"limit":     limit,
		})
		if err == nil {
			c.Audit.RunAfter(event)
		}
	})
	c.limiters[component] = l
	return l
}

// RegisterService exposes handle under name through the service registry.
func (c *Context) RegisterService(name string, handle any) error {
	return c.services.Register(name, handle)
}

// Service resolves a previously registered handle by name.
func (c *Context) Service(name string) (any, bool) {
	return c.services.Lookup(name)
}

// Properties returns a snapshot of the global property bag.
func (c *Context) Properties() Properties {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.properties.Clone()
}

// SetProperty sets a single global property.
func (c *Context) SetProperty(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.properties[key] = value
}

// Shutdown tears the context down: bridges are cleaned up (in reverse
// registration order, via the bridge registry) before anything else, then
// the aggregated errors raised during the process lifetime are returned.
// Calling Shutdown twice is a no-op returning nil.
func (c *Context) Shutdown() []*errs.CoreError {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	if err := c.Gateway.Cleanup(); err != nil {
		raised := errs.Wrap("corectx", errs.CodeInternalInvariantViolated, "gateway cleanup failed", err)
		c.Errors.Raise("corectx", errs.CodeInternalInvariantViolated, raised)

		event, evErr := audit.NewEvent(audit.PointErrorRaised, map[string]any{
			"component": "corectx",
			"code":      string(raised.Code),
			"severity":  raised.Severity.String(),
		})
		if evErr == nil {
			c.Audit.RunOnError(event)
		}
	}
	return c.Errors.Aggregate()
}
