package corectx

import (
	"context"
	"testing"

	"github.com/bridgemesh/core/corectx/configbind"
	"github.com/bridgemesh/core/errs"
	"github.com/bridgemesh/core/ffi"
	"github.com/bridgemesh/core/identifier"
	"github.com/bridgemesh/core/resource"
)

func TestNewWiresGateway(t *testing.T) {
	cfg, err := NewConfig(WithBridgeCapacity(4))
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	ctx := New(cfg)
	if err := ctx.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := ctx.Gateway.RegisterBridge(ffi.NewFunc("go", func(cc *ffi.CallContext, fn string, arg ffi.Value) (ffi.Value, error) {
		return arg, nil
	})); err != nil {
		t.Fatalf("register bridge: %v", err)
	}
	if ctx.Gateway.BridgeCount() != 1 {
		t.Fatalf("bridge count = %d, want 1", ctx.Gateway.BridgeCount())
	}
}

func TestServiceRegistryRoundtrip(t *testing.T) {
	cfg, _ := NewConfig()
	ctx := New(cfg)
	if err := ctx.RegisterService("metrics", 42); err != nil {
		t.Fatalf("register: %v", err)
	}
	v, ok := ctx.Service("metrics")
	if !ok || v.(int) != 42 {
		t.Fatalf("service lookup = %v, %v", v, ok)
	}
	if err := ctx.RegisterService("metrics", 99); err != nil {
		t.Fatalf("re-registering under a new handle should replace, not error: %v", err)
	}
	v, ok = ctx.Service("metrics")
	if !ok || v.(int) != 99 {
		t.Fatalf("expected re-registration to replace the handle, got %v, %v", v, ok)
	}
}

func TestApplyConfigTreeWiresTopologyAndResource(t *testing.T) {
	cfg, _ := NewConfig()
	ctx := New(cfg)
	tree := configbind.Tree{
		Topology: configbind.TopologyOptions{
			Transitions: map[string]bool{"interpreter-lock->event-loop": true},
		},
		Security: configbind.SecurityOptions{
			IsolationLevel:    "process-level",
			RequireAuth:       true,
			EnforceEncryption: true,
		},
		Bridges: configbind.BridgeOptions{
			Capacity: 1,
			Enabled:  map[string]bool{"go": true},
		},
		Resource: map[string]configbind.ResourceOptions{
			"gateway": {MemoryQuota: 1024, CPUQuota: 10, IOQuota: 10},
		},
		Error: configbind.ErrorOptions{
			Propagation: map[string]string{"gateway": "upward"},
		},
		Identifier: configbind.IdentifierOptions{DefaultFormat: "compact"},
	}
	ctx.ApplyConfigTree(tree)

	if !ctx.Topology.Matrix().IsAllowed(0, 1) {
		t.Fatal("expected interpreter-lock->event-loop to be allowed")
	}
	l := ctx.Limiter("gateway", 0, 0, 0)
	snap := l.Snapshot(0)
	if snap.Quota != 1024 {
		t.Fatalf("quota = %d, want 1024", snap.Quota)
	}
	if l.Isolation() != resource.IsolationProcess {
		t.Fatalf("limiter isolation = %v, want process-level", l.Isolation())
	}
	if ctx.DefaultIsolation() != errs.IsolationProcess {
		t.Fatalf("default isolation = %v, want process-level", ctx.DefaultIsolation())
	}
	if state, ok := ctx.Errors.ComponentState("gateway"); !ok || state != errs.StateReady {
		t.Fatalf("expected gateway component registered and ready, got %v, %v", state, ok)
	}

	if !ctx.RequireAuth() || !ctx.EnforceEncryption() {
		t.Fatal("expected security.require_auth and security.enforce_encryption to be applied")
	}
	if ctx.IdentifierFormat() != identifier.FormatCompact {
		t.Fatalf("identifier format = %v, want FormatCompact", ctx.IdentifierFormat())
	}

	_ = ctx.Start()
	if err := ctx.RegisterBridge(ffi.NewFunc("go", func(cc *ffi.CallContext, fn string, arg ffi.Value) (ffi.Value, error) {
		return arg, nil
	})); err != nil {
		t.Fatalf("expected go bridge registration to be enabled: %v", err)
	}
	if err := ctx.RegisterBridge(ffi.NewFunc("echo", func(cc *ffi.CallContext, fn string, arg ffi.Value) (ffi.Value, error) {
		return arg, nil
	})); err == nil {
		t.Fatal("expected echo bridge registration to be rejected (not in bridges.<language>.enabled)")
	}

	id, _ := identifier.New()
	cc := ffi.NewCallContext(context.Background(), "caller", "go", "echo", ffi.Value{}, id)
	if _, err := ctx.Call(cc); err == nil {
		t.Fatal("expected Call to reject an unauthenticated, insecure call")
	}
	if _, err := ctx.Call(cc.MarkAuthenticated().MarkSecure()); err != nil {
		t.Fatalf("expected an authenticated, secure call to succeed: %v", err)
	}
}

func TestPropertiesSnapshotIsIndependent(t *testing.T) {
	cfg, _ := NewConfig(WithProperties(Properties{"a": "1"}))
	ctx := New(cfg)
	snap := ctx.Properties()
	snap["a"] = "mutated"
	if ctx.Properties()["a"] != "1" {
		t.Fatal("mutating a snapshot must not affect the context's properties")
	}
	ctx.SetProperty("b", "2")
	if ctx.Properties()["b"] != "2" {
		t.Fatal("expected SetProperty to be visible on next snapshot")
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	cfg, _ := NewConfig()
	ctx := New(cfg)
	_ = ctx.Start()
	first := ctx.Shutdown()
	second := ctx.Shutdown()
	if first == nil {
		t.Fatal("first shutdown should return the aggregated (possibly empty) error slice")
	}
	if second != nil {
		t.Fatal("second shutdown should be a no-op returning nil")
	}
}
