package policy

import "testing"

func TestDenyWinsScenario5(t *testing.T) {
	identities := NewIdentityStore()
	if err := identities.Register("alice", "s3cret"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := identities.AssignRole("alice", "reader"); err != nil {
		t.Fatal(err)
	}
	if err := identities.AssignRole("alice", "quarantine"); err != nil {
		t.Fatal(err)
	}

	store := NewStore(identities)
	store.AddPolicy("allow-read", Statement{ResourcePattern: "resource:*", ActionPattern: "read", Effect: EffectAllow})
	store.AddPolicy("deny-all", Statement{ResourcePattern: "resource:*", ActionPattern: "*", Effect: EffectDeny})
	store.AttachPolicy("reader", "allow-read")
	store.AttachPolicy("quarantine", "deny-all")

	d := store.Evaluate("alice", "resource:logs", "read")
	if d.Allowed {
		t.Fatalf("expected deny, got allow (%s)", d.Reason)
	}
}

func TestDefaultDenyWithNoMatchingStatement(t *testing.T) {
	identities := NewIdentityStore()
	_ = identities.Register("bob", "pw")
	_ = identities.AssignRole("bob", "reader")

	store := NewStore(identities)
	store.AddPolicy("allow-read", Statement{ResourcePattern: "resource:*", ActionPattern: "read", Effect: EffectAllow})
	store.AttachPolicy("reader", "allow-read")

	d := store.Evaluate("bob", "resource:logs", "write")
	if d.Allowed {
		t.Fatal("expected default deny for non-matching action")
	}
}

func TestDeactivatedIdentityDenied(t *testing.T) {
	identities := NewIdentityStore()
	_ = identities.Register("carol", "pw")
	_ = identities.AssignRole("carol", "reader")
	_ = identities.Deactivate("carol")

	store := NewStore(identities)
	store.AddPolicy("allow-all", Statement{ResourcePattern: "*", ActionPattern: "*", Effect: EffectAllow})
	store.AttachPolicy("reader", "allow-all")

	d := store.Evaluate("carol", "resource:logs", "read")
	if d.Allowed {
		t.Fatal("expected deny for deactivated identity")
	}
}

func TestVerifyPasswordRoundTrip(t *testing.T) {
	identities := NewIdentityStore()
	if err := identities.Register("dave", "hunter2"); err != nil {
		t.Fatal(err)
	}
	if err := identities.VerifyPassword("dave", "hunter2"); err != nil {
		t.Fatalf("verify correct password: %v", err)
	}
	if err := identities.VerifyPassword("dave", "wrong"); err == nil {
		t.Fatal("expected AuthenticationFailed for wrong password")
	}
}
