package policy

import (
	"testing"
	"time"

	"github.com/bridgemesh/core/errs"
)

type fixedVerifier struct {
	expiry   time.Time
	identity string
	err      error
}

func (v fixedVerifier) Verify(challenge Challenge, response []byte, token string) (time.Time, string, error) {
	if v.err != nil {
		return time.Time{}, "", v.err
	}
	return v.expiry, v.identity, nil
}

func TestIssueChallengeProducesDistinctNonces(t *testing.T) {
	a, err := IssueChallenge()
	if err != nil {
		t.Fatalf("issue challenge: %v", err)
	}
	b, err := IssueChallenge()
	if err != nil {
		t.Fatalf("issue challenge: %v", err)
	}
	if len(a.Nonce) != 32 {
		t.Fatalf("nonce length = %d, want 32", len(a.Nonce))
	}
	if ConstantTimeEqual(a.Nonce, b.Nonce) {
		t.Fatal("two independently issued challenges should not collide")
	}
}

func TestConstantTimeEqual(t *testing.T) {
	if !ConstantTimeEqual([]byte("abc"), []byte("abc")) {
		t.Fatal("expected equal byte slices to compare equal")
	}
	if ConstantTimeEqual([]byte("abc"), []byte("abd")) {
		t.Fatal("expected differing byte slices to compare unequal")
	}
}

func TestAuthenticateSucceeds(t *testing.T) {
	challenge, err := IssueChallenge()
	if err != nil {
		t.Fatalf("issue challenge: %v", err)
	}
	verifier := fixedVerifier{expiry: time.Now().Add(time.Hour), identity: "trent"}

	result, err := Authenticate(verifier, challenge, []byte("proof"), "tok", []string{"read"}, []string{"reader"})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if !result.Authenticated || result.Identity != "trent" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	challenge, _ := IssueChallenge()
	verifier := fixedVerifier{expiry: time.Now().Add(-time.Minute), identity: "trent"}

	_, err := Authenticate(verifier, challenge, []byte("proof"), "tok", nil, nil)
	if err == nil {
		t.Fatal("expected TokenExpired error")
	}
	var core *errs.CoreError
	if ce, ok := err.(*errs.CoreError); ok {
		core = ce
	}
	if core == nil || core.Code != errs.CodeTokenExpired {
		t.Fatalf("expected CodeTokenExpired, got %v", err)
	}
}

func TestAuthenticatePropagatesVerifierFailure(t *testing.T) {
	challenge, _ := IssueChallenge()
	verifier := fixedVerifier{err: errs.New("policy", errs.CodeAuthenticationFailed, "bad proof")}

	_, err := Authenticate(verifier, challenge, []byte("proof"), "tok", nil, nil)
	if err == nil {
		t.Fatal("expected wrapped verifier failure")
	}
}

func TestNewAuthResultEnforcesCapacities(t *testing.T) {
	tooManyScopes := make([]string, 17)
	if _, err := NewAuthResult("trent", tooManyScopes, nil, time.Now()); err == nil {
		t.Fatal("expected TooManyScopes error")
	}
	tooManyRoles := make([]string, 9)
	if _, err := NewAuthResult("trent", nil, tooManyRoles, time.Now()); err == nil {
		t.Fatal("expected TooManyRoles error")
	}
}
