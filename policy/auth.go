package policy

import (
	"crypto/rand"
	"crypto/subtle"
	"time"

	"github.com/bridgemesh/core/errs"
)

const (
	maxScopes = 16
	maxRoles  = 8
)

// AuthResult is bounded by the capacities above; exceeding them fails
// authentication rather than silently truncating.
type AuthResult struct {
	Authenticated bool
	Identity      string
	Scopes        []string
	Roles         []string
	TokenExpiry   time.Time
	Err           error
}

// NewAuthResult builds a bounded AuthResult, returning TooManyScopes or
// TooManyRoles if the inputs exceed capacity.
func NewAuthResult(identity string, scopes, roles []string, expiry time.Time) (AuthResult, error) {
	if len(scopes) > maxScopes {
		return AuthResult{}, errs.New("policy", errs.CodeTooManyScopes, "scope count exceeds capacity")
	}
	if len(roles) > maxRoles {
		return AuthResult{}, errs.New("policy", errs.CodeTooManyRoles, "role count exceeds capacity")
	}
	return AuthResult{
		Authenticated: true,
		Identity:      identity,
		Scopes:        append([]string(nil), scopes...),
		Roles:         append([]string(nil), roles...),
		TokenExpiry:   expiry,
	}, nil
}

// Challenge is a connection-level authentication challenge.
type Challenge struct {
	Nonce []byte
}

// IssueChallenge issues a cryptographically random challenge, per §4.3
// ("cryptographically secure source mandatory").
func IssueChallenge() (Challenge, error) {
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return Challenge{}, errs.Wrap("policy", errs.CodeInternalInvariantViolated, "challenge generation failed", err)
	}
	return Challenge{Nonce: nonce}, nil
}

// TokenVerifier binds a connection response to a presented token and
// derives the authentication result's expiry from it. External collaborators
// supply the concrete token scheme; this interface is the core's boundary.
type TokenVerifier interface {
	// Verify checks that response is the expected proof for challenge bound
	// to token, and returns the token's expiry on success.
	Verify(challenge Challenge, response []byte, token string) (expiry time.Time, identity string, err error)
}

// Authenticate runs the challenge-response protocol against a verifier and
// produces a bounded AuthResult.
func Authenticate(verifier TokenVerifier, challenge Challenge, response []byte, token string, scopes, roles []string) (AuthResult, error) {
	expiry, identity, err := verifier.Verify(challenge, response, token)
	if err != nil {
		return AuthResult{}, errs.Wrap("policy", errs.CodeAuthenticationFailed, "challenge-response verification failed", err)
	}
	if time.Now().After(expiry) {
		return AuthResult{}, errs.New("policy", errs.CodeTokenExpired, "token already expired")
	}
	return NewAuthResult(identity, scopes, roles, expiry)
}

// ConstantTimeEqual compares two byte slices in constant time, used by
// TokenVerifier implementations to avoid timing side channels.
func ConstantTimeEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
