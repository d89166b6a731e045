// Package policy implements the zero-trust policy and identity layer: per-call
// authentication, scope/role authorization with deny-wins evaluation, and
// connection-level challenge-response auth.
package policy

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"sync"

	"golang.org/x/crypto/argon2"

	"github.com/bridgemesh/core/errs"
)

// Argon2id parameters for password hashing (§4.3 resolved open question).
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16
)

// Identity is a registered principal. Passwords are never stored in
// plaintext; only Hash and Salt are retained.
type Identity struct {
	Name      string
	Hash      []byte
	Salt      []byte
	Roles     []string
	Active    bool
}

// IdentityStore manages identities, grounded on the teacher's RWMutex-map
// registry idiom (engine/registry.go).
type IdentityStore struct {
	mu         sync.RWMutex
	identities map[string]*Identity
}

// NewIdentityStore creates an empty store.
func NewIdentityStore() *IdentityStore {
	return &IdentityStore{identities: make(map[string]*Identity)}
}

// Register creates a new identity with a hashed password.
func (s *IdentityStore) Register(name, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.identities[name]; ok {
		return errs.New("policy", errs.CodeAlreadyRegistered, fmt.Sprintf("identity %q already registered", name))
	}
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return errs.Wrap("policy", errs.CodeInternalInvariantViolated, "salt generation failed", err)
	}
	s.identities[name] = &Identity{
		Name:   name,
		Hash:   hashPassword(password, salt),
		Salt:   salt,
		Active: true,
	}
	return nil
}

func hashPassword(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// Get retrieves a copy of an identity's attributes. Returns a zero Identity
// and false if unknown.
func (s *IdentityStore) Get(name string) (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.identities[name]
	if !ok {
		return Identity{}, false
	}
	return *id, true
}

// UpdateAttributes applies fn to the identity under the store's write lock.
func (s *IdentityStore) UpdateAttributes(name string, fn func(*Identity)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.identities[name]
	if !ok {
		return errs.New("policy", errs.CodeInvalidParameter, fmt.Sprintf("unknown identity %q", name))
	}
	fn(id)
	return nil
}

// ChangePassword verifies the current password and sets a new one.
func (s *IdentityStore) ChangePassword(name, oldPassword, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.identities[name]
	if !ok {
		return errs.New("policy", errs.CodeInvalidParameter, fmt.Sprintf("unknown identity %q", name))
	}
	if subtle.ConstantTimeCompare(hashPassword(oldPassword, id.Salt), id.Hash) != 1 {
		return errs.New("policy", errs.CodeAuthenticationFailed, "password mismatch")
	}
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return errs.Wrap("policy", errs.CodeInternalInvariantViolated, "salt generation failed", err)
	}
	id.Salt = salt
	id.Hash = hashPassword(newPassword, salt)
	return nil
}

// ResetPassword is the administrative reset path: no old-password check.
func (s *IdentityStore) ResetPassword(name, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.identities[name]
	if !ok {
		return errs.New("policy", errs.CodeInvalidParameter, fmt.Sprintf("unknown identity %q", name))
	}
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return errs.Wrap("policy", errs.CodeInternalInvariantViolated, "salt generation failed", err)
	}
	id.Salt = salt
	id.Hash = hashPassword(newPassword, salt)
	return nil
}

// Deactivate / Reactivate flip the Active flag.
func (s *IdentityStore) Deactivate(name string) error {
	return s.UpdateAttributes(name, func(id *Identity) { id.Active = false })
}

func (s *IdentityStore) Reactivate(name string) error {
	return s.UpdateAttributes(name, func(id *Identity) { id.Active = true })
}

// AssignRole attaches a role name to an identity.
func (s *IdentityStore) AssignRole(name, role string) error {
	return s.UpdateAttributes(name, func(id *Identity) {
		for _, r := range id.Roles {
			if r == role {
				return
			}
		}
		id.Roles = append(id.Roles, role)
	})
}

// RemoveRole detaches a role name from an identity.
func (s *IdentityStore) RemoveRole(name, role string) error {
	return s.UpdateAttributes(name, func(id *Identity) {
		out := id.Roles[:0]
		for _, r := range id.Roles {
			if r != role {
				out = append(out, r)
			}
		}
		id.Roles = out
	})
}

// VerifyPassword checks a plaintext password against the stored hash,
// returning IdentityDisabled for deactivated identities before checking the
// password itself, matching §4.3 ("deactivated identities fail all
// subsequent auth evaluations").
func (s *IdentityStore) VerifyPassword(name, password string) error {
	s.mu.RLock()
	id, ok := s.identities[name]
	s.mu.RUnlock()
	if !ok {
		return errs.New("policy", errs.CodeAuthenticationFailed, "unknown identity")
	}
	if !id.Active {
		return errs.New("policy", errs.CodeIdentityDisabled, "identity is deactivated")
	}
	if subtle.ConstantTimeCompare(hashPassword(password, id.Salt), id.Hash) != 1 {
		return errs.New("policy", errs.CodeAuthenticationFailed, "password mismatch")
	}
	return nil
}
