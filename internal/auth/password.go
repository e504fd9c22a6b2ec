package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk/internal/config"
)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// CredentialStore holds the bcrypt hashes of the configured users.
type CredentialStore struct {
	hashes map[string]string
	// compared against for unknown users so both paths cost one bcrypt run
	decoy string
}

// NewCredentialStore hashes every configured credential.
func NewCredentialStore(creds []config.Credential, cost int) (*CredentialStore, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	store := &CredentialStore{hashes: make(map[string]string, len(creds))}
	for _, cred := range creds {
		hash, err := HashPassword(cred.Password, cost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", cred.Username, err)
		}
		store.hashes[cred.Username] = hash
	}
	decoy, err := HashPassword("decoy-password", cost)
	if err != nil {
		return nil, fmt.Errorf("hash decoy: %w", err)
	}
	store.decoy = decoy
	return store, nil
}

// Verify reports whether the username and password match a configured user.
func (s *CredentialStore) Verify(username, password string) bool {
	hash, ok := s.hashes[username]
	if !ok {
		_ = ComparePassword(s.decoy, password)
		return false
	}
	return ComparePassword(hash, password) == nil
}

// Len returns the number of configured users.
func (s *CredentialStore) Len() int {
	return len(s.hashes)
}
