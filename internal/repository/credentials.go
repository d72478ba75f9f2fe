// Package repository provides in-memory implementations of the credential
// store and the item collection.
package repository

import (
	"context"
	"fmt"

	"github.com/atinyakov/itemgate/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the username is unknown so both
// rejection paths do the same amount of work.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("itemgate-dummy"), bcrypt.MinCost)

// CredentialStore holds username to bcrypt verifier mappings. It is filled
// once at construction and is read-only afterwards.
type CredentialStore struct {
	verifiers map[string][]byte
}

// NewCredentialStore hashes every secret in users with the given bcrypt cost
// and returns the resulting store. A cost of 0 selects bcrypt.DefaultCost.
func NewCredentialStore(users map[string]string, cost int) (*CredentialStore, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	verifiers := make(map[string][]byte, len(users))
	for name, secret := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
		if err != nil {
			return nil, fmt.Errorf("hash secret for %q: %w", name, err)
		}
		verifiers[name] = hash
	}
	return &CredentialStore{verifiers: verifiers}, nil
}

// Verify returns the identity for username when secret matches its
// verifier. Unknown users and wrong secrets both yield
// models.ErrUnauthenticated.
func (s *CredentialStore) Verify(_ context.Context, username, secret string) (models.Identity, error) {
	hash, ok := s.verifiers[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(secret))
		return "", models.ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(secret)); err != nil {
		return "", models.ErrUnauthenticated
	}
	return models.Identity(username), nil
}

// Len reports the number of credential entries.
func (s *CredentialStore) Len() int {
	return len(s.verifiers)
}
