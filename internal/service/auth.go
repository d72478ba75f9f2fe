// Package service provides authentication and item business logic,
// delegating storage to repository interfaces.
package service

import (
	"context"

	"github.com/atinyakov/itemgate/internal/models"
)

// CredentialRepository defines the lookup required by the authentication
// service.
type CredentialRepository interface {
	// Verify returns the identity for username when secret matches.
	// Any mismatch returns models.ErrUnauthenticated.
	Verify(ctx context.Context, username, secret string) (models.Identity, error)
}

// Service implements authentication by delegating to a
// CredentialRepository.
type Service struct {
	// repo performs the credential lookups.
	repo CredentialRepository
}

// NewAuthService constructs a new Service using the provided repository.
func NewAuthService(repo CredentialRepository) *Service {
	return &Service{repo: repo}
}

// Verify checks the credential pair. Empty usernames are rejected without
// consulting the repository. Every rejection is reported as
// models.ErrUnauthenticated, whatever the underlying cause.
func (s *Service) Verify(ctx context.Context, username, secret string) (models.Identity, error) {
	if username == "" {
		return "", models.ErrUnauthenticated
	}
	id, err := s.repo.Verify(ctx, username, secret)
	if err != nil {
		return "", models.ErrUnauthenticated
	}
	return id, nil
}
