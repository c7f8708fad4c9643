package permissions

import (
	"context"
	"fmt"
	"strings"
)

// Service implements grant assignment, listing and revocation. Callers
// are expected to have passed the authorization gate already: assign,
// revoke and list-all are superuser operations, per-user listing is
// owner-or-superuser.
type Service struct {
	store Store
}

// NewService constructs a Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Assign grants a user access to a competition. A duplicate pair loses
// at the unique constraint and surfaces as ErrConflict.
func (s *Service) Assign(ctx context.Context, userID, competition string) (Grant, error) {
	userID = strings.TrimSpace(userID)
	competition = strings.TrimSpace(competition)
	if userID == "" {
		return Grant{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if competition == "" {
		return Grant{}, fmt.Errorf("%w: competition_access is required", ErrInvalidInput)
	}
	grant := Grant{UserID: userID, CompetitionAccess: competition}
	if err := s.store.Create(ctx, &grant); err != nil {
		return Grant{}, err
	}
	return grant, nil
}

// List returns every grant in the system.
func (s *Service) List(ctx context.Context) ([]Grant, error) {
	return s.store.List(ctx)
}

// ListForUser returns the grants owned by one user.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Grant, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	return s.store.ListForUser(ctx, userID)
}

// Revoke removes a grant by id.
func (s *Service) Revoke(ctx context.Context, grantID string) error {
	grantID = strings.TrimSpace(grantID)
	if grantID == "" {
		return fmt.Errorf("%w: grant id is required", ErrInvalidInput)
	}
	return s.store.Delete(ctx, grantID)
}
