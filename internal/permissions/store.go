package permissions

import "context"

// Store describes persistence operations for competition-access grants.
type Store interface {
	Create(ctx context.Context, grant *Grant) error
	List(ctx context.Context) ([]Grant, error)
	ListForUser(ctx context.Context, userID string) ([]Grant, error)
	Delete(ctx context.Context, grantID string) error
}
