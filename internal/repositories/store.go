package repositories

import "context"

// Store describes persistence operations for repository records.
// An empty ownerID means the lookup is unscoped (superuser access);
// otherwise rows are filtered by owner so a caller can never observe
// another user's records, not even their existence.
type Store interface {
	Create(ctx context.Context, repo *Repository) error
	ListForOwner(ctx context.Context, ownerID string) ([]Repository, error)
	Find(ctx context.Context, id, ownerID string) (*Repository, error)
	Update(ctx context.Context, repo *Repository) error
	Delete(ctx context.Context, id, ownerID string) error
}
