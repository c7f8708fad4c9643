package users

import "context"

// Store describes persistence operations required for identities.
// Uniqueness of email and phone number is enforced by the backing store;
// a violating insert surfaces as ErrConflict.
type Store interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Delete(ctx context.Context, id string) error
}
