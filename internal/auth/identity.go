package auth

import (
	"context"
	"strings"
)

// Identity is the resolved view of a registered user, carried through a
// request after authentication.
type Identity struct {
	ID          string
	Email       string
	IsActive    bool
	IsSuperuser bool
}

// IdentityStore resolves a token subject claim to a stored identity.
// Exactly one identity resolves per valid subject.
type IdentityStore interface {
	IdentityBySubject(ctx context.Context, subject string) (Identity, error)
}

// Authenticator is the single choke point for every protected request:
// it verifies the presented token and resolves the subject to a stored
// identity before any data access happens.
type Authenticator struct {
	tokens *TokenManager
	store  IdentityStore
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(tokens *TokenManager, store IdentityStore) *Authenticator {
	return &Authenticator{tokens: tokens, store: store}
}

// Authenticate verifies the token and loads the corresponding identity.
// Every failure, from an invalid token to an unknown or inactive user,
// fails closed with ErrUnauthenticated.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (Identity, error) {
	claims, err := a.tokens.Verify(token)
	if err != nil {
		return Identity{}, ErrUnauthenticated
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return Identity{}, ErrUnauthenticated
	}
	identity, err := a.store.IdentityBySubject(ctx, subject)
	if err != nil {
		return Identity{}, ErrUnauthenticated
	}
	if !identity.IsActive {
		return Identity{}, ErrUnauthenticated
	}
	return identity, nil
}
