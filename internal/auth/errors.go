package auth

import "errors"

var (
	// ErrInvalidToken indicates the token failed signature, structure or
	// expiry validation. Callers cannot tell which check failed.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrUnauthenticated indicates no identity could be resolved for the
	// request.
	ErrUnauthenticated = errors.New("auth: unauthenticated")

	// ErrForbidden indicates the identity is known but not allowed to
	// perform the requested action.
	ErrForbidden = errors.New("auth: forbidden")
)
