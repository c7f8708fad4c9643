package permissions

import (
	"errors"
	"time"
)

var (
	ErrInvalidInput = errors.New("permissions: invalid input")
	ErrConflict     = errors.New("permissions: already granted")
	ErrNotFound     = errors.New("permissions: not found")
)

// Grant scopes one user to one named competition. The (user, competition)
// pair is unique: granting twice is a conflict, not a second row.
type Grant struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	CompetitionAccess string    `json:"competition_access"`
	CreatedAt         time.Time `json:"created_at"`
}
