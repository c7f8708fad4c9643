package repositories

import (
	"errors"
	"time"
)

var (
	ErrInvalidInput = errors.New("repositories: invalid input")
	ErrConflict     = errors.New("repositories: already exists")
	ErrNotFound     = errors.New("repositories: not found")
)

// Repository is a link record owned by exactly one user. The same URL may
// exist under different owners; within one owner it is unique.
type Repository struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	RepositoryName string    `json:"repository_name"`
	RepositoryURL  string    `json:"repository_url"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
