package repositories

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// CreateInput carries the repository creation payload. The owner is never
// taken from the payload: it is the authenticated caller.
type CreateInput struct {
	RepositoryName string `json:"repository_name"`
	RepositoryURL  string `json:"repository_url"`
	Description    string `json:"description"`
}

// UpdateInput carries a partial update; nil fields are left unchanged.
type UpdateInput struct {
	RepositoryName *string `json:"repository_name"`
	RepositoryURL  *string `json:"repository_url"`
	Description    *string `json:"description"`
}

// Service implements CRUD on repository records scoped to their owner.
type Service struct {
	store Store
}

// NewService constructs a Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create stores a new record owned by ownerID. A duplicate URL under the
// same owner surfaces as ErrConflict.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (Repository, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return Repository{}, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	name := strings.TrimSpace(in.RepositoryName)
	if name == "" {
		return Repository{}, fmt.Errorf("%w: repository_name is required", ErrInvalidInput)
	}
	rawURL := strings.TrimSpace(in.RepositoryURL)
	if err := validateURL(rawURL); err != nil {
		return Repository{}, err
	}

	repo := Repository{
		UserID:         ownerID,
		RepositoryName: name,
		RepositoryURL:  rawURL,
		Description:    strings.TrimSpace(in.Description),
	}
	if err := s.store.Create(ctx, &repo); err != nil {
		return Repository{}, err
	}
	return repo, nil
}

// ListForOwner returns the records owned by one user.
func (s *Service) ListForOwner(ctx context.Context, ownerID string) ([]Repository, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	return s.store.ListForOwner(ctx, ownerID)
}

// Get returns one record. With a non-empty ownerID a record owned by
// someone else is reported as ErrNotFound, indistinguishable from an
// absent one.
func (s *Service) Get(ctx context.Context, id, ownerID string) (Repository, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Repository{}, fmt.Errorf("%w: repository id is required", ErrInvalidInput)
	}
	repo, err := s.store.Find(ctx, id, strings.TrimSpace(ownerID))
	if err != nil {
		return Repository{}, err
	}
	return *repo, nil
}

// Update applies a partial update to one record under the same ownership
// scoping as Get.
func (s *Service) Update(ctx context.Context, id, ownerID string, in UpdateInput) (Repository, error) {
	repo, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return Repository{}, err
	}

	if in.RepositoryName != nil {
		name := strings.TrimSpace(*in.RepositoryName)
		if name == "" {
			return Repository{}, fmt.Errorf("%w: repository_name cannot be empty", ErrInvalidInput)
		}
		repo.RepositoryName = name
	}
	if in.RepositoryURL != nil {
		rawURL := strings.TrimSpace(*in.RepositoryURL)
		if err := validateURL(rawURL); err != nil {
			return Repository{}, err
		}
		repo.RepositoryURL = rawURL
	}
	if in.Description != nil {
		repo.Description = strings.TrimSpace(*in.Description)
	}

	if err := s.store.Update(ctx, &repo); err != nil {
		return Repository{}, err
	}
	return repo, nil
}

// Delete removes one record under the same ownership scoping as Get.
func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: repository id is required", ErrInvalidInput)
	}
	return s.store.Delete(ctx, id, strings.TrimSpace(ownerID))
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: repository_url is required", ErrInvalidInput)
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%w: repository_url must be an absolute URL", ErrInvalidInput)
	}
	return nil
}
