package users

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/keen360/portal/internal/auth"
)

const minPasswordLength = 8

// RegisterInput carries the registration request payload.
type RegisterInput struct {
	FirstName     string       `json:"first_name"`
	LastName      string       `json:"last_name"`
	BirthDate     Date         `json:"birth_date"`
	Email         string       `json:"email"`
	PhoneNumber   string       `json:"phone_number"`
	Password      string       `json:"password"`
	Competition   string       `json:"competition"`
	AgreedToRules bool         `json:"agreed_to_rules"`
	TeamSignup    bool         `json:"team_signup"`
	TeamMembers   []TeamMember `json:"team_members,omitempty"`
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
}

// Service implements registration, login and identity listing.
type Service struct {
	store  Store
	tokens *auth.TokenManager
}

// NewService constructs a Service.
func NewService(store Store, tokens *auth.TokenManager) *Service {
	return &Service{store: store, tokens: tokens}
}

// Register validates the input, hashes the password and stores the new
// identity. A concurrent registration with the same email or phone loses
// the race at the unique constraint and surfaces as ErrConflict.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if err := validateRegistration(&in); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		BirthDate:     in.BirthDate,
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		PhoneNumber:   strings.TrimSpace(in.PhoneNumber),
		PasswordHash:  hash,
		Competition:   strings.TrimSpace(in.Competition),
		AgreedToRules: in.AgreedToRules,
		TeamSignup:    in.TeamSignup,
		TeamMembers:   trimTeamMembers(in.TeamMembers),
		IsActive:      true,
		IsSuperuser:   false,
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates credentials and issues a bearer token. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return LoginResult{}, auth.ErrUnauthenticated
	}
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, auth.ErrUnauthenticated
	}
	if !user.IsActive {
		return LoginResult{}, auth.ErrUnauthenticated
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return LoginResult{}, auth.ErrUnauthenticated
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		UserID:      user.ID,
		Email:       user.Email,
	}, nil
}

// List returns every registered identity.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.store.List(ctx)
}

// Find returns one identity by id.
func (s *Service) Find(ctx context.Context, id string) (*User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.store.Find(ctx, id)
}

// Delete removes an identity. Grants and repository records owned by it
// are removed by the store's cascade rules.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.store.Delete(ctx, id)
}

// IdentityBySubject resolves a token subject to an identity for the
// authentication middleware.
func (s *Service) IdentityBySubject(ctx context.Context, subject string) (auth.Identity, error) {
	user, err := s.store.Find(ctx, subject)
	if err != nil {
		return auth.Identity{}, err
	}
	return auth.Identity{
		ID:          user.ID,
		Email:       user.Email,
		IsActive:    user.IsActive,
		IsSuperuser: user.IsSuperuser,
	}, nil
}

func validateRegistration(in *RegisterInput) error {
	if strings.TrimSpace(in.FirstName) == "" {
		return fmt.Errorf("%w: first_name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.LastName) == "" {
		return fmt.Errorf("%w: last_name is required", ErrInvalidInput)
	}
	if in.BirthDate.IsZero() {
		return fmt.Errorf("%w: birth_date is required", ErrInvalidInput)
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: email is malformed", ErrInvalidInput)
	}
	if strings.TrimSpace(in.PhoneNumber) == "" {
		return fmt.Errorf("%w: phone_number is required", ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	for _, member := range in.TeamMembers {
		if strings.TrimSpace(member.Name) == "" {
			return fmt.Errorf("%w: team member name is required", ErrInvalidInput)
		}
		if member.Email != "" {
			if _, err := mail.ParseAddress(member.Email); err != nil {
				return fmt.Errorf("%w: team member email is malformed", ErrInvalidInput)
			}
		}
	}
	return nil
}

func trimTeamMembers(members []TeamMember) []TeamMember {
	if len(members) == 0 {
		return nil
	}
	out := make([]TeamMember, 0, len(members))
	for _, m := range members {
		out = append(out, TeamMember{
			Name:  strings.TrimSpace(m.Name),
			Email: strings.ToLower(strings.TrimSpace(m.Email)),
		})
	}
	return out
}
