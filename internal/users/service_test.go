package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keen360/portal/internal/auth"
)

type stubStore struct {
	createFn      func(ctx context.Context, u *User) error
	findFn        func(ctx context.Context, id string) (*User, error)
	findByEmailFn func(ctx context.Context, email string) (*User, error)
	listFn        func(ctx context.Context) ([]*User, error)
	deleteFn      func(ctx context.Context, id string) error
}

func (s *stubStore) Create(ctx context.Context, u *User) error {
	if s.createFn != nil {
		return s.createFn(ctx, u)
	}
	return nil
}

func (s *stubStore) Find(ctx context.Context, id string) (*User, error) {
	if s.findFn != nil {
		return s.findFn(ctx, id)
	}
	return nil, ErrNotFound
}

func (s *stubStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	if s.findByEmailFn != nil {
		return s.findByEmailFn(ctx, email)
	}
	return nil, ErrNotFound
}

func (s *stubStore) List(ctx context.Context) ([]*User, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func (s *stubStore) Delete(ctx context.Context, id string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func newTestService(t *testing.T, store Store) *Service {
	t.Helper()
	tokens, err := auth.NewTokenManager([]byte("test-secret"), "test", 30*time.Minute)
	require.NoError(t, err)
	return NewService(store, tokens)
}

func validInput() RegisterInput {
	return RegisterInput{
		FirstName:     "Alice",
		LastName:      "Doe",
		BirthDate:     Date{Time: time.Date(1995, 4, 12, 0, 0, 0, 0, time.UTC)},
		Email:         "Alice@Example.com",
		PhoneNumber:   "+37112345678",
		Password:      "pw12345678",
		Competition:   "spring-cup",
		AgreedToRules: true,
	}
}

func TestRegisterHashesPasswordAndNormalizes(t *testing.T) {
	var created *User
	store := &stubStore{
		createFn: func(_ context.Context, u *User) error {
			created = u
			return nil
		},
	}
	svc := newTestService(t, store)

	user, err := svc.Register(context.Background(), validInput())
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, "alice@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsSuperuser)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "pw12345678", user.PasswordHash)
	assert.True(t, auth.VerifyPassword(user.PasswordHash, "pw12345678"))
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t, &stubStore{
		createFn: func(context.Context, *User) error {
			t.Fatal("store must not be reached on validation failure")
			return nil
		},
	})

	cases := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"missing first name", func(in *RegisterInput) { in.FirstName = " " }},
		{"missing last name", func(in *RegisterInput) { in.LastName = "" }},
		{"missing birth date", func(in *RegisterInput) { in.BirthDate = Date{} }},
		{"missing email", func(in *RegisterInput) { in.Email = "" }},
		{"malformed email", func(in *RegisterInput) { in.Email = "not-an-email" }},
		{"missing phone", func(in *RegisterInput) { in.PhoneNumber = "" }},
		{"short password", func(in *RegisterInput) { in.Password = "pw1234" }},
		{"nameless team member", func(in *RegisterInput) {
			in.TeamSignup = true
			in.TeamMembers = []TeamMember{{Name: "", Email: "x@y.z"}}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := svc.Register(context.Background(), in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestRegisterConflictPassesThrough(t *testing.T) {
	svc := newTestService(t, &stubStore{
		createFn: func(context.Context, *User) error { return ErrConflict },
	})

	_, err := svc.Register(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrConflict)
}

func registeredUser(t *testing.T, password string) *User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return &User{
		ID:           "user-1",
		Email:        "alice@example.com",
		PasswordHash: hash,
		IsActive:     true,
	}
}

func TestLoginSuccess(t *testing.T) {
	user := registeredUser(t, "pw12345678")
	store := &stubStore{
		findByEmailFn: func(_ context.Context, email string) (*User, error) {
			require.Equal(t, "alice@example.com", email)
			return user, nil
		},
	}
	tokens, err := auth.NewTokenManager([]byte("test-secret"), "test", 30*time.Minute)
	require.NoError(t, err)
	svc := NewService(store, tokens)

	result, err := svc.Login(context.Background(), "  ALICE@example.com ", "pw12345678")
	require.NoError(t, err)
	assert.Equal(t, "bearer", result.TokenType)
	assert.Equal(t, "user-1", result.UserID)
	assert.Equal(t, "alice@example.com", result.Email)

	claims, err := tokens.Verify(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	user := registeredUser(t, "pw12345678")
	store := &stubStore{
		findByEmailFn: func(_ context.Context, email string) (*User, error) {
			if email == "alice@example.com" {
				return user, nil
			}
			return nil, ErrNotFound
		},
	}
	svc := newTestService(t, store)

	_, unknownErr := svc.Login(context.Background(), "nobody@example.com", "pw12345678")
	_, wrongPwErr := svc.Login(context.Background(), "alice@example.com", "wrong-password")

	assert.ErrorIs(t, unknownErr, auth.ErrUnauthenticated)
	assert.ErrorIs(t, wrongPwErr, auth.ErrUnauthenticated)
	assert.Equal(t, unknownErr, wrongPwErr)
}

func TestLoginInactiveUser(t *testing.T) {
	user := registeredUser(t, "pw12345678")
	user.IsActive = false
	svc := newTestService(t, &stubStore{
		findByEmailFn: func(context.Context, string) (*User, error) { return user, nil },
	})

	_, err := svc.Login(context.Background(), "alice@example.com", "pw12345678")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestIdentityBySubject(t *testing.T) {
	svc := newTestService(t, &stubStore{
		findFn: func(_ context.Context, id string) (*User, error) {
			require.Equal(t, "user-7", id)
			return &User{ID: "user-7", Email: "a@b.c", IsActive: true, IsSuperuser: true}, nil
		},
	})

	identity, err := svc.IdentityBySubject(context.Background(), "user-7")
	require.NoError(t, err)
	assert.Equal(t, auth.Identity{ID: "user-7", Email: "a@b.c", IsActive: true, IsSuperuser: true}, identity)
}

func TestIdentityBySubjectUnknown(t *testing.T) {
	svc := newTestService(t, &stubStore{})

	_, err := svc.IdentityBySubject(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}
