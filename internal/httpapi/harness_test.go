package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/keen360/portal/internal/auth"
	"github.com/keen360/portal/internal/ids"
	"github.com/keen360/portal/internal/permissions"
	"github.com/keen360/portal/internal/repositories"
	"github.com/keen360/portal/internal/users"
)

// In-memory stores emulating the Postgres contracts: unique constraints
// surface as conflicts, owner filters hide foreign rows, deleting a user
// cascades into grants and repositories.

type memUserStore struct {
	mu    sync.Mutex
	list  []*users.User
	perms *memPermStore
	repos *memRepoStore
}

func (s *memUserStore) Create(_ context.Context, u *users.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.list {
		if existing.Email == u.Email || existing.PhoneNumber == u.PhoneNumber {
			return users.ErrConflict
		}
	}
	if u.ID == "" {
		u.ID = ids.New()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	copied := *u
	s.list = append(s.list, &copied)
	return nil
}

func (s *memUserStore) Find(_ context.Context, id string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.list {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, users.ErrNotFound
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.list {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, users.ErrNotFound
}

func (s *memUserStore) List(_ context.Context) ([]*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*users.User, 0, len(s.list))
	for _, u := range s.list {
		copied := *u
		out = append(out, &copied)
	}
	return out, nil
}

func (s *memUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	kept := s.list[:0]
	found := false
	for _, u := range s.list {
		if u.ID == id {
			found = true
			continue
		}
		kept = append(kept, u)
	}
	s.list = kept
	s.mu.Unlock()
	if !found {
		return users.ErrNotFound
	}
	if s.perms != nil {
		s.perms.deleteForUser(id)
	}
	if s.repos != nil {
		s.repos.deleteForUser(id)
	}
	return nil
}

type memPermStore struct {
	mu     sync.Mutex
	grants []permissions.Grant
}

func (s *memPermStore) Create(_ context.Context, grant *permissions.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.grants {
		if g.UserID == grant.UserID && g.CompetitionAccess == grant.CompetitionAccess {
			return permissions.ErrConflict
		}
	}
	if grant.ID == "" {
		grant.ID = ids.New()
	}
	grant.CreatedAt = time.Now().UTC()
	s.grants = append(s.grants, *grant)
	return nil
}

func (s *memPermStore) List(_ context.Context) ([]permissions.Grant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]permissions.Grant(nil), s.grants...), nil
}

func (s *memPermStore) ListForUser(_ context.Context, userID string) ([]permissions.Grant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []permissions.Grant
	for _, g := range s.grants {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *memPermStore) Delete(_ context.Context, grantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, g := range s.grants {
		if g.ID == grantID {
			s.grants = append(s.grants[:i], s.grants[i+1:]...)
			return nil
		}
	}
	return permissions.ErrNotFound
}

func (s *memPermStore) deleteForUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.grants[:0]
	for _, g := range s.grants {
		if g.UserID != userID {
			kept = append(kept, g)
		}
	}
	s.grants = kept
}

type memRepoStore struct {
	mu    sync.Mutex
	repos []repositories.Repository
}

func (s *memRepoStore) Create(_ context.Context, repo *repositories.Repository) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.repos {
		if existing.UserID == repo.UserID && existing.RepositoryURL == repo.RepositoryURL {
			return repositories.ErrConflict
		}
	}
	if repo.ID == "" {
		repo.ID = ids.New()
	}
	now := time.Now().UTC()
	repo.CreatedAt, repo.UpdatedAt = now, now
	s.repos = append(s.repos, *repo)
	return nil
}

func (s *memRepoStore) ListForOwner(_ context.Context, ownerID string) ([]repositories.Repository, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []repositories.Repository
	for _, repo := range s.repos {
		if repo.UserID == ownerID {
			out = append(out, repo)
		}
	}
	return out, nil
}

func (s *memRepoStore) Find(_ context.Context, id, ownerID string) (*repositories.Repository, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, repo := range s.repos {
		if repo.ID == id && (ownerID == "" || repo.UserID == ownerID) {
			copied := repo
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *memRepoStore) Update(_ context.Context, repo *repositories.Repository) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.repos {
		if existing.ID != repo.ID {
			continue
		}
		for _, other := range s.repos {
			if other.ID != repo.ID && other.UserID == existing.UserID && other.RepositoryURL == repo.RepositoryURL {
				return repositories.ErrConflict
			}
		}
		repo.UpdatedAt = time.Now().UTC()
		repo.UserID = existing.UserID
		repo.CreatedAt = existing.CreatedAt
		s.repos[i] = *repo
		return nil
	}
	return repositories.ErrNotFound
}

func (s *memRepoStore) Delete(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, repo := range s.repos {
		if repo.ID == id && (ownerID == "" || repo.UserID == ownerID) {
			s.repos = append(s.repos[:i], s.repos[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (s *memRepoStore) deleteForUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.repos[:0]
	for _, repo := range s.repos {
		if repo.UserID != userID {
			kept = append(kept, repo)
		}
	}
	s.repos = kept
}

type testEnv struct {
	t         *testing.T
	api       *API
	handler   http.Handler
	userStore *memUserStore
	permStore *memPermStore
	repoStore *memRepoStore
	userSvc   *users.Service
	tokens    *auth.TokenManager
	now       *time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	now := time.Now().UTC()
	env := &testEnv{t: t, now: &now}

	tokens, err := auth.NewTokenManager([]byte("test-secret"), "test-issuer", 30*time.Minute,
		auth.WithClock(func() time.Time { return *env.now }))
	require.NoError(t, err)
	env.tokens = tokens

	env.permStore = &memPermStore{}
	env.repoStore = &memRepoStore{}
	env.userStore = &memUserStore{perms: env.permStore, repos: env.repoStore}

	env.userSvc = users.NewService(env.userStore, tokens)
	permSvc := permissions.NewService(env.permStore)
	repoSvc := repositories.NewService(env.repoStore)
	authn := auth.NewAuthenticator(tokens, env.userSvc)

	env.api = New(env.userSvc, permSvc, repoSvc, authn, ReadyProbe{}, "test")
	env.handler = env.api.Handler()
	return env
}

func (env *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	env.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(env.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	return rr
}

func registrationBody(email, phone string) map[string]any {
	return map[string]any{
		"first_name":      "Alice",
		"last_name":       "Doe",
		"birth_date":      "1995-04-12",
		"email":           email,
		"phone_number":    phone,
		"password":        "pw12345678",
		"competition":     "spring-cup",
		"agreed_to_rules": true,
		"team_signup":     false,
	}
}

// register creates a user through the public endpoint and returns its id.
func (env *testEnv) register(email, phone string) string {
	env.t.Helper()
	rr := env.do(http.MethodPost, "/users/register", "", registrationBody(email, phone))
	require.Equal(env.t, http.StatusCreated, rr.Code, rr.Body.String())
	var created users.User
	require.NoError(env.t, json.Unmarshal(rr.Body.Bytes(), &created))
	return created.ID
}

// login exchanges credentials for a bearer token.
func (env *testEnv) login(email string) string {
	env.t.Helper()
	rr := env.do(http.MethodPost, "/users/login", "", map[string]any{
		"email":    email,
		"password": "pw12345678",
	})
	require.Equal(env.t, http.StatusOK, rr.Code, rr.Body.String())
	var result users.LoginResult
	require.NoError(env.t, json.Unmarshal(rr.Body.Bytes(), &result))
	require.Equal(env.t, "bearer", result.TokenType)
	return result.AccessToken
}

// seedSuperuser inserts a superuser directly into the store and returns
// its bearer token.
func (env *testEnv) seedSuperuser() (string, string) {
	env.t.Helper()
	hash, err := auth.HashPassword("admin-pw-123")
	require.NoError(env.t, err)
	admin := &users.User{
		FirstName:    "Admin",
		LastName:     "User",
		BirthDate:    users.Date{Time: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)},
		Email:        "admin@keen360.com",
		PhoneNumber:  "+10000000000",
		PasswordHash: hash,
		IsActive:     true,
		IsSuperuser:  true,
	}
	require.NoError(env.t, env.userStore.Create(nil, admin))
	token, _, err := env.tokens.Issue(admin.ID)
	require.NoError(env.t, err)
	return admin.ID, token
}
