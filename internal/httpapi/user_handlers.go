package httpapi

import (
	"errors"
	"net/http"

	"github.com/keen360/portal/internal/auth"
	"github.com/keen360/portal/internal/users"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var in users.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.users.Register(r.Context(), in)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/users/"+user.ID)
	writeJSON(w, http.StatusCreated, user)
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := a.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// Unknown email and wrong password produce the same response,
		// so callers cannot enumerate registered accounts.
		if errors.Is(err, auth.ErrUnauthenticated) {
			writeError(w, r, http.StatusUnauthorized, "invalid email or password")
			return
		}
		handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleUsersRetrieve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	identity, ok := a.requireIdentity(w, r)
	if !ok {
		return
	}
	if err := auth.RequireSuperuser(identity); err != nil {
		handleDomainError(w, r, err)
		return
	}

	list, err := a.users.List(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if list == nil {
		list = []*users.User{}
	}
	writeJSON(w, http.StatusOK, list)
}
