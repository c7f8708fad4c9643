package httpapi

import (
	"net/http"
	"strings"

	"github.com/keen360/portal/internal/auth"
	"github.com/keen360/portal/internal/permissions"
)

type assignPermissionRequest struct {
	UserID            string `json:"user_id"`
	CompetitionAccess string `json:"competition_access"`
}

func (a *API) handlePermissionAssign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
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

	var req assignPermissionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	grant, err := a.permissions.Assign(r.Context(), req.UserID, req.CompetitionAccess)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, grant)
}

// handlePermissionResource dispatches the remaining /permissions/ paths:
// the collection itself, one user's grants, and single-grant revocation.
func (a *API) handlePermissionResource(w http.ResponseWriter, r *http.Request) {
	identity, ok := a.requireIdentity(w, r)
	if !ok {
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/permissions/"), "/")
	switch {
	case path == "":
		a.listAllGrants(w, r, identity)
	case strings.HasPrefix(path, "user/"):
		userID := strings.TrimPrefix(path, "user/")
		if userID == "" || strings.Contains(userID, "/") {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		a.listUserGrants(w, r, identity, userID)
	case !strings.Contains(path, "/"):
		a.revokeGrant(w, r, identity, path)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) listAllGrants(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if err := auth.RequireSuperuser(identity); err != nil {
		handleDomainError(w, r, err)
		return
	}
	grants, err := a.permissions.List(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if grants == nil {
		grants = []permissions.Grant{}
	}
	writeJSON(w, http.StatusOK, grants)
}

func (a *API) listUserGrants(w http.ResponseWriter, r *http.Request, identity auth.Identity, userID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	// A user may view their own grants; everyone else's need superuser.
	if err := auth.Authorize(identity, userID); err != nil {
		handleDomainError(w, r, err)
		return
	}
	grants, err := a.permissions.ListForUser(r.Context(), userID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if grants == nil {
		grants = []permissions.Grant{}
	}
	writeJSON(w, http.StatusOK, grants)
}

func (a *API) revokeGrant(w http.ResponseWriter, r *http.Request, identity auth.Identity, grantID string) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}
	if err := auth.RequireSuperuser(identity); err != nil {
		handleDomainError(w, r, err)
		return
	}
	if err := a.permissions.Revoke(r.Context(), grantID); err != nil {
		handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
