package httpapi

import (
	"net/http"
	"strings"

	"github.com/keen360/portal/internal/auth"
	"github.com/keen360/portal/internal/repositories"
)

func (a *API) handleRepositories(w http.ResponseWriter, r *http.Request) {
	identity, ok := a.requireIdentity(w, r)
	if !ok {
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/repositories/"), "/")
	if path == "" {
		a.handleRepositoriesCollection(w, r, identity)
		return
	}
	if strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	a.handleRepositoryResource(w, r, identity, path)
}

func (a *API) handleRepositoriesCollection(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	switch r.Method {
	case http.MethodPost:
		a.createRepository(w, r, identity)
	case http.MethodGet:
		a.listRepositories(w, r, identity)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) createRepository(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	var in repositories.CreateInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// Ownership comes from the authenticated identity, never the payload.
	repo, err := a.repos.Create(r.Context(), identity.ID, in)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", "/repositories/"+repo.ID)
	writeJSON(w, http.StatusCreated, repo)
}

func (a *API) listRepositories(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	ownerID := identity.ID
	if requested := strings.TrimSpace(r.URL.Query().Get("user_id")); requested != "" {
		if err := auth.Authorize(identity, requested); err != nil {
			handleDomainError(w, r, err)
			return
		}
		ownerID = requested
	}

	list, err := a.repos.ListForOwner(r.Context(), ownerID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if list == nil {
		list = []repositories.Repository{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) handleRepositoryResource(w http.ResponseWriter, r *http.Request, identity auth.Identity, id string) {
	// Superusers see every record; everyone else only their own rows.
	ownerScope := identity.ID
	if identity.IsSuperuser {
		ownerScope = ""
	}

	switch r.Method {
	case http.MethodGet:
		repo, err := a.repos.Get(r.Context(), id, ownerScope)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, repo)
	case http.MethodPut:
		var in repositories.UpdateInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		repo, err := a.repos.Update(r.Context(), id, ownerScope, in)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, repo)
	case http.MethodDelete:
		if err := a.repos.Delete(r.Context(), id, ownerScope); err != nil {
			handleDomainError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}
