package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/keen360/portal/internal/auth"
	"github.com/keen360/portal/internal/obs"
	"github.com/keen360/portal/internal/permissions"
	"github.com/keen360/portal/internal/repositories"
	"github.com/keen360/portal/internal/users"
)

const maxBodyBytes = 1 << 20

// ReadyProbe checks readiness by pinging the database.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer.
type API struct {
	mux         *http.ServeMux
	users       *users.Service
	permissions *permissions.Service
	repos       *repositories.Service
	authn       *auth.Authenticator
	readyProbe  ReadyProbe
	version     string
}

// New wires the routes.
func New(
	userService *users.Service,
	permissionService *permissions.Service,
	repositoryService *repositories.Service,
	authn *auth.Authenticator,
	rp ReadyProbe,
	version string,
) *API {
	a := &API{
		mux:         http.NewServeMux(),
		users:       userService,
		permissions: permissionService,
		repos:       repositoryService,
		authn:       authn,
		readyProbe:  rp,
		version:     version,
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/users/register", a.handleRegister)
	a.mux.HandleFunc("/users/login", a.handleLogin)
	a.mux.HandleFunc("/users/retrieve", a.handleUsersRetrieve)

	a.mux.HandleFunc("/permissions/assign", a.handlePermissionAssign)
	a.mux.HandleFunc("/permissions/", a.handlePermissionResource)

	a.mux.HandleFunc("/repositories/", a.handleRepositories)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "resource not found")
	})

	return a
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, maxBodyBytes)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "portal-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.readyProbe.Check(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}
