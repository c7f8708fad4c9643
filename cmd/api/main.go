package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/keen360/portal/internal/auth"
	"github.com/keen360/portal/internal/config"
	"github.com/keen360/portal/internal/httpapi"
	"github.com/keen360/portal/internal/obs"
	"github.com/keen360/portal/internal/permissions"
	"github.com/keen360/portal/internal/repositories"
	"github.com/keen360/portal/internal/users"
)

var version = "0.3.0"

func main() {
	obs.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if cfg.DatabaseDSN == "" {
		log.Fatal("PORTAL_PG_DSN is required")
	}
	// sql.Open does not dial; while Postgres comes up /readyz reports
	// not_ready instead of the process crash-looping.
	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	tokens, err := auth.NewTokenManager(cfg.AuthSecret, cfg.TokenIssuer, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("token manager: %v", err)
	}

	userService := users.NewService(users.NewPGStore(db), tokens)
	permissionService := permissions.NewService(permissions.NewPGStore(db))
	repositoryService := repositories.NewService(repositories.NewPGStore(db))
	authn := auth.NewAuthenticator(tokens, userService)

	api := httpapi.New(userService, permissionService, repositoryService, authn, httpapi.ReadyProbe{DB: db}, version)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting portal-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
