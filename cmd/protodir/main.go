package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/web0101/protodir/internal/adapter/driven/github"
	"github.com/web0101/protodir/internal/adapter/driven/mirror"
	sqliteadapter "github.com/web0101/protodir/internal/adapter/driven/sqlite"
	"github.com/web0101/protodir/internal/adapter/driven/vercel"
	httphandler "github.com/web0101/protodir/internal/adapter/driving/http"
	"github.com/web0101/protodir/internal/application"
	"github.com/web0101/protodir/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load optional .env, then configuration (fail fast on missing env vars).
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", "error", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"registry", cfg.GitHubOwner+"/"+cfg.GitHubRepo,
		"registry_path", cfg.RegistryPath,
		"root_domain", cfg.RootDomain,
		"vercel_configured", cfg.HasVercelCredentials(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open mirror cache database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.CacheDBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.CacheDBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire driven adapters.
	registry := githubadapter.NewRegistryStore(cfg.GitHubToken, cfg.GitHubOwner, cfg.GitHubRepo, cfg.RegistryPath, cfg.RegistryBranch)
	domainAPI := vercel.NewClient(cfg.VercelToken, cfg.VercelTeamID)
	mirrorReader := mirror.NewReader(cfg.GitHubOwner, cfg.GitHubRepo, cfg.RegistryBranch, cfg.RegistryPath)
	mirrorCache := sqliteadapter.NewMirrorCacheRepo(db)

	// 6. Wire application services.
	sessions := application.NewSessionCodec(cfg.SessionTTL)
	aliasSvc := application.NewAliasService(domainAPI, cfg.AliasPropagationDelay, cfg.ProjectIDFallback, slog.Default())
	siteSvc := application.NewSiteService(registry, aliasSvc, mirrorReader, mirrorCache, cfg.RootDomain, slog.Default())
	healthSvc := application.NewHealthService(registry, domainAPI, cfg.RootDomain, cfg.HasVercelCredentials(), cfg.VercelTeamID != "")

	// 7. Create HTTP handler and register routes.
	apiHandler := httphandler.NewHandler(siteSvc, healthSvc, aliasSvc, sessions, cfg.AdminPassword, cfg.RootDomain, slog.Default())
	mux := http.NewServeMux()
	httphandler.RegisterRoutes(mux, apiHandler)
	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("protodir started",
		"listen_addr", cfg.ListenAddr,
		"session_ttl", cfg.SessionTTL,
	)

	// 8. Wait for shutdown signal, then drain the HTTP server.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
