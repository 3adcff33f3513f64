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

	"saas-platform/internal/audit"
	"saas-platform/internal/authn"
	"saas-platform/internal/config"
	"saas-platform/internal/httpapi"
	"saas-platform/internal/identity"
	"saas-platform/internal/tenant"
	"saas-platform/internal/token"
	"saas-platform/pkg/logger"
	"saas-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

// The api process is the resource server: it authenticates requests purely
// from the shared signing secret (no session store, no redis) and serves the
// tenant-scoped CRUD surface behind the guard chain.
func main() {
	_ = godotenv.Load()

	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	codec, err := token.NewCodec(cfg.Auth)
	if err != nil {
		log.Error("token codec init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	auditSvc := audit.NewService(audit.NewSQLRepo(db))
	directory := identity.NewSQLDirectory(db, cfg.Identity.DefaultTenantID)
	tenantSvc := tenant.NewService(tenant.NewRepository(db))

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, authn.RequireAuth(codec),
		httpapi.Handlers{Users: directory},
		tenant.Handlers{Tenants: tenantSvc, Audit: auditSvc},
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
