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
	"saas-platform/internal/config"
	"saas-platform/internal/identity"
	"saas-platform/internal/session"
	"saas-platform/internal/token"
	"saas-platform/pkg/logger"
	"saas-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

// The identity process is the session layer: it validates logins against the
// user directory, issues signed tokens, and keeps them retrievable behind an
// opaque session cookie. It shares the signing secret (and nothing else) with
// the api process.
func main() {
	_ = godotenv.Load()

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

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	issuer := session.NewIssuer(codec, session.NewRedisStore(rdb), cfg.Auth.SessionTTL)
	directory := identity.NewSQLDirectory(db, cfg.Identity.DefaultTenantID)
	auditSvc := audit.NewService(audit.NewSQLRepo(db))

	var flow *identity.OAuthFlow
	if cfg.OAuth.Enabled() {
		flow, err = identity.NewOAuthFlow(rootCtx, cfg.OAuth)
		if err != nil {
			log.Error("oauth provider init failed", "err", err)
			os.Exit(1)
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, session.Handlers{
		Issuer:       issuer,
		Directory:    directory,
		Flow:         flow,
		Audit:        auditSvc,
		CookieSecure: cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("identity listening", "addr", srv.Addr, "env", cfg.App.Env, "federated_login", flow != nil)
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
