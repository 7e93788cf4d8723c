package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/nail-scheduler/internal/audit"
	"github.com/BruksfildServices01/nail-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/nail-scheduler/internal/db"
	"github.com/BruksfildServices01/nail-scheduler/internal/logging"
	"github.com/BruksfildServices01/nail-scheduler/internal/media"
	"github.com/BruksfildServices01/nail-scheduler/internal/middleware"
	"github.com/BruksfildServices01/nail-scheduler/internal/routes"
	"github.com/BruksfildServices01/nail-scheduler/internal/seed"
	"github.com/BruksfildServices01/nail-scheduler/internal/validators"
	"github.com/BruksfildServices01/nail-scheduler/internal/visits"
)

const usage = `usage: api [command] [flags]

commands:
  serve        run the HTTP server (default)
  migrate      create or update the database schema
  createadmin  add an administrator: -username NAME -password PASS [-email ADDR]
  seed         load the demo masters, customers and services
`

func main() {
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.SlogLevel())
	slog.SetDefault(logger)

	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = serve(cfg, logger)
	case "migrate":
		err = migrate(cfg)
	case "createadmin":
		err = createAdmin(cfg, args)
	case "seed":
		err = runSeed(cfg)
	case "help", "-h", "--help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

// ======================================================
// SERVE
// ======================================================

func serve(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := validators.Register(); err != nil {
		return fmt.Errorf("register validators: %w", err)
	}

	db := dbpkg.NewDB(cfg)
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	counter, closeCounter, err := visits.New(cfg.RedisURL, db)
	if err != nil {
		return fmt.Errorf("visit counter: %w", err)
	}
	defer closeCounter()

	dispatcher := audit.NewDispatcher(audit.New(db))
	defer dispatcher.Close()

	limiter := middleware.NewRateLimiter(1, 5)
	defer limiter.Close()

	engine, err := routes.NewEngine(routes.Deps{
		DB:           db,
		Config:       cfg,
		Logger:       logger,
		Audit:        dispatcher,
		Visits:       counter,
		Storage:      media.NewStorage(cfg),
		LoginLimiter: limiter,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           middleware.CSRF(cfg)(engine),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("server listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// ======================================================
// MAINTENANCE
// ======================================================

func migrate(cfg *config.Config) error {
	db, err := dbpkg.Open(cfg)
	if err != nil {
		return err
	}
	if err := dbpkg.Migrate(db); err != nil {
		return err
	}
	slog.Info("migrations applied")
	return nil
}

func createAdmin(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("createadmin", flag.ContinueOnError)
	username := fs.String("username", "", "admin username")
	password := fs.String("password", "", "admin password")
	email := fs.String("email", "", "admin email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *password == "" {
		return errors.New("createadmin needs -username and -password")
	}

	db := dbpkg.NewDB(cfg)
	user, err := seed.CreateAdmin(context.Background(), db, *username, *password, *email)
	if err != nil {
		return err
	}
	slog.Info("admin created", "user_id", user.ID, "username", user.Username)
	return nil
}

func runSeed(cfg *config.Config) error {
	db := dbpkg.NewDB(cfg)
	_, err := seed.Run(context.Background(), db, cfg.SeedPassword)
	return err
}
