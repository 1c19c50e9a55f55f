// Package main is the entry point for the visa tracker API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pkordes/visa-tracker/internal/config"
	"github.com/pkordes/visa-tracker/internal/conflict"
	"github.com/pkordes/visa-tracker/internal/handler"
	"github.com/pkordes/visa-tracker/internal/middleware"
	"github.com/pkordes/visa-tracker/internal/repo"
	"github.com/pkordes/visa-tracker/internal/service"
	"github.com/pkordes/visa-tracker/internal/visa"
	"github.com/pkordes/visa-tracker/migrations"
	"github.com/pkordes/visa-tracker/openapi"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Database ---------------------------------------------------------
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// goose drives database/sql; OpenDBFromPool shares the pool's config.
	sqlDB := stdlib.OpenDBFromPool(pool)
	applied, err := migrations.Up(ctx, sqlDB)
	sqlDB.Close()
	if err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("migrations applied", "count", applied)

	// --- Visa engine ------------------------------------------------------
	travelerRepo := repo.NewTravelerRepo(pool)
	stayRepo := repo.NewStayRepo(pool)
	ruleRepo := repo.NewRuleRepo(pool)

	catalog, source, err := loadCatalog(ctx, cfg.VisaRulesFile, ruleRepo)
	if err != nil {
		slog.Error("failed to load visa rules", "error", err)
		os.Exit(1)
	}
	slog.Info("visa rules loaded", "source", source, "rules", catalog.Len())

	calc := visa.NewCalculator(catalog, visa.WithLogger(logger))
	resolver := conflict.NewResolver(logger)

	// --- Services ---------------------------------------------------------
	visaSvc := service.NewVisaService(travelerRepo, stayRepo, calc, resolver,
		service.WithLookbackDays(cfg.DefaultLookbackDays))
	travelerSvc := service.NewTravelerService(travelerRepo)
	staySvc := service.NewStayService(travelerRepo, stayRepo, visaSvc)
	exportSvc := service.NewExportService(visaSvc)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body limit. The rate limiter is scoped to the resolve endpoint
	// by the handler package.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	server := handler.NewServer(travelerSvc, staySvc, visaSvc, exportSvc,
		handler.WithLogger(logger),
		handler.WithOpenAPI(openapi.Document),
		handler.WithResolveLimit(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)),
	)
	r.Mount("/", server.Routes())

	// --- HTTP Server ------------------------------------------------------
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// loadCatalog picks the rule source: a YAML file when configured, then the
// rule tables, then the built-in defaults.
func loadCatalog(ctx context.Context, file string, rules repo.RuleRepo) (*visa.Catalog, string, error) {
	if file != "" {
		c, err := visa.LoadCatalogFile(file)
		return c, "file", err
	}
	c, ok, err := repo.LoadCatalog(ctx, rules)
	if err != nil {
		return nil, "", err
	}
	if ok {
		return c, "database", nil
	}
	return visa.DefaultCatalog(), "default", nil
}
