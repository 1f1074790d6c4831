// Package main is the entry point for the HOS Logbook API server.
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
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/spotterhq/hos-logbook/backend/internal/config"
	"github.com/spotterhq/hos-logbook/backend/internal/domain"
	"github.com/spotterhq/hos-logbook/backend/internal/geocode"
	"github.com/spotterhq/hos-logbook/backend/internal/handler"
	"github.com/spotterhq/hos-logbook/backend/internal/middleware"
	"github.com/spotterhq/hos-logbook/backend/internal/repo"
	"github.com/spotterhq/hos-logbook/backend/internal/service"
	"github.com/spotterhq/hos-logbook/backend/migrations"
	"github.com/spotterhq/hos-logbook/backend/spec"
)

// maxBodyBytes caps request bodies; the largest legitimate payload is a
// duty-status change with notes.
const maxBodyBytes = 1 << 20

func main() {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// log/slog JSON handler writes machine-readable output suitable for
	// log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately — the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if cfg.RunMigrations {
		if err := runMigrations(pool); err != nil {
			slog.Error("migration error", "error", err)
			os.Exit(1)
		}
		slog.Info("migrations applied")
	}

	// --- Wiring -------------------------------------------------------
	entryRepo := repo.NewEntryRepo(pool)
	dailyRepo := repo.NewDailyLogRepo(pool)
	tripRepo := repo.NewTripRepo(pool)
	driverRepo := repo.NewDriverRepo(pool)

	geocoder := geocode.New(cfg.GeocodeBaseURL)
	reverts := service.NewAutoRevert(domain.PickupDropoffWindow, logger)
	defer reverts.Stop()

	dutySvc := service.NewDutyService(entryRepo, driverRepo, geocoder, reverts, logger)
	reverts.Bind(dutySvc.AutoRevertFire)

	authSvc := service.NewAuthService(driverRepo, []byte(cfg.JWTSecret))
	dailySvc := service.NewDailyLogService(entryRepo, dailyRepo, driverRepo)
	violationSvc := service.NewViolationService(entryRepo, driverRepo)
	tripSvc := service.NewTripService(tripRepo, driverRepo, dutySvc)
	exportSvc := service.NewExportService(entryRepo, dailyRepo, driverRepo)

	server := handler.NewServer(authSvc, dutySvc, dailySvc, violationSvc, tripSvc, exportSvc, logger)

	// --- Router -------------------------------------------------------
	// Middleware order: RequestID → RealIP → Logger → Recoverer → CORS →
	// body cap. Auth is applied per route group inside Routes.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxBodyBytes))

	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		//nolint:errcheck — nothing useful to do once headers are written.
		w.Write(spec.OpenAPI)
	})
	r.Mount("/", server.Routes(middleware.RequireDriver([]byte(cfg.JWTSecret))))

	// --- HTTP Server ----------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
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

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// runMigrations applies pending goose migrations from the embedded FS.
// goose needs a database/sql handle; stdlib.OpenDBFromPool adapts the pgx pool.
func runMigrations(pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, ".")
}
