// @title Everhack API
// @version 1.0
// @description Events, registrations and the role-gated member and admin areas.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
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

	"github.com/Chakshu098/Everhack/config"
	_ "github.com/Chakshu098/Everhack/docs"
	"github.com/Chakshu098/Everhack/internal/adapters/auth"
	"github.com/Chakshu098/Everhack/internal/adapters/sanitize"
	"github.com/Chakshu098/Everhack/internal/database"
	deliveryhttp "github.com/Chakshu098/Everhack/internal/delivery/http"
	"github.com/Chakshu098/Everhack/internal/delivery/http/middleware"
	"github.com/Chakshu098/Everhack/internal/domain"
	"github.com/Chakshu098/Everhack/internal/metrics"
	"github.com/Chakshu098/Everhack/internal/repository/postgres"
	"github.com/Chakshu098/Everhack/internal/services"
	"github.com/Chakshu098/Everhack/internal/session"
	"github.com/Chakshu098/Everhack/internal/workflow"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	logger := config.NewLogger()
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		if err := database.Migrate(cfg.DBUrl); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	db, err := database.Open(ctx, cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	// Repositories
	eventRepo := postgres.NewEventRepository(db)
	registrationRepo := postgres.NewEventRegistrationRepository(db)
	userRepo := postgres.NewUserRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	revokedRepo := postgres.NewRevokedSessionRepository(db)

	// Services
	tokens := auth.NewJWTAuthority(cfg.JWTSecret)
	authService := services.NewAuthService(services.AuthDeps{
		Users:    userRepo,
		Profiles: profileRepo,
		Roles:    roleRepo,
		Revoked:  revokedRepo,
		Hasher:   auth.NewBcryptHasher(cfg.BcryptCost),
		Issuer:   tokens,
		Verifier: tokens,
	}, cfg.JWTExpiry, cfg.RequestTimeout)
	eventService := services.NewEventService(eventRepo, sanitize.NewTextSanitizer(), collector, cfg.RequestTimeout)
	attendeeService := services.NewAttendeeService(eventRepo, registrationRepo, cfg.RequestTimeout)
	dashboardService := services.NewDashboardService(userRepo, profileRepo, attendeeService, eventService, cfg.RequestTimeout)

	// Sessions and the admin workflow
	registry := session.NewRegistry(authService, session.NewHub(), domain.NewAdminPredicate(cfg.AdminEmails), collector)
	workflows := workflow.NewManager(eventService, collector)
	registry.OnRelease(workflows.Release)

	handler := deliveryhttp.NewRouter(deliveryhttp.RouterDeps{
		Logger:             logger,
		Metrics:            collector,
		MetricsHandler:     metrics.Handler(reg),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		LoginLimiter:       middleware.NewRateLimiter(cfg.LoginRatePerMinute, cfg.LoginRateBurst, logger),
		Sessions:           registry,
		Auth:               authService,
		Events:             eventService,
		Attendees:          attendeeService,
		Dashboards:         dashboardService,
		Workflows:          workflows,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
