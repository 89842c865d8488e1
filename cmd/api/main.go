package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/rosterhq/shift-roster/internal/api/http"
	"github.com/rosterhq/shift-roster/internal/api/http/handlers"
	"github.com/rosterhq/shift-roster/internal/auth"
	"github.com/rosterhq/shift-roster/internal/config"
	"github.com/rosterhq/shift-roster/internal/observability"
	"github.com/rosterhq/shift-roster/internal/persistence"
	"github.com/rosterhq/shift-roster/internal/repository"
	"github.com/rosterhq/shift-roster/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	availabilityRepo := repository.NewAvailabilityRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)

	revoker := auth.NewRedisRevoker(redis.Client)
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
		Revoker:           revoker,
		Logger:            logger,
	})
	userService := service.NewUserService(userRepo)
	availabilityService := service.NewAvailabilityService(availabilityRepo)
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		AssignmentRepo:   assignmentRepo,
		AvailabilityRepo: availabilityRepo,
		UserRepo:         userRepo,
		Logger:           logger,
	})

	if cfg.Auth.BootstrapAdminEmail != "" {
		admin, err := authService.EnsureAdmin(ctx, cfg.Auth.BootstrapAdminEmail, cfg.Auth.BootstrapAdminPassword)
		if err != nil {
			logger.Fatal("failed to ensure bootstrap admin", zap.Error(err))
		}
		logger.Info("bootstrap admin ready", zap.String("user_id", admin.ID))
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, revoker, logger)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService, cfg.App.Env != "production"),
		Users:          handlers.NewUsersHandler(userService),
		Availability:   handlers.NewAvailabilityHandler(availabilityService),
		Schedule:       handlers.NewScheduleHandler(assignmentService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
