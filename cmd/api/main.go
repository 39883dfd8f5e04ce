package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/clinic-service/internal/api/http"
	"github.com/spec-kit/clinic-service/internal/api/http/handlers"
	"github.com/spec-kit/clinic-service/internal/auth"
	"github.com/spec-kit/clinic-service/internal/config"
	"github.com/spec-kit/clinic-service/internal/events"
	"github.com/spec-kit/clinic-service/internal/observability"
	"github.com/spec-kit/clinic-service/internal/persistence"
	"github.com/spec-kit/clinic-service/internal/repository"
	"github.com/spec-kit/clinic-service/internal/service"
	"github.com/spec-kit/clinic-service/internal/worker"
)

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

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	doctorRepo := repository.NewDoctorRepository(pool)
	patientRepo := repository.NewPatientRepository(pool)
	appointmentRepo := repository.NewAppointmentRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	userService := service.NewUserService(cfg.Auth.BcryptCost, service.UserDependencies{
		UserRepo:    userRepo,
		DoctorRepo:  doctorRepo,
		PatientRepo: patientRepo,
		Cache:       redis.Handle(),
		Logger:      logger,
	})
	sessionService := service.NewSessionService(sessionRepo, cfg.Auth.SessionTTL(), logger)
	schedulerService := service.NewSchedulerService(service.SchedulerDependencies{
		AppointmentRepo: appointmentRepo,
		DoctorRepo:      doctorRepo,
		PatientRepo:     patientRepo,
		Dispatcher:      dispatcher,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	worker.StartNotificationWorker(notificationService)
	worker.StartSessionSweeper(ctx, sessionService, cfg.Auth.SweepInterval(), logger)

	sessionMiddleware := auth.NewSessionMiddleware(sessionService, userRepo)
	rateLimiter := httptransport.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics)
	usersHandler := handlers.NewUsersHandler(userService)
	sessionsHandler := handlers.NewSessionsHandler(userService, sessionService)
	appointmentsHandler := handlers.NewAppointmentsHandler(schedulerService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Users:          usersHandler,
		Sessions:       sessionsHandler,
		Appointments:   appointmentsHandler,
		AuthMiddleware: sessionMiddleware,
		RateLimiter:    rateLimiter,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
