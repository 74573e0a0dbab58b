package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/srms/internal/config"
	"github.com/stemsi/srms/internal/database"
	"github.com/stemsi/srms/internal/handler"
	"github.com/stemsi/srms/internal/logger"
	"github.com/stemsi/srms/internal/repository"
	"github.com/stemsi/srms/internal/repository/memory"
	"github.com/stemsi/srms/internal/router"
	"github.com/stemsi/srms/internal/seed"
	"github.com/stemsi/srms/internal/service"
	"github.com/stemsi/srms/internal/validator"
	"github.com/stemsi/srms/internal/worker"
)

// repositories is the storage backend selected by STORAGE_DRIVER.
type repositories struct {
	admins    repository.AdminRepository
	students  repository.StudentRepository
	courses   repository.CourseRepository
	results   repository.ResultRepository
	dashboard repository.DashboardRepository
	close     func()
}

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("storage", cfg.StorageDriver).
		Str("log_level", cfg.LogLevel).
		Msg("Starting SRMS API")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Storage ───────────────────────────────────────────────────────
	repos, err := openRepositories(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer repos.close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Services ──────────────────────────────────────────
	eventService := service.NewEventService(rdb, log)
	dashboardService := service.NewDashboardService(repos.dashboard, rdb, cfg.DashboardCacheTTL, log)
	authService := service.NewAuthService(cfg, rdb, repos.admins, repos.students, log)
	studentService := service.NewStudentService(repos.students, authService, dashboardService, log)
	courseService := service.NewCourseService(repos.courses, dashboardService, log)
	resultService := service.NewResultService(repos.results, repos.students, repos.courses, rdb, eventService, dashboardService, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Info:      handler.NewInfoHandler(),
		Auth:      handler.NewAuthHandler(authService),
		Student:   handler.NewStudentHandler(studentService, resultService),
		Course:    handler.NewCourseHandler(courseService),
		Result:    handler.NewResultHandler(resultService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		WS:        handler.NewWSHandler(eventService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	importWorker := worker.NewImportWorker(repos.results, rdb, eventService, dashboardService, log)

	workerDone := make(chan struct{})
	go func() {
		importWorker.Start(workerCtx)
		close(workerDone)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the import worker; it flushes its current batch before returning.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("Import worker did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

// openRepositories builds the storage backend. The memory backend is
// preloaded with the demo school so the API is usable without PostgreSQL.
func openRepositories(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*repositories, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		store := memory.New()
		_, err := seed.Run(ctx, seed.Repositories{
			Admins:   store.Admins(),
			Students: store.Students(),
			Courses:  store.Courses(),
			Results:  store.Results(),
		}, cfg.BcryptCost, log)
		if err != nil {
			return nil, err
		}
		log.Warn().Msg("Using in-memory storage; data is lost on restart")
		return &repositories{
			admins:    store.Admins(),
			students:  store.Students(),
			courses:   store.Courses(),
			results:   store.Results(),
			dashboard: store.Dashboard(),
			close:     func() {},
		}, nil
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &repositories{
		admins:    repository.NewAdminRepository(pool),
		students:  repository.NewStudentRepository(pool),
		courses:   repository.NewCourseRepository(pool),
		results:   repository.NewResultRepository(pool),
		dashboard: repository.NewDashboardRepository(pool),
		close:     pool.Close,
	}, nil
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
