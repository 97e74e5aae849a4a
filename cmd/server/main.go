package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/trainhub-backend/internal/config"
	"github.com/stemsi/trainhub-backend/internal/database"
	"github.com/stemsi/trainhub-backend/internal/handler"
	"github.com/stemsi/trainhub-backend/internal/logger"
	"github.com/stemsi/trainhub-backend/internal/mailer"
	"github.com/stemsi/trainhub-backend/internal/pubsub"
	"github.com/stemsi/trainhub-backend/internal/repository"
	"github.com/stemsi/trainhub-backend/internal/router"
	"github.com/stemsi/trainhub-backend/internal/service"
	"github.com/stemsi/trainhub-backend/internal/validator"
	"github.com/stemsi/trainhub-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting TrainHub Backend")

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("Invalid APP_TIMEZONE")
	}

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Connect to MongoDB (optional activity mirror) ─────────────────
	mongoDB, err := database.NewMongoDatabase(ctx, cfg, log)
	if err != nil {
		log.Warn().Err(err).Msg("MongoDB unavailable, activity mirror disabled")
		mongoDB = nil
	}
	if mongoDB != nil {
		defer mongoDB.Client().Disconnect(context.Background())
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	gradeRepo := repository.NewGradeRepository(pool)
	materialRepo := repository.NewMaterialRepository(pool)
	feedbackRepo := repository.NewFeedbackRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)
	settingRepo := repository.NewSettingRepository(pool)
	statusRepo := repository.NewStatusRepository(pool, loc)
	dashboardRepo := repository.NewDashboardRepository(pool)
	activityMirror := repository.NewActivityMirror(mongoDB)

	if err := activityMirror.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("Activity mirror index creation failed")
	}

	broker := pubsub.NewBroker(rdb, log)

	// ─── Initialize Services ──────────────────────────────────────────
	activityService := service.NewActivityService(activityRepo, rdb, log)
	settingService := service.NewSettingService(settingRepo, activityService, rdb, log)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, activityService, rdb, log)
	authService := service.NewAuthService(cfg, rdb, userRepo, settingService, activityService, log)
	reconcileService := service.NewReconcileService(statusRepo, courseRepo, broker, activityService, log)
	courseService := service.NewCourseService(courseRepo, userRepo, enrollmentRepo, reconcileService, notificationService, activityService, broker, loc, log)
	userService := service.NewUserService(userRepo, courseRepo, authService, reconcileService, notificationService, activityService, log)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, userRepo, courseService, reconcileService, notificationService, activityService, broker, log)
	sessionService := service.NewSessionService(sessionRepo, enrollmentRepo, courseService, notificationService, activityService, log)
	feedbackService := service.NewFeedbackService(feedbackRepo, userRepo, enrollmentRepo, courseRepo, notificationService, broker, log)
	materialService := service.NewMaterialService(cfg, materialRepo, enrollmentRepo, courseService, notificationService, activityService, log)
	gradeService := service.NewGradeService(gradeRepo, enrollmentRepo, courseService, notificationService, activityService, log)
	dashboardService := service.NewDashboardService(
		dashboardRepo, activityRepo, courseRepo, enrollmentRepo, feedbackRepo, userRepo,
		sessionService, notificationService, settingService, rdb, log,
	)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		User:         handler.NewUserHandler(userService),
		Course:       handler.NewCourseHandler(courseService),
		Session:      handler.NewSessionHandler(sessionService),
		Enrollment:   handler.NewEnrollmentHandler(enrollmentService),
		Material:     handler.NewMaterialHandler(materialService),
		Grade:        handler.NewGradeHandler(gradeService),
		Feedback:     handler.NewFeedbackHandler(feedbackService),
		FeedbackWS:   handler.NewFeedbackWSHandler(feedbackService, broker, log, cfg.AllowedOrigins),
		Notification: handler.NewNotificationHandler(notificationService),
		Activity:     handler.NewActivityHandler(activityService),
		Setting:      handler.NewSettingHandler(settingService),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
		Stream:       handler.NewStreamHandler(broker, log),
		System:       handler.NewSystemHandler(pool, rdb, cfg.UploadDir, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	mail := mailer.New(cfg.SendGridAPIKey, cfg.MailFromName, cfg.MailFromAddress, log)
	activityWorker := worker.NewActivityWorker(activityRepo, activityMirror, broker, rdb, log)
	notificationWorker := worker.NewNotificationWorker(notificationRepo, userRepo, broker, mail, cfg.EmailNotifications, rdb, log)
	scheduler, err := worker.NewReconcileScheduler(cfg.ReconcileCron, reconcileService, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid reconcile schedule")
	}

	for _, start := range []func(context.Context){activityWorker.Start, notificationWorker.Start, scheduler.Start} {
		workers.Add(1)
		go func(run func(context.Context)) {
			defer workers.Done()
			run(workerCtx)
		}(start)
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, rdb, cfg, log)

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

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
