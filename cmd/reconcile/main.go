package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/trainhub-backend/internal/config"
	"github.com/stemsi/trainhub-backend/internal/database"
	"github.com/stemsi/trainhub-backend/internal/logger"
	"github.com/stemsi/trainhub-backend/internal/pubsub"
	"github.com/stemsi/trainhub-backend/internal/repository"
	"github.com/stemsi/trainhub-backend/internal/service"
)

// reconcile runs a one-off status sweep, or reconciles a single course with -course.
func main() {
	var courseFlag string
	flag.StringVar(&courseFlag, "course", "", "Reconcile only this course ID")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("Invalid APP_TIMEZONE")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
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

	// ─── Initialize Service ────────────────────────────────────────────
	activityService := service.NewActivityService(repository.NewActivityRepository(pool), rdb, log)
	reconciler := service.NewReconcileService(
		repository.NewStatusRepository(pool, loc),
		repository.NewCourseRepository(pool),
		pubsub.NewBroker(rdb, log),
		activityService,
		log,
	)

	fmt.Println("=== Reconcile Course Statuses ===")

	if courseFlag != "" {
		id, err := uuid.Parse(courseFlag)
		if err != nil {
			fmt.Printf("Error: invalid course ID %q\n", courseFlag)
			return
		}
		plan, err := reconciler.ReconcileCourse(ctx, id)
		if err != nil {
			log.Fatal().Err(err).Msg("Reconcile failed")
		}
		fmt.Printf("Course %s: %s -> %s, %d enrollments changed.\n",
			id, plan.CourseFrom, plan.CourseTo, len(plan.Enrollments))
		return
	}

	report, err := reconciler.Sweep(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Sweep failed")
	}
	fmt.Printf("\nSweep complete: %d courses checked, %d courses changed, %d enrollments changed, %d failed.\n",
		report.Courses, report.CoursesChanged, report.EnrollmentsChanged, report.Failed)
}
