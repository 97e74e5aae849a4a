package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/stemsi/trainhub-backend/internal/service"
)

// Sweeper reconciles every live course.
type Sweeper interface {
	Sweep(ctx context.Context) (service.SweepReport, error)
}

// ReconcileScheduler runs the status sweep on a cron schedule.
type ReconcileScheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	timeout time.Duration
	log     zerolog.Logger
}

// NewReconcileScheduler parses spec (standard 5-field cron or a descriptor
// such as "@every 15m") and registers the sweep. It does not start it.
func NewReconcileScheduler(spec string, sweeper Sweeper, log zerolog.Logger) (*ReconcileScheduler, error) {
	s := &ReconcileScheduler{
		sweeper: sweeper,
		timeout: 5 * time.Minute,
		log:     log.With().Str("component", "reconcile_scheduler").Logger(),
	}
	cl := cronLogger{log: s.log}
	s.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_CRON %q: %w", spec, err)
	}
	return s, nil
}

// Start runs one sweep immediately, then follows the schedule until ctx ends.
// Call in a goroutine.
func (s *ReconcileScheduler) Start(ctx context.Context) {
	s.log.Info().Msg("Scheduler started")
	s.run()
	s.cron.Start()

	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopping...")
	<-s.cron.Stop().Done()
	s.log.Info().Msg("Scheduler stopped")
}

func (s *ReconcileScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.sweeper.Sweep(ctx); err != nil {
		s.log.Error().Err(err).Msg("Status sweep failed")
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
