package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stemsi/trainhub-backend/internal/logger"
	"github.com/stemsi/trainhub-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (s *countingSweeper) Sweep(ctx context.Context) (service.SweepReport, error) {
	s.calls.Add(1)
	return service.SweepReport{}, s.err
}

func TestNewReconcileSchedulerRejectsBadSpec(t *testing.T) {
	_, err := NewReconcileScheduler("every tuesday", &countingSweeper{}, logger.Nop())
	assert.Error(t, err)
}

func TestReconcileSchedulerSweepsOnStart(t *testing.T) {
	sweeper := &countingSweeper{err: errors.New("db down")}
	s, err := NewReconcileScheduler("@every 1h", sweeper, logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return sweeper.calls.Load() == 1 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
