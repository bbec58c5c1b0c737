package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	appsheetfeed "github.com/orderdesk/backend/internal/application/sheetfeed"
	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/orderdesk/backend/internal/infrastructure/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubRunner struct {
	calls atomic.Int64
	err   error
}

func (r *stubRunner) RunSync(ctx context.Context) (*appsheetfeed.SyncResultResponse, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	return &appsheetfeed.SyncResultResponse{Created: 1}, nil
}

func TestSyncSchedulerConfig_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		config := scheduler.DefaultSyncSchedulerConfig()
		assert.NoError(t, config.Validate())
	})

	t.Run("rejects sub-second interval", func(t *testing.T) {
		config := scheduler.DefaultSyncSchedulerConfig()
		config.Interval = 100 * time.Millisecond
		assert.ErrorIs(t, config.Validate(), scheduler.ErrInvalidConfig)
	})

	t.Run("rejects zero run timeout", func(t *testing.T) {
		config := scheduler.DefaultSyncSchedulerConfig()
		config.RunTimeout = 0
		assert.ErrorIs(t, config.Validate(), scheduler.ErrInvalidConfig)
	})
}

func TestSyncScheduler(t *testing.T) {
	t.Run("invokes the runner on each tick", func(t *testing.T) {
		runner := &stubRunner{}
		config := scheduler.SyncSchedulerConfig{
			Enabled:    true,
			Interval:   time.Second,
			RunTimeout: time.Second,
		}
		s, err := scheduler.NewSyncScheduler(config, runner, zap.NewNop())
		require.NoError(t, err)

		require.NoError(t, s.Start(context.Background()))

		assert.Eventually(t, func() bool {
			return runner.calls.Load() >= 2
		}, 5*time.Second, 50*time.Millisecond)

		require.NoError(t, s.Stop(context.Background()))
	})

	t.Run("disabled scheduler never runs", func(t *testing.T) {
		runner := &stubRunner{}
		config := scheduler.SyncSchedulerConfig{
			Enabled:    false,
			Interval:   time.Second,
			RunTimeout: time.Second,
		}
		s, err := scheduler.NewSyncScheduler(config, runner, zap.NewNop())
		require.NoError(t, err)

		require.NoError(t, s.Start(context.Background()))
		time.Sleep(50 * time.Millisecond)
		require.NoError(t, s.Stop(context.Background()))

		assert.Equal(t, int64(0), runner.calls.Load())
	})

	t.Run("runner errors do not stop the loop", func(t *testing.T) {
		runner := &stubRunner{err: shared.ErrFeedUnreachable}
		config := scheduler.SyncSchedulerConfig{
			Enabled:    true,
			Interval:   time.Second,
			RunTimeout: time.Second,
		}
		s, err := scheduler.NewSyncScheduler(config, runner, zap.NewNop())
		require.NoError(t, err)

		require.NoError(t, s.Start(context.Background()))

		assert.Eventually(t, func() bool {
			return runner.calls.Load() >= 2
		}, 5*time.Second, 50*time.Millisecond)

		require.NoError(t, s.Stop(context.Background()))
	})

	t.Run("double start and double stop are safe", func(t *testing.T) {
		runner := &stubRunner{}
		s, err := scheduler.NewSyncScheduler(scheduler.DefaultSyncSchedulerConfig(), runner, zap.NewNop())
		require.NoError(t, err)

		require.NoError(t, s.Start(context.Background()))
		require.NoError(t, s.Start(context.Background()))
		require.NoError(t, s.Stop(context.Background()))
		require.NoError(t, s.Stop(context.Background()))
	})
}
