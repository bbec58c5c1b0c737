package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	appsheetfeed "github.com/orderdesk/backend/internal/application/sheetfeed"
	"github.com/orderdesk/backend/internal/domain/shared"
)

// ErrInvalidConfig is returned when configuration is invalid
var ErrInvalidConfig = errors.New("invalid scheduler configuration")

// SyncRunner executes one sync pass against the external feed
type SyncRunner interface {
	RunSync(ctx context.Context) (*appsheetfeed.SyncResultResponse, error)
}

// SyncSchedulerConfig holds configuration for the feed sync scheduler
type SyncSchedulerConfig struct {
	// Enabled indicates if the scheduler runs at all
	Enabled bool
	// Interval is the time between sync passes
	Interval time.Duration
	// RunTimeout is the maximum time one sync pass can take
	RunTimeout time.Duration
}

// DefaultSyncSchedulerConfig returns default configuration
func DefaultSyncSchedulerConfig() SyncSchedulerConfig {
	return SyncSchedulerConfig{
		Enabled:    true,
		Interval:   30 * time.Second,
		RunTimeout: 2 * time.Minute,
	}
}

// Validate validates the configuration
func (c *SyncSchedulerConfig) Validate() error {
	if c.Interval < time.Second {
		return ErrInvalidConfig
	}
	if c.RunTimeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// SyncScheduler invokes the sync runner on a fixed interval. Overlap
// protection lives in the runner itself, so an on-demand sync triggered
// over HTTP and a scheduled pass never interleave.
type SyncScheduler struct {
	config SyncSchedulerConfig
	runner SyncRunner
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSyncScheduler creates a new feed sync scheduler
func NewSyncScheduler(config SyncSchedulerConfig, runner SyncRunner, logger *zap.Logger) (*SyncScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncScheduler{
		config: config,
		runner: runner,
		logger: logger,
	}, nil
}

// Start starts the scheduler loop
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	if !s.config.Enabled {
		s.logger.Info("Feed sync scheduler disabled")
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Feed sync scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("run_timeout", s.config.RunTimeout),
	)
	return nil
}

// Stop gracefully stops the scheduler, waiting for an in-flight pass
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Feed sync scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SyncScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *SyncScheduler) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	result, err := s.runner.RunSync(runCtx)
	if err != nil {
		// an unreachable feed or missing config is routine, not a fault
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			s.logger.Warn("Scheduled sync skipped",
				zap.String("code", domainErr.Code),
				zap.Error(err))
			return
		}
		s.logger.Error("Scheduled sync failed", zap.Error(err))
		return
	}

	if result.Created > 0 || len(result.SoftErrors) > 0 {
		s.logger.Info("Scheduled sync completed",
			zap.Int("created", result.Created),
			zap.Int("skipped", result.Skipped),
			zap.Int("rejected", result.Rejected),
			zap.Int("soft_errors", len(result.SoftErrors)),
		)
	}
}
