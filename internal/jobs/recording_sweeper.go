package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Reconciler backfills recordings for completed interviews.
type Reconciler interface {
	ReconcilePending(ctx context.Context, since time.Time, limit int) (int, error)
}

// SweeperConfig contains configuration for the recording sweeper
type SweeperConfig struct {
	Schedule  string        // Cron schedule, e.g. "*/5 * * * *"
	Enabled   bool          // Whether to schedule the sweep at all
	Window    time.Duration // Only interviews completed within this window are swept
	BatchSize int           // Maximum interviews per run, 0 for no limit
	Timeout   time.Duration // Upper bound for a single run
}

// RecordingSweeper periodically looks up recordings for completed interviews
// nobody has polled since they finished.
type RecordingSweeper struct {
	reconciler Reconciler
	config     *SweeperConfig
	logger     *zap.Logger
	cron       *cron.Cron

	mu      sync.Mutex
	running bool
}

func NewRecordingSweeper(reconciler Reconciler, config *SweeperConfig, logger *zap.Logger) *RecordingSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordingSweeper{
		reconciler: reconciler,
		config:     config,
		logger:     logger,
		cron:       cron.New(),
	}
}

// Start schedules the sweep. It is a no-op when the sweeper is disabled.
func (s *RecordingSweeper) Start() error {
	if !s.config.Enabled {
		s.logger.Info("recording sweeper disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.config.Schedule, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			s.logger.Error("recording sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule recording sweep: %w", err)
	}

	s.cron.Start()
	s.logger.Info("recording sweeper started", zap.String("schedule", s.config.Schedule))
	return nil
}

// Stop stops scheduling and waits for a running sweep to finish.
func (s *RecordingSweeper) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce performs a single sweep. Overlapping runs are skipped.
func (s *RecordingSweeper) RunOnce(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Debug("recording sweep already running, skipping")
		return 0, nil
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	since := time.Now().UTC().Add(-s.config.Window)
	n, err := s.reconciler.ReconcilePending(ctx, since, s.config.BatchSize)
	if err != nil {
		return n, err
	}
	if n > 0 {
		s.logger.Info("recordings backfilled", zap.Int("count", n))
	}
	return n, nil
}
