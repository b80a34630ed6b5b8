package scheduler

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appsync "github.com/storesync/backend/internal/application/sync"
	"github.com/storesync/backend/internal/domain/storefront"
)

// SyncRunner runs synchronization passes for one instance
type SyncRunner interface {
	RunFullSync(ctx context.Context, instanceID uuid.UUID) (*appsync.RunSummary, error)
	RunStockPriceSync(ctx context.Context, instanceID uuid.UUID) error
}

// InstanceSource lists the instances eligible for scheduled runs
type InstanceSource interface {
	FindConnected(ctx context.Context) ([]storefront.Instance, error)
}

// Config holds the sync scheduler configuration
type Config struct {
	// FullSyncInterval is the pause between full catalog sync passes
	FullSyncInterval time.Duration
	// StockPriceInterval is the pause between stock and price passes
	StockPriceInterval time.Duration
}

// DefaultConfig returns the default scheduler intervals
func DefaultConfig() Config {
	return Config{
		FullSyncInterval:   time.Hour,
		StockPriceInterval: 15 * time.Minute,
	}
}

// SyncScheduler periodically runs catalog and stock/price synchronization
// for every connected instance. Instances are processed sequentially; a
// failing instance never blocks the others.
type SyncScheduler struct {
	config    Config
	runner    SyncRunner
	instances InstanceSource
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        stdsync.WaitGroup
	mu        stdsync.Mutex
	isRunning bool
}

// NewSyncScheduler creates a new sync scheduler
func NewSyncScheduler(config Config, runner SyncRunner, instances InstanceSource, logger *zap.Logger) *SyncScheduler {
	if config.FullSyncInterval <= 0 {
		config.FullSyncInterval = DefaultConfig().FullSyncInterval
	}
	if config.StockPriceInterval <= 0 {
		config.StockPriceInterval = DefaultConfig().StockPriceInterval
	}
	return &SyncScheduler{
		config:    config,
		runner:    runner,
		instances: instances,
		logger:    logger,
	}
}

// Start launches the scheduler loops
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(2)
	go s.runLoop(ctx, s.config.FullSyncInterval, s.runFullSyncPass)
	go s.runLoop(ctx, s.config.StockPriceInterval, s.runStockPricePass)

	s.logger.Info("Sync scheduler started",
		zap.Duration("full_sync_interval", s.config.FullSyncInterval),
		zap.Duration("stock_price_interval", s.config.StockPriceInterval),
	)
	return nil
}

// Stop stops the scheduler and waits for in-flight passes to finish
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
		s.logger.Info("Sync scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SyncScheduler) runLoop(ctx context.Context, interval time.Duration, pass func(ctx context.Context)) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pass(ctx)
		}
	}
}

func (s *SyncScheduler) runFullSyncPass(ctx context.Context) {
	s.forEachInstance(ctx, func(instance storefront.Instance) {
		summary, err := s.runner.RunFullSync(ctx, instance.ID)
		if err != nil {
			s.logger.Error("Scheduled full sync failed",
				zap.String("instance", instance.Name),
				zap.Error(err),
			)
			return
		}
		s.logger.Info("Scheduled full sync finished",
			zap.String("instance", instance.Name),
			zap.Int("synced", summary.SuccessCount),
			zap.Int("failed", summary.ErrorCount),
			zap.Bool("truncated", summary.Truncated),
			zap.Duration("elapsed", summary.Elapsed),
		)
	})
}

func (s *SyncScheduler) runStockPricePass(ctx context.Context) {
	s.forEachInstance(ctx, func(instance storefront.Instance) {
		if err := s.runner.RunStockPriceSync(ctx, instance.ID); err != nil {
			s.logger.Error("Scheduled stock and price sync failed",
				zap.String("instance", instance.Name),
				zap.Error(err),
			)
		}
	})
}

func (s *SyncScheduler) forEachInstance(ctx context.Context, run func(instance storefront.Instance)) {
	instances, err := s.instances.FindConnected(ctx)
	if err != nil {
		s.logger.Error("Failed to list connected instances", zap.Error(err))
		return
	}

	for _, instance := range instances {
		if ctx.Err() != nil {
			return
		}
		run(instance)
	}
}
