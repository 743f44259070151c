// Package job provides background job schedulers.
package job

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"product-comparison-service/internal/app/service"
	"product-comparison-service/pkg/locker"
)

// RefreshScheduler periodically sweeps the catalog for stale offers and
// refreshes them from the suppliers, with distributed locking so only one
// instance runs a sweep at a time.
type RefreshScheduler struct {
	catalogService *service.CatalogService
	interval       time.Duration
	timeout        time.Duration
	logger         *zap.Logger
	locker         locker.DistributedLocker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// RefreshConfig holds refresh scheduler configuration.
type RefreshConfig struct {
	Interval  time.Duration
	Timeout   time.Duration
	OnStartup bool
}

// NewRefreshScheduler creates a new RefreshScheduler with distributed
// locking support.
func NewRefreshScheduler(
	catalogSvc *service.CatalogService,
	cfg RefreshConfig,
	logger *zap.Logger,
	locker locker.DistributedLocker,
) *RefreshScheduler {
	return &RefreshScheduler{
		catalogService: catalogSvc,
		interval:       cfg.Interval,
		timeout:        cfg.Timeout,
		logger:         logger,
		locker:         locker,
	}
}

// Start begins the background refresh job.
func (s *RefreshScheduler) Start(runOnStartup bool) {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.logger.Info("starting refresh scheduler",
		zap.Duration("interval", s.interval),
		zap.Bool("run_on_startup", runOnStartup),
	)

	s.wg.Add(1)
	go s.run(runOnStartup)
}

// Stop gracefully stops the scheduler.
func (s *RefreshScheduler) Stop() {
	s.logger.Info("stopping refresh scheduler")
	s.cancel()
	s.wg.Wait()
	s.logger.Info("refresh scheduler stopped")
}

// run is the main loop of the scheduler.
func (s *RefreshScheduler) run(runOnStartup bool) {
	defer s.wg.Done()

	// Run immediately if configured
	if runOnStartup {
		s.executeRefresh()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.executeRefresh()
		}
	}
}

// executeRefresh performs one sweep with distributed locking and timeout.
//
// Locking behavior:
//   - Lock TTL = interval duration (cooldown model, not timeout)
//   - Success: lock held for the full interval to prevent duplicate sweeps
//   - Failure: lock released immediately so another instance can retry
func (s *RefreshScheduler) executeRefresh() {
	const lockKey = "refresh:scheduler:lock"

	acquired, err := s.locker.Acquire(s.ctx, lockKey, s.interval)
	if err != nil {
		s.logger.Error("failed to acquire distributed lock", zap.Error(err))

		return
	}
	if !acquired {
		s.logger.Debug("another instance is running the refresh, skipping execution")

		return
	}

	// Lock acquired - run the sweep with timeout
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	refreshed, err := s.catalogService.RefreshCatalog(ctx)
	if err != nil {
		// Release lock immediately on error (allow immediate retry)
		if relErr := s.locker.Release(s.ctx, lockKey); relErr != nil {
			s.logger.Error("failed to release lock after refresh error", zap.Error(relErr))
		}
		s.logger.Warn("catalog refresh failed, lock released for retry", zap.Error(err))

		return
	}

	// Lock will expire naturally after the interval (cooldown period)
	s.logger.Info("catalog refresh completed, lock held for cooldown",
		zap.Int("offers_refreshed", refreshed),
		zap.Duration("cooldown", s.interval),
	)
}
