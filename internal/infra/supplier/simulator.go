// Package supplier provides gateways that fetch updated price data from
// supplier sources: a deterministic simulator and a pull_url-backed
// remote client.
package supplier

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"product-comparison-service/internal/domain"
)

// SimulatorConfig holds simulated supplier call settings.
type SimulatorConfig struct {
	Delay     time.Duration // per-call latency
	PriceStep float64       // fixed price drift applied on each refresh
	MinCalls  int           // call floor when the input is empty
}

// Simulator implements domain.SupplierGateway with simulated supplier
// calls: each call waits a fixed delay, then returns the offer with the
// price incremented by a fixed step and last_updated set to now. All
// calls run concurrently; the whole refresh costs roughly one delay.
type Simulator struct {
	cfg    SimulatorConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewSimulator creates a simulator gateway.
func NewSimulator(cfg SimulatorConfig, logger *zap.Logger) *Simulator {
	return &Simulator{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Refresh issues one simulated call per result (or MinCalls probe calls
// for an empty input) and waits for all of them. A call that fails, e.g.
// because the context expired mid-delay, is dropped from the returned
// map so the caller keeps the original row.
func (s *Simulator) Refresh(ctx context.Context, results []domain.SearchResult) map[domain.OfferKey]domain.SearchResult {
	calls := len(results)
	if calls == 0 {
		calls = s.cfg.MinCalls
	}

	refreshed := make(map[domain.OfferKey]domain.SearchResult, len(results))
	var mu sync.Mutex
	var wg sync.WaitGroup

	start := time.Now()
	for i := 0; i < calls; i++ {
		wg.Add(1)

		if i >= len(results) {
			// Probe call: pays the latency, returns nothing.
			go func() {
				defer wg.Done()
				_ = s.wait(ctx)
			}()
			continue
		}

		go func(original domain.SearchResult) {
			defer wg.Done()

			updated, err := s.call(ctx, original)
			if err != nil {
				// One failing supplier never blocks the rest; the stale
				// row survives until the next read retries.
				s.logger.Warn("simulated supplier call failed",
					zap.String("supplier", original.Supplier),
					zap.String("product", original.Product),
					zap.Error(err),
				)
				return
			}

			mu.Lock()
			refreshed[original.Key()] = updated
			mu.Unlock()
		}(results[i])
	}

	wg.Wait()

	s.logger.Debug("supplier refresh completed",
		zap.Int("calls", calls),
		zap.Int("refreshed", len(refreshed)),
		zap.Duration("duration", time.Since(start)),
	)

	return refreshed
}

// call models a single network fetch to the offer's supplier.
func (s *Simulator) call(ctx context.Context, original domain.SearchResult) (domain.SearchResult, error) {
	if err := s.wait(ctx); err != nil {
		return domain.SearchResult{}, err
	}

	updated := original
	updated.Price = original.Price + s.cfg.PriceStep
	updated.LastUpdated = s.now().UTC()
	return updated, nil
}

func (s *Simulator) wait(ctx context.Context) error {
	if s.cfg.Delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.cfg.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
