package supplier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"product-comparison-service/internal/domain"
)

// RemoteConfig holds configuration for the pull_url-backed gateway.
type RemoteConfig struct {
	Timeout time.Duration
	Retry   RetryConfig
	CB      CBConfig
}

// RetryConfig holds retry settings.
type RetryConfig struct {
	MaxAttempts int
	WaitTime    time.Duration
	MaxWaitTime time.Duration
}

// CBConfig holds circuit breaker settings.
type CBConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
}

// Directory resolves supplier names to their stored records; the
// repository implements it.
type Directory interface {
	ListSuppliers(ctx context.Context, names []string) ([]domain.Supplier, error)
}

// remoteOffer is one row of a supplier's pull_url response.
type remoteOffer struct {
	Product string  `json:"product"`
	Price   float64 `json:"price"`
}

// Remote implements domain.SupplierGateway by fetching current prices
// from each supplier's pull_url. One GET is issued per distinct supplier
// in the result set; a failing supplier is skipped, never surfaced.
type Remote struct {
	client    *resty.Client
	cfg       RemoteConfig
	directory Directory
	logger    *zap.Logger
	now       func() time.Time

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[*resty.Response]
}

// NewRemote creates a pull_url-backed gateway.
func NewRemote(cfg RemoteConfig, directory Directory, logger *zap.Logger) *Remote {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retry.MaxAttempts).
		SetRetryWaitTime(cfg.Retry.WaitTime).
		SetRetryMaxWaitTime(cfg.Retry.MaxWaitTime).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// Retry on network errors or 5xx status codes
			if err != nil {
				return true
			}

			return r.StatusCode() >= 500
		})

	return &Remote{
		client:    client,
		cfg:       cfg,
		directory: directory,
		logger:    logger,
		now:       time.Now,
		breakers:  make(map[string]*gobreaker.CircuitBreaker[*resty.Response]),
	}
}

// Refresh pulls current prices from every supplier implicated by the
// result set, concurrently, and returns the refreshed rows keyed by
// (supplier, product).
func (g *Remote) Refresh(ctx context.Context, results []domain.SearchResult) map[domain.OfferKey]domain.SearchResult {
	bySupplier := make(map[string][]domain.SearchResult)
	names := make([]string, 0, len(results))
	for _, r := range results {
		if _, seen := bySupplier[r.Supplier]; !seen {
			names = append(names, r.Supplier)
		}
		bySupplier[r.Supplier] = append(bySupplier[r.Supplier], r)
	}

	refreshed := make(map[domain.OfferKey]domain.SearchResult, len(results))
	if len(names) == 0 {
		return refreshed
	}

	suppliers, err := g.directory.ListSuppliers(ctx, names)
	if err != nil {
		g.logger.Error("supplier lookup failed", zap.Error(err))
		return refreshed
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, sup := range suppliers {
		if sup.PullURL == "" {
			g.logger.Debug("supplier has no pull_url, skipping", zap.String("supplier", sup.Name))
			continue
		}

		wg.Add(1)
		go func(sup domain.Supplier) {
			defer wg.Done()

			offers, err := g.pull(ctx, sup)
			if err != nil {
				g.logger.Warn("supplier pull failed",
					zap.String("supplier", sup.Name),
					zap.String("pull_url", sup.PullURL),
					zap.Error(err),
				)
				return
			}

			prices := make(map[string]float64, len(offers))
			for _, o := range offers {
				prices[o.Product] = o.Price
			}

			now := g.now().UTC()
			mu.Lock()
			for _, original := range bySupplier[sup.Name] {
				price, ok := prices[original.Product]
				if !ok {
					continue
				}
				updated := original
				updated.Price = price
				updated.LastUpdated = now
				refreshed[original.Key()] = updated
			}
			mu.Unlock()
		}(sup)
	}
	wg.Wait()

	return refreshed
}

// pull fetches the supplier's current offers through its circuit breaker.
func (g *Remote) pull(ctx context.Context, sup domain.Supplier) ([]remoteOffer, error) {
	cb := g.breaker(sup.Name)

	resp, err := cb.Execute(func() (*resty.Response, error) {
		var offers []remoteOffer
		r, err := g.client.R().
			SetContext(ctx).
			SetResult(&offers).
			Get(sup.PullURL)
		if err != nil {
			return nil, err
		}
		if r.IsError() {
			return nil, fmt.Errorf("supplier %s returned status %d", sup.Name, r.StatusCode())
		}

		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("pulling from %s: %w", sup.Name, err)
	}

	offers, ok := resp.Result().(*[]remoteOffer)
	if !ok || offers == nil {
		return nil, fmt.Errorf("unexpected response shape from %s", sup.Name)
	}

	return *offers, nil
}

// breaker returns the supplier's circuit breaker, creating it on first use.
func (g *Remote) breaker(name string) *gobreaker.CircuitBreaker[*resty.Response] {
	g.mu.Lock()
	defer g.mu.Unlock()

	if cb, ok := g.breakers[name]; ok {
		return cb
	}

	cb := gobreaker.NewCircuitBreaker[*resty.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: g.cfg.CB.MaxRequests,
		Interval:    g.cfg.CB.Interval,
		Timeout:     g.cfg.CB.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)

			return counts.Requests >= 3 && failureRatio >= g.cfg.CB.FailureRatio
		},
	})
	g.breakers[name] = cb

	return cb
}
