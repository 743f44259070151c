// Package service provides application use cases.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"product-comparison-service/internal/domain"
	"product-comparison-service/pkg/cache"
)

// Read path states, logged for operational visibility.
const (
	stateCacheHit       = "CACHE_HIT"
	stateCacheMissQuery = "CACHE_MISS_STORE_QUERY"
	stateRefresh        = "REFRESH_REQUIRED"
	statePersistCache   = "PERSIST_AND_CACHE"
	stateRespond        = "RESPOND"
)

// CatalogService orchestrates offer reads and writes: on each read it
// consults the cache, falls back to the store, judges staleness, and
// conditionally triggers a concurrent supplier refresh whose merged
// results are persisted and cached exactly once.
//
// Two concurrent reads of the same key may each run the refresh; there is
// no per-key request coalescing. Writes do not invalidate cached keys.
type CatalogService struct {
	repo         domain.OfferRepository
	gateway      domain.SupplierGateway
	cache        *cache.Bounded[[]domain.SearchResult]
	refetchLimit time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewCatalogService creates a new CatalogService. The cache is the single
// process-wide instance shared by every request.
func NewCatalogService(
	repo domain.OfferRepository,
	gateway domain.SupplierGateway,
	resultCache *cache.Bounded[[]domain.SearchResult],
	refetchLimit time.Duration,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		repo:         repo,
		gateway:      gateway,
		cache:        resultCache,
		refetchLimit: refetchLimit,
		logger:       logger,
		now:          time.Now,
	}
}

// Search serves a query from the cache or the store, refreshing via the
// supplier gateway when any row is older than the refetch limit or the
// result set is empty. A fresh cache hit is returned as-is with no
// persistence or supplier calls and no cache rewrite.
func (s *CatalogService) Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error) {
	key := query.Key()

	results, hit := s.cache.Get(key)
	if hit {
		s.logger.Debug("search state",
			zap.String("state", stateCacheHit),
			zap.String("product", query.Product),
			zap.String("category", query.Category),
		)
	} else {
		s.logger.Debug("search state",
			zap.String("state", stateCacheMissQuery),
			zap.String("product", query.Product),
			zap.String("category", query.Category),
		)

		var err error
		results, err = s.repo.Search(ctx, query)
		if err != nil {
			s.logger.Error("store query failed", zap.Error(err))
			return nil, err
		}
	}

	now := s.now().UTC()
	needsRefresh := len(results) == 0 || domain.AnyStale(results, now, s.refetchLimit)

	if !needsRefresh {
		// Fresh data is served as-is. The cache is written on a miss so
		// the next read for this key short-circuits, but a pure hit is
		// never rewritten.
		if !hit {
			s.cache.Put(key, results)
		}
		s.logger.Debug("search state", zap.String("state", stateRespond), zap.Int("results", len(results)))
		return results, nil
	}

	s.logger.Debug("search state",
		zap.String("state", stateRefresh),
		zap.Int("results", len(results)),
	)

	refreshed := s.gateway.Refresh(ctx, results)
	merged := domain.MergeRefreshed(results, refreshed)

	s.logger.Debug("search state",
		zap.String("state", statePersistCache),
		zap.Int("refreshed", len(refreshed)),
	)

	if len(merged) > 0 {
		if err := s.repo.ApplyRefreshedResults(ctx, merged); err != nil {
			s.logger.Error("refresh write-back failed", zap.Error(err))
			return nil, err
		}
	}

	s.cache.Put(key, merged)

	s.logger.Debug("search state", zap.String("state", stateRespond), zap.Int("results", len(merged)))
	return merged, nil
}

// Upsert validates and stores a supplier's offer for a product, stamping
// last_updated with the current time. Cached query keys that summarize
// the affected rows are not invalidated.
func (s *CatalogService) Upsert(ctx context.Context, offer domain.UpsertOffer) (domain.UpsertOffer, error) {
	offer.LastUpdated = s.now().UTC()

	if err := offer.Validate(); err != nil {
		return domain.UpsertOffer{}, err
	}

	if err := s.repo.UpsertOffer(ctx, offer); err != nil {
		s.logger.Error("upsert failed",
			zap.String("product", offer.Product),
			zap.String("supplier", offer.Supplier),
			zap.Error(err),
		)
		return domain.UpsertOffer{}, err
	}

	s.logger.Info("offer upserted",
		zap.String("product", offer.Product),
		zap.String("supplier", offer.Supplier),
		zap.Float64("price", offer.Price),
	)

	return offer, nil
}

// Delete removes a supplier's offer for a product. Removing the last
// offer of a product removes the product as well.
func (s *CatalogService) Delete(ctx context.Context, product, supplier string) error {
	if product == "" || supplier == "" {
		return domain.Errorf(domain.ErrValidation, "product and supplier are required")
	}

	if err := s.repo.DeleteOffer(ctx, product, supplier); err != nil {
		s.logger.Error("delete failed",
			zap.String("product", product),
			zap.String("supplier", supplier),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("offer deleted",
		zap.String("product", product),
		zap.String("supplier", supplier),
	)

	return nil
}

// RefreshCatalog refreshes the whole catalog when any offer has gone
// stale, bypassing the cache. Used by the background scheduler. Returns
// the number of rows refreshed.
func (s *CatalogService) RefreshCatalog(ctx context.Context) (int, error) {
	results, err := s.repo.Search(ctx, domain.SearchQuery{})
	if err != nil {
		return 0, err
	}

	now := s.now().UTC()
	if len(results) == 0 || !domain.AnyStale(results, now, s.refetchLimit) {
		return 0, nil
	}

	refreshed := s.gateway.Refresh(ctx, results)
	merged := domain.MergeRefreshed(results, refreshed)

	if err := s.repo.ApplyRefreshedResults(ctx, merged); err != nil {
		return 0, err
	}

	s.logger.Info("catalog refreshed",
		zap.Int("offers", len(merged)),
		zap.Int("refreshed", len(refreshed)),
	)

	return len(refreshed), nil
}
