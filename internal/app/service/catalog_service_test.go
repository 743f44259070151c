package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"product-comparison-service/internal/domain"
	"product-comparison-service/pkg/cache"
)

// fakeRepo is an in-memory test double for domain.OfferRepository that
// records which operations were invoked.
type fakeRepo struct {
	results []domain.SearchResult
	applied [][]domain.SearchResult

	searchCalls int
	upserts     []domain.UpsertOffer
	deletes     []domain.OfferKey

	searchErr error
	applyErr  error
}

func (f *fakeRepo) Search(_ context.Context, _ domain.SearchQuery) ([]domain.SearchResult, error) {
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

func (f *fakeRepo) UpsertOffer(_ context.Context, offer domain.UpsertOffer) error {
	f.upserts = append(f.upserts, offer)
	return nil
}

func (f *fakeRepo) DeleteOffer(_ context.Context, product, supplier string) error {
	f.deletes = append(f.deletes, domain.OfferKey{Supplier: supplier, Product: product})
	return nil
}

func (f *fakeRepo) ApplyRefreshedResults(_ context.Context, results []domain.SearchResult) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, results)
	return nil
}

func (f *fakeRepo) InsertProduct(_ context.Context, _ domain.Product) error   { return nil }
func (f *fakeRepo) InsertSupplier(_ context.Context, _ domain.Supplier) error { return nil }
func (f *fakeRepo) InsertOffer(_ context.Context, _ domain.SupplierOffer) error {
	return nil
}

// fakeGateway returns canned refresh results and counts invocations.
type fakeGateway struct {
	refreshed map[domain.OfferKey]domain.SearchResult
	calls     int
	gotInput  []domain.SearchResult
}

func (f *fakeGateway) Refresh(_ context.Context, results []domain.SearchResult) map[domain.OfferKey]domain.SearchResult {
	f.calls++
	f.gotInput = results
	return f.refreshed
}

func newTestService(repo *fakeRepo, gw *fakeGateway) (*CatalogService, *cache.Bounded[[]domain.SearchResult]) {
	c := cache.NewBounded[[]domain.SearchResult](10)
	svc := NewCatalogService(repo, gw, c, time.Hour, zap.NewNop())
	return svc, c
}

func freshResult(product, supplier string, price float64) domain.SearchResult {
	return domain.SearchResult{
		Product:     product,
		Supplier:    supplier,
		Price:       price,
		LastUpdated: time.Now().UTC(),
	}
}

func staleResult(product, supplier string, price float64) domain.SearchResult {
	r := freshResult(product, supplier, price)
	r.LastUpdated = time.Now().UTC().Add(-2 * time.Hour)
	return r
}

func TestSearch_FreshCacheHitShortCircuits(t *testing.T) {
	repo := &fakeRepo{}
	gw := &fakeGateway{}
	svc, c := newTestService(repo, gw)

	cached := []domain.SearchResult{freshResult("owl", "DavesPets", 3)}
	query := domain.SearchQuery{Product: "owl"}
	c.Put(query.Key(), cached)

	got, err := svc.Search(context.Background(), query)
	require.NoError(t, err)

	// Exactly the cached value, no persistence or supplier calls.
	assert.Equal(t, cached, got)
	assert.Zero(t, repo.searchCalls)
	assert.Zero(t, gw.calls)
	assert.Empty(t, repo.applied)
}

func TestSearch_MissQueriesStoreAndCaches(t *testing.T) {
	repo := &fakeRepo{results: []domain.SearchResult{freshResult("owl", "DavesPets", 3)}}
	gw := &fakeGateway{}
	svc, c := newTestService(repo, gw)

	query := domain.SearchQuery{Product: "owl"}
	got, err := svc.Search(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, repo.results, got)
	assert.Equal(t, 1, repo.searchCalls)
	assert.Zero(t, gw.calls, "fresh store results need no refresh")
	assert.True(t, c.Contains(query.Key()), "miss populates the cache")
}

func TestSearch_StaleResultTriggersRefresh(t *testing.T) {
	stale := staleResult("owl", "DavesPets", 3)
	updated := stale
	updated.Price = 4
	updated.LastUpdated = time.Now().UTC()

	repo := &fakeRepo{results: []domain.SearchResult{stale}}
	gw := &fakeGateway{refreshed: map[domain.OfferKey]domain.SearchResult{
		stale.Key(): updated,
	}}
	svc, c := newTestService(repo, gw)

	query := domain.SearchQuery{Product: "owl"}
	got, err := svc.Search(context.Background(), query)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, 4.0, got[0].Price, "price reflects the supplier's drift")
	assert.True(t, got[0].LastUpdated.After(stale.LastUpdated))

	// Merged results were persisted and cached.
	require.Len(t, repo.applied, 1)
	assert.Equal(t, got, repo.applied[0])
	cachedNow, ok := c.Get(query.Key())
	require.True(t, ok)
	assert.Equal(t, got, cachedNow)
}

func TestSearch_StaleCacheHitRefreshes(t *testing.T) {
	stale := staleResult("owl", "DavesPets", 3)
	updated := stale
	updated.Price = 4
	updated.LastUpdated = time.Now().UTC()

	repo := &fakeRepo{}
	gw := &fakeGateway{refreshed: map[domain.OfferKey]domain.SearchResult{
		stale.Key(): updated,
	}}
	svc, c := newTestService(repo, gw)

	query := domain.SearchQuery{Product: "owl"}
	c.Put(query.Key(), []domain.SearchResult{stale})

	got, err := svc.Search(context.Background(), query)
	require.NoError(t, err)

	assert.Zero(t, repo.searchCalls, "staleness is judged on the cached value, not re-queried")
	assert.Equal(t, 1, gw.calls)
	require.Len(t, got, 1)
	assert.Equal(t, 4.0, got[0].Price)
}

func TestSearch_PartialRefreshKeepsOriginalRows(t *testing.T) {
	staleA := staleResult("owl", "DavesPets", 3)
	staleB := staleResult("owl", "iPet", 4)
	updatedA := staleA
	updatedA.Price = 4
	updatedA.LastUpdated = time.Now().UTC()

	repo := &fakeRepo{results: []domain.SearchResult{staleA, staleB}}
	gw := &fakeGateway{refreshed: map[domain.OfferKey]domain.SearchResult{
		staleA.Key(): updatedA,
		// staleB's supplier failed; no entry.
	}}
	svc, _ := newTestService(repo, gw)

	got, err := svc.Search(context.Background(), domain.SearchQuery{Product: "owl"})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, 4.0, got[0].Price)
	assert.Equal(t, staleB, got[1], "failed refresh degrades to the stale value")
	assert.Equal(t, "DavesPets", got[0].Supplier, "original ordering preserved")
}

func TestSearch_EmptyResultSetTriggersRefresh(t *testing.T) {
	repo := &fakeRepo{}
	gw := &fakeGateway{}
	svc, c := newTestService(repo, gw)

	query := domain.SearchQuery{Product: "dragon"}
	got, err := svc.Search(context.Background(), query)
	require.NoError(t, err)

	assert.Empty(t, got)
	assert.Equal(t, 1, gw.calls, "empty result sets still probe the suppliers")
	assert.True(t, c.Contains(query.Key()), "the empty answer is cached")
	assert.Empty(t, repo.applied, "nothing to persist for an empty merge")
}

func TestSearch_CachedEmptySetIsStillAHit(t *testing.T) {
	repo := &fakeRepo{results: []domain.SearchResult{freshResult("dragon", "DavesPets", 100)}}
	gw := &fakeGateway{}
	svc, c := newTestService(repo, gw)

	query := domain.SearchQuery{Product: "dragon"}
	c.Put(query.Key(), []domain.SearchResult{})

	got, err := svc.Search(context.Background(), query)
	require.NoError(t, err)

	// A cached empty answer must not be mistaken for a miss: the store
	// is left alone and the empty set goes through the refresh path.
	assert.Empty(t, got)
	assert.Zero(t, repo.searchCalls)
	assert.Equal(t, 1, gw.calls)
}

func TestSearch_StoreErrorPropagates(t *testing.T) {
	repo := &fakeRepo{searchErr: assert.AnError}
	svc, _ := newTestService(repo, &fakeGateway{})

	_, err := svc.Search(context.Background(), domain.SearchQuery{})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestSearch_WriteBackErrorPropagates(t *testing.T) {
	repo := &fakeRepo{
		results:  []domain.SearchResult{staleResult("owl", "DavesPets", 3)},
		applyErr: assert.AnError,
	}
	svc, c := newTestService(repo, &fakeGateway{})

	_, err := svc.Search(context.Background(), domain.SearchQuery{Product: "owl"})
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, c.Contains(domain.SearchQuery{Product: "owl"}.Key()),
		"failed write-back must not poison the cache")
}

func TestUpsert_StampsTimestampAndValidates(t *testing.T) {
	repo := &fakeRepo{}
	svc, _ := newTestService(repo, &fakeGateway{})

	before := time.Now().UTC()
	got, err := svc.Upsert(context.Background(), domain.UpsertOffer{
		Product:       "owl",
		Description:   "wise",
		Category:      "Birds",
		Price:         3,
		Supplier:      "DavesPets",
		ProductRating: 0.98,
	})
	require.NoError(t, err)

	assert.False(t, got.LastUpdated.Before(before))
	require.Len(t, repo.upserts, 1)
	assert.Equal(t, got, repo.upserts[0])

	_, err = svc.Upsert(context.Background(), domain.UpsertOffer{Product: "owl"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpsert_DoesNotInvalidateCache(t *testing.T) {
	repo := &fakeRepo{}
	svc, c := newTestService(repo, &fakeGateway{})

	query := domain.SearchQuery{Product: "owl"}
	cached := []domain.SearchResult{freshResult("owl", "DavesPets", 3)}
	c.Put(query.Key(), cached)

	_, err := svc.Upsert(context.Background(), domain.UpsertOffer{
		Product: "owl", Description: "wise", Category: "Birds", Price: 9, Supplier: "DavesPets",
	})
	require.NoError(t, err)

	// Writes leave summarizing cache entries untouched.
	got, ok := c.Get(query.Key())
	require.True(t, ok)
	assert.Equal(t, cached, got)
}

func TestDelete(t *testing.T) {
	repo := &fakeRepo{}
	svc, _ := newTestService(repo, &fakeGateway{})

	require.NoError(t, svc.Delete(context.Background(), "owl", "DavesPets"))
	assert.Equal(t, []domain.OfferKey{{Supplier: "DavesPets", Product: "owl"}}, repo.deletes)

	assert.ErrorIs(t, svc.Delete(context.Background(), "", "DavesPets"), domain.ErrValidation)
	assert.ErrorIs(t, svc.Delete(context.Background(), "owl", ""), domain.ErrValidation)
}

func TestRefreshCatalog(t *testing.T) {
	stale := staleResult("owl", "DavesPets", 3)
	updated := stale
	updated.Price = 4
	updated.LastUpdated = time.Now().UTC()

	repo := &fakeRepo{results: []domain.SearchResult{stale}}
	gw := &fakeGateway{refreshed: map[domain.OfferKey]domain.SearchResult{stale.Key(): updated}}
	svc, c := newTestService(repo, gw)

	count, err := svc.RefreshCatalog(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, count)
	require.Len(t, repo.applied, 1)
	assert.False(t, c.Contains(domain.SearchQuery{}.Key()), "scheduler refresh bypasses the cache")
}

func TestRefreshCatalog_FreshCatalogIsNoop(t *testing.T) {
	repo := &fakeRepo{results: []domain.SearchResult{freshResult("owl", "DavesPets", 3)}}
	gw := &fakeGateway{}
	svc, _ := newTestService(repo, gw)

	count, err := svc.RefreshCatalog(context.Background())
	require.NoError(t, err)

	assert.Zero(t, count)
	assert.Zero(t, gw.calls)
}
