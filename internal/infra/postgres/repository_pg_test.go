package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgresContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresDriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"product-comparison-service/internal/domain"
	"product-comparison-service/internal/infra/postgres/migrations"
)

// setupPostgres starts a PostgreSQL testcontainer and returns a connected
// GORM DB with migrations applied.
//
// Prerequisites: Docker must be running. Skip with: go test -short
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	ctx := context.Background()

	pgContainer, err := postgresContainer.Run(ctx,
		"postgres:16-alpine",
		postgresContainer.WithDatabase("testdb"),
		postgresContainer.WithUsername("testuser"),
		postgresContainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start PostgreSQL container (is Docker running? skip with -short): %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	db, err := gorm.Open(postgresDriver.Open(connStr), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, migrations.Run(db), "failed to run migrations")

	return db
}

// TestPostgres_UpsertSearchDeleteCycle exercises the full offer lifecycle
// against a real PostgreSQL instance: the portable SQL the repository
// emits must behave identically to the SQLite-backed unit tests.
func TestPostgres_UpsertSearchDeleteCycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	repo := NewRepository(setupPostgres(t))
	ctx := context.Background()

	offer := domain.UpsertOffer{
		Product:       "owl",
		Description:   "wise",
		Category:      "Birds",
		Price:         3,
		Supplier:      "DavesPets",
		ProductRating: 0.98,
		LastUpdated:   time.Now().UTC(),
	}
	require.NoError(t, repo.UpsertOffer(ctx, offer))

	results, err := repo.Search(ctx, domain.SearchQuery{Product: "owl"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 3.0, results[0].Price)
	assert.Equal(t, domain.CombinedRating(0.98, domain.DefaultRating), results[0].CombinedRating)

	refreshedAt := time.Now().UTC()
	require.NoError(t, repo.ApplyRefreshedResults(ctx, []domain.SearchResult{
		{Product: "owl", Supplier: "DavesPets", Price: 4, LastUpdated: refreshedAt},
	}))

	results, err = repo.Search(ctx, domain.SearchQuery{Product: "owl"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 4.0, results[0].Price)

	require.NoError(t, repo.DeleteOffer(ctx, "owl", "DavesPets"))

	results, err = repo.Search(ctx, domain.SearchQuery{Product: "owl"})
	require.NoError(t, err)
	assert.Empty(t, results, "cascade-on-empty removed the product")
}
