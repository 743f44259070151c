package service

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"product-comparison-service/internal/domain"
)

// ImportStats summarizes one bulk-load run.
type ImportStats struct {
	Inserted int
	Skipped  int
}

// ImportService bulk-loads catalog records from newline-delimited JSON.
// Each line is one record; duplicate records and records referencing
// missing entities are skipped and logged rather than aborting the run.
type ImportService struct {
	repo   domain.OfferRepository
	logger *zap.Logger
}

func NewImportService(repo domain.OfferRepository, logger *zap.Logger) *ImportService {
	return &ImportService{repo: repo, logger: logger}
}

type productRecord struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	LastUpdated *time.Time `json:"last_updated"`
	Rating      *float64   `json:"rating"`
}

type supplierRecord struct {
	Name    string   `json:"name"`
	PullURL string   `json:"pull_url"`
	Rating  *float64 `json:"rating"`
}

type offerRecord struct {
	Supplier string  `json:"supplier"`
	Product  string  `json:"product"`
	Price    float64 `json:"price"`
}

// ImportProducts reads product records, one JSON object per line.
// A missing rating defaults to 0.5; a missing last_updated defaults to now.
func (s *ImportService) ImportProducts(ctx context.Context, r io.Reader) (ImportStats, error) {
	return s.scan(ctx, r, func(ctx context.Context, line []byte) error {
		var rec productRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return domain.Errorf(domain.ErrValidation, "malformed product record: %v", err)
		}
		if rec.Name == "" || rec.Category == "" {
			return domain.Errorf(domain.ErrValidation, "product record needs name and category")
		}

		product := domain.Product{
			Name:        rec.Name,
			Description: rec.Description,
			Category:    rec.Category,
			Rating:      domain.DefaultRating,
			LastUpdated: time.Now().UTC(),
		}
		if rec.Rating != nil {
			product.Rating = *rec.Rating
		}
		if rec.LastUpdated != nil {
			product.LastUpdated = rec.LastUpdated.UTC()
		}

		return s.repo.InsertProduct(ctx, product)
	})
}

// ImportSuppliers reads supplier records, one JSON object per line.
func (s *ImportService) ImportSuppliers(ctx context.Context, r io.Reader) (ImportStats, error) {
	return s.scan(ctx, r, func(ctx context.Context, line []byte) error {
		var rec supplierRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return domain.Errorf(domain.ErrValidation, "malformed supplier record: %v", err)
		}
		if rec.Name == "" {
			return domain.Errorf(domain.ErrValidation, "supplier record needs a name")
		}

		supplier := domain.Supplier{
			Name:    rec.Name,
			PullURL: rec.PullURL,
			Rating:  domain.DefaultRating,
		}
		if rec.Rating != nil {
			supplier.Rating = *rec.Rating
		}

		return s.repo.InsertSupplier(ctx, supplier)
	})
}

// ImportOffers reads supplier-product offer records, one JSON object per
// line. Both the supplier and the product must already exist; offers
// referencing missing entities are skipped.
func (s *ImportService) ImportOffers(ctx context.Context, r io.Reader) (ImportStats, error) {
	return s.scan(ctx, r, func(ctx context.Context, line []byte) error {
		var rec offerRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return domain.Errorf(domain.ErrValidation, "malformed offer record: %v", err)
		}
		if rec.Supplier == "" || rec.Product == "" {
			return domain.Errorf(domain.ErrValidation, "offer record needs supplier and product")
		}
		if rec.Price < 0 {
			return domain.Errorf(domain.ErrValidation, "price must be non-negative")
		}

		return s.repo.InsertOffer(ctx, domain.SupplierOffer{
			Supplier: rec.Supplier,
			Product:  rec.Product,
			Price:    rec.Price,
		})
	})
}

// scan drives one line-at-a-time run. Client-class errors (validation,
// duplicates, missing references) count as skips; anything else aborts.
func (s *ImportService) scan(ctx context.Context, r io.Reader, insert func(context.Context, []byte) error) (ImportStats, error) {
	var stats ImportStats

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		err := insert(ctx, line)
		switch {
		case err == nil:
			stats.Inserted++
		case isSkippable(err):
			stats.Skipped++
			s.logger.Warn("record skipped",
				zap.Int("line", lineNo),
				zap.Error(err),
			)
		default:
			return stats, err
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, err
	}

	s.logger.Info("import finished",
		zap.Int("inserted", stats.Inserted),
		zap.Int("skipped", stats.Skipped),
	)
	return stats, nil
}

func isSkippable(err error) bool {
	return errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrReferentialIntegrity)
}
