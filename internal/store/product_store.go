// Package store persists extracted candidates, applying clamping and
// validation rules before any row reaches the database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scoutpool/internal/models"
)

// ProductStore saves ProductRecords, clamping out-of-range numeric fields
// rather than rejecting the whole record, and treating a duplicate
// product_url as a silent success (the unique index is the source of
// truth for "already have this product").
type ProductStore struct {
	db     *sql.DB
	logger arbor.ILogger
}

// New constructs a ProductStore over an already-initialized schema.
func New(db *sql.DB, logger arbor.ILogger) *ProductStore {
	return &ProductStore{db: db, logger: logger}
}

// SaveAll persists every candidate that passes validation and returns the
// saved count: duplicates of an existing product_url count as saved,
// drops for a missing name or url do not.
func (s *ProductStore) SaveAll(ctx context.Context, candidates []models.ExtractedCandidate) (int, error) {
	saved := 0
	for _, c := range candidates {
		record := c.ToProductRecord()
		ok, err := s.Save(ctx, record)
		if err != nil {
			return saved, err
		}
		if ok {
			saved++
		}
	}
	return saved, nil
}

// Save inserts one record. It returns (false, nil) for records missing a
// required field, so callers can count drops without treating them as
// errors.
func (s *ProductStore) Save(ctx context.Context, r models.ProductRecord) (bool, error) {
	if strings.TrimSpace(r.ProductName) == "" || strings.TrimSpace(r.ProductURL) == "" {
		s.logger.Debug().Str("url", r.ProductURL).Msg("dropping candidate missing name or url")
		return false, nil
	}

	clampCurrentPrice(&r)
	clampRating(&r)
	coerceReviews(&r)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (
			platform_url, product_name, product_url, original_price, current_price,
			product_image_url, description, rating, reviews, in_stock, brand,
			product_type_id, searched_product_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.PlatformURL, r.ProductName, r.ProductURL, r.OriginalPrice, r.CurrentPrice,
		r.ProductImageURL, r.Description, r.Rating, r.Reviews, boolToInt(r.InStock), r.Brand,
		r.ProductTypeID, r.SearchedProductID, time.Now().Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			// Already have this product; treat the duplicate as success.
			return true, nil
		}
		return false, fmt.Errorf("inserting product %s: %w", r.ProductURL, err)
	}
	return true, nil
}

func clampCurrentPrice(r *models.ProductRecord) {
	if r.CurrentPrice == nil {
		return
	}
	v := *r.CurrentPrice
	if v < models.MinCurrentPrice {
		v = models.MinCurrentPrice
	}
	if v > models.MaxCurrentPrice {
		v = models.MaxCurrentPrice
	}
	r.CurrentPrice = &v
}

func clampRating(r *models.ProductRecord) {
	if r.Rating == nil {
		return
	}
	v := *r.Rating
	if v < models.MinRating {
		v = models.MinRating
	}
	if v > models.MaxRating {
		v = models.MaxRating
	}
	v = math.Round(v*100) / 100
	r.Rating = &v
}

func coerceReviews(r *models.ProductRecord) {
	if r.Reviews == nil {
		return
	}
	v := *r.Reviews
	if v < 0 {
		v = 0
	}
	r.Reviews = &v
}

func boolToInt(b *bool) interface{} {
	if b == nil {
		return nil
	}
	if *b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
