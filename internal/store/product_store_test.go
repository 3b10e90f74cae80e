package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/scoutpool/internal/common"
	"github.com/ternarybob/scoutpool/internal/models"
	"github.com/ternarybob/scoutpool/internal/storage/sqlite"
)

func newTestStore(t *testing.T) *ProductStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.Open(path, common.GetLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db.Conn(), common.GetLogger())
}

func ptrFloat(f float64) *float64 { return &f }
func ptrInt(n int) *int           { return &n }
func ptrBool(b bool) *bool        { return &b }

func TestSave_DropsMissingNameOrURL(t *testing.T) {
	s := newTestStore(t)
	ok, err := s.Save(context.Background(), models.ProductRecord{ProductURL: "https://a.example.com/p/1"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Save(context.Background(), models.ProductRecord{ProductName: "Widget"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSave_InsertsValidRecord(t *testing.T) {
	s := newTestStore(t)
	record := models.ProductRecord{
		ProductName:  "Widget",
		ProductURL:   "https://a.example.com/p/1",
		CurrentPrice: ptrFloat(19.99),
		Rating:       ptrFloat(4.5),
		Reviews:      ptrInt(100),
		InStock:      ptrBool(true),
	}
	ok, err := s.Save(context.Background(), record)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSave_DuplicateURLIsSilentSuccess(t *testing.T) {
	s := newTestStore(t)
	record := models.ProductRecord{ProductName: "Widget", ProductURL: "https://a.example.com/p/1"}
	ok, err := s.Save(context.Background(), record)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Save(context.Background(), record)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSave_ClampsOutOfRangeFields(t *testing.T) {
	s := newTestStore(t)
	record := models.ProductRecord{
		ProductName:  "Widget",
		ProductURL:   "https://a.example.com/p/clamped",
		CurrentPrice: ptrFloat(-5),
		Rating:       ptrFloat(999),
		Reviews:      ptrInt(-10),
	}
	ok, err := s.Save(context.Background(), record)
	require.NoError(t, err)
	assert.True(t, ok)

	clamped := record
	clampCurrentPrice(&clamped)
	clampRating(&clamped)
	coerceReviews(&clamped)
	assert.Equal(t, models.MinCurrentPrice, *clamped.CurrentPrice)
	assert.Equal(t, models.MaxRating, *clamped.Rating)
	assert.Equal(t, 0, *clamped.Reviews)
}

func TestSaveAll_CountsOnlySaved(t *testing.T) {
	s := newTestStore(t)
	candidates := []models.ExtractedCandidate{
		{ProductName: "Widget One", ProductURL: "https://a.example.com/p/1"},
		{ProductName: "", ProductURL: "https://a.example.com/p/2"},
		{ProductName: "Widget Three", ProductURL: "https://a.example.com/p/3"},
	}
	saved, err := s.SaveAll(context.Background(), candidates)
	require.NoError(t, err)
	assert.Equal(t, 2, saved)
}
