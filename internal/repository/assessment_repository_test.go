package repository

import (
	"context"
	"testing"

	"appraisal-api/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupAssessmentTest creates a property to hang assessments off and returns
// the assessment repository sharing the same pool.
func setupAssessmentTest(t *testing.T, folio string) (AssessmentRepository, *database.Database, int) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	cfg := getTestConfig()

	db, err := database.NewPostgresPool(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to create database connection: %v", err)
	}

	property, err := NewPropertyRepository(db).Upsert(ctx, PropertyUpsert{Folio: folio})
	require.NoError(t, err)
	require.NotNil(t, property)

	return NewAssessmentRepository(db), db, property.ID
}

// TestAssessmentUpsert_SecondWriteWins verifies that two upserts for the same
// property and year leave exactly one row holding the later values.
func TestAssessmentUpsert_SecondWriteWins(t *testing.T) {
	folio := "99-TEST-0101"
	repo, db, propertyID := setupAssessmentTest(t, folio)
	defer db.Close()
	defer cleanupProperty(t, db, folio)

	ctx := context.Background()
	year := 2025

	first, err := repo.Upsert(ctx, propertyID, year, AssessmentValues{
		LandValue:     floatRef(100000),
		BuildingValue: floatRef(50000),
		MarketValue:   floatRef(150000),
		AssessedValue: floatRef(150000),
	})
	require.NoError(t, err)
	assert.Equal(t, 150000.0, first.MarketValue)

	second, err := repo.Upsert(ctx, propertyID, year, AssessmentValues{
		LandValue:     floatRef(120000),
		BuildingValue: floatRef(60000),
		MarketValue:   floatRef(180000),
		AssessedValue: floatRef(180000),
	})
	require.NoError(t, err)
	assert.Equal(t, 180000.0, second.MarketValue)

	var count int
	var landValue, marketValue float64
	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), MAX(land_value), MAX(market_value)
		 FROM assessments WHERE property_id = $1 AND year = $2`,
		propertyID, year,
	).Scan(&count, &landValue, &marketValue)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 120000.0, landValue)
	assert.Equal(t, 180000.0, marketValue)
}

// TestAssessmentUpsert_NilFieldKeepsStoredValue verifies that an unsupplied
// field does not clobber the stored one on update.
func TestAssessmentUpsert_NilFieldKeepsStoredValue(t *testing.T) {
	folio := "99-TEST-0102"
	repo, db, propertyID := setupAssessmentTest(t, folio)
	defer db.Close()
	defer cleanupProperty(t, db, folio)

	ctx := context.Background()
	year := 2025

	_, err := repo.Upsert(ctx, propertyID, year, AssessmentValues{
		LandValue:   floatRef(100000),
		MarketValue: floatRef(150000),
	})
	require.NoError(t, err)

	updated, err := repo.Upsert(ctx, propertyID, year, AssessmentValues{
		LandValue: floatRef(110000),
	})
	require.NoError(t, err)

	assert.Equal(t, 110000.0, updated.LandValue)
	assert.Equal(t, 150000.0, updated.MarketValue)
}
