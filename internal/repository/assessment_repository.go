package repository

import (
	"context"
	"fmt"

	"appraisal-api/internal/database"
	"appraisal-api/internal/models"
)

// AssessmentValues carries the explicit valuation fields of an assessment
// upsert. A nil field defaults to zero on create and stays untouched on
// update.
type AssessmentValues struct {
	MarketValue   *float64
	AssessedValue *float64
	LandValue     *float64
	BuildingValue *float64
}

// AssessmentRepository defines data access for yearly assessment snapshots.
type AssessmentRepository interface {
	// ListByProperty returns assessments for a property, newest year first.
	// A non-nil year restricts the result to that single year.
	ListByProperty(ctx context.Context, propertyID int, year *int) ([]models.Assessment, error)

	// Upsert writes the snapshot for (propertyID, year); the composite key
	// guarantees at most one row per year.
	Upsert(ctx context.Context, propertyID, year int, values AssessmentValues) (*models.Assessment, error)
}

type assessmentRepository struct {
	db *database.Database
}

// NewAssessmentRepository creates a new instance of AssessmentRepository.
func NewAssessmentRepository(db *database.Database) AssessmentRepository {
	return &assessmentRepository{db: db}
}

// Maximum number of assessment rows returned per property
const maxAssessmentResults = 10

const assessmentColumns = `property_id, year, market_value, assessed_value, land_value, building_value`

func (r *assessmentRepository) ListByProperty(ctx context.Context, propertyID int, year *int) ([]models.Assessment, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+assessmentColumns+` FROM assessments
		 WHERE property_id = $1 AND ($2::int IS NULL OR year = $2)
		 ORDER BY year DESC
		 LIMIT $3`,
		propertyID, year, maxAssessmentResults,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments for property %d: %w", propertyID, err)
	}
	defer rows.Close()

	var results []models.Assessment
	for rows.Next() {
		var a models.Assessment
		if err := rows.Scan(&a.PropertyID, &a.Year, &a.MarketValue, &a.AssessedValue, &a.LandValue, &a.BuildingValue); err != nil {
			return nil, fmt.Errorf("failed to scan assessment row: %w", err)
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assessment rows: %w", err)
	}
	if results == nil {
		results = []models.Assessment{}
	}
	return results, nil
}

func (r *assessmentRepository) Upsert(ctx context.Context, propertyID, year int, values AssessmentValues) (*models.Assessment, error) {
	var a models.Assessment
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO assessments (property_id, year, market_value, assessed_value, land_value, building_value)
		 VALUES ($1, $2, COALESCE($3, 0), COALESCE($4, 0), COALESCE($5, 0), COALESCE($6, 0))
		 ON CONFLICT (property_id, year) DO UPDATE SET
			market_value = COALESCE($3, assessments.market_value),
			assessed_value = COALESCE($4, assessments.assessed_value),
			land_value = COALESCE($5, assessments.land_value),
			building_value = COALESCE($6, assessments.building_value)
		 RETURNING `+assessmentColumns,
		propertyID, year, values.MarketValue, values.AssessedValue, values.LandValue, values.BuildingValue,
	).Scan(&a.PropertyID, &a.Year, &a.MarketValue, &a.AssessedValue, &a.LandValue, &a.BuildingValue)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert assessment for property %d year %d: %w", propertyID, year, err)
	}
	return &a, nil
}
