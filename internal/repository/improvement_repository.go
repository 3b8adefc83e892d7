package repository

import (
	"context"
	"errors"
	"fmt"

	"appraisal-api/internal/database"
	"appraisal-api/internal/models"
	"github.com/jackc/pgx/v5"
)

// ImprovementRepository defines data access for improvement records.
type ImprovementRepository interface {
	// ListByProperty returns improvements for a property, grouped by type.
	ListByProperty(ctx context.Context, propertyID int) ([]models.Improvement, error)

	// Add inserts an improvement row. Duplicates are allowed; there is no
	// uniqueness constraint on (property, type, year).
	Add(ctx context.Context, propertyID int, improvementType string, yearBuilt *int, value *float64) (*models.Improvement, error)

	// DeleteByID removes an improvement. Returns nil, nil when absent.
	DeleteByID(ctx context.Context, id int) (*models.Improvement, error)
}

type improvementRepository struct {
	db *database.Database
}

// NewImprovementRepository creates a new instance of ImprovementRepository.
func NewImprovementRepository(db *database.Database) ImprovementRepository {
	return &improvementRepository{db: db}
}

const improvementColumns = `id, property_id, type, year_built, value`

func (r *improvementRepository) ListByProperty(ctx context.Context, propertyID int) ([]models.Improvement, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+improvementColumns+` FROM improvements
		 WHERE property_id = $1
		 ORDER BY type ASC, id DESC`,
		propertyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list improvements for property %d: %w", propertyID, err)
	}
	defer rows.Close()

	var results []models.Improvement
	for rows.Next() {
		var imp models.Improvement
		if err := rows.Scan(&imp.ID, &imp.PropertyID, &imp.Type, &imp.YearBuilt, &imp.Value); err != nil {
			return nil, fmt.Errorf("failed to scan improvement row: %w", err)
		}
		results = append(results, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating improvement rows: %w", err)
	}
	if results == nil {
		results = []models.Improvement{}
	}
	return results, nil
}

func (r *improvementRepository) Add(ctx context.Context, propertyID int, improvementType string, yearBuilt *int, value *float64) (*models.Improvement, error) {
	var imp models.Improvement
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO improvements (property_id, type, year_built, value)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+improvementColumns,
		propertyID, improvementType, yearBuilt, value,
	).Scan(&imp.ID, &imp.PropertyID, &imp.Type, &imp.YearBuilt, &imp.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to add improvement for property %d: %w", propertyID, err)
	}
	return &imp, nil
}

func (r *improvementRepository) DeleteByID(ctx context.Context, id int) (*models.Improvement, error) {
	var imp models.Improvement
	err := r.db.Pool.QueryRow(ctx,
		`DELETE FROM improvements WHERE id = $1 RETURNING `+improvementColumns,
		id,
	).Scan(&imp.ID, &imp.PropertyID, &imp.Type, &imp.YearBuilt, &imp.Value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete improvement %d: %w", id, err)
	}
	return &imp, nil
}
