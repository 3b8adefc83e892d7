package repository

import (
	"context"
	"errors"
	"fmt"

	"appraisal-api/internal/database"
	"appraisal-api/internal/models"
	"github.com/jackc/pgx/v5"
)

// NeighborhoodDetail is a neighborhood with its most recently updated
// properties attached.
type NeighborhoodDetail struct {
	Neighborhood models.Neighborhood
	Properties   []models.Property
}

// NeighborhoodRepository defines data access for neighborhood records.
type NeighborhoodRepository interface {
	// List returns the most recently created neighborhoods.
	List(ctx context.Context, limit int) ([]models.Neighborhood, error)

	// FindByCode returns the neighborhood and its recent properties.
	// Returns nil, nil when no neighborhood exists for the code.
	FindByCode(ctx context.Context, code string) (*NeighborhoodDetail, error)

	// Create inserts a neighborhood and returns it with the generated id.
	Create(ctx context.Context, code, name string) (*models.Neighborhood, error)

	// AssignProperty sets the neighborhood reference on a property.
	// Returns nil, nil when the property does not exist.
	AssignProperty(ctx context.Context, propertyID, neighborhoodID int) (*models.Property, error)
}

type neighborhoodRepository struct {
	db *database.Database
}

// NewNeighborhoodRepository creates a new instance of NeighborhoodRepository.
func NewNeighborhoodRepository(db *database.Database) NeighborhoodRepository {
	return &neighborhoodRepository{db: db}
}

// Maximum number of properties attached to a neighborhood detail lookup
const maxNeighborhoodProperties = 50

func (r *neighborhoodRepository) List(ctx context.Context, limit int) ([]models.Neighborhood, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, code, name FROM neighborhoods ORDER BY id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list neighborhoods: %w", err)
	}
	defer rows.Close()

	var results []models.Neighborhood
	for rows.Next() {
		var n models.Neighborhood
		if err := rows.Scan(&n.ID, &n.Code, &n.Name); err != nil {
			return nil, fmt.Errorf("failed to scan neighborhood row: %w", err)
		}
		results = append(results, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating neighborhood rows: %w", err)
	}
	if results == nil {
		results = []models.Neighborhood{}
	}
	return results, nil
}

func (r *neighborhoodRepository) FindByCode(ctx context.Context, code string) (*NeighborhoodDetail, error) {
	var n models.Neighborhood
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, code, name FROM neighborhoods WHERE code = $1`,
		code,
	).Scan(&n.ID, &n.Code, &n.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query neighborhood %s: %w", code, err)
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+propertyColumns+` FROM properties
		 WHERE neighborhood_id = $1
		 ORDER BY updated_at DESC
		 LIMIT $2`,
		n.ID, maxNeighborhoodProperties,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties for neighborhood %s: %w", code, err)
	}
	properties, err := collectProperties(rows)
	if err != nil {
		return nil, err
	}

	return &NeighborhoodDetail{Neighborhood: n, Properties: properties}, nil
}

func (r *neighborhoodRepository) Create(ctx context.Context, code, name string) (*models.Neighborhood, error) {
	var n models.Neighborhood
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO neighborhoods (code, name) VALUES ($1, $2) RETURNING id, code, name`,
		code, name,
	).Scan(&n.ID, &n.Code, &n.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create neighborhood %s: %w", code, err)
	}
	return &n, nil
}

func (r *neighborhoodRepository) AssignProperty(ctx context.Context, propertyID, neighborhoodID int) (*models.Property, error) {
	property, err := scanProperty(r.db.Pool.QueryRow(ctx,
		`UPDATE properties SET neighborhood_id = $2, updated_at = now() WHERE id = $1 RETURNING `+propertyColumns,
		propertyID, neighborhoodID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to assign property %d to neighborhood %d: %w", propertyID, neighborhoodID, err)
	}
	return property, nil
}
