package repository

import (
	"context"
	"errors"
	"fmt"

	"appraisal-api/internal/database"
	"appraisal-api/internal/models"
	"github.com/jackc/pgx/v5"
)

// OwnerRepository defines data access for owner records.
type OwnerRepository interface {
	// SearchByName returns owners whose name contains the given fragment,
	// case-insensitively. An empty fragment returns the most recent owners.
	SearchByName(ctx context.Context, name string, limit int) ([]models.Owner, error)

	// Create inserts an owner and returns it with the generated id.
	Create(ctx context.Context, name string, phone, email *string) (*models.Owner, error)

	// AssignToProperty sets the owner reference on a property.
	// Returns nil, nil when the property does not exist.
	AssignToProperty(ctx context.Context, propertyID, ownerID int) (*models.Property, error)
}

type ownerRepository struct {
	db *database.Database
}

// NewOwnerRepository creates a new instance of OwnerRepository.
func NewOwnerRepository(db *database.Database) OwnerRepository {
	return &ownerRepository{db: db}
}

func (r *ownerRepository) SearchByName(ctx context.Context, name string, limit int) ([]models.Owner, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, name, phone, email FROM owners
		 WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
		 ORDER BY id DESC
		 LIMIT $2`,
		name, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search owners by name %q: %w", name, err)
	}
	defer rows.Close()

	var results []models.Owner
	for rows.Next() {
		var o models.Owner
		if err := rows.Scan(&o.ID, &o.Name, &o.Phone, &o.Email); err != nil {
			return nil, fmt.Errorf("failed to scan owner row: %w", err)
		}
		results = append(results, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating owner rows: %w", err)
	}
	if results == nil {
		results = []models.Owner{}
	}
	return results, nil
}

func (r *ownerRepository) Create(ctx context.Context, name string, phone, email *string) (*models.Owner, error) {
	var o models.Owner
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO owners (name, phone, email) VALUES ($1, $2, $3) RETURNING id, name, phone, email`,
		name, phone, email,
	).Scan(&o.ID, &o.Name, &o.Phone, &o.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to create owner %q: %w", name, err)
	}
	return &o, nil
}

func (r *ownerRepository) AssignToProperty(ctx context.Context, propertyID, ownerID int) (*models.Property, error) {
	property, err := scanProperty(r.db.Pool.QueryRow(ctx,
		`UPDATE properties SET owner_id = $2, updated_at = now() WHERE id = $1 RETURNING `+propertyColumns,
		propertyID, ownerID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to assign owner %d to property %d: %w", ownerID, propertyID, err)
	}
	return property, nil
}
