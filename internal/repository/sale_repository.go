package repository

import (
	"context"
	"fmt"
	"time"

	"appraisal-api/internal/database"
	"appraisal-api/internal/models"
)

// NewSale carries the fields for an explicitly recorded sale.
type NewSale struct {
	Date      time.Time
	Price     float64
	DocNumber *string
	Buyer     *string
	Seller    *string
}

// SaleRepository defines data access for the append-only sales ledger.
// There are deliberately no update or delete operations.
type SaleRepository interface {
	// ListByProperty returns sales for a property, most recent first.
	// A zero propertyID lists across all properties.
	ListByProperty(ctx context.Context, propertyID int, limit int) ([]models.Sale, error)

	// Record appends a sale row and returns it with the generated id.
	Record(ctx context.Context, propertyID int, sale NewSale) (*models.Sale, error)
}

type saleRepository struct {
	db *database.Database
}

// NewSaleRepository creates a new instance of SaleRepository.
func NewSaleRepository(db *database.Database) SaleRepository {
	return &saleRepository{db: db}
}

const saleColumns = `id, property_id, sale_date, price, doc_number, buyer, seller`

func (r *saleRepository) ListByProperty(ctx context.Context, propertyID int, limit int) ([]models.Sale, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+saleColumns+` FROM sales
		 WHERE $1 = 0 OR property_id = $1
		 ORDER BY sale_date DESC
		 LIMIT $2`,
		propertyID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales for property %d: %w", propertyID, err)
	}
	defer rows.Close()

	var results []models.Sale
	for rows.Next() {
		var s models.Sale
		if err := rows.Scan(&s.ID, &s.PropertyID, &s.SaleDate, &s.Price, &s.DocNumber, &s.Buyer, &s.Seller); err != nil {
			return nil, fmt.Errorf("failed to scan sale row: %w", err)
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale rows: %w", err)
	}
	if results == nil {
		results = []models.Sale{}
	}
	return results, nil
}

func (r *saleRepository) Record(ctx context.Context, propertyID int, sale NewSale) (*models.Sale, error) {
	var s models.Sale
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO sales (property_id, sale_date, price, doc_number, buyer, seller)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+saleColumns,
		propertyID, sale.Date, sale.Price, sale.DocNumber, sale.Buyer, sale.Seller,
	).Scan(&s.ID, &s.PropertyID, &s.SaleDate, &s.Price, &s.DocNumber, &s.Buyer, &s.Seller)
	if err != nil {
		return nil, fmt.Errorf("failed to record sale for property %d: %w", propertyID, err)
	}
	return &s, nil
}
