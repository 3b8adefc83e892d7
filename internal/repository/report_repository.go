package repository

import (
	"context"
	"fmt"
	"time"

	"appraisal-api/internal/database"
	"appraisal-api/internal/models"
	"github.com/jackc/pgx/v5"
)

// PropertyOwnerRow is a property joined with its owner's name.
type PropertyOwnerRow struct {
	Folio     string  `json:"folio"`
	Address   *string `json:"address,omitempty"`
	OwnerName string  `json:"ownerName"`
	ID        int     `json:"id"`
}

// NeighborhoodAvgRow is the average sale price aggregated per neighborhood.
type NeighborhoodAvgRow struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	AvgPrice float64 `json:"avgPrice"`
}

// SaleReportRow is a sale joined with its property folio and owner name.
type SaleReportRow struct {
	SaleDate  time.Time `json:"saleDate"`
	Folio     string    `json:"folio"`
	OwnerName *string   `json:"ownerName,omitempty"`
	Price     float64   `json:"price"`
	ID        int       `json:"id"`
}

// OwnerPropertyCountRow is an owner with the number of properties held.
type OwnerPropertyCountRow struct {
	Name          string `json:"name"`
	PropertyCount int64  `json:"propertyCount"`
	ID            int    `json:"id"`
}

// SummaryRow mirrors one row of the v_property_summary view.
type SummaryRow struct {
	UpdatedAt           time.Time `json:"updatedAt"`
	Folio               string    `json:"folio"`
	Address             *string   `json:"address,omitempty"`
	LandValue           *float64  `json:"landValue,omitempty"`
	BuildingValue       *float64  `json:"buildingValue,omitempty"`
	OwnerName           *string   `json:"ownerName,omitempty"`
	OwnerEmail          *string   `json:"ownerEmail,omitempty"`
	NeighborhoodCode    *string   `json:"neighborhoodCode,omitempty"`
	NeighborhoodName    *string   `json:"neighborhoodName,omitempty"`
	LatestYear          *int      `json:"latestYear,omitempty"`
	LatestMarketValue   *float64  `json:"latestMarketValue,omitempty"`
	LatestAssessedValue *float64  `json:"latestAssessedValue,omitempty"`
	LatestLandValue     *float64  `json:"latestLandValue,omitempty"`
	LatestBuildingValue *float64  `json:"latestBuildingValue,omitempty"`
	ID                  int       `json:"id"`
}

// SummaryFilter narrows the property summary report. Empty fields match
// everything.
type SummaryFilter struct {
	Folio        string
	Owner        string
	Neighborhood string
	Limit        int
}

// ReportRepository runs the fixed read-only report queries. Every statement
// is a literal with bound parameters; nothing is ever string-interpolated.
type ReportRepository interface {
	PropertiesWithOwner(ctx context.Context) ([]PropertyOwnerRow, error)
	AvgSalePriceByNeighborhood(ctx context.Context) ([]NeighborhoodAvgRow, error)
	PropertyByFolio(ctx context.Context, folio string) ([]models.Property, error)
	SalesInYear(ctx context.Context, year int) ([]SaleReportRow, error)
	SalesInRange(ctx context.Context, start, end time.Time) ([]SaleReportRow, error)
	OwnersWithMinProperties(ctx context.Context, minCount int) ([]OwnerPropertyCountRow, error)
	Summary(ctx context.Context, filter SummaryFilter) ([]SummaryRow, error)
}

type reportRepository struct {
	db *database.Database
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *database.Database) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) PropertiesWithOwner(ctx context.Context) ([]PropertyOwnerRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT p.id, p.folio, p.address, o.name AS owner_name
		 FROM properties p
		 JOIN owners o ON o.id = p.owner_id
		 ORDER BY p.id DESC
		 LIMIT 25`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties with owner: %w", err)
	}
	defer rows.Close()

	var results []PropertyOwnerRow
	for rows.Next() {
		var row PropertyOwnerRow
		if err := rows.Scan(&row.ID, &row.Folio, &row.Address, &row.OwnerName); err != nil {
			return nil, fmt.Errorf("failed to scan property owner row: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating property owner rows: %w", err)
	}
	if results == nil {
		results = []PropertyOwnerRow{}
	}
	return results, nil
}

func (r *reportRepository) AvgSalePriceByNeighborhood(ctx context.Context) ([]NeighborhoodAvgRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT n.code, n.name, AVG(s.price)::numeric(12,2) AS avg_price
		 FROM sales s
		 JOIN properties p ON p.id = s.property_id
		 JOIN neighborhoods n ON n.id = p.neighborhood_id
		 GROUP BY n.code, n.name
		 ORDER BY avg_price DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query average sale price by neighborhood: %w", err)
	}
	defer rows.Close()

	var results []NeighborhoodAvgRow
	for rows.Next() {
		var row NeighborhoodAvgRow
		if err := rows.Scan(&row.Code, &row.Name, &row.AvgPrice); err != nil {
			return nil, fmt.Errorf("failed to scan neighborhood average row: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating neighborhood average rows: %w", err)
	}
	if results == nil {
		results = []NeighborhoodAvgRow{}
	}
	return results, nil
}

func (r *reportRepository) PropertyByFolio(ctx context.Context, folio string) ([]models.Property, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE folio = $1`,
		folio,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query property report for folio %s: %w", folio, err)
	}
	return collectProperties(rows)
}

func collectSaleReportRows(rows pgx.Rows) ([]SaleReportRow, error) {
	defer rows.Close()

	var results []SaleReportRow
	for rows.Next() {
		var row SaleReportRow
		if err := rows.Scan(&row.ID, &row.Price, &row.SaleDate, &row.Folio, &row.OwnerName); err != nil {
			return nil, fmt.Errorf("failed to scan sale report row: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale report rows: %w", err)
	}
	if results == nil {
		results = []SaleReportRow{}
	}
	return results, nil
}

func (r *reportRepository) SalesInYear(ctx context.Context, year int) ([]SaleReportRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT s.id, s.price, s.sale_date, p.folio, o.name AS owner_name
		 FROM sales s
		 JOIN properties p ON p.id = s.property_id
		 LEFT JOIN owners o ON o.id = p.owner_id
		 WHERE EXTRACT(YEAR FROM s.sale_date) = $1
		 ORDER BY s.sale_date DESC`,
		year,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales in year %d: %w", year, err)
	}
	return collectSaleReportRows(rows)
}

func (r *reportRepository) SalesInRange(ctx context.Context, start, end time.Time) ([]SaleReportRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT s.id, s.price, s.sale_date, p.folio, NULL::text AS owner_name
		 FROM sales s
		 JOIN properties p ON p.id = s.property_id
		 WHERE s.sale_date BETWEEN $1 AND $2
		 ORDER BY s.sale_date DESC`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales between %s and %s: %w",
			start.Format("2006-01-02"), end.Format("2006-01-02"), err)
	}
	return collectSaleReportRows(rows)
}

func (r *reportRepository) OwnersWithMinProperties(ctx context.Context, minCount int) ([]OwnerPropertyCountRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT o.id, o.name, COUNT(p.id) AS property_count
		 FROM owners o
		 LEFT JOIN properties p ON p.owner_id = o.id
		 GROUP BY o.id, o.name
		 HAVING COUNT(p.id) >= $1
		 ORDER BY property_count DESC`,
		minCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query owners with at least %d properties: %w", minCount, err)
	}
	defer rows.Close()

	var results []OwnerPropertyCountRow
	for rows.Next() {
		var row OwnerPropertyCountRow
		if err := rows.Scan(&row.ID, &row.Name, &row.PropertyCount); err != nil {
			return nil, fmt.Errorf("failed to scan owner count row: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating owner count rows: %w", err)
	}
	if results == nil {
		results = []OwnerPropertyCountRow{}
	}
	return results, nil
}

func (r *reportRepository) Summary(ctx context.Context, filter SummaryFilter) ([]SummaryRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, folio, address, land_value, building_value, updated_at,
		        owner_name, owner_email, neighborhood_code, neighborhood_name,
		        latest_year, latest_market_value, latest_assessed_value,
		        latest_land_value, latest_building_value
		 FROM v_property_summary
		 WHERE ($1 = '' OR folio = $1)
		   AND ($2 = '' OR owner_name ILIKE '%' || $2 || '%')
		   AND ($3 = '' OR neighborhood_code = $3)
		 ORDER BY updated_at DESC
		 LIMIT $4`,
		filter.Folio, filter.Owner, filter.Neighborhood, filter.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query property summary: %w", err)
	}
	defer rows.Close()

	var results []SummaryRow
	for rows.Next() {
		var row SummaryRow
		err := rows.Scan(
			&row.ID, &row.Folio, &row.Address, &row.LandValue, &row.BuildingValue, &row.UpdatedAt,
			&row.OwnerName, &row.OwnerEmail, &row.NeighborhoodCode, &row.NeighborhoodName,
			&row.LatestYear, &row.LatestMarketValue, &row.LatestAssessedValue,
			&row.LatestLandValue, &row.LatestBuildingValue,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summary rows: %w", err)
	}
	if results == nil {
		results = []SummaryRow{}
	}
	return results, nil
}
