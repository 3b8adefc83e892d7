package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"appraisal-api/internal/database"
	"appraisal-api/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same query
// helpers can run inside or outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// OptionalString is a tri-state column value: not supplied, explicit NULL,
// or a concrete value. Value == nil with Set == true means NULL.
type OptionalString struct {
	Value *string
	Set   bool
}

// OptionalNumeric is the numeric counterpart of OptionalString.
type OptionalNumeric struct {
	Value *float64
	Set   bool
}

// NewOwnerFields carries the fields for an owner created inside the upsert
// transaction when no existing owner id was supplied.
type NewOwnerFields struct {
	Name  string
	Phone *string
	Email *string
}

// SaleEntry is the optional sale side-effect of a property upsert.
// Buyer, seller and document number are not populated by this path.
type SaleEntry struct {
	Date  time.Time
	Price float64
}

// PropertyUpsert is the fully normalized command for the upsert workflow.
// The service layer parses and validates raw input; the repository only
// executes the writes.
type PropertyUpsert struct {
	Folio          string
	Address        OptionalString
	ZipCode        OptionalString
	LandValue      OptionalNumeric
	BuildingValue  OptionalNumeric
	OwnerID        *int            // existing owner reference, used as-is
	NewOwner       *NewOwnerFields // created inside the transaction when set
	Sale           *SaleEntry
	AssessmentYear *int
}

// PropertyRepository defines data access for property records and the
// multi-entity upsert workflow.
type PropertyRepository interface {
	// Upsert runs the owner/property/sale/assessment workflow in a single
	// transaction. All writes commit together or not at all.
	Upsert(ctx context.Context, cmd PropertyUpsert) (*models.Property, error)

	// FindByFolio returns nil, nil when no property exists for the folio.
	FindByFolio(ctx context.Context, folio string) (*models.Property, error)

	// List returns up to limit properties, most recently updated first.
	List(ctx context.Context, limit int) ([]models.Property, error)

	// RangeByLandValue returns properties whose land value falls within the
	// optional min/max bounds, ordered by land value ascending.
	RangeByLandValue(ctx context.Context, min, max *float64) ([]models.Property, error)

	// UpdateAddress sets or clears the address for the folio.
	// Returns nil, nil when the folio does not exist.
	UpdateAddress(ctx context.Context, folio string, address *string) (*models.Property, error)

	// AdjustLandPercent multiplies the stored land value by (1 + percent/100).
	// Returns nil, nil when the folio does not exist or land value is NULL.
	AdjustLandPercent(ctx context.Context, folio string, percent float64) (*models.Property, error)

	// ResetValues zeroes land and building values for the folio.
	// Returns nil, nil when the folio does not exist.
	ResetValues(ctx context.Context, folio string) (*models.Property, error)

	// DeleteByFolio removes the property. Returns nil, nil when absent.
	DeleteByFolio(ctx context.Context, folio string) (*models.Property, error)

	// CountAboveBuilding counts properties with building value above the
	// threshold, or all properties when threshold is nil.
	CountAboveBuilding(ctx context.Context, threshold *float64) (int64, error)

	// AdjustLandByZip calls the sp_adjust_land_values_by_zip stored procedure
	// and returns the number of rows it reported as affected.
	AdjustLandByZip(ctx context.Context, zipCode string, percent float64) (int64, error)
}

type propertyRepository struct {
	db *database.Database
}

// NewPropertyRepository creates a new instance of PropertyRepository.
func NewPropertyRepository(db *database.Database) PropertyRepository {
	return &propertyRepository{db: db}
}

const propertyColumns = `id, folio, address, zip_code, land_value, building_value, owner_id, neighborhood_id, created_at, updated_at`

func scanProperty(row pgx.Row) (*models.Property, error) {
	var p models.Property
	err := row.Scan(
		&p.ID,
		&p.Folio,
		&p.Address,
		&p.ZipCode,
		&p.LandValue,
		&p.BuildingValue,
		&p.OwnerID,
		&p.NeighborhoodID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProperties(rows pgx.Rows) ([]models.Property, error) {
	defer rows.Close()

	var results []models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property row: %w", err)
		}
		results = append(results, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating property rows: %w", err)
	}
	if results == nil {
		results = []models.Property{}
	}
	return results, nil
}

// trimToNull normalizes a supplied string column: whitespace-only input
// clears the column to NULL.
func trimToNull(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Upsert executes the full upsert workflow inside one transaction:
// optional owner insert, property insert-or-update locked by folio,
// optional sale insert and optional assessment upsert.
func (r *propertyRepository) Upsert(ctx context.Context, cmd PropertyUpsert) (*models.Property, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin upsert transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Resolve the owner reference: an explicit id wins, otherwise create a
	// new owner when owner fields were supplied.
	ownerID := cmd.OwnerID
	if ownerID == nil && cmd.NewOwner != nil {
		var id int
		err := tx.QueryRow(ctx,
			`INSERT INTO owners (name, phone, email) VALUES ($1, $2, $3) RETURNING id`,
			cmd.NewOwner.Name, cmd.NewOwner.Phone, cmd.NewOwner.Email,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to create owner for folio %s: %w", cmd.Folio, err)
		}
		ownerID = &id
	}

	existing, err := scanProperty(tx.QueryRow(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE folio = $1 FOR UPDATE`,
		cmd.Folio,
	))
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up property %s: %w", cmd.Folio, err)
	}

	var property *models.Property
	if existing == nil {
		property, err = r.insertProperty(ctx, tx, cmd, ownerID)
	} else {
		property, err = r.updateProperty(ctx, tx, cmd, ownerID)
	}
	if err != nil {
		return nil, err
	}

	if cmd.Sale != nil {
		_, err := tx.Exec(ctx,
			`INSERT INTO sales (property_id, sale_date, price) VALUES ($1, $2, $3)`,
			property.ID, cmd.Sale.Date, cmd.Sale.Price,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to record sale for property %d: %w", property.ID, err)
		}
	}

	if cmd.AssessmentYear != nil {
		if err := r.upsertAssessment(ctx, tx, cmd, property); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit upsert for folio %s: %w", cmd.Folio, err)
	}

	return property, nil
}

// insertProperty creates the property row. Only supplied fields are
// populated; numeric columns default to zero when not supplied.
func (r *propertyRepository) insertProperty(ctx context.Context, q querier, cmd PropertyUpsert, ownerID *int) (*models.Property, error) {
	var address, zipCode *string
	if cmd.Address.Set {
		address = trimToNull(cmd.Address.Value)
	}
	if cmd.ZipCode.Set {
		zipCode = trimToNull(cmd.ZipCode.Value)
	}

	landValue := 0.0
	if cmd.LandValue.Set && cmd.LandValue.Value != nil {
		landValue = *cmd.LandValue.Value
	}
	buildingValue := 0.0
	if cmd.BuildingValue.Set && cmd.BuildingValue.Value != nil {
		buildingValue = *cmd.BuildingValue.Value
	}

	property, err := scanProperty(q.QueryRow(ctx,
		`INSERT INTO properties (folio, address, zip_code, land_value, building_value, owner_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+propertyColumns,
		cmd.Folio, address, zipCode, landValue, buildingValue, ownerID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create property %s: %w", cmd.Folio, err)
	}
	return property, nil
}

// updateProperty applies only the supplied fields. A supplied empty string
// clears the column to NULL; an omitted field leaves the column untouched.
// The updated_at timestamp is always refreshed.
func (r *propertyRepository) updateProperty(ctx context.Context, q querier, cmd PropertyUpsert, ownerID *int) (*models.Property, error) {
	sets := []string{"updated_at = now()"}
	args := []any{cmd.Folio}

	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if cmd.Address.Set {
		set("address", trimToNull(cmd.Address.Value))
	}
	if cmd.ZipCode.Set {
		set("zip_code", trimToNull(cmd.ZipCode.Value))
	}
	if ownerID != nil {
		set("owner_id", *ownerID)
	}
	if cmd.LandValue.Set {
		set("land_value", cmd.LandValue.Value)
	}
	if cmd.BuildingValue.Set {
		set("building_value", cmd.BuildingValue.Value)
	}

	query := `UPDATE properties SET ` + strings.Join(sets, ", ") +
		` WHERE folio = $1 RETURNING ` + propertyColumns

	property, err := scanProperty(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to update property %s: %w", cmd.Folio, err)
	}
	return property, nil
}

// upsertAssessment writes the yearly valuation snapshot. Land and building
// fall back to the post-upsert stored values, then to zero; market and
// assessed are the sum of the two.
func (r *propertyRepository) upsertAssessment(ctx context.Context, q querier, cmd PropertyUpsert, property *models.Property) error {
	land := 0.0
	if cmd.LandValue.Set && cmd.LandValue.Value != nil {
		land = *cmd.LandValue.Value
	} else if property.LandValue != nil {
		land = *property.LandValue
	}

	building := 0.0
	if cmd.BuildingValue.Set && cmd.BuildingValue.Value != nil {
		building = *cmd.BuildingValue.Value
	} else if property.BuildingValue != nil {
		building = *property.BuildingValue
	}

	market := land + building
	assessed := market

	_, err := q.Exec(ctx,
		`INSERT INTO assessments (property_id, year, market_value, assessed_value, land_value, building_value)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (property_id, year) DO UPDATE SET
			market_value = EXCLUDED.market_value,
			assessed_value = EXCLUDED.assessed_value,
			land_value = EXCLUDED.land_value,
			building_value = EXCLUDED.building_value`,
		property.ID, *cmd.AssessmentYear, market, assessed, land, building,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert assessment for property %d year %d: %w",
			property.ID, *cmd.AssessmentYear, err)
	}
	return nil
}

// FindByFolio looks up a single property by its folio.
func (r *propertyRepository) FindByFolio(ctx context.Context, folio string) (*models.Property, error) {
	property, err := scanProperty(r.db.Pool.QueryRow(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE folio = $1`,
		folio,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query property %s: %w", folio, err)
	}
	return property, nil
}

// List returns the most recently updated properties.
func (r *propertyRepository) List(ctx context.Context, limit int) ([]models.Property, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+propertyColumns+` FROM properties ORDER BY updated_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return collectProperties(rows)
}

// Maximum number of rows returned by the land value range query
const maxRangeResults = 100

// RangeByLandValue filters properties by an optional land value interval.
// Properties with a NULL land value are excluded when a bound is present.
func (r *propertyRepository) RangeByLandValue(ctx context.Context, min, max *float64) ([]models.Property, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+propertyColumns+` FROM properties
		 WHERE ($1::numeric IS NULL OR land_value >= $1)
		   AND ($2::numeric IS NULL OR land_value <= $2)
		 ORDER BY land_value ASC
		 LIMIT $3`,
		min, max, maxRangeResults,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties by land value range: %w", err)
	}
	return collectProperties(rows)
}

// UpdateAddress sets the address column, clearing it when the trimmed value
// is empty.
func (r *propertyRepository) UpdateAddress(ctx context.Context, folio string, address *string) (*models.Property, error) {
	property, err := scanProperty(r.db.Pool.QueryRow(ctx,
		`UPDATE properties SET address = $2, updated_at = now() WHERE folio = $1 RETURNING `+propertyColumns,
		folio, trimToNull(address),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update address for property %s: %w", folio, err)
	}
	return property, nil
}

// AdjustLandPercent scales the land value in a single statement, so a
// concurrent update cannot produce a lost write.
func (r *propertyRepository) AdjustLandPercent(ctx context.Context, folio string, percent float64) (*models.Property, error) {
	factor := 1 + percent/100
	property, err := scanProperty(r.db.Pool.QueryRow(ctx,
		`UPDATE properties SET land_value = land_value * $2, updated_at = now()
		 WHERE folio = $1 AND land_value IS NOT NULL
		 RETURNING `+propertyColumns,
		folio, factor,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to adjust land value for property %s: %w", folio, err)
	}
	return property, nil
}

// ResetValues zeroes both valuation columns.
func (r *propertyRepository) ResetValues(ctx context.Context, folio string) (*models.Property, error) {
	property, err := scanProperty(r.db.Pool.QueryRow(ctx,
		`UPDATE properties SET land_value = 0, building_value = 0, updated_at = now()
		 WHERE folio = $1
		 RETURNING `+propertyColumns,
		folio,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to reset values for property %s: %w", folio, err)
	}
	return property, nil
}

// DeleteByFolio removes the property row and returns the deleted record.
func (r *propertyRepository) DeleteByFolio(ctx context.Context, folio string) (*models.Property, error) {
	property, err := scanProperty(r.db.Pool.QueryRow(ctx,
		`DELETE FROM properties WHERE folio = $1 RETURNING `+propertyColumns,
		folio,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete property %s: %w", folio, err)
	}
	return property, nil
}

// CountAboveBuilding counts properties above a building value threshold.
func (r *propertyRepository) CountAboveBuilding(ctx context.Context, threshold *float64) (int64, error) {
	var count int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM properties WHERE $1::numeric IS NULL OR building_value > $1`,
		threshold,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count properties: %w", err)
	}
	return count, nil
}

// AdjustLandByZip delegates the bulk adjustment to the stored procedure.
// The procedure reports the adjusted row count through its INOUT parameter.
func (r *propertyRepository) AdjustLandByZip(ctx context.Context, zipCode string, percent float64) (int64, error) {
	var rowsAffected int64
	err := r.db.Pool.QueryRow(ctx,
		`CALL sp_adjust_land_values_by_zip($1, $2, $3)`,
		zipCode, percent, int64(0),
	).Scan(&rowsAffected)
	if err != nil {
		return 0, fmt.Errorf("failed to adjust land values for zip %s: %w", zipCode, err)
	}
	return rowsAffected, nil
}
