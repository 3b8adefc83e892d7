package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"appraisal-api/internal/logger"
	"appraisal-api/internal/models"
	"appraisal-api/internal/repository"
)

// List limit bounds for property queries
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// Name used when an owner is auto-created without a name
const defaultOwnerName = "Unknown Owner"

// Date layout accepted for sale dates
const saleDateLayout = "2006-01-02"

// Service-level errors
var (
	ErrFolioRequired    = errors.New("folio is required")
	ErrInvalidNumeric   = errors.New("value must be numeric")
	ErrInvalidSaleDate  = errors.New("saleDate must be a valid date (YYYY-MM-DD)")
	ErrPropertyNotFound = errors.New("property not found")
	ErrLandValueNotSet  = errors.New("property not found or land value is not set")
	ErrZipCodeRequired  = errors.New("zipCode is required")
)

// UpsertPropertyInput is the raw request for the upsert workflow. Pointer
// fields are tri-state: nil means not supplied, an empty string clears the
// column on update, anything else is a value to store.
type UpsertPropertyInput struct {
	Folio         string
	Address       *string
	ZipCode       *string
	LandValue     *string
	BuildingValue *string

	// Owner resolution: an existing id wins over the new-owner fields.
	OwnerID    string
	OwnerName  string
	OwnerPhone string
	OwnerEmail string

	// Sale side-effect: both must be present for a sale to be recorded.
	SaleDate  string
	SalePrice string

	// Assessment side-effect
	AssessmentYear string
}

// PropertyService defines business logic for property records.
type PropertyService interface {
	// Upsert creates or updates the property identified by input.Folio and
	// conditionally writes the owner, sale and assessment side-effects in a
	// single transaction. Returns the final property record.
	Upsert(ctx context.Context, input UpsertPropertyInput) (*models.Property, error)

	// List returns up to limit properties, most recently updated first.
	// The limit is clamped to [1, MaxListLimit]; zero means DefaultListLimit.
	List(ctx context.Context, limit int) ([]models.Property, error)

	// GetByFolio returns ErrPropertyNotFound when the folio is unknown.
	GetByFolio(ctx context.Context, folio string) (*models.Property, error)

	// RangeByLandValue filters properties by an optional land value interval.
	RangeByLandValue(ctx context.Context, min, max *float64) ([]models.Property, error)

	// UpdateAddress sets or clears the address for the folio.
	UpdateAddress(ctx context.Context, folio string, newAddress *string) (*models.Property, error)

	// AdjustLandPercent scales the land value by the given percentage.
	// Returns ErrLandValueNotSet when the folio is unknown or the land value
	// column is NULL.
	AdjustLandPercent(ctx context.Context, folio string, percent float64) (*models.Property, error)

	// ResetValues zeroes land and building values for the folio.
	ResetValues(ctx context.Context, folio string) (*models.Property, error)

	// Delete removes the property and returns the deleted record.
	Delete(ctx context.Context, folio string) (*models.Property, error)

	// CountAboveBuilding counts properties with building value above the
	// optional threshold.
	CountAboveBuilding(ctx context.Context, threshold *float64) (int64, error)

	// AdjustLandByZip bulk-adjusts land values for a zip code through the
	// database stored procedure. Returns the reported number of rows.
	AdjustLandByZip(ctx context.Context, zipCode string, percent float64) (int64, error)
}

type propertyService struct {
	repo repository.PropertyRepository
	log  *logger.Logger
}

// NewPropertyService creates a new instance of PropertyService.
func NewPropertyService(repo repository.PropertyRepository, log *logger.Logger) PropertyService {
	return &propertyService{
		repo: repo,
		log:  log,
	}
}

// numericField parses a tri-state numeric input. A nil pointer is "not
// supplied", an empty string is an explicit NULL, and anything else must
// parse as a number. Malformed input is rejected rather than silently
// dropped.
func numericField(name string, v *string) (repository.OptionalNumeric, error) {
	if v == nil {
		return repository.OptionalNumeric{}, nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return repository.OptionalNumeric{Set: true}, nil
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return repository.OptionalNumeric{}, fmt.Errorf("%s %w: %q", name, ErrInvalidNumeric, trimmed)
	}
	return repository.OptionalNumeric{Set: true, Value: &n}, nil
}

// stringField passes a tri-state string input through unchanged; trimming
// and empty-to-NULL handling happen at the persistence layer.
func stringField(v *string) repository.OptionalString {
	if v == nil {
		return repository.OptionalString{}
	}
	return repository.OptionalString{Set: true, Value: v}
}

// optionalTrimmed returns nil for blank input, otherwise the trimmed value.
func optionalTrimmed(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// normalizeUpsert validates the raw input and builds the repository command.
// Validation happens here, before any write is attempted.
func normalizeUpsert(input UpsertPropertyInput) (repository.PropertyUpsert, error) {
	var cmd repository.PropertyUpsert

	cmd.Folio = strings.TrimSpace(input.Folio)
	if cmd.Folio == "" {
		return cmd, ErrFolioRequired
	}

	cmd.Address = stringField(input.Address)
	cmd.ZipCode = stringField(input.ZipCode)

	var err error
	if cmd.LandValue, err = numericField("landValue", input.LandValue); err != nil {
		return cmd, err
	}
	if cmd.BuildingValue, err = numericField("buildingValue", input.BuildingValue); err != nil {
		return cmd, err
	}

	// Owner resolution: a supplied id that parses as an integer is used
	// as-is and never triggers owner creation. Otherwise, any non-empty
	// owner field creates a new owner inside the workflow transaction.
	if raw := strings.TrimSpace(input.OwnerID); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			cmd.OwnerID = &id
		}
	}
	if cmd.OwnerID == nil {
		name := optionalTrimmed(input.OwnerName)
		phone := optionalTrimmed(input.OwnerPhone)
		email := optionalTrimmed(input.OwnerEmail)
		if name != nil || phone != nil || email != nil {
			owner := &repository.NewOwnerFields{Name: defaultOwnerName, Phone: phone, Email: email}
			if name != nil {
				owner.Name = *name
			}
			cmd.NewOwner = owner
		}
	}

	// Sale side-effect: requires both date and price.
	if strings.TrimSpace(input.SaleDate) != "" && strings.TrimSpace(input.SalePrice) != "" {
		price, err := strconv.ParseFloat(strings.TrimSpace(input.SalePrice), 64)
		if err != nil {
			return cmd, fmt.Errorf("salePrice %w: %q", ErrInvalidNumeric, input.SalePrice)
		}
		date, err := time.Parse(saleDateLayout, strings.TrimSpace(input.SaleDate))
		if err != nil {
			return cmd, fmt.Errorf("%w: %q", ErrInvalidSaleDate, input.SaleDate)
		}
		cmd.Sale = &repository.SaleEntry{Date: date, Price: price}
	}

	// Assessment side-effect: a year that does not parse as an integer is
	// treated as not supplied.
	if raw := strings.TrimSpace(input.AssessmentYear); raw != "" {
		if year, err := strconv.Atoi(raw); err == nil {
			cmd.AssessmentYear = &year
		}
	}

	return cmd, nil
}

// Upsert normalizes the input and hands the resulting command to the
// repository, which runs all writes in one transaction.
func (s *propertyService) Upsert(ctx context.Context, input UpsertPropertyInput) (*models.Property, error) {
	cmd, err := normalizeUpsert(input)
	if err != nil {
		s.log.Warn("Rejected property upsert input", map[string]interface{}{
			"folio": input.Folio,
			"error": err.Error(),
		})
		return nil, err
	}

	s.log.Info("Upserting property", map[string]interface{}{
		"folio":           cmd.Folio,
		"creates_owner":   cmd.NewOwner != nil,
		"records_sale":    cmd.Sale != nil,
		"assessment_year": cmd.AssessmentYear,
	})

	property, err := s.repo.Upsert(ctx, cmd)
	if err != nil {
		s.log.Error("Failed to upsert property", err, map[string]interface{}{
			"folio": cmd.Folio,
		})
		return nil, fmt.Errorf("failed to upsert property: %w", err)
	}

	s.log.Info("Property upserted", map[string]interface{}{
		"folio":       property.Folio,
		"property_id": property.ID,
	})

	return property, nil
}

// List returns the most recently updated properties with the limit clamped
// to the allowed window.
func (s *propertyService) List(ctx context.Context, limit int) ([]models.Property, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	properties, err := s.repo.List(ctx, limit)
	if err != nil {
		s.log.Error("Failed to list properties", err, map[string]interface{}{
			"limit": limit,
		})
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, nil
}

func (s *propertyService) GetByFolio(ctx context.Context, folio string) (*models.Property, error) {
	folio = strings.TrimSpace(folio)
	if folio == "" {
		return nil, ErrFolioRequired
	}

	property, err := s.repo.FindByFolio(ctx, folio)
	if err != nil {
		s.log.Error("Failed to query property", err, map[string]interface{}{
			"folio": folio,
		})
		return nil, fmt.Errorf("failed to query property: %w", err)
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}
	return property, nil
}

func (s *propertyService) RangeByLandValue(ctx context.Context, min, max *float64) ([]models.Property, error) {
	properties, err := s.repo.RangeByLandValue(ctx, min, max)
	if err != nil {
		s.log.Error("Failed to query properties by land value range", err, nil)
		return nil, fmt.Errorf("failed to query properties by land value range: %w", err)
	}
	return properties, nil
}

func (s *propertyService) UpdateAddress(ctx context.Context, folio string, newAddress *string) (*models.Property, error) {
	folio = strings.TrimSpace(folio)
	if folio == "" {
		return nil, ErrFolioRequired
	}

	property, err := s.repo.UpdateAddress(ctx, folio, newAddress)
	if err != nil {
		s.log.Error("Failed to update property address", err, map[string]interface{}{
			"folio": folio,
		})
		return nil, fmt.Errorf("failed to update property address: %w", err)
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}

	s.log.Info("Property address updated", map[string]interface{}{
		"folio":       folio,
		"property_id": property.ID,
	})
	return property, nil
}

func (s *propertyService) AdjustLandPercent(ctx context.Context, folio string, percent float64) (*models.Property, error) {
	folio = strings.TrimSpace(folio)
	if folio == "" {
		return nil, ErrFolioRequired
	}

	property, err := s.repo.AdjustLandPercent(ctx, folio, percent)
	if err != nil {
		s.log.Error("Failed to adjust land value", err, map[string]interface{}{
			"folio":   folio,
			"percent": percent,
		})
		return nil, fmt.Errorf("failed to adjust land value: %w", err)
	}
	if property == nil {
		return nil, ErrLandValueNotSet
	}

	s.log.Info("Land value adjusted", map[string]interface{}{
		"folio":   folio,
		"percent": percent,
	})
	return property, nil
}

func (s *propertyService) ResetValues(ctx context.Context, folio string) (*models.Property, error) {
	folio = strings.TrimSpace(folio)
	if folio == "" {
		return nil, ErrFolioRequired
	}

	property, err := s.repo.ResetValues(ctx, folio)
	if err != nil {
		s.log.Error("Failed to reset property values", err, map[string]interface{}{
			"folio": folio,
		})
		return nil, fmt.Errorf("failed to reset property values: %w", err)
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}
	return property, nil
}

func (s *propertyService) Delete(ctx context.Context, folio string) (*models.Property, error) {
	folio = strings.TrimSpace(folio)
	if folio == "" {
		return nil, ErrFolioRequired
	}

	property, err := s.repo.DeleteByFolio(ctx, folio)
	if err != nil {
		s.log.Error("Failed to delete property", err, map[string]interface{}{
			"folio": folio,
		})
		return nil, fmt.Errorf("failed to delete property: %w", err)
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}

	s.log.Info("Property deleted", map[string]interface{}{
		"folio":       folio,
		"property_id": property.ID,
	})
	return property, nil
}

func (s *propertyService) CountAboveBuilding(ctx context.Context, threshold *float64) (int64, error) {
	count, err := s.repo.CountAboveBuilding(ctx, threshold)
	if err != nil {
		s.log.Error("Failed to count properties", err, nil)
		return 0, fmt.Errorf("failed to count properties: %w", err)
	}
	return count, nil
}

func (s *propertyService) AdjustLandByZip(ctx context.Context, zipCode string, percent float64) (int64, error) {
	zipCode = strings.TrimSpace(zipCode)
	if zipCode == "" {
		return 0, ErrZipCodeRequired
	}

	s.log.Info("Adjusting land values by zip", map[string]interface{}{
		"zip_code": zipCode,
		"percent":  percent,
	})

	rows, err := s.repo.AdjustLandByZip(ctx, zipCode, percent)
	if err != nil {
		s.log.Error("Failed to adjust land values by zip", err, map[string]interface{}{
			"zip_code": zipCode,
			"percent":  percent,
		})
		return 0, fmt.Errorf("failed to adjust land values by zip: %w", err)
	}
	return rows, nil
}
