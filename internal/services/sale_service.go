package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"appraisal-api/internal/logger"
	"appraisal-api/internal/models"
	"appraisal-api/internal/repository"
)

// List limit bounds for sale queries
const (
	DefaultSaleListLimit = 25
	MaxSaleListLimit     = 100
)

var (
	ErrSaleFieldsRequired = errors.New("propertyId, saleDate and price are required")
)

// RecordSaleInput carries the fields for an explicitly recorded sale.
type RecordSaleInput struct {
	PropertyID int
	SaleDate   string
	Price      float64
	DocNumber  string
	Buyer      string
	Seller     string
}

// SaleService defines business logic for the append-only sales ledger.
type SaleService interface {
	// ListByProperty returns sales for a property, most recent first.
	ListByProperty(ctx context.Context, propertyID int, limit int) ([]models.Sale, error)

	// Record appends a sale. Sales are never updated or deleted.
	Record(ctx context.Context, input RecordSaleInput) (*models.Sale, error)
}

type saleService struct {
	repo repository.SaleRepository
	log  *logger.Logger
}

// NewSaleService creates a new instance of SaleService.
func NewSaleService(repo repository.SaleRepository, log *logger.Logger) SaleService {
	return &saleService{
		repo: repo,
		log:  log,
	}
}

func (s *saleService) ListByProperty(ctx context.Context, propertyID int, limit int) ([]models.Sale, error) {
	if limit <= 0 {
		limit = DefaultSaleListLimit
	}
	if limit > MaxSaleListLimit {
		limit = MaxSaleListLimit
	}

	sales, err := s.repo.ListByProperty(ctx, propertyID, limit)
	if err != nil {
		s.log.Error("Failed to list sales", err, map[string]interface{}{
			"property_id": propertyID,
		})
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, nil
}

func (s *saleService) Record(ctx context.Context, input RecordSaleInput) (*models.Sale, error) {
	if input.PropertyID <= 0 || strings.TrimSpace(input.SaleDate) == "" {
		return nil, ErrSaleFieldsRequired
	}

	date, err := time.Parse(saleDateLayout, strings.TrimSpace(input.SaleDate))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSaleDate, input.SaleDate)
	}

	sale, err := s.repo.Record(ctx, input.PropertyID, repository.NewSale{
		Date:      date,
		Price:     input.Price,
		DocNumber: optionalTrimmed(input.DocNumber),
		Buyer:     optionalTrimmed(input.Buyer),
		Seller:    optionalTrimmed(input.Seller),
	})
	if err != nil {
		s.log.Error("Failed to record sale", err, map[string]interface{}{
			"property_id": input.PropertyID,
		})
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}

	s.log.Info("Sale recorded", map[string]interface{}{
		"sale_id":     sale.ID,
		"property_id": sale.PropertyID,
		"price":       sale.Price,
	})
	return sale, nil
}
