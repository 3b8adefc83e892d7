package services

import (
	"context"
	"fmt"
	"time"

	"appraisal-api/internal/logger"
	"appraisal-api/internal/models"
	"appraisal-api/internal/repository"
)

// Summary report limit bounds
const (
	DefaultSummaryLimit = 50
	MaxSummaryLimit     = 200
)

// SummaryFilter narrows the property summary report.
type SummaryFilter struct {
	Folio        string
	Owner        string
	Neighborhood string
	Limit        int
}

// ReportService runs the fixed read-only report queries.
type ReportService interface {
	PropertiesWithOwner(ctx context.Context) ([]repository.PropertyOwnerRow, error)
	AvgSalePriceByNeighborhood(ctx context.Context) ([]repository.NeighborhoodAvgRow, error)
	PropertyByFolio(ctx context.Context, folio string) ([]models.Property, error)
	SalesInYear(ctx context.Context, year int) ([]repository.SaleReportRow, error)
	SalesInRange(ctx context.Context, start, end time.Time) ([]repository.SaleReportRow, error)
	OwnersWithMinProperties(ctx context.Context, minCount int) ([]repository.OwnerPropertyCountRow, error)
	Summary(ctx context.Context, filter SummaryFilter) ([]repository.SummaryRow, error)
}

type reportService struct {
	repo repository.ReportRepository
	log  *logger.Logger
}

// NewReportService creates a new instance of ReportService.
func NewReportService(repo repository.ReportRepository, log *logger.Logger) ReportService {
	return &reportService{
		repo: repo,
		log:  log,
	}
}

func (s *reportService) PropertiesWithOwner(ctx context.Context) ([]repository.PropertyOwnerRow, error) {
	rows, err := s.repo.PropertiesWithOwner(ctx)
	if err != nil {
		s.log.Error("Failed to run properties-with-owner report", err, nil)
		return nil, fmt.Errorf("failed to run properties-with-owner report: %w", err)
	}
	return rows, nil
}

func (s *reportService) AvgSalePriceByNeighborhood(ctx context.Context) ([]repository.NeighborhoodAvgRow, error) {
	rows, err := s.repo.AvgSalePriceByNeighborhood(ctx)
	if err != nil {
		s.log.Error("Failed to run average-sale-price report", err, nil)
		return nil, fmt.Errorf("failed to run average-sale-price report: %w", err)
	}
	return rows, nil
}

func (s *reportService) PropertyByFolio(ctx context.Context, folio string) ([]models.Property, error) {
	if folio == "" {
		return nil, ErrFolioRequired
	}

	rows, err := s.repo.PropertyByFolio(ctx, folio)
	if err != nil {
		s.log.Error("Failed to run property-by-folio report", err, map[string]interface{}{
			"folio": folio,
		})
		return nil, fmt.Errorf("failed to run property-by-folio report: %w", err)
	}
	return rows, nil
}

func (s *reportService) SalesInYear(ctx context.Context, year int) ([]repository.SaleReportRow, error) {
	rows, err := s.repo.SalesInYear(ctx, year)
	if err != nil {
		s.log.Error("Failed to run sales-in-year report", err, map[string]interface{}{
			"year": year,
		})
		return nil, fmt.Errorf("failed to run sales-in-year report: %w", err)
	}
	return rows, nil
}

func (s *reportService) SalesInRange(ctx context.Context, start, end time.Time) ([]repository.SaleReportRow, error) {
	rows, err := s.repo.SalesInRange(ctx, start, end)
	if err != nil {
		s.log.Error("Failed to run sales-in-range report", err, nil)
		return nil, fmt.Errorf("failed to run sales-in-range report: %w", err)
	}
	return rows, nil
}

func (s *reportService) OwnersWithMinProperties(ctx context.Context, minCount int) ([]repository.OwnerPropertyCountRow, error) {
	if minCount < 1 {
		minCount = 1
	}

	rows, err := s.repo.OwnersWithMinProperties(ctx, minCount)
	if err != nil {
		s.log.Error("Failed to run owners-with-min-properties report", err, map[string]interface{}{
			"min_count": minCount,
		})
		return nil, fmt.Errorf("failed to run owners-with-min-properties report: %w", err)
	}
	return rows, nil
}

func (s *reportService) Summary(ctx context.Context, filter SummaryFilter) ([]repository.SummaryRow, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultSummaryLimit
	}
	if filter.Limit > MaxSummaryLimit {
		filter.Limit = MaxSummaryLimit
	}

	rows, err := s.repo.Summary(ctx, repository.SummaryFilter{
		Folio:        filter.Folio,
		Owner:        filter.Owner,
		Neighborhood: filter.Neighborhood,
		Limit:        filter.Limit,
	})
	if err != nil {
		s.log.Error("Failed to run property summary report", err, nil)
		return nil, fmt.Errorf("failed to run property summary report: %w", err)
	}
	return rows, nil
}
