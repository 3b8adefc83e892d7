package services

import (
	"context"
	"errors"
	"fmt"

	"appraisal-api/internal/logger"
	"appraisal-api/internal/models"
	"appraisal-api/internal/repository"
)

var (
	ErrAssessmentKeyRequired = errors.New("propertyId and year are required")
)

// UpsertAssessmentInput carries the explicit valuation fields for an
// assessment upsert. Nil values default to zero on create and stay
// untouched on update.
type UpsertAssessmentInput struct {
	PropertyID    int
	Year          int
	MarketValue   *float64
	AssessedValue *float64
	LandValue     *float64
	BuildingValue *float64
}

// AssessmentService defines business logic for assessment snapshots.
type AssessmentService interface {
	// ListByProperty returns assessments for a property, newest year first.
	ListByProperty(ctx context.Context, propertyID int, year *int) ([]models.Assessment, error)

	// Upsert writes the snapshot keyed on (propertyId, year).
	Upsert(ctx context.Context, input UpsertAssessmentInput) (*models.Assessment, error)
}

type assessmentService struct {
	repo repository.AssessmentRepository
	log  *logger.Logger
}

// NewAssessmentService creates a new instance of AssessmentService.
func NewAssessmentService(repo repository.AssessmentRepository, log *logger.Logger) AssessmentService {
	return &assessmentService{
		repo: repo,
		log:  log,
	}
}

func (s *assessmentService) ListByProperty(ctx context.Context, propertyID int, year *int) ([]models.Assessment, error) {
	if propertyID <= 0 {
		return nil, ErrAssessmentKeyRequired
	}

	assessments, err := s.repo.ListByProperty(ctx, propertyID, year)
	if err != nil {
		s.log.Error("Failed to list assessments", err, map[string]interface{}{
			"property_id": propertyID,
		})
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	return assessments, nil
}

func (s *assessmentService) Upsert(ctx context.Context, input UpsertAssessmentInput) (*models.Assessment, error) {
	if input.PropertyID <= 0 || input.Year <= 0 {
		return nil, ErrAssessmentKeyRequired
	}

	assessment, err := s.repo.Upsert(ctx, input.PropertyID, input.Year, repository.AssessmentValues{
		MarketValue:   input.MarketValue,
		AssessedValue: input.AssessedValue,
		LandValue:     input.LandValue,
		BuildingValue: input.BuildingValue,
	})
	if err != nil {
		s.log.Error("Failed to upsert assessment", err, map[string]interface{}{
			"property_id": input.PropertyID,
			"year":        input.Year,
		})
		return nil, fmt.Errorf("failed to upsert assessment: %w", err)
	}

	s.log.Info("Assessment upserted", map[string]interface{}{
		"property_id": assessment.PropertyID,
		"year":        assessment.Year,
	})
	return assessment, nil
}
