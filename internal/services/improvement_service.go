package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"appraisal-api/internal/logger"
	"appraisal-api/internal/models"
	"appraisal-api/internal/repository"
)

var (
	ErrImprovementFieldsRequired = errors.New("propertyId and type are required")
	ErrImprovementNotFound       = errors.New("improvement not found")
)

// AddImprovementInput carries the fields for a new improvement row.
type AddImprovementInput struct {
	PropertyID int
	Type       string
	YearBuilt  *int
	Value      *float64
}

// ImprovementService defines business logic for improvement records.
type ImprovementService interface {
	// ListByProperty returns improvements for a property, grouped by type.
	ListByProperty(ctx context.Context, propertyID int) ([]models.Improvement, error)

	// Add inserts an improvement. Duplicates are allowed.
	Add(ctx context.Context, input AddImprovementInput) (*models.Improvement, error)

	// Delete removes an improvement by id.
	// Returns ErrImprovementNotFound when the id is unknown.
	Delete(ctx context.Context, id int) (*models.Improvement, error)
}

type improvementService struct {
	repo repository.ImprovementRepository
	log  *logger.Logger
}

// NewImprovementService creates a new instance of ImprovementService.
func NewImprovementService(repo repository.ImprovementRepository, log *logger.Logger) ImprovementService {
	return &improvementService{
		repo: repo,
		log:  log,
	}
}

func (s *improvementService) ListByProperty(ctx context.Context, propertyID int) ([]models.Improvement, error) {
	if propertyID <= 0 {
		return nil, ErrImprovementFieldsRequired
	}

	improvements, err := s.repo.ListByProperty(ctx, propertyID)
	if err != nil {
		s.log.Error("Failed to list improvements", err, map[string]interface{}{
			"property_id": propertyID,
		})
		return nil, fmt.Errorf("failed to list improvements: %w", err)
	}
	return improvements, nil
}

func (s *improvementService) Add(ctx context.Context, input AddImprovementInput) (*models.Improvement, error) {
	improvementType := strings.TrimSpace(input.Type)
	if input.PropertyID <= 0 || improvementType == "" {
		return nil, ErrImprovementFieldsRequired
	}

	improvement, err := s.repo.Add(ctx, input.PropertyID, improvementType, input.YearBuilt, input.Value)
	if err != nil {
		s.log.Error("Failed to add improvement", err, map[string]interface{}{
			"property_id": input.PropertyID,
			"type":        improvementType,
		})
		return nil, fmt.Errorf("failed to add improvement: %w", err)
	}

	s.log.Info("Improvement added", map[string]interface{}{
		"improvement_id": improvement.ID,
		"property_id":    improvement.PropertyID,
		"type":           improvement.Type,
	})
	return improvement, nil
}

func (s *improvementService) Delete(ctx context.Context, id int) (*models.Improvement, error) {
	improvement, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to delete improvement", err, map[string]interface{}{
			"improvement_id": id,
		})
		return nil, fmt.Errorf("failed to delete improvement: %w", err)
	}
	if improvement == nil {
		return nil, ErrImprovementNotFound
	}

	s.log.Info("Improvement deleted", map[string]interface{}{
		"improvement_id": id,
	})
	return improvement, nil
}
