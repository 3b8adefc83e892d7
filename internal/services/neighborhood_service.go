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

// Maximum number of neighborhoods returned by a listing
const maxNeighborhoodListResults = 50

var (
	ErrNeighborhoodFieldsRequired = errors.New("code and name are required")
	ErrNeighborhoodNotFound       = errors.New("neighborhood not found")
)

// NeighborhoodService defines business logic for neighborhood records.
type NeighborhoodService interface {
	// List returns the most recently created neighborhoods.
	List(ctx context.Context) ([]models.Neighborhood, error)

	// GetByCode returns the neighborhood with its recent properties.
	// Returns ErrNeighborhoodNotFound when the code is unknown.
	GetByCode(ctx context.Context, code string) (*repository.NeighborhoodDetail, error)

	// Create inserts a neighborhood; both code and name are required.
	Create(ctx context.Context, code, name string) (*models.Neighborhood, error)

	// AssignProperty sets the neighborhood reference on a property.
	// Returns ErrPropertyNotFound when the property does not exist.
	AssignProperty(ctx context.Context, propertyID, neighborhoodID int) (*models.Property, error)
}

type neighborhoodService struct {
	repo repository.NeighborhoodRepository
	log  *logger.Logger
}

// NewNeighborhoodService creates a new instance of NeighborhoodService.
func NewNeighborhoodService(repo repository.NeighborhoodRepository, log *logger.Logger) NeighborhoodService {
	return &neighborhoodService{
		repo: repo,
		log:  log,
	}
}

func (s *neighborhoodService) List(ctx context.Context) ([]models.Neighborhood, error) {
	neighborhoods, err := s.repo.List(ctx, maxNeighborhoodListResults)
	if err != nil {
		s.log.Error("Failed to list neighborhoods", err, nil)
		return nil, fmt.Errorf("failed to list neighborhoods: %w", err)
	}
	return neighborhoods, nil
}

func (s *neighborhoodService) GetByCode(ctx context.Context, code string) (*repository.NeighborhoodDetail, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrNeighborhoodNotFound
	}

	detail, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		s.log.Error("Failed to query neighborhood", err, map[string]interface{}{
			"code": code,
		})
		return nil, fmt.Errorf("failed to query neighborhood: %w", err)
	}
	if detail == nil {
		return nil, ErrNeighborhoodNotFound
	}
	return detail, nil
}

func (s *neighborhoodService) Create(ctx context.Context, code, name string) (*models.Neighborhood, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" || name == "" {
		return nil, ErrNeighborhoodFieldsRequired
	}

	neighborhood, err := s.repo.Create(ctx, code, name)
	if err != nil {
		s.log.Error("Failed to create neighborhood", err, map[string]interface{}{
			"code": code,
		})
		return nil, fmt.Errorf("failed to create neighborhood: %w", err)
	}

	s.log.Info("Neighborhood created", map[string]interface{}{
		"neighborhood_id": neighborhood.ID,
		"code":            neighborhood.Code,
	})
	return neighborhood, nil
}

func (s *neighborhoodService) AssignProperty(ctx context.Context, propertyID, neighborhoodID int) (*models.Property, error) {
	property, err := s.repo.AssignProperty(ctx, propertyID, neighborhoodID)
	if err != nil {
		s.log.Error("Failed to assign property to neighborhood", err, map[string]interface{}{
			"property_id":     propertyID,
			"neighborhood_id": neighborhoodID,
		})
		return nil, fmt.Errorf("failed to assign property to neighborhood: %w", err)
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}

	s.log.Info("Property assigned to neighborhood", map[string]interface{}{
		"property_id":     propertyID,
		"neighborhood_id": neighborhoodID,
	})
	return property, nil
}
