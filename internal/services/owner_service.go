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

// Maximum number of owners returned by a name search
const maxOwnerSearchResults = 50

var (
	ErrOwnerNameRequired = errors.New("name is required")
)

// OwnerService defines business logic for owner records.
type OwnerService interface {
	// Search returns owners whose name contains the fragment.
	Search(ctx context.Context, name string) ([]models.Owner, error)

	// Create inserts an owner; name is required, contact fields optional.
	Create(ctx context.Context, name, phone, email string) (*models.Owner, error)

	// Assign sets the owner reference on a property.
	// Returns ErrPropertyNotFound when the property does not exist.
	Assign(ctx context.Context, propertyID, ownerID int) (*models.Property, error)
}

type ownerService struct {
	repo repository.OwnerRepository
	log  *logger.Logger
}

// NewOwnerService creates a new instance of OwnerService.
func NewOwnerService(repo repository.OwnerRepository, log *logger.Logger) OwnerService {
	return &ownerService{
		repo: repo,
		log:  log,
	}
}

func (s *ownerService) Search(ctx context.Context, name string) ([]models.Owner, error) {
	owners, err := s.repo.SearchByName(ctx, strings.TrimSpace(name), maxOwnerSearchResults)
	if err != nil {
		s.log.Error("Failed to search owners", err, map[string]interface{}{
			"name": name,
		})
		return nil, fmt.Errorf("failed to search owners: %w", err)
	}
	return owners, nil
}

func (s *ownerService) Create(ctx context.Context, name, phone, email string) (*models.Owner, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrOwnerNameRequired
	}

	owner, err := s.repo.Create(ctx, name, optionalTrimmed(phone), optionalTrimmed(email))
	if err != nil {
		s.log.Error("Failed to create owner", err, map[string]interface{}{
			"name": name,
		})
		return nil, fmt.Errorf("failed to create owner: %w", err)
	}

	s.log.Info("Owner created", map[string]interface{}{
		"owner_id": owner.ID,
		"name":     owner.Name,
	})
	return owner, nil
}

func (s *ownerService) Assign(ctx context.Context, propertyID, ownerID int) (*models.Property, error) {
	property, err := s.repo.AssignToProperty(ctx, propertyID, ownerID)
	if err != nil {
		s.log.Error("Failed to assign owner", err, map[string]interface{}{
			"property_id": propertyID,
			"owner_id":    ownerID,
		})
		return nil, fmt.Errorf("failed to assign owner: %w", err)
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}

	s.log.Info("Owner assigned", map[string]interface{}{
		"property_id": propertyID,
		"owner_id":    ownerID,
	})
	return property, nil
}
