package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"appraisal-api/internal/logger"
	"appraisal-api/internal/models"
	"appraisal-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPropertyRepository is a mock implementation of PropertyRepository for testing
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) Upsert(ctx context.Context, cmd repository.PropertyUpsert) (*models.Property, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) FindByFolio(ctx context.Context, folio string) (*models.Property, error) {
	args := m.Called(ctx, folio)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) List(ctx context.Context, limit int) ([]models.Property, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *MockPropertyRepository) RangeByLandValue(ctx context.Context, min, max *float64) ([]models.Property, error) {
	args := m.Called(ctx, min, max)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *MockPropertyRepository) UpdateAddress(ctx context.Context, folio string, address *string) (*models.Property, error) {
	args := m.Called(ctx, folio, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) AdjustLandPercent(ctx context.Context, folio string, percent float64) (*models.Property, error) {
	args := m.Called(ctx, folio, percent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) ResetValues(ctx context.Context, folio string) (*models.Property, error) {
	args := m.Called(ctx, folio)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) DeleteByFolio(ctx context.Context, folio string) (*models.Property, error) {
	args := m.Called(ctx, folio)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) CountAboveBuilding(ctx context.Context, threshold *float64) (int64, error) {
	args := m.Called(ctx, threshold)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPropertyRepository) AdjustLandByZip(ctx context.Context, zipCode string, percent float64) (int64, error) {
	args := m.Called(ctx, zipCode, percent)
	return args.Get(0).(int64), args.Error(1)
}

func strPtr(s string) *string { return &s }

func TestUpsertProperty_Success(t *testing.T) {
	// Arrange
	mockRepo := new(MockPropertyRepository)
	log := logger.New("test")
	service := NewPropertyService(mockRepo, log)

	ctx := context.Background()
	address := "123 Main St"
	expected := &models.Property{
		ID:      1,
		Folio:   "01-2345-678-9010",
		Address: &address,
	}

	mockRepo.On("Upsert", ctx, mock.MatchedBy(func(cmd repository.PropertyUpsert) bool {
		return cmd.Folio == "01-2345-678-9010" &&
			cmd.Address.Set && *cmd.Address.Value == "123 Main St" &&
			cmd.LandValue.Set && *cmd.LandValue.Value == 150000 &&
			cmd.NewOwner == nil && cmd.Sale == nil && cmd.AssessmentYear == nil
	})).Return(expected, nil)

	// Act
	property, err := service.Upsert(ctx, UpsertPropertyInput{
		Folio:     "01-2345-678-9010",
		Address:   strPtr("123 Main St"),
		LandValue: strPtr("150000"),
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, expected, property)
	mockRepo.AssertExpectations(t)
}

func TestUpsertProperty_MissingFolio(t *testing.T) {
	// Arrange
	mockRepo := new(MockPropertyRepository)
	log := logger.New("test")
	service := NewPropertyService(mockRepo, log)

	// Act
	property, err := service.Upsert(context.Background(), UpsertPropertyInput{
		Folio: "   ",
	})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, property)
	assert.ErrorIs(t, err, ErrFolioRequired)
	// Repository should not be called for validation errors
	mockRepo.AssertNotCalled(t, "Upsert")
}

func TestUpsertProperty_MalformedLandValue(t *testing.T) {
	// Arrange
	mockRepo := new(MockPropertyRepository)
	log := logger.New("test")
	service := NewPropertyService(mockRepo, log)

	// Act
	property, err := service.Upsert(context.Background(), UpsertPropertyInput{
		Folio:     "01-0001",
		LandValue: strPtr("abc"),
	})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, property)
	assert.ErrorIs(t, err, ErrInvalidNumeric)
	assert.Contains(t, err.Error(), "landValue")
	mockRepo.AssertNotCalled(t, "Upsert")
}

func TestUpsertProperty_EmptyStringClearsColumn(t *testing.T) {
	// Arrange
	mockRepo := new(MockPropertyRepository)
	log := logger.New("test")
	service := NewPropertyService(mockRepo, log)

	ctx := context.Background()
	expected := &models.Property{ID: 2, Folio: "01-0002"}

	// An empty string is an explicit NULL, not a skipped field
	mockRepo.On("Upsert", ctx, mock.MatchedBy(func(cmd repository.PropertyUpsert) bool {
		return cmd.LandValue.Set && cmd.LandValue.Value == nil &&
			!cmd.BuildingValue.Set
	})).Return(expected, nil)

	// Act
	property, err := service.Upsert(ctx, UpsertPropertyInput{
		Folio:     "01-0002",
		LandValue: strPtr(""),
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, expected, property)
	mockRepo.AssertExpectations(t)
}

func TestUpsertProperty_OwnerIDWinsOverOwnerFields(t *testing.T) {
	// Arrange
	mockRepo := new(MockPropertyRepository)
	log := logger.New("test")
	service := NewPropertyService(mockRepo, log)

	ctx := context.Background()
	expected := &models.Property{ID: 3, Folio: "01-0003"}

	mockRepo.On("Upsert", ctx, mock.MatchedBy(func(cmd repository.PropertyUpsert) bool {
		return cmd.OwnerID != nil && *cmd.OwnerID == 42 && cmd.NewOwner == nil
	})).Return(expected, nil)

	// Act
	property, err := service.Upsert(ctx, UpsertPropertyInput{
		Folio:     "01-0003",
		OwnerID:   "42",
		OwnerName: "Jane Roe", // ignored when the id resolves
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, expected, property)
	mockRepo.AssertExpectations(t)
}

func TestUpsertProperty_NonIntegerOwnerIDFallsBackToNewOwner(t *testing.T) {
	// Arrange
	mockRepo := new(MockPropertyRepository)
	log := logger.New("test")
	service := NewPropertyService(mockRepo, log)

	ctx := context.Background()
	expected := &models.Property{ID: 4, Folio: "01-0004"}

	mockRepo.On("Upsert", ctx, mock.MatchedBy(func(cmd repository.PropertyUpsert) bool {
		return cmd.OwnerID == nil &&
			cmd.NewOwner != nil && cmd.NewOwner.Name == "Jane Roe"
	})).Return(expected, nil)

	// Act
	property, err := service.Upsert(ctx, UpsertPropertyInput{
		Folio:     "01-0004",
		OwnerID:   "not-a-number",
		OwnerName: "Jane Roe",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, expected, property)
	mockRepo.AssertExpectations(t)
}

func TestUpsertProperty_OwnerNameDefaultsWhenOnlyPhoneGiven(t *testing.T) {
	// Arrange
	mockRepo := new(MockPropertyRepository)
	log := logger.New("test")
	service := NewPropertyService(mockRepo, log)

	ctx := context.Background()
	expected := &models.Property{ID: 5, Folio: "01-0005"}

	mockRepo.On("Upsert", ctx, mock.MatchedBy(func(cmd repository.PropertyUpsert) bool {
		return cmd.NewOwner != nil &&
			cmd.NewOwner.Name == defaultOwnerName &&
			cmd.NewOwner.Phone != nil && *cmd.NewOwner.Phone == "305-555-0100"
	})).Return(expected, nil)

	// Act
	property, err := service.Upsert(ctx, UpsertPropertyInput{
		Folio:      "01-0005",
		OwnerPhone: "305-555-0100",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, expected, property)
	mockRepo.AssertExpectations(t)
}

func TestUpsertProperty_SaleRequiresBothDateAndPrice(t *testing.T) {
	// Arrange
	mockRepo := new(MockPropertyRepository)
	log := logger.New("test")
	service := NewPropertyService(mockRepo, log)

	ctx := context.Background()
	expected := &models.Property{ID: 6, Folio: "01-0006"}

	// Date without price: no sale entry should be built
	mockRepo.On("Upsert", ctx, mock.MatchedBy(func(cmd repository.PropertyUpsert) bool {
		return cmd.Sale == nil
	})).Return(expected, nil)

	// Act
	property, err := service.Upsert(ctx, UpsertPropertyInput{
		Folio:    "01-0006",
		SaleDate: "2025-06-15",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, expected, property)
	mockRepo.AssertExpectations(t)
}

func TestUpsertProperty_SaleParsed(t *testing.T) {
	// Arrange
	mockRepo := new(MockPropertyRepository)
	log := logger.New("test")
	service := NewPropertyService(mockRepo, log)

	ctx := context.Background()
	expected := &models.Property{ID: 7, Folio: "01-0007"}
	wantDate := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	mockRepo.On("Upsert", ctx, mock.MatchedBy(func(cmd repository.PropertyUpsert) bool {
		return cmd.Sale != nil &&
			cmd.Sale.Date.Equal(wantDate) &&
			cmd.Sale.Price == 450000
	})).Return(expected, nil)

	// Act
	property, err := service.Upsert(ctx, UpsertPropertyInput{
		Folio:     "01-0007",
		SaleDate:  "2025-06-15",
		SalePrice: "450000",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, expected, property)
	mockRepo.AssertExpectations(t)
}

func TestUpsertProperty_MalformedSalePrice(t *testing.T) {
	// Arrange
	mockRepo := new(MockPropertyRepository)
	log := logger.New("test")
	service := NewPropertyService(mockRepo, log)

	// Act
	property, err := service.Upsert(context.Background(), UpsertPropertyInput{
		Folio:     "01-0008",
		SaleDate:  "2025-06-15",
		SalePrice: "lots",
	})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, property)
	assert.ErrorIs(t, err, ErrInvalidNumeric)
	mockRepo.AssertNotCalled(t, "Upsert")
}

func TestUpsertProperty_MalformedSaleDate(t *testing.T) {
	// Arrange
	mockRepo := new(MockPropertyRepository)
	log := logger.New("test")
	service := NewPropertyService(mockRepo, log)

	// Act
	property, err := service.Upsert(context.Background(), UpsertPropertyInput{
		Folio:     "01-0009",
		SaleDate:  "15/06/2025",
		SalePrice: "450000",
	})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, property)
	assert.ErrorIs(t, err, ErrInvalidSaleDate)
	mockRepo.AssertNotCalled(t, "Upsert")
}

func TestUpsertProperty_NonIntegerAssessmentYearIgnored(t *testing.T) {
	// Arrange
	mockRepo := new(MockPropertyRepository)
	log := logger.New("test")
	service := NewPropertyService(mockRepo, log)

	ctx := context.Background()
	expected := &models.Property{ID: 8, Folio: "01-0010"}

	mockRepo.On("Upsert", ctx, mock.MatchedBy(func(cmd repository.PropertyUpsert) bool {
		return cmd.AssessmentYear == nil
	})).Return(expected, nil)

	// Act
	property, err := service.Upsert(ctx, UpsertPropertyInput{
		Folio:          "01-0010",
		AssessmentYear: "next year",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, expected, property)
	mockRepo.AssertExpectations(t)
}

func TestUpsertProperty_RepositoryError(t *testing.T) {
	// Arrange
	mockRepo := new(MockPropertyRepository)
	log := logger.New("test")
	service := NewPropertyService(mockRepo, log)

	ctx := context.Background()
	dbError := errors.New("database connection failed")
	mockRepo.On("Upsert", ctx, mock.Anything).Return(nil, dbError)

	// Act
	property, err := service.Upsert(ctx, UpsertPropertyInput{Folio: "01-0011"})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, property)
	assert.Contains(t, err.Error(), "failed to upsert property")
	assert.ErrorIs(t, err, dbError)
	mockRepo.AssertExpectations(t)
}

func TestListProperties_LimitClamping(t *testing.T) {
	testCases := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{name: "zero uses default", limit: 0, wantLimit: DefaultListLimit},
		{name: "negative uses default", limit: -5, wantLimit: DefaultListLimit},
		{name: "within bounds passes through", limit: 25, wantLimit: 25},
		{name: "above max clamps", limit: 1000, wantLimit: MaxListLimit},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockRepo := new(MockPropertyRepository)
			log := logger.New("test")
			service := NewPropertyService(mockRepo, log)

			ctx := context.Background()
			mockRepo.On("List", ctx, tc.wantLimit).Return([]models.Property{}, nil)

			// Act
			properties, err := service.List(ctx, tc.limit)

			// Assert
			require.NoError(t, err)
			assert.NotNil(t, properties)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestGetByFolio_Success(t *testing.T) {
	// Arrange
	mockRepo := new(MockPropertyRepository)
	log := logger.New("test")
	service := NewPropertyService(mockRepo, log)

	ctx := context.Background()
	expected := &models.Property{ID: 9, Folio: "01-0012"}
	mockRepo.On("FindByFolio", ctx, "01-0012").Return(expected, nil)

	// Act
	property, err := service.GetByFolio(ctx, "  01-0012  ")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, expected, property)
	mockRepo.AssertExpectations(t)
}

func TestGetByFolio_NotFound(t *testing.T) {
	// Arrange
	mockRepo := new(MockPropertyRepository)
	log := logger.New("test")
	service := NewPropertyService(mockRepo, log)

	ctx := context.Background()
	// Repository returns nil, nil when no property found
	mockRepo.On("FindByFolio", ctx, "01-9999").Return(nil, nil)

	// Act
	property, err := service.GetByFolio(ctx, "01-9999")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, property)
	assert.ErrorIs(t, err, ErrPropertyNotFound)
	mockRepo.AssertExpectations(t)
}

func TestGetByFolio_EmptyFolio(t *testing.T) {
	// Arrange
	mockRepo := new(MockPropertyRepository)
	log := logger.New("test")
	service := NewPropertyService(mockRepo, log)

	// Act
	property, err := service.GetByFolio(context.Background(), "")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, property)
	assert.ErrorIs(t, err, ErrFolioRequired)
	mockRepo.AssertNotCalled(t, "FindByFolio")
}

func TestAdjustLandPercent_LandValueNotSet(t *testing.T) {
	// Arrange
	mockRepo := new(MockPropertyRepository)
	log := logger.New("test")
	service := NewPropertyService(mockRepo, log)

	ctx := context.Background()
	// nil, nil covers both an unknown folio and a NULL land value
	mockRepo.On("AdjustLandPercent", ctx, "01-0013", 10.0).Return(nil, nil)

	// Act
	property, err := service.AdjustLandPercent(ctx, "01-0013", 10.0)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, property)
	assert.ErrorIs(t, err, ErrLandValueNotSet)
	mockRepo.AssertExpectations(t)
}

func TestDeleteProperty_Success(t *testing.T) {
	// Arrange
	mockRepo := new(MockPropertyRepository)
	log := logger.New("test")
	service := NewPropertyService(mockRepo, log)

	ctx := context.Background()
	expected := &models.Property{ID: 10, Folio: "01-0014"}
	mockRepo.On("DeleteByFolio", ctx, "01-0014").Return(expected, nil)

	// Act
	property, err := service.Delete(ctx, "01-0014")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, expected, property)
	mockRepo.AssertExpectations(t)
}

func TestDeleteProperty_NotFound(t *testing.T) {
	// Arrange
	mockRepo := new(MockPropertyRepository)
	log := logger.New("test")
	service := NewPropertyService(mockRepo, log)

	ctx := context.Background()
	mockRepo.On("DeleteByFolio", ctx, "01-9999").Return(nil, nil)

	// Act
	property, err := service.Delete(ctx, "01-9999")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, property)
	assert.ErrorIs(t, err, ErrPropertyNotFound)
	mockRepo.AssertExpectations(t)
}

func TestCountAboveBuilding_NilThreshold(t *testing.T) {
	// Arrange
	mockRepo := new(MockPropertyRepository)
	log := logger.New("test")
	service := NewPropertyService(mockRepo, log)

	ctx := context.Background()
	mockRepo.On("CountAboveBuilding", ctx, (*float64)(nil)).Return(int64(12), nil)

	// Act
	count, err := service.CountAboveBuilding(ctx, nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(12), count)
	mockRepo.AssertExpectations(t)
}

func TestAdjustLandByZip_Success(t *testing.T) {
	// Arrange
	mockRepo := new(MockPropertyRepository)
	log := logger.New("test")
	service := NewPropertyService(mockRepo, log)

	ctx := context.Background()
	mockRepo.On("AdjustLandByZip", ctx, "33101", 5.0).Return(int64(7), nil)

	// Act
	rows, err := service.AdjustLandByZip(ctx, " 33101 ", 5.0)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(7), rows)
	mockRepo.AssertExpectations(t)
}

func TestAdjustLandByZip_EmptyZip(t *testing.T) {
	// Arrange
	mockRepo := new(MockPropertyRepository)
	log := logger.New("test")
	service := NewPropertyService(mockRepo, log)

	// Act
	rows, err := service.AdjustLandByZip(context.Background(), "  ", 5.0)

	// Assert
	assert.Error(t, err)
	assert.Zero(t, rows)
	assert.ErrorIs(t, err, ErrZipCodeRequired)
	mockRepo.AssertNotCalled(t, "AdjustLandByZip")
}
