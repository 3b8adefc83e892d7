package handlers

import (
	"errors"
	"net/http"

	apierrors "appraisal-api/internal/errors"
	"appraisal-api/internal/middleware"
	"appraisal-api/internal/models"
	"appraisal-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// PropertyHandler handles property-related HTTP requests.
type PropertyHandler struct {
	service services.PropertyService
}

// NewPropertyHandler creates a new PropertyHandler instance.
func NewPropertyHandler(service services.PropertyService) *PropertyHandler {
	return &PropertyHandler{
		service: service,
	}
}

// UpsertPropertyRequest is the body for the upsert endpoint. Numeric fields
// arrive as strings from the form UI; pointer fields distinguish omitted
// from explicitly empty.
type UpsertPropertyRequest struct {
	Folio          string  `json:"folio" binding:"required"`
	Address        *string `json:"address"`
	ZipCode        *string `json:"zipCode"`
	LandValue      *string `json:"landValue"`
	BuildingValue  *string `json:"buildingValue"`
	OwnerID        string  `json:"ownerId"`
	OwnerName      string  `json:"ownerName"`
	OwnerPhone     string  `json:"ownerPhone"`
	OwnerEmail     string  `json:"ownerEmail"`
	SaleDate       string  `json:"saleDate"`
	SalePrice      string  `json:"salePrice"`
	AssessmentYear string  `json:"assessmentYear"`
}

// ListPropertiesRequest represents the query parameters for the list endpoint.
type ListPropertiesRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}

// RangeRequest represents the query parameters for the land value range endpoint.
type RangeRequest struct {
	Min *float64 `form:"min"`
	Max *float64 `form:"max"`
}

// UpdateAddressRequest is the body for the address update endpoint.
// A nil or empty NewAddress clears the stored address.
type UpdateAddressRequest struct {
	NewAddress *string `json:"newAddress"`
}

// AdjustLandRequest is the body for the percentage adjustment endpoint.
type AdjustLandRequest struct {
	Percent float64 `json:"percent"`
}

// CountRequest represents the query parameters for the count endpoint.
type CountRequest struct {
	Threshold *float64 `form:"threshold"`
}

// AdjustLandByZipRequest is the body for the bulk zip adjustment endpoint.
type AdjustLandByZipRequest struct {
	ZipCode string   `json:"zipCode" binding:"required"`
	Percent *float64 `json:"percent" binding:"required"`
}

// PropertyResponse wraps a single property record.
type PropertyResponse struct {
	Property *models.Property `json:"property"`
}

// PropertiesResponse wraps a list of property records.
type PropertiesResponse struct {
	Properties []models.Property `json:"properties"`
}

// CountResponse wraps the result of the count endpoint.
type CountResponse struct {
	Count int64 `json:"count"`
}

// AdjustLandByZipResponse reports the outcome of the bulk adjustment.
type AdjustLandByZipResponse struct {
	Message      string  `json:"message"`
	ZipCode      string  `json:"zipCode"`
	Percent      float64 `json:"percent"`
	RowsAffected int64   `json:"rowsAffected"`
}

// isValidationError reports whether the service rejected the input before
// any write happened.
func isValidationError(err error) bool {
	return errors.Is(err, services.ErrFolioRequired) ||
		errors.Is(err, services.ErrInvalidNumeric) ||
		errors.Is(err, services.ErrInvalidSaleDate) ||
		errors.Is(err, services.ErrZipCodeRequired)
}

// bindJSON binds the request body and writes the error response on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return false
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return false
	}
	return true
}

// Upsert handles POST /api/v1/properties.
// It runs the full upsert workflow: property create-or-update plus the
// conditional owner, sale and assessment side-effects.
func (h *PropertyHandler) Upsert(c *gin.Context) {
	var req UpsertPropertyRequest
	if !bindJSON(c, &req) {
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Processing property upsert", map[string]interface{}{
			"folio": req.Folio,
		})
	}

	property, err := h.service.Upsert(c.Request.Context(), services.UpsertPropertyInput{
		Folio:          req.Folio,
		Address:        req.Address,
		ZipCode:        req.ZipCode,
		LandValue:      req.LandValue,
		BuildingValue:  req.BuildingValue,
		OwnerID:        req.OwnerID,
		OwnerName:      req.OwnerName,
		OwnerPhone:     req.OwnerPhone,
		OwnerEmail:     req.OwnerEmail,
		SaleDate:       req.SaleDate,
		SalePrice:      req.SalePrice,
		AssessmentYear: req.AssessmentYear,
	})
	if err != nil {
		if isValidationError(err) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to upsert property", err)
		return
	}

	c.JSON(http.StatusOK, PropertyResponse{Property: property})
}

// List handles GET /api/v1/properties.
func (h *PropertyHandler) List(c *gin.Context) {
	var req ListPropertiesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	properties, err := h.service.List(c.Request.Context(), req.Limit)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to list properties", err)
		return
	}

	c.JSON(http.StatusOK, PropertiesResponse{Properties: properties})
}

// GetByFolio handles GET /api/v1/properties/:folio.
func (h *PropertyHandler) GetByFolio(c *gin.Context) {
	property, err := h.service.GetByFolio(c.Request.Context(), c.Param("folio"))
	if err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			apierrors.NotFound(c, "No property found for this folio")
			return
		}
		if isValidationError(err) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to query property", err)
		return
	}

	c.JSON(http.StatusOK, PropertyResponse{Property: property})
}

// Range handles GET /api/v1/properties/range.
func (h *PropertyHandler) Range(c *gin.Context) {
	var req RangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	properties, err := h.service.RangeByLandValue(c.Request.Context(), req.Min, req.Max)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to query properties", err)
		return
	}

	c.JSON(http.StatusOK, PropertiesResponse{Properties: properties})
}

// UpdateAddress handles PATCH /api/v1/properties/:folio/address.
func (h *PropertyHandler) UpdateAddress(c *gin.Context) {
	var req UpdateAddressRequest
	if !bindJSON(c, &req) {
		return
	}

	property, err := h.service.UpdateAddress(c.Request.Context(), c.Param("folio"), req.NewAddress)
	if err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			apierrors.NotFound(c, "No property found for this folio")
			return
		}
		if isValidationError(err) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to update property address", err)
		return
	}

	c.JSON(http.StatusOK, PropertyResponse{Property: property})
}

// AdjustLand handles POST /api/v1/properties/:folio/adjust-land.
func (h *PropertyHandler) AdjustLand(c *gin.Context) {
	var req AdjustLandRequest
	if !bindJSON(c, &req) {
		return
	}

	property, err := h.service.AdjustLandPercent(c.Request.Context(), c.Param("folio"), req.Percent)
	if err != nil {
		if errors.Is(err, services.ErrLandValueNotSet) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		if isValidationError(err) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to adjust land value", err)
		return
	}

	c.JSON(http.StatusOK, PropertyResponse{Property: property})
}

// ResetValues handles POST /api/v1/properties/:folio/reset-values.
func (h *PropertyHandler) ResetValues(c *gin.Context) {
	property, err := h.service.ResetValues(c.Request.Context(), c.Param("folio"))
	if err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			apierrors.NotFound(c, "No property found for this folio")
			return
		}
		if isValidationError(err) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to reset property values", err)
		return
	}

	c.JSON(http.StatusOK, PropertyResponse{Property: property})
}

// Delete handles DELETE /api/v1/properties/:folio.
func (h *PropertyHandler) Delete(c *gin.Context) {
	property, err := h.service.Delete(c.Request.Context(), c.Param("folio"))
	if err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			apierrors.NotFound(c, "No property found for this folio")
			return
		}
		if isValidationError(err) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to delete property", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": property})
}

// Count handles GET /api/v1/properties/count.
func (h *PropertyHandler) Count(c *gin.Context) {
	var req CountRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	count, err := h.service.CountAboveBuilding(c.Request.Context(), req.Threshold)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to count properties", err)
		return
	}

	c.JSON(http.StatusOK, CountResponse{Count: count})
}

// AdjustLandByZip handles POST /api/v1/properties/adjust-land-by-zip.
func (h *PropertyHandler) AdjustLandByZip(c *gin.Context) {
	var req AdjustLandByZipRequest
	if !bindJSON(c, &req) {
		return
	}

	rows, err := h.service.AdjustLandByZip(c.Request.Context(), req.ZipCode, *req.Percent)
	if err != nil {
		if isValidationError(err) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to adjust land values", err)
		return
	}

	c.JSON(http.StatusOK, AdjustLandByZipResponse{
		Message:      "Land values adjusted successfully",
		ZipCode:      req.ZipCode,
		Percent:      *req.Percent,
		RowsAffected: rows,
	})
}
