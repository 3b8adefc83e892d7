package handlers

import (
	"errors"
	"net/http"
	"strconv"

	apierrors "appraisal-api/internal/errors"
	"appraisal-api/internal/models"
	"appraisal-api/internal/services"
	"github.com/gin-gonic/gin"
)

// ImprovementHandler handles improvement-related HTTP requests.
type ImprovementHandler struct {
	service services.ImprovementService
}

// NewImprovementHandler creates a new ImprovementHandler instance.
func NewImprovementHandler(service services.ImprovementService) *ImprovementHandler {
	return &ImprovementHandler{
		service: service,
	}
}

// ListImprovementsRequest represents the query parameters for the
// improvement listing endpoint.
type ListImprovementsRequest struct {
	PropertyID int `form:"propertyId" binding:"required,gt=0"`
}

// AddImprovementRequest is the body for the improvement creation endpoint.
type AddImprovementRequest struct {
	PropertyID int      `json:"propertyId" binding:"required,gt=0"`
	Type       string   `json:"type" binding:"required"`
	YearBuilt  *int     `json:"yearBuilt"`
	Value      *float64 `json:"value"`
}

// ImprovementResponse wraps a single improvement record.
type ImprovementResponse struct {
	Improvement *models.Improvement `json:"improvement"`
}

// ImprovementsResponse wraps a list of improvement records.
type ImprovementsResponse struct {
	Improvements []models.Improvement `json:"improvements"`
}

// List handles GET /api/v1/improvements.
func (h *ImprovementHandler) List(c *gin.Context) {
	var req ListImprovementsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		apierrors.BadRequest(c, "propertyId is required", nil)
		return
	}

	improvements, err := h.service.ListByProperty(c.Request.Context(), req.PropertyID)
	if err != nil {
		if errors.Is(err, services.ErrImprovementFieldsRequired) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to list improvements", err)
		return
	}

	c.JSON(http.StatusOK, ImprovementsResponse{Improvements: improvements})
}

// Add handles POST /api/v1/improvements.
func (h *ImprovementHandler) Add(c *gin.Context) {
	var req AddImprovementRequest
	if !bindJSON(c, &req) {
		return
	}

	improvement, err := h.service.Add(c.Request.Context(), services.AddImprovementInput{
		PropertyID: req.PropertyID,
		Type:       req.Type,
		YearBuilt:  req.YearBuilt,
		Value:      req.Value,
	})
	if err != nil {
		if errors.Is(err, services.ErrImprovementFieldsRequired) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to add improvement", err)
		return
	}

	c.JSON(http.StatusOK, ImprovementResponse{Improvement: improvement})
}

// Delete handles DELETE /api/v1/improvements/:id.
func (h *ImprovementHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		apierrors.BadRequest(c, "id must be a positive integer", nil)
		return
	}

	improvement, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrImprovementNotFound) {
			apierrors.NotFound(c, "No improvement found for this id")
			return
		}
		apierrors.InternalServerError(c, "Failed to delete improvement", err)
		return
	}

	c.JSON(http.StatusOK, ImprovementResponse{Improvement: improvement})
}
