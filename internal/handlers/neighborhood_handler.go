package handlers

import (
	"errors"
	"net/http"

	apierrors "appraisal-api/internal/errors"
	"appraisal-api/internal/models"
	"appraisal-api/internal/services"
	"github.com/gin-gonic/gin"
)

// NeighborhoodHandler handles neighborhood-related HTTP requests.
type NeighborhoodHandler struct {
	service services.NeighborhoodService
}

// NewNeighborhoodHandler creates a new NeighborhoodHandler instance.
func NewNeighborhoodHandler(service services.NeighborhoodService) *NeighborhoodHandler {
	return &NeighborhoodHandler{
		service: service,
	}
}

// CreateNeighborhoodRequest is the body for the neighborhood creation endpoint.
type CreateNeighborhoodRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// AssignNeighborhoodRequest is the body for the neighborhood assignment endpoint.
type AssignNeighborhoodRequest struct {
	PropertyID     int `json:"propertyId" binding:"required,gt=0"`
	NeighborhoodID int `json:"neighborhoodId" binding:"required,gt=0"`
}

// NeighborhoodResponse wraps a single neighborhood record.
type NeighborhoodResponse struct {
	Neighborhood *models.Neighborhood `json:"neighborhood"`
}

// NeighborhoodsResponse wraps a list of neighborhood records.
type NeighborhoodsResponse struct {
	Neighborhoods []models.Neighborhood `json:"neighborhoods"`
}

// NeighborhoodDetailResponse wraps a neighborhood with its recent properties.
type NeighborhoodDetailResponse struct {
	Neighborhood models.Neighborhood `json:"neighborhood"`
	Properties   []models.Property   `json:"properties"`
}

// List handles GET /api/v1/neighborhoods.
func (h *NeighborhoodHandler) List(c *gin.Context) {
	neighborhoods, err := h.service.List(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to list neighborhoods", err)
		return
	}

	c.JSON(http.StatusOK, NeighborhoodsResponse{Neighborhoods: neighborhoods})
}

// GetByCode handles GET /api/v1/neighborhoods/:code.
func (h *NeighborhoodHandler) GetByCode(c *gin.Context) {
	detail, err := h.service.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, services.ErrNeighborhoodNotFound) {
			apierrors.NotFound(c, "No neighborhood found for this code")
			return
		}
		apierrors.InternalServerError(c, "Failed to query neighborhood", err)
		return
	}

	c.JSON(http.StatusOK, NeighborhoodDetailResponse{
		Neighborhood: detail.Neighborhood,
		Properties:   detail.Properties,
	})
}

// Create handles POST /api/v1/neighborhoods.
func (h *NeighborhoodHandler) Create(c *gin.Context) {
	var req CreateNeighborhoodRequest
	if !bindJSON(c, &req) {
		return
	}

	neighborhood, err := h.service.Create(c.Request.Context(), req.Code, req.Name)
	if err != nil {
		if errors.Is(err, services.ErrNeighborhoodFieldsRequired) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to create neighborhood", err)
		return
	}

	c.JSON(http.StatusOK, NeighborhoodResponse{Neighborhood: neighborhood})
}

// Assign handles POST /api/v1/neighborhoods/assign.
func (h *NeighborhoodHandler) Assign(c *gin.Context) {
	var req AssignNeighborhoodRequest
	if !bindJSON(c, &req) {
		return
	}

	property, err := h.service.AssignProperty(c.Request.Context(), req.PropertyID, req.NeighborhoodID)
	if err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			apierrors.NotFound(c, "No property found for this id")
			return
		}
		apierrors.InternalServerError(c, "Failed to assign property to neighborhood", err)
		return
	}

	c.JSON(http.StatusOK, PropertyResponse{Property: property})
}
