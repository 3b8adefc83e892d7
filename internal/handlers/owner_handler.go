package handlers

import (
	"errors"
	"net/http"

	apierrors "appraisal-api/internal/errors"
	"appraisal-api/internal/models"
	"appraisal-api/internal/services"
	"github.com/gin-gonic/gin"
)

// OwnerHandler handles owner-related HTTP requests.
type OwnerHandler struct {
	service services.OwnerService
}

// NewOwnerHandler creates a new OwnerHandler instance.
func NewOwnerHandler(service services.OwnerService) *OwnerHandler {
	return &OwnerHandler{
		service: service,
	}
}

// CreateOwnerRequest is the body for the owner creation endpoint.
type CreateOwnerRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// AssignOwnerRequest is the body for the owner assignment endpoint.
type AssignOwnerRequest struct {
	PropertyID int `json:"propertyId" binding:"required,gt=0"`
	OwnerID    int `json:"ownerId" binding:"required,gt=0"`
}

// OwnerResponse wraps a single owner record.
type OwnerResponse struct {
	Owner *models.Owner `json:"owner"`
}

// OwnersResponse wraps a list of owner records.
type OwnersResponse struct {
	Owners []models.Owner `json:"owners"`
}

// Search handles GET /api/v1/owners.
func (h *OwnerHandler) Search(c *gin.Context) {
	owners, err := h.service.Search(c.Request.Context(), c.Query("name"))
	if err != nil {
		apierrors.InternalServerError(c, "Failed to search owners", err)
		return
	}

	c.JSON(http.StatusOK, OwnersResponse{Owners: owners})
}

// Create handles POST /api/v1/owners.
func (h *OwnerHandler) Create(c *gin.Context) {
	var req CreateOwnerRequest
	if !bindJSON(c, &req) {
		return
	}

	owner, err := h.service.Create(c.Request.Context(), req.Name, req.Phone, req.Email)
	if err != nil {
		if errors.Is(err, services.ErrOwnerNameRequired) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to create owner", err)
		return
	}

	c.JSON(http.StatusOK, OwnerResponse{Owner: owner})
}

// Assign handles POST /api/v1/owners/assign.
func (h *OwnerHandler) Assign(c *gin.Context) {
	var req AssignOwnerRequest
	if !bindJSON(c, &req) {
		return
	}

	property, err := h.service.Assign(c.Request.Context(), req.PropertyID, req.OwnerID)
	if err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			apierrors.NotFound(c, "No property found for this id")
			return
		}
		apierrors.InternalServerError(c, "Failed to assign owner", err)
		return
	}

	c.JSON(http.StatusOK, PropertyResponse{Property: property})
}
