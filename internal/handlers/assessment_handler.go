package handlers

import (
	"errors"
	"net/http"

	apierrors "appraisal-api/internal/errors"
	"appraisal-api/internal/models"
	"appraisal-api/internal/services"
	"github.com/gin-gonic/gin"
)

// AssessmentHandler handles assessment-related HTTP requests.
type AssessmentHandler struct {
	service services.AssessmentService
}

// NewAssessmentHandler creates a new AssessmentHandler instance.
func NewAssessmentHandler(service services.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{
		service: service,
	}
}

// ListAssessmentsRequest represents the query parameters for the assessment
// listing endpoint.
type ListAssessmentsRequest struct {
	PropertyID int  `form:"propertyId" binding:"required,gt=0"`
	Year       *int `form:"year"`
}

// UpsertAssessmentRequest is the body for the assessment upsert endpoint.
// Omitted values default to zero on create and stay untouched on update.
type UpsertAssessmentRequest struct {
	PropertyID    int      `json:"propertyId" binding:"required,gt=0"`
	Year          int      `json:"year" binding:"required,gt=0"`
	MarketValue   *float64 `json:"marketValue"`
	AssessedValue *float64 `json:"assessedVal"`
	LandValue     *float64 `json:"landVal"`
	BuildingValue *float64 `json:"bldgVal"`
}

// AssessmentResponse wraps a single assessment record.
type AssessmentResponse struct {
	Assessment *models.Assessment `json:"assessment"`
}

// AssessmentsResponse wraps a list of assessment records.
type AssessmentsResponse struct {
	Assessments []models.Assessment `json:"assessments"`
}

// List handles GET /api/v1/assessments.
func (h *AssessmentHandler) List(c *gin.Context) {
	var req ListAssessmentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		apierrors.BadRequest(c, "propertyId is required", nil)
		return
	}

	assessments, err := h.service.ListByProperty(c.Request.Context(), req.PropertyID, req.Year)
	if err != nil {
		if errors.Is(err, services.ErrAssessmentKeyRequired) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to list assessments", err)
		return
	}

	c.JSON(http.StatusOK, AssessmentsResponse{Assessments: assessments})
}

// Upsert handles POST /api/v1/assessments.
func (h *AssessmentHandler) Upsert(c *gin.Context) {
	var req UpsertAssessmentRequest
	if !bindJSON(c, &req) {
		return
	}

	assessment, err := h.service.Upsert(c.Request.Context(), services.UpsertAssessmentInput{
		PropertyID:    req.PropertyID,
		Year:          req.Year,
		MarketValue:   req.MarketValue,
		AssessedValue: req.AssessedValue,
		LandValue:     req.LandValue,
		BuildingValue: req.BuildingValue,
	})
	if err != nil {
		if errors.Is(err, services.ErrAssessmentKeyRequired) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to upsert assessment", err)
		return
	}

	c.JSON(http.StatusOK, AssessmentResponse{Assessment: assessment})
}
