package handlers

import (
	"errors"
	"net/http"

	apierrors "appraisal-api/internal/errors"
	"appraisal-api/internal/models"
	"appraisal-api/internal/services"
	"github.com/gin-gonic/gin"
)

// SaleHandler handles sale-related HTTP requests.
type SaleHandler struct {
	service services.SaleService
}

// NewSaleHandler creates a new SaleHandler instance.
func NewSaleHandler(service services.SaleService) *SaleHandler {
	return &SaleHandler{
		service: service,
	}
}

// ListSalesRequest represents the query parameters for the sale listing endpoint.
type ListSalesRequest struct {
	PropertyID int `form:"propertyId" binding:"omitempty,gt=0"`
	Take       int `form:"take" binding:"omitempty,min=1,max=100"`
}

// RecordSaleRequest is the body for the sale recording endpoint.
type RecordSaleRequest struct {
	PropertyID int      `json:"propertyId" binding:"required,gt=0"`
	SaleDate   string   `json:"saleDate" binding:"required"`
	Price      *float64 `json:"price" binding:"required,gt=0"`
	DocNumber  string   `json:"docNumber"`
	Buyer      string   `json:"buyer"`
	Seller     string   `json:"seller"`
}

// SaleResponse wraps a single sale record.
type SaleResponse struct {
	Sale *models.Sale `json:"sale"`
}

// SalesResponse wraps a list of sale records.
type SalesResponse struct {
	Sales []models.Sale `json:"sales"`
}

// List handles GET /api/v1/sales.
func (h *SaleHandler) List(c *gin.Context) {
	var req ListSalesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	sales, err := h.service.ListByProperty(c.Request.Context(), req.PropertyID, req.Take)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to list sales", err)
		return
	}

	c.JSON(http.StatusOK, SalesResponse{Sales: sales})
}

// Record handles POST /api/v1/sales.
func (h *SaleHandler) Record(c *gin.Context) {
	var req RecordSaleRequest
	if !bindJSON(c, &req) {
		return
	}

	sale, err := h.service.Record(c.Request.Context(), services.RecordSaleInput{
		PropertyID: req.PropertyID,
		SaleDate:   req.SaleDate,
		Price:      *req.Price,
		DocNumber:  req.DocNumber,
		Buyer:      req.Buyer,
		Seller:     req.Seller,
	})
	if err != nil {
		if errors.Is(err, services.ErrSaleFieldsRequired) || errors.Is(err, services.ErrInvalidSaleDate) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to record sale", err)
		return
	}

	c.JSON(http.StatusOK, SaleResponse{Sale: sale})
}
