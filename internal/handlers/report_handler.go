package handlers

import (
	"net/http"
	"strconv"
	"time"

	apierrors "appraisal-api/internal/errors"
	"appraisal-api/internal/services"
	"github.com/gin-gonic/gin"
)

// Report keys routed by GET /api/v1/reports/:key. The set is closed;
// unknown keys are rejected rather than falling through to raw SQL.
const (
	reportPropertiesWithOwner        = "properties_with_owner"
	reportAvgSalePriceByNeighborhood = "avg_sale_price_by_neighborhood"
	reportPropertyByFolio            = "property_by_folio"
	reportSalesInYear                = "sales_in_year"
	reportSalesInRange               = "sales_in_range"
	reportOwnersWithMinProperties    = "owners_with_min_properties"
)

// Default year for the sales_in_year report when none is supplied
const defaultSalesReportYear = 2024

// ReportHandler handles the read-only report endpoints.
type ReportHandler struct {
	service services.ReportService
}

// NewReportHandler creates a new ReportHandler instance.
func NewReportHandler(service services.ReportService) *ReportHandler {
	return &ReportHandler{
		service: service,
	}
}

// SummaryRequest represents the query parameters for the summary report.
type SummaryRequest struct {
	Folio        string `form:"folio"`
	Owner        string `form:"owner"`
	Neighborhood string `form:"neighborhood"`
	Limit        int    `form:"limit" binding:"omitempty,min=1,max=200"`
}

// Summary handles GET /api/v1/reports/summary.
// It reads from the v_property_summary view with optional filters.
func (h *ReportHandler) Summary(c *gin.Context) {
	var req SummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	rows, err := h.service.Summary(c.Request.Context(), services.SummaryFilter{
		Folio:        req.Folio,
		Owner:        req.Owner,
		Neighborhood: req.Neighborhood,
		Limit:        req.Limit,
	})
	if err != nil {
		apierrors.InternalServerError(c, "Failed to run property summary report", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": rows})
}

// ByKey handles GET /api/v1/reports/:key.
// Each key maps to a fixed, parameterized query; there is no way to submit
// arbitrary SQL through this endpoint.
func (h *ReportHandler) ByKey(c *gin.Context) {
	ctx := c.Request.Context()

	switch c.Param("key") {
	case reportPropertiesWithOwner:
		rows, err := h.service.PropertiesWithOwner(ctx)
		if err != nil {
			apierrors.InternalServerError(c, "Failed to run report", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": rows})

	case reportAvgSalePriceByNeighborhood:
		rows, err := h.service.AvgSalePriceByNeighborhood(ctx)
		if err != nil {
			apierrors.InternalServerError(c, "Failed to run report", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": rows})

	case reportPropertyByFolio:
		folio := c.Query("folio")
		if folio == "" {
			apierrors.BadRequest(c, "folio is required", nil)
			return
		}
		rows, err := h.service.PropertyByFolio(ctx, folio)
		if err != nil {
			apierrors.InternalServerError(c, "Failed to run report", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": rows})

	case reportSalesInYear:
		year := defaultSalesReportYear
		if raw := c.Query("year"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				apierrors.BadRequest(c, "year must be an integer", nil)
				return
			}
			year = parsed
		}
		rows, err := h.service.SalesInYear(ctx, year)
		if err != nil {
			apierrors.InternalServerError(c, "Failed to run report", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": rows})

	case reportSalesInRange:
		start, err := time.Parse("2006-01-02", c.Query("start"))
		if err != nil {
			apierrors.BadRequest(c, "start must be a valid date (YYYY-MM-DD)", nil)
			return
		}
		end, err := time.Parse("2006-01-02", c.Query("end"))
		if err != nil {
			apierrors.BadRequest(c, "end must be a valid date (YYYY-MM-DD)", nil)
			return
		}
		rows, err := h.service.SalesInRange(ctx, start, end)
		if err != nil {
			apierrors.InternalServerError(c, "Failed to run report", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": rows})

	case reportOwnersWithMinProperties:
		minCount := 1
		if raw := c.Query("minCount"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				apierrors.BadRequest(c, "minCount must be an integer", nil)
				return
			}
			minCount = parsed
		}
		rows, err := h.service.OwnersWithMinProperties(ctx, minCount)
		if err != nil {
			apierrors.InternalServerError(c, "Failed to run report", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": rows})

	default:
		apierrors.BadRequest(c, "Unknown report key", nil)
	}
}
