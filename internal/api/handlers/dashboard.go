package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/olivesense/trapcast-go/internal/services"
)

const dateParamLayout = "2006-01-02"

// DashboardProvider defines the interface for dashboard analytics operations
type DashboardProvider interface {
	Dashboard(ctx context.Context, from, to time.Time) (*services.DashboardReport, error)
}

// DashboardHandler handles dashboard analytics endpoints
type DashboardHandler struct {
	analytics DashboardProvider
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(analytics DashboardProvider) *DashboardHandler {
	return &DashboardHandler{analytics: analytics}
}

// GetDashboard returns the aggregated analytics for an optional date range
// @Summary Get dashboard analytics
// @Description Get KPI cards, smoothed trends, correlations, seasonal patterns and the capture distribution over an optional date range
// @Tags dashboard
// @Param from query string false "Start date (YYYY-MM-DD, inclusive)"
// @Param to query string false "End date (YYYY-MM-DD, inclusive)"
// @Produce json
// @Success 200 {object} services.DashboardReport
// @Router /api/v1/dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	from, ok := parseDateParam(c, "from")
	if !ok {
		return
	}
	to, ok := parseDateParam(c, "to")
	if !ok {
		return
	}

	report, err := h.analytics.Dashboard(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to compute dashboard analytics: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}

// parseDateParam reads an optional YYYY-MM-DD query parameter. A malformed
// value writes the error response and returns ok=false.
func parseDateParam(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.ParseInLocation(dateParamLayout, raw, time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid " + name + " parameter, expected YYYY-MM-DD: " + raw,
		})
		return time.Time{}, false
	}
	return t, true
}
