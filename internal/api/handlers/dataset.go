package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/olivesense/trapcast-go/internal/dataset"
	"github.com/olivesense/trapcast-go/internal/services"
)

// SummaryProvider defines the interface for data-source summary operations
type SummaryProvider interface {
	DatasetSummary(ctx context.Context) (*services.Summary, error)
}

// DatasetHandler handles data-source inspection and cache endpoints
type DatasetHandler struct {
	analytics SummaryProvider
	cache     *dataset.Cache
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(analytics SummaryProvider, cache *dataset.Cache) *DatasetHandler {
	return &DatasetHandler{analytics: analytics, cache: cache}
}

// GetSummary returns the source-table shape and column statistics
// @Summary Get data-source summary
// @Description Get row counts, date span and per-column statistics of the prepared dataset
// @Tags dataset
// @Produce json
// @Success 200 {object} services.Summary
// @Router /api/v1/dataset/summary [get]
func (h *DatasetHandler) GetSummary(c *gin.Context) {
	summary, err := h.analytics.DatasetSummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to summarize dataset: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    summary,
	})
}

// ReloadDataset drops all cached prepared series so the next request rereads the source file
// @Summary Reload the dataset
// @Description Invalidate the prepared-series cache, forcing a reread of the source file
// @Tags dataset
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/dataset/reload [post]
func (h *DatasetHandler) ReloadDataset(c *gin.Context) {
	h.cache.InvalidateAll()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Dataset cache invalidated",
	})
}

// GetCacheStats returns hit/miss counters for the prepared-series cache
// @Summary Get dataset cache statistics
// @Description Get hit, miss and reload counters for the prepared-series cache
// @Tags dataset
// @Produce json
// @Success 200 {object} dataset.CacheStats
// @Router /api/v1/dataset/cache/stats [get]
func (h *DatasetHandler) GetCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.cache.Stats(),
	})
}
