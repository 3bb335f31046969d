package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// WeatherClient defines the interface for weather lookups used by the API
type WeatherClient interface {
	ValidateKey(ctx context.Context) bool
	SuggestCities(ctx context.Context, query string) []string
	GeocodeCity(ctx context.Context, name string) (lat, lon float64, ok bool)
}

// WeatherHandler handles weather integration endpoints
type WeatherHandler struct {
	client WeatherClient
}

// NewWeatherHandler creates a new weather handler
func NewWeatherHandler(client WeatherClient) *WeatherHandler {
	return &WeatherHandler{client: client}
}

// ValidateKey checks that the configured weather API key is accepted upstream
// @Summary Validate the weather API key
// @Description Perform a minimal geocoding call to verify the configured key
// @Tags weather
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/weather/validate [get]
func (h *WeatherHandler) ValidateKey(c *gin.Context) {
	if h.client == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "Weather API key is not configured",
		})
		return
	}
	if !h.client.ValidateKey(c.Request.Context()) {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   "Weather API key was rejected upstream",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Weather API key is valid",
	})
}

// SuggestCities returns geocoding suggestions for a partial city name
// @Summary Suggest cities
// @Description Return up to five "City, Country" suggestions matching the query
// @Tags weather
// @Param q query string true "Partial city name"
// @Produce json
// @Success 200 {object} []string
// @Router /api/v1/weather/cities [get]
func (h *WeatherHandler) SuggestCities(c *gin.Context) {
	if h.client == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "Weather API key is not configured",
		})
		return
	}
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Query parameter q is required",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.client.SuggestCities(c.Request.Context(), query),
	})
}

// GeocodeCity resolves a city name to coordinates
// @Summary Geocode a city
// @Description Resolve a city name to latitude and longitude
// @Tags weather
// @Param name query string true "City name"
// @Produce json
// @Success 200 {object} map[string]float64
// @Router /api/v1/weather/geocode [get]
func (h *WeatherHandler) GeocodeCity(c *gin.Context) {
	if h.client == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "Weather API key is not configured",
		})
		return
	}
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Query parameter name is required",
		})
		return
	}
	lat, lon, ok := h.client.GeocodeCity(c.Request.Context(), name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "City not found: " + name,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"lat": lat, "lon": lon},
	})
}
