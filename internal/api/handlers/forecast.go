package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/olivesense/trapcast-go/internal/dataset"
	"github.com/olivesense/trapcast-go/internal/forecast"
	"github.com/olivesense/trapcast-go/internal/services"
)

// Forecaster defines the interface for forecast operations
type Forecaster interface {
	Forecast(ctx context.Context, req services.ForecastRequest) (*services.ForecastReport, error)
}

// ForecastHandler handles forecast endpoints
type ForecastHandler struct {
	forecaster Forecaster
}

// NewForecastHandler creates a new forecast handler
func NewForecastHandler(forecaster Forecaster) *ForecastHandler {
	return &ForecastHandler{forecaster: forecaster}
}

// GetForecast runs the full model search and returns the next-day forecast
// @Summary Get next-day capture forecast
// @Description Run the order search over the prepared series and return the projected capture count with its 95% interval and diagnostics
// @Tags forecast
// @Param use_weather query bool false "Use the weather API for tomorrow's exogenous values instead of persistence"
// @Param lat query number false "Latitude for the weather lookup"
// @Param lon query number false "Longitude for the weather lookup"
// @Produce json
// @Success 200 {object} services.ForecastReport
// @Router /api/v1/forecast [get]
func (h *ForecastHandler) GetForecast(c *gin.Context) {
	req := services.ForecastRequest{}

	if v := c.Query("use_weather"); v != "" {
		useWeather, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Invalid use_weather parameter: " + v,
			})
			return
		}
		req.UseWeather = useWeather
	}
	if req.UseWeather {
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
		if errLat != nil || errLon != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "use_weather requires valid lat and lon parameters",
			})
			return
		}
		req.Lat, req.Lon = lat, lon
	}

	report, err := h.forecaster.Forecast(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		msg := "Failed to compute forecast: " + err.Error()
		switch {
		case errors.Is(err, dataset.ErrEmptyDataset):
			status = http.StatusUnprocessableEntity
			msg = "No forecast available: dataset is empty"
		case errors.Is(err, forecast.ErrNoValidModel):
			status = http.StatusUnprocessableEntity
			msg = "No valid model found for the current series"
		}
		c.JSON(status, gin.H{
			"success": false,
			"error":   msg,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}
