package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/olivesense/trapcast-go/internal/config"
)

// HealthResponse is the payload of the health endpoint.
type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Version   string         `json:"version"`
	Services  HealthServices `json:"services"`
}

// HealthServices reports the state of the service's dependencies.
type HealthServices struct {
	Dataset string `json:"dataset"`
	Weather string `json:"weather"`
}

// HealthHandler handles liveness checks
type HealthHandler struct {
	cfg        *config.Config
	hasWeather bool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(cfg *config.Config, hasWeather bool) *HealthHandler {
	return &HealthHandler{cfg: cfg, hasWeather: hasWeather}
}

// HealthCheck reports process health and dependency availability
// @Summary Health check
// @Description Report service status, dataset-file presence and weather integration state
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Services: HealthServices{
			Dataset: "ok",
			Weather: "disabled",
		},
	}

	if _, err := os.Stat(h.cfg.Dataset.Path); err != nil {
		response.Status = "degraded"
		response.Services.Dataset = "missing"
	}
	if h.hasWeather {
		response.Services.Weather = "configured"
	}

	status := http.StatusOK
	if response.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, response)
}
