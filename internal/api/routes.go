package api

import (
	"github.com/gin-gonic/gin"

	"github.com/olivesense/trapcast-go/internal/api/handlers"
	"github.com/olivesense/trapcast-go/internal/config"
	"github.com/olivesense/trapcast-go/internal/dataset"
)

// Dependencies carries the constructed services the routes are wired to.
type Dependencies struct {
	Config     *config.Config
	Cache      *dataset.Cache
	Forecaster handlers.Forecaster
	Analytics  AnalyticsProvider
	Weather    handlers.WeatherClient
}

// AnalyticsProvider combines the two analytics surfaces served by the API.
type AnalyticsProvider interface {
	handlers.DashboardProvider
	handlers.SummaryProvider
}

// SetupRoutes registers all HTTP routes on the router.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler(deps.Config, deps.Weather != nil)
	forecastHandler := handlers.NewForecastHandler(deps.Forecaster)
	dashboardHandler := handlers.NewDashboardHandler(deps.Analytics)
	datasetHandler := handlers.NewDatasetHandler(deps.Analytics, deps.Cache)
	weatherHandler := handlers.NewWeatherHandler(deps.Weather)

	// Health check endpoint
	router.GET("/health", healthHandler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Forecast routes
		v1.GET("/forecast", forecastHandler.GetForecast)

		// Dashboard analytics routes
		v1.GET("/dashboard", dashboardHandler.GetDashboard)

		// Data-source routes
		ds := v1.Group("/dataset")
		{
			ds.GET("/summary", datasetHandler.GetSummary)
			ds.POST("/reload", datasetHandler.ReloadDataset)
			ds.GET("/cache/stats", datasetHandler.GetCacheStats)
		}

		// Weather integration routes
		weather := v1.Group("/weather")
		{
			weather.GET("/validate", weatherHandler.ValidateKey)
			weather.GET("/cities", weatherHandler.SuggestCities)
			weather.GET("/geocode", weatherHandler.GeocodeCity)
		}
	}
}
