package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/olivesense/trapcast-go/internal/api"
	"github.com/olivesense/trapcast-go/internal/config"
	"github.com/olivesense/trapcast-go/internal/dataset"
	"github.com/olivesense/trapcast-go/internal/logging"
	"github.com/olivesense/trapcast-go/internal/middleware"
	"github.com/olivesense/trapcast-go/internal/services"
	"github.com/olivesense/trapcast-go/internal/weather"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Local .env files override nothing in a deployed environment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.Environment)

	cache := dataset.NewCache()

	var weatherClient *weather.Client
	var exogProvider services.FutureExogProvider
	if cfg.Weather.APIKey != "" {
		weatherClient = weather.NewClient(&cfg.Weather, logger)
		exogProvider = services.NewWeatherExogProvider(weatherClient, cfg.Weather.HorizonDays)
	} else {
		logger.Info("Weather API key not configured, forecasts use exogenous persistence only")
	}

	forecastService := services.NewForecastService(cfg, cache, exogProvider, logger)
	analyticsService := services.NewAnalyticsService(cfg, cache, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	deps := api.Dependencies{
		Config:     cfg,
		Cache:      cache,
		Forecaster: forecastService,
		Analytics:  analyticsService,
	}
	if weatherClient != nil {
		deps.Weather = weatherClient
	}
	api.SetupRoutes(router, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       15 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited gracefully")
	return nil
}
