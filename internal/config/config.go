package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string         `mapstructure:"environment"`
	LogLevel    string         `mapstructure:"log_level"`
	Server      ServerConfig   `mapstructure:"server"`
	Dataset     DatasetConfig  `mapstructure:"dataset"`
	Weather     WeatherConfig  `mapstructure:"weather"`
	Forecast    ForecastConfig `mapstructure:"forecast"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatasetConfig struct {
	Path  string `mapstructure:"path"`
	Sheet string `mapstructure:"sheet"`
}

type WeatherConfig struct {
	APIKey         string `mapstructure:"api_key" json:"-" yaml:"-"`
	GeoBaseURL     string `mapstructure:"geo_base_url"`
	DataBaseURL    string `mapstructure:"data_base_url"`
	HistoryBaseURL string `mapstructure:"history_base_url"`
	Timeout        int    `mapstructure:"timeout"`
	HorizonDays    int    `mapstructure:"horizon_days"`
}

type ForecastConfig struct {
	// OverlayDays bounds the actual/fitted tail returned for chart overlays.
	OverlayDays int `mapstructure:"overlay_days"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.BindEnv("weather.api_key", "OWM_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind OWM_API_KEY environment variable: %w", err)
	}

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Dataset.Path == "" {
		return nil, fmt.Errorf("dataset.path must be set")
	}
	if config.Weather.HorizonDays <= 0 {
		return nil, fmt.Errorf("weather.horizon_days must be positive, got %d", config.Weather.HorizonDays)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	viper.SetDefault("dataset.path", "temp_humid_data.xlsx")
	viper.SetDefault("dataset.sheet", "Sheet3")

	viper.SetDefault("weather.api_key", "")
	viper.SetDefault("weather.geo_base_url", "http://api.openweathermap.org/geo/1.0")
	viper.SetDefault("weather.data_base_url", "http://api.openweathermap.org/data/2.5")
	viper.SetDefault("weather.history_base_url", "http://history.openweathermap.org/data/2.5")
	viper.SetDefault("weather.timeout", 30)
	viper.SetDefault("weather.horizon_days", 7)

	viper.SetDefault("forecast.overlay_days", 30)
}
