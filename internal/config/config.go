package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName              string
	AppEnv               string
	AppPort              string
	PublicBaseURL        string
	DatabaseURL          string
	RedisURL             string
	JWTSecret            string
	DashboardCacheTTL    time.Duration
	ReviewListCacheTTL   time.Duration
	PublicViewRateMax    int
	PublicViewRateWindow time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("FARMBUDGET")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Farm Budget API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("public.base_url", "http://localhost:8080")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("review.cache_ttl", "1m")
	v.SetDefault("public.rate_max", 30)
	v.SetDefault("public.rate_window", "1m")

	dashboardTTL, err := parseTTL(v.GetString("dashboard.cache_ttl"), 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	reviewTTL, err := parseTTL(v.GetString("review.cache_ttl"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid review cache ttl: %w", err)
	}

	rateWindow, err := parseTTL(v.GetString("public.rate_window"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid public rate window: %w", err)
	}

	cfg := Config{
		AppName:              v.GetString("app.name"),
		AppEnv:               v.GetString("app.env"),
		AppPort:              v.GetString("app.port"),
		PublicBaseURL:        strings.TrimRight(v.GetString("public.base_url"), "/"),
		DatabaseURL:          v.GetString("database.url"),
		RedisURL:             v.GetString("redis.url"),
		JWTSecret:            v.GetString("jwt.secret"),
		DashboardCacheTTL:    dashboardTTL,
		ReviewListCacheTTL:   reviewTTL,
		PublicViewRateMax:    v.GetInt("public.rate_max"),
		PublicViewRateWindow: rateWindow,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.PublicViewRateMax <= 0 {
		cfg.PublicViewRateMax = 30
	}

	return cfg, nil
}

func parseTTL(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}
