package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	BaseURL  string // Public base URL short links are built from
	RedisURL string // Optional; empty disables the redirect cache
	Env      string // "development" switches to dev logging

	GeoIPDBPath        string // Optional local MaxMind City database
	GeoPrimaryURL      string // Primary geolocation provider
	GeoPrimaryTimeout  time.Duration
	GeoFallbackURL     string // Secondary provider, tried when the primary fails
	GeoFallbackTimeout time.Duration

	RateLimitRPS           float64 // Rate limit for general API endpoints (requests per second)
	RateLimitBurst         int
	RateLimitShortenRPS    float64 // Stricter limit for link creation
	RateLimitShortenBurst  int
	RateLimitRedirectRPS   float64 // Lenient limit for redirects
	RateLimitRedirectBurst int
}

func Load() *Config {
	// Try to load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	return &Config{
		Port:     getEnv("PORT", "8080"),
		BaseURL:  getEnv("BASE_URL", "http://localhost:8080"),
		RedisURL: getEnv("REDIS_URL", ""),
		Env:      getEnv("ENV", "production"),

		GeoIPDBPath:        getEnv("GEOIP_DB_PATH", ""),
		GeoPrimaryURL:      getEnv("GEO_PRIMARY_URL", "http://ip-api.com"),
		GeoPrimaryTimeout:  getEnvDuration("GEO_PRIMARY_TIMEOUT", 5*time.Second),
		GeoFallbackURL:     getEnv("GEO_FALLBACK_URL", "https://ipwho.is"),
		GeoFallbackTimeout: getEnvDuration("GEO_FALLBACK_TIMEOUT", 3*time.Second),

		RateLimitRPS:           getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:         getEnvInt("RATE_LIMIT_BURST", 20),
		RateLimitShortenRPS:    getEnvFloat("RATE_LIMIT_SHORTEN_RPS", 2),
		RateLimitShortenBurst:  getEnvInt("RATE_LIMIT_SHORTEN_BURST", 5),
		RateLimitRedirectRPS:   getEnvFloat("RATE_LIMIT_REDIRECT_RPS", 30),
		RateLimitRedirectBurst: getEnvInt("RATE_LIMIT_REDIRECT_BURST", 60),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
