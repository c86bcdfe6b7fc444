package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds every environment-driven setting the service reads at boot.
type Config struct {
	Port        int
	DatabaseURL string
	JWTSecret   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MediaBucket    string

	// URL normalization hosts. APIBaseURL is prepended to relative upload
	// paths; DevServerURL is rewritten to PublicBaseURL when it leaks into
	// stored absolute URLs.
	APIBaseURL    string
	DevServerURL  string
	PublicBaseURL string

	// Upstream legacy marketplace API used by the sync client.
	UpstreamBaseURL string
	UpstreamAPIKey  string
}

// Load reads the configuration from the environment, applying development
// defaults where a value is optional.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            envInt("PORT", 8080),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		RedisAddr:       envDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         envInt("REDIS_DB", 0),
		MinioEndpoint:   envDefault("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:  envDefault("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey:  envDefault("MINIO_SECRET_KEY", "minioadmin"),
		MinioUseSSL:     os.Getenv("MINIO_USE_SSL") == "true",
		MediaBucket:     envDefault("MEDIA_BUCKET", "mazadly-media"),
		APIBaseURL:      envDefault("API_BASE_URL", "http://localhost:8080"),
		DevServerURL:    envDefault("DEV_SERVER_URL", "http://localhost:5000"),
		PublicBaseURL:   envDefault("PUBLIC_BASE_URL", "https://mazadly.com"),
		UpstreamBaseURL: os.Getenv("UPSTREAM_BASE_URL"),
		UpstreamAPIKey:  os.Getenv("UPSTREAM_API_KEY"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	return cfg, nil
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
