package config

import (
	"os"
	"strconv"
	"strings"
)

// Config carries every environment-driven setting the process needs.
type Config struct {
	ServerAddr  string
	DatabaseURL string
	LogLevel    string

	// Secrets for the two token classes. When JWTRefreshSecret is empty it is
	// derived from JWTSecret so the classes still verify against different keys.
	JWTSecret        string
	JWTRefreshSecret string

	AllowedOrigins []string

	// Set only in development: error responses carry the underlying error.
	ExposeErrors bool

	// S3-compatible storage for listing images.
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

// Load reads configuration from the environment, applying development defaults.
func Load() *Config {
	minioUseSSL, _ := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", "false"))
	exposeErrors, _ := strconv.ParseBool(getEnvOrDefault("EXPOSE_ERRORS", "false"))

	secret := getEnvOrDefault("JWT_SECRET", "dev-secret-change-in-production")
	refreshSecret := os.Getenv("JWT_REFRESH_SECRET")
	if refreshSecret == "" {
		refreshSecret = secret + "_refresh"
	}

	return &Config{
		ServerAddr:       getEnvOrDefault("SERVER_ADDR", ":8080"),
		DatabaseURL:      getEnvOrDefault("DATABASE_URL", "postgres://localhost:5432/listingflow?sslmode=disable"),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
		JWTSecret:        secret,
		JWTRefreshSecret: refreshSecret,
		AllowedOrigins:   splitOrigins(getEnvOrDefault("ALLOWED_ORIGINS", "")),
		ExposeErrors:     exposeErrors,
		MinioEndpoint:    getEnvOrDefault("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:   getEnvOrDefault("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey:   getEnvOrDefault("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:      getEnvOrDefault("MINIO_BUCKET", "listing-images"),
		MinioUseSSL:      minioUseSSL,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
