package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string
	// BaseDomain is the primary (non-tenant) host, e.g. "example.com".
	// Requests to <sub>.BaseDomain are scoped to the site with that subdomain.
	BaseDomain string
	// Auth
	JWTSecret  string
	JWKSURL    string // Optional; when set, tokens are verified against the JWKS instead of JWTSecret
	AuthCookie string
	// Redis (optional). Enables the tenant cache and cross-process upload locks.
	RedisURL       string
	TenantCacheTTL time.Duration
	// Uploads
	UploadDir     string // Completed files live here; chunks under UploadDir/temp/<hash>
	PublicBaseURL string // Optional; derived from the request host when empty
	MaxChunkBytes int64
	// Logging
	LogDir      string
	LogMaxFiles int
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    env,
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:    tablePrefix,
		BaseDomain:     getEnv("BASE_DOMAIN", "localhost"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWKSURL:        getEnv("JWKS_URL", ""),
		AuthCookie:     getEnv("AUTH_COOKIE", "token"),
		RedisURL:       getEnv("REDIS_URL", ""),
		TenantCacheTTL: getDuration("TENANT_CACHE_TTL", 5*time.Minute),
		UploadDir:      getEnv("UPLOAD_DIR", "public"),
		PublicBaseURL:  getEnv("PUBLIC_BASE_URL", ""),
		MaxChunkBytes:  getInt64("MAX_CHUNK_BYTES", DefaultMaxChunkBytes),
		LogDir:         getEnv("LOG_DIR", ""),
		LogMaxFiles:    int(getInt64("LOG_MAX_FILES", 10)),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
