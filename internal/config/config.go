package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/godilite/mgnrega-dashboard/internal/datagov"
	"go.uber.org/zap"
)

var ErrMissingAPIKey = errors.New("DATA_GOV_API_KEY is required")

// Config holds all configuration for the application.
type Config struct {
	AppEnv                string
	HTTPPort              int
	GRPCPort              int
	GRPCReflectionEnabled bool

	DataGovAPIKey   string
	DataGovEndpoint string
	DataGovState    string
	UpstreamTimeout time.Duration

	DBDriver string
	DBPath   string

	RedisAddr       string
	RecordsCacheTTL time.Duration

	GeoIPDBPath        string
	CORSAllowedOrigins []string
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *Config {
	return &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		HTTPPort:              getEnvInt("HTTP_PORT", 8080),
		GRPCPort:              getEnvInt("GRPC_PORT", 50051),
		GRPCReflectionEnabled: getEnvBool("GRPC_REFLECTION_ENABLED", false),
		DataGovAPIKey:         os.Getenv("DATA_GOV_API_KEY"),
		DataGovEndpoint:       getEnv("DATA_GOV_ENDPOINT", datagov.DefaultEndpoint),
		DataGovState:          getEnv("DATA_GOV_STATE", datagov.DefaultState),
		UpstreamTimeout:       getEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		DBDriver:              getEnv("DB_DRIVER", "sqlite3"),
		DBPath:                getEnv("DB_PATH", "./data/dashboard.db"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RecordsCacheTTL:       getEnvDuration("RECORDS_CACHE_TTL", 0),
		GeoIPDBPath:           os.Getenv("GEOIP_DB_PATH"),
		CORSAllowedOrigins:    splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}
}

// Validate reports configuration that would prevent the service from starting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataGovAPIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT %d", c.HTTPPort)
	}
	if c.GRPCPort < 1 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid GRPC_PORT %d", c.GRPCPort)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("invalid UPSTREAM_TIMEOUT %s", c.UpstreamTimeout)
	}
	return nil
}

// CacheEnabled reports whether the upstream record cache should be built.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != "" && c.RecordsCacheTTL > 0
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
