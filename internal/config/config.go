package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries every tunable of the gateway, resolved from environment
// variables with profile-aware defaults.
type Config struct {
	Profile string

	HTTPAddr string

	IdentityBaseURL     string
	CompanyBaseURL      string
	SubscriptionBaseURL string
	InventoryBaseURL    string
	ClientTimeout       time.Duration

	DBDriver string
	DBDSN    string

	RedisAddr         string
	InventoryCacheTTL time.Duration

	SessionCookieName string
	LoginPath         string
	LandingPath       string

	LogLevel        string
	ShutdownTimeout time.Duration

	OTELMetricsEnabled        bool
	OTELTracesEnabled         bool
	OTELLogsEnabled           bool
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELServiceName           string
	OTELEnvironment           string
	OTELMetricsExportInterval time.Duration
	EnableOTelHTTP            bool
}

// Load resolves configuration from the environment. Validation failures
// are reported once, wrapped so the error class stays classifiable.
func Load(ctx context.Context) (*Config, error) {
	cfg := &Config{
		Profile: getEnv("GATEWAY_PROFILE", "local"),

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		IdentityBaseURL:     getEnv("IDENTITY_BASE_URL", "http://localhost:9001"),
		CompanyBaseURL:      getEnv("COMPANY_BASE_URL", "http://localhost:9002"),
		SubscriptionBaseURL: getEnv("SUBSCRIPTION_BASE_URL", "http://localhost:9003"),
		InventoryBaseURL:    getEnv("INVENTORY_BASE_URL", "http://localhost:9004"),
		ClientTimeout:       getDuration("CLIENT_TIMEOUT", 10*time.Second),

		DBDriver: getEnv("DB_DRIVER", "sqlite"),
		DBDSN:    getEnv("DB_DSN", "file:gateway.db"),

		RedisAddr:         getEnv("REDIS_ADDR", ""),
		InventoryCacheTTL: getDuration("INVENTORY_CACHE_TTL", 30*time.Second),

		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "gateway_session"),
		LoginPath:         getEnv("LOGIN_PATH", "/login"),
		LandingPath:       getEnv("LANDING_PATH", "/dashboard"),

		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 15*time.Second),

		OTELMetricsEnabled:        getBool("OTEL_METRICS_ENABLED", false),
		OTELTracesEnabled:         getBool("OTEL_TRACES_ENABLED", false),
		OTELLogsEnabled:           getBool("OTEL_LOGS_ENABLED", false),
		OTELExporterOTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure:  getBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELServiceName:           getEnv("OTEL_SERVICE_NAME", "storefront-session-gateway"),
		OTELEnvironment:           getEnv("OTEL_ENVIRONMENT", "local"),
		OTELMetricsExportInterval: getDuration("OTEL_METRICS_EXPORT_INTERVAL", 30*time.Second),
		EnableOTelHTTP:            getBool("OTEL_HTTP_ENABLED", false),
	}

	if err := cfg.validate(); err != nil {
		err = fmt.Errorf("validate config: %w", err)
		recordConfigValidationEvent(ctx, cfg.Profile, "failure", classifyConfigLoadError(err))
		return nil, err
	}
	recordConfigValidationEvent(ctx, cfg.Profile, "success", "none")
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Profile {
	case "local", "staging", "prod":
	default:
		return fmt.Errorf("unknown profile %q", c.Profile)
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	for name, v := range map[string]string{
		"IDENTITY_BASE_URL":     c.IdentityBaseURL,
		"COMPANY_BASE_URL":      c.CompanyBaseURL,
		"SUBSCRIPTION_BASE_URL": c.SubscriptionBaseURL,
		"INVENTORY_BASE_URL":    c.InventoryBaseURL,
	} {
		if v == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
	}
	if c.DBDriver != "sqlite" && c.DBDriver != "postgres" {
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN must not be empty")
	}
	if c.ClientTimeout <= 0 {
		return fmt.Errorf("CLIENT_TIMEOUT must be positive")
	}
	if c.InventoryCacheTTL < 0 {
		return fmt.Errorf("INVENTORY_CACHE_TTL must not be negative")
	}
	if c.SessionCookieName == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME must not be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}
