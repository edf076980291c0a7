package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/model"
)

const (
	defaultSentinelHubBaseURL = "https://services.sentinel-hub.com"
	defaultNASABaseURL        = "https://api.nasa.gov"
	defaultHTTPTimeout        = 30 * time.Second
	defaultMinIOBucket        = "terrasense-results"
)

// Config holds application configuration. It is loaded once at startup and
// passed by value into each client constructor.
type Config struct {
	ClientID     string
	ClientSecret string
	NASAAPIKey   string

	SentinelHubBaseURL string
	NASABaseURL        string

	HTTPTimeout    time.Duration
	HTTPMaxRetries uint64

	LogLevel  string
	LogFormat string

	// MinIO settings are optional; MinIOEndpoint enables result records.
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	PushgatewayURL string
}

// ConfigurationError reports a missing or invalid environment variable.
type ConfigurationError struct {
	Name   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("environment variable %q: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("required environment variable %q is not set", e.Name)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load reads configuration from environment variables.
// CLIENT_ID is always required; provider credentials are checked by RequireProvider.
func Load() (*Config, error) {
	config := Config{}
	config.ClientID = os.Getenv("CLIENT_ID")
	if config.ClientID == "" {
		return nil, &ConfigurationError{Name: "CLIENT_ID"}
	}
	config.ClientSecret = os.Getenv("CLIENT_SECRET")
	config.NASAAPIKey = os.Getenv("NASA_API_KEY")

	config.SentinelHubBaseURL = getEnv("SENTINELHUB_BASE_URL", defaultSentinelHubBaseURL)
	config.NASABaseURL = getEnv("NASA_BASE_URL", defaultNASABaseURL)

	timeout, err := time.ParseDuration(getEnv("HTTP_TIMEOUT", defaultHTTPTimeout.String()))
	if err != nil || timeout <= 0 {
		return nil, &ConfigurationError{Name: "HTTP_TIMEOUT", Reason: "must be a positive duration"}
	}
	config.HTTPTimeout = timeout

	retries, err := strconv.ParseUint(getEnv("HTTP_MAX_RETRIES", "0"), 10, 64)
	if err != nil {
		return nil, &ConfigurationError{Name: "HTTP_MAX_RETRIES", Reason: "must be a non-negative integer"}
	}
	config.HTTPMaxRetries = retries

	config.LogLevel = getEnv("LOG_LEVEL", "info")
	config.LogFormat = getEnv("LOG_FORMAT", "json")

	if err := config.loadMinIO(); err != nil {
		return nil, err
	}

	config.PushgatewayURL = os.Getenv("PUSHGATEWAY_URL")

	return &config, nil
}

func (c *Config) loadMinIO() error {
	c.MinIOEndpoint = os.Getenv("MINIO_ENDPOINT")
	if c.MinIOEndpoint == "" {
		return nil
	}
	c.MinIOAccessKey = os.Getenv("MINIO_ACCESS_KEY")
	if c.MinIOAccessKey == "" {
		return &ConfigurationError{Name: "MINIO_ACCESS_KEY"}
	}
	c.MinIOSecretKey = os.Getenv("MINIO_SECRET_KEY")
	if c.MinIOSecretKey == "" {
		return &ConfigurationError{Name: "MINIO_SECRET_KEY"}
	}
	c.MinIOBucket = getEnv("MINIO_BUCKET", defaultMinIOBucket)

	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		useSSL, err := strconv.ParseBool(v)
		if err != nil {
			return &ConfigurationError{Name: "MINIO_USE_SSL", Reason: "must be a boolean"}
		}
		c.MinIOUseSSL = useSSL
	}
	return nil
}

// RequireProvider checks the credentials the given provider needs.
func (c *Config) RequireProvider(p model.Provider) error {
	switch p {
	case model.SentinelHub:
		if c.ClientSecret == "" {
			return &ConfigurationError{Name: "CLIENT_SECRET"}
		}
	case model.NASA:
		if c.NASAAPIKey == "" {
			return &ConfigurationError{Name: "NASA_API_KEY"}
		}
	default:
		return p.Validate()
	}
	return nil
}

// MinIOEnabled reports whether result records should be written.
func (c *Config) MinIOEnabled() bool {
	return c.MinIOEndpoint != ""
}
