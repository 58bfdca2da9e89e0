package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/marine-obs-maps/internal/domain"
)

// Config holds all settings, populated from environment variables.
type Config struct {
	NCEIBaseURL string
	NCEITimeout time.Duration

	DownloadDir string
	DataDir     string
	OutputDir   string

	WindAngleUnit domain.AngleUnit
	RenderProfile string
	MetricsFile   string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Artifact notifications are enabled when at least one broker is set.
	KafkaBrokers       []string
	KafkaArtifactTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	nceiTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("NCEI_TIMEOUT", "0s"))
	if err != nil || nceiTimeout < 0 {
		return nil, errors.New("invalid NCEI_TIMEOUT: must be a non-negative duration")
	}

	unit, err := domain.ParseAngleUnit(sharedcfg.EnvOrDefault("WIND_ANGLE_UNIT", string(domain.Radians)))
	if err != nil {
		return nil, fmt.Errorf("invalid WIND_ANGLE_UNIT: %w", err)
	}

	cfg := &Config{
		NCEIBaseURL:        sharedcfg.EnvOrDefault("NCEI_BASE_URL", "https://www.ncei.noaa.gov"),
		NCEITimeout:        nceiTimeout,
		DownloadDir:        sharedcfg.EnvOrDefault("DOWNLOAD_DIR", "."),
		DataDir:            sharedcfg.EnvOrDefault("DATA_DIR", "data"),
		OutputDir:          sharedcfg.EnvOrDefault("OUTPUT_DIR", "."),
		WindAngleUnit:      unit,
		RenderProfile:      sharedcfg.EnvOrDefault("RENDER_PROFILE", ""),
		MetricsFile:        sharedcfg.EnvOrDefault("METRICS_FILE", ""),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "")),
		KafkaArtifactTopic: sharedcfg.EnvOrDefault("KAFKA_ARTIFACT_TOPIC", "marine-map-artifacts"),
	}

	if u, err := url.Parse(cfg.NCEIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("invalid NCEI_BASE_URL: must be an absolute URL")
	}
	if cfg.KafkaEnabled() && cfg.KafkaArtifactTopic == "" {
		return nil, errors.New("KAFKA_ARTIFACT_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// KafkaEnabled reports whether artifact notifications should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
