package config

import (
	"errors"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

const csseBaseURL = "https://raw.githubusercontent.com/CSSEGISandData/COVID-19/master/csse_covid_19_data/csse_covid_19_time_series/"

// Config holds all service settings, populated from environment variables.
type Config struct {
	ConfirmedURL     string
	DeathsURL        string
	RecoveredURL     string
	CountryCodesPath string
	FetchTimeout     time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Snapshot publishing is enabled when at least one broker is configured.
	KafkaBrokers       []string
	KafkaSnapshotTopic string
}

// PublishEnabled reports whether the latest snapshot should be published to Kafka.
func (c *Config) PublishEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is read first; variables already set
// in the environment take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load() // ignore missing file

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("FETCH_TIMEOUT", "30s"))
	if err != nil || fetchTimeout <= 0 {
		return nil, errors.New("invalid FETCH_TIMEOUT")
	}

	var brokers []string
	if v := sharedcfg.EnvOrDefault("KAFKA_BROKERS", ""); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		ConfirmedURL:     sharedcfg.EnvOrDefault("CONFIRMED_URL", csseBaseURL+"time_series_covid19_confirmed_global.csv"),
		DeathsURL:        sharedcfg.EnvOrDefault("DEATHS_URL", csseBaseURL+"time_series_covid19_deaths_global.csv"),
		RecoveredURL:     sharedcfg.EnvOrDefault("RECOVERED_URL", csseBaseURL+"time_series_covid19_recovered_global.csv"),
		CountryCodesPath: sharedcfg.EnvOrDefault("COUNTRY_CODES_PATH", "data/country_codes.csv"),
		FetchTimeout:     fetchTimeout,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers:       brokers,
		KafkaSnapshotTopic: sharedcfg.EnvOrDefault("KAFKA_SNAPSHOT_TOPIC", "covid-latest-snapshot"),
	}

	if cfg.ConfirmedURL == "" || cfg.DeathsURL == "" || cfg.RecoveredURL == "" {
		return nil, errors.New("CONFIRMED_URL, DEATHS_URL and RECOVERED_URL are required")
	}
	if cfg.CountryCodesPath == "" {
		return nil, errors.New("COUNTRY_CODES_PATH is required")
	}
	if cfg.PublishEnabled() && cfg.KafkaSnapshotTopic == "" {
		return nil, errors.New("KAFKA_SNAPSHOT_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}
