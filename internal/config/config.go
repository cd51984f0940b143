package config

import (
	"fmt"
	"os"
)

type Config struct {
	CoreDatabaseURL string
	TemporalAddress string
	HTTPListenAddr  string
	MetricsAddr     string
	LogLevel        string
	ServiceName     string
}

func Load() (*Config, error) {
	cfg := &Config{
		CoreDatabaseURL: getEnv("CORE_DATABASE_URL", ""),
		TemporalAddress: getEnv("TEMPORAL_ADDRESS", "localhost:7233"),
		HTTPListenAddr:  getEnv("HTTP_LISTEN_ADDR", ":8090"),
		MetricsAddr:     getEnv("METRICS_ADDR", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ServiceName:     getEnv("SERVICE_NAME", ""),
	}

	return cfg, nil
}

// Validate checks that the config carries everything the named service needs
// to start.
func (c *Config) Validate(service string) error {
	if c.CoreDatabaseURL == "" {
		return fmt.Errorf("%s: CORE_DATABASE_URL is required", service)
	}
	if service == "worker" && c.TemporalAddress == "" {
		return fmt.Errorf("%s: TEMPORAL_ADDRESS is required", service)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
