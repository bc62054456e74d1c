/*
 * This file is part of Fluent (https://github.com/fluentlabs/fluent).
 * Copyright (C) 2025 Fluent Labs
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the Fluent hub
type Config struct {
	Server   ServerConfig
	Models   ModelsConfig
	Pipeline PipelineConfig
	Logging  LoggingConfig
	NATS     NATSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	DBPath       string
}

// ModelsConfig holds the endpoints of the external model services.
// Each tagger is an independent token-classification service; truecase
// and list formatting are whole-string transform services.
type ModelsConfig struct {
	FillerURL     string
	RepetitionURL string
	RepairURL     string
	TruecaseURL   string
	ListURL       string
	Timeout       time.Duration
}

// PipelineConfig holds which cleanup stages are enabled and the
// orchestrator's policy for stages whose model cannot be reached
type PipelineConfig struct {
	EnableTruecase    bool
	EnableFillers     bool
	EnableRepetitions bool
	EnableRepairs     bool
	EnableList        bool
	ListStyle         string // "bullets" or "numbered"
	SkipUnavailable   bool   // skip stages whose capability fails to construct instead of aborting
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// NATSConfig holds NATS messaging configuration
type NATSConfig struct {
	Enabled       bool
	URL           string
	MaxReconnect  int
	ReconnectWait time.Duration
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host:         getEnvString("FLUENT_HOST", "0.0.0.0"),
			Port:         getEnvInt("FLUENT_PORT", 8765),
			ReadTimeout:  getEnvDuration("FLUENT_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvDuration("FLUENT_WRITE_TIMEOUT", 30*time.Second),
			DBPath:       getEnvString("DB_PATH", "./data/fluent-hub.db"),
		},
		Models: ModelsConfig{
			FillerURL:     getEnvString("FILLER_MODEL_URL", "http://localhost:8001"),
			RepetitionURL: getEnvString("REPETITION_MODEL_URL", "http://localhost:8002"),
			RepairURL:     getEnvString("REPAIR_MODEL_URL", "http://localhost:8003"),
			TruecaseURL:   getEnvString("TRUECASE_MODEL_URL", "http://localhost:8004"),
			ListURL:       getEnvString("LIST_MODEL_URL", "http://localhost:8005"),
			Timeout:       getEnvDuration("MODEL_TIMEOUT", 30*time.Second),
		},
		Pipeline: PipelineConfig{
			EnableTruecase:    getEnvBool("PIPELINE_TRUECASE", false),
			EnableFillers:     getEnvBool("PIPELINE_FILLERS", true),
			EnableRepetitions: getEnvBool("PIPELINE_REPETITIONS", true),
			EnableRepairs:     getEnvBool("PIPELINE_REPAIRS", false),
			EnableList:        getEnvBool("PIPELINE_LIST", false),
			ListStyle:         getEnvString("PIPELINE_LIST_STYLE", "bullets"),
			SkipUnavailable:   getEnvBool("PIPELINE_SKIP_UNAVAILABLE", false),
		},
		Logging: LoggingConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
		NATS: NATSConfig{
			Enabled:       getEnvBool("NATS_ENABLED", false),
			URL:           getEnvString("NATS_URL", "nats://localhost:4222"),
			MaxReconnect:  getEnvInt("NATS_MAX_RECONNECT", 10),
			ReconnectWait: getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		},
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// validate checks if the configuration is valid
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Models.Timeout <= 0 {
		return fmt.Errorf("model timeout must be positive: %v", c.Models.Timeout)
	}

	if c.Pipeline.EnableFillers && c.Models.FillerURL == "" {
		return fmt.Errorf("filler model URL must be provided when the filler stage is enabled")
	}

	if c.Pipeline.EnableRepetitions && c.Models.RepetitionURL == "" {
		return fmt.Errorf("repetition model URL must be provided when the repetition stage is enabled")
	}

	if c.Pipeline.EnableRepairs && c.Models.RepairURL == "" {
		return fmt.Errorf("repair model URL must be provided when the repair stage is enabled")
	}

	if c.Pipeline.EnableTruecase && c.Models.TruecaseURL == "" {
		return fmt.Errorf("truecase model URL must be provided when the truecase stage is enabled")
	}

	if c.Pipeline.EnableList && c.Models.ListURL == "" {
		return fmt.Errorf("list model URL must be provided when the list stage is enabled")
	}

	if c.Pipeline.ListStyle != "bullets" && c.Pipeline.ListStyle != "numbered" {
		return fmt.Errorf("invalid list style: %q", c.Pipeline.ListStyle)
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
