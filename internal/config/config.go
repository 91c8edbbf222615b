// Package config holds all daemon configuration, read from environment
// variables with sensible defaults. A .env file in the working directory is
// loaded first when present.
//
// Environment Variables:
//
// Screening:
//   - SAFETEXT_LANGUAGE: fixed language code for screening; empty enables
//     per-file auto-detection (default: "")
//   - WORDLIST_DIR: on-disk word list directory overriding embedded lists
//     (default: "", embedded lists only)
//   - MEDIA_DIRS: comma-separated media directories to scan (default: /media)
//   - WRITE_CENSORED: write censored .srt copies next to flagged files
//     (default: true)
//   - OUTPUT_SUFFIX: filename suffix for censored copies (default: .censored)
//   - DETECT_SAMPLE_CUES: subtitle cues sampled for detection (default: 10)
//
// Scheduling and workers:
//   - CRON_EXPR: scan schedule (default: "0 * * * *", hourly)
//   - WORKER_COUNT: concurrent screening workers (default: 2)
//
// Storage and transport:
//   - DB_PATH: SQLite database path (default: ./data/safetext.db)
//   - HTTP_ADDR: API listen address (default: :8080)
//   - KAFKA_ADDR: Kafka broker for access-log events (default: "", disabled)
//   - KAFKA_TOPIC: Kafka topic for access-log events (default: safetext-logs)
//
// System:
//   - LOG_LEVEL: debug, info, warn, error (default: info)
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Screen ScreenConfig `json:"screen"`
	HTTP   HTTPConfig   `json:"http"`
	Kafka  KafkaConfig  `json:"kafka"`
	System SystemConfig `json:"system"`
}

// ScreenConfig controls the screening pipeline.
type ScreenConfig struct {
	Language      string   `json:"language"`
	WordlistDir   string   `json:"wordlist_dir"`
	MediaDirs     []string `json:"media_dirs"`
	WriteCensored bool     `json:"write_censored"`
	OutputSuffix  string   `json:"output_suffix"`
	SampleCues    int      `json:"sample_cues"`
	CronExpr      string   `json:"cron_expr"`
	WorkerCount   int      `json:"worker_count"`
}

// HTTPConfig holds the API server configuration.
type HTTPConfig struct {
	Addr string `json:"addr"`
}

// KafkaConfig holds the optional access-log event transport. Disabled when
// Addr is empty.
type KafkaConfig struct {
	Addr  string `json:"addr"`
	Topic string `json:"topic"`
}

// SystemConfig holds process-level settings.
type SystemConfig struct {
	DBPath   string `json:"db_path"`
	LogLevel string `json:"log_level"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// New creates a Config from environment variables, loading .env first.
func New(opts ...Option) (*Config, error) {
	_ = godotenv.Load()
	return NewFromEnv(opts...)
}

// NewFromEnv creates a Config from the current environment and options.
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		Screen: ScreenConfig{
			Language:      getEnvString("SAFETEXT_LANGUAGE", ""),
			WordlistDir:   getEnvString("WORDLIST_DIR", ""),
			MediaDirs:     getEnvStrings("MEDIA_DIRS", []string{"/media"}),
			WriteCensored: getEnvBool("WRITE_CENSORED", true),
			OutputSuffix:  getEnvString("OUTPUT_SUFFIX", ".censored"),
			SampleCues:    getEnvInt("DETECT_SAMPLE_CUES", 10),
			CronExpr:      getEnvString("CRON_EXPR", "0 * * * *"),
			WorkerCount:   getEnvInt("WORKER_COUNT", 2),
		},
		HTTP: HTTPConfig{
			Addr: getEnvString("HTTP_ADDR", ":8080"),
		},
		Kafka: KafkaConfig{
			Addr:  getEnvString("KAFKA_ADDR", ""),
			Topic: getEnvString("KAFKA_TOPIC", "safetext-logs"),
		},
		System: SystemConfig{
			DBPath:   getEnvString("DB_PATH", "./data/safetext.db"),
			LogLevel: getEnvString("LOG_LEVEL", "info"),
		},
	}

	for _, opt := range opts {
		opt(config)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if c.Screen.WorkerCount <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive")
	}
	if c.Screen.SampleCues <= 0 {
		return fmt.Errorf("DETECT_SAMPLE_CUES must be positive")
	}
	if len(c.Screen.MediaDirs) == 0 {
		return fmt.Errorf("MEDIA_DIRS is required")
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvStrings gets a comma-separated list from environment variables.
func getEnvStrings(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean value from environment variables with default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
