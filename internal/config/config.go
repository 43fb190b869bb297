package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            string        `json:"port" validate:"required,numeric"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" validate:"gt=0"`
	HTTPTimeout     time.Duration `json:"http_timeout" validate:"gt=0"`

	// News API (feed + streaming answers)
	PerigonAPIKey string `json:"-" validate:"required"`
	FeedBaseURL   string `json:"feed_base_url" validate:"required,url"`
	AnswerAPIURL  string `json:"answer_api_url" validate:"required,url"`

	// AI Configuration (question generation)
	AIApiKey      string        `json:"-" validate:"required"`
	AIBaseURL     string        `json:"ai_base_url" validate:"required,url"`
	AIModel       string        `json:"ai_model" validate:"required"`
	AITemperature float64       `json:"ai_temperature" validate:"gt=0,lte=2"`
	AITimeout     time.Duration `json:"ai_timeout" validate:"gt=0"`

	// Verification
	VerifyTimeout time.Duration `json:"verify_timeout" validate:"gt=0"`

	// Verification store
	CacheBackend string `json:"cache_backend" validate:"oneof=memory redis"`
	RedisURL     string `json:"redis_url" validate:"required_if=CacheBackend redis"`
	RedisPrefix  string `json:"redis_prefix" validate:"required_if=CacheBackend redis"`

	// Source metadata table
	SourcesPath     string `json:"sources_path"`
	SourcesS3Bucket string `json:"sources_s3_bucket" validate:"required_with=SourcesS3Key"`
	SourcesS3Key    string `json:"sources_s3_key" validate:"required_with=SourcesS3Bucket"`

	// CloudFlare R2 Configuration
	R2Endpoint  string `json:"r2_endpoint" validate:"omitempty,url"`
	R2AccessKey string `json:"-"`
	R2SecretKey string `json:"-"`

	// Logging
	LogLevel string `json:"log_level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	LogFile  string `json:"log_file"`
}

// Load loads configuration from environment variables and validates it
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := FromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// FromEnv reads every setting from the environment, applying defaults
func FromEnv() *Config {
	return &Config{
		// Server configuration
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),

		PerigonAPIKey: getEnv("PERIGON_API_KEY", ""),
		FeedBaseURL:   getEnv("FEED_BASE_URL", "https://api.goperigon.com/v1"),
		AnswerAPIURL:  getEnv("ANSWER_API_URL", "https://api.goperigon.com/v1/chat"),

		// AI Configuration
		AIApiKey:      getEnv("OPENAI_API_KEY", ""),
		AIBaseURL:     getEnv("AI_BASE_URL", "https://api.openai.com/v1"),
		AIModel:       getEnv("AI_MODEL", "gpt-4o-mini"),
		AITemperature: getEnvAsFloat("AI_TEMPERATURE", 0.3),
		AITimeout:     getEnvAsDuration("AI_TIMEOUT", 60*time.Second),

		VerifyTimeout: getEnvAsDuration("VERIFY_TIMEOUT", 2*time.Minute),

		CacheBackend: getEnv("CACHE_BACKEND", "memory"),
		RedisURL:     getEnv("REDIS_URL", ""),
		RedisPrefix:  getEnv("REDIS_PREFIX", "faithcheck:"),

		SourcesPath:     getEnv("SOURCES_PATH", ""),
		SourcesS3Bucket: getEnv("SOURCES_S3_BUCKET", ""),
		SourcesS3Key:    getEnv("SOURCES_S3_KEY", ""),

		// CloudFlare R2 Configuration
		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(name string, defaultVal float64) float64 {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
