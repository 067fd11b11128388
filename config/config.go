package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	App      AppConfig
}

type ServerConfig struct {
	Port               string `validate:"required"`
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	CORSAllowedOrigins []string
	// RateLimit is the per-client request rate in requests per second; 0 disables limiting.
	RateLimit      float64 `validate:"gte=0"`
	RateLimitBurst int     `validate:"gte=1"`
}

type DatabaseConfig struct {
	Host         string `validate:"required"`
	Port         int    `validate:"gt=0"`
	User         string `validate:"required"`
	Password     string
	Name         string `validate:"required"`
	SSLMode      string `validate:"oneof=disable require verify-ca verify-full"`
	MaxOpenConns int    `validate:"gte=1"`
	MaxIdleConns int    `validate:"gte=0"`
}

// RedisConfig is optional: an empty Addr disables the listing cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int `validate:"gte=0"`
	CacheTTL time.Duration
}

type AppConfig struct {
	Environment string `validate:"required"`
	LogLevel    string `validate:"oneof=debug info warn error"`
	LogFormat   string `validate:"oneof=json console"`
	Version     string
	ServiceName string `validate:"required"`
	// DeadlineLayout is the time layout deadlines are parsed with.
	DeadlineLayout string `validate:"required"`
	// StrictActions renders the invalid-action view for unknown actions
	// instead of answering with an empty 204.
	StrictActions bool
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvAsDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:       getEnvAsDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:        getEnvAsDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			RateLimit:          getEnvAsFloat("RATE_LIMIT_RPS", 20),
			RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 40),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Name:         getEnv("DB_NAME", "projectmanagement"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getEnvAsDuration("PROJECT_CACHE_TTL", 5*time.Minute),
		},
		App: AppConfig{
			Environment:    getEnv("APP_ENV", "development"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			Version:        getEnv("APP_VERSION", "1.0.0"),
			ServiceName:    getEnv("SERVICE_NAME", "project-management"),
			DeadlineLayout: getEnv("DEADLINE_LAYOUT", "2006-01-02"),
			StrictActions:  getEnvAsBool("STRICT_ACTIONS", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// RedisEnabled reports whether a Redis address was configured.
func (c *Config) RedisEnabled() bool {
	return strings.TrimSpace(c.Redis.Addr) != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
