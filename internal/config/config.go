// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/terrashield/terrashield/internal/security"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Blockchain settings
	RPCURL             string
	ChainID            int64
	PrivateKey         string // Hex-encoded, 0x prefix optional; blank disables on-chain writes
	InsuranceContract  string
	GovernanceContract string
	PriceFeedContract  string // Chainlink ETH/USD aggregator

	// Premium settings
	DefaultBaseline string // Default baseline premium in ETH
	MinPremium      string
	MaxPremium      string

	// AI underwriter
	GeminiAPIKey string // Optional; quoting falls back to rules when unset
	GeminiModel  string

	// Weather provider
	WeatherBaseURL string

	// Governance
	GovernanceMonitorInterval time.Duration

	// Observability
	OTLPEndpoint string // OTLP gRPC endpoint for traces (optional)

	// Security
	RateLimitRPS int
	AdminSecret  string
}

// Ethereum Sepolia defaults
const (
	DefaultRPCURL    = "https://ethereum-sepolia-rpc.publicnode.com"
	DefaultChainID   = 11155111 // Sepolia
	DefaultPriceFeed = "0x694AA1769357215DE4FAC081bf1f309aDC325306" // Sepolia ETH/USD
	DefaultPort      = "8080"
	DefaultEnv       = "development"
	DefaultLogLevel  = "info"
	DefaultBaseline  = "0.5"
	DefaultRateLimit = 100

	DefaultGeminiModel    = "gemini-2.0-flash"
	DefaultWeatherBaseURL = "https://api.open-meteo.com/v1"
)

// Load reads configuration from environment variables
// It loads .env file if present (for local development)
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:                      getEnv("PORT", DefaultPort),
		Env:                       getEnv("ENV", DefaultEnv),
		LogLevel:                  getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:               os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		RPCURL:                    getEnv("RPC_URL", DefaultRPCURL),
		ChainID:                   getEnvInt64("CHAIN_ID", DefaultChainID),
		PrivateKey:                os.Getenv("PRIVATE_KEY"),
		InsuranceContract:         os.Getenv("INSURANCE_CONTRACT"),
		GovernanceContract:        os.Getenv("GOVERNANCE_CONTRACT"),
		PriceFeedContract:         getEnv("PRICE_FEED_CONTRACT", DefaultPriceFeed),
		DefaultBaseline:           getEnv("DEFAULT_BASELINE", DefaultBaseline),
		MinPremium:                getEnv("MIN_PREMIUM", "0.0001"),
		MaxPremium:                getEnv("MAX_PREMIUM", "1000"),
		GeminiAPIKey:              os.Getenv("GEMINI_API_KEY"),
		GeminiModel:               getEnv("GEMINI_MODEL", DefaultGeminiModel),
		WeatherBaseURL:            getEnv("WEATHER_BASE_URL", DefaultWeatherBaseURL),
		GovernanceMonitorInterval: getEnvDuration("GOVERNANCE_MONITOR_INTERVAL", 30*time.Second),
		OTLPEndpoint:              os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		RateLimitRPS:              int(getEnvInt64("RATE_LIMIT_RPS", int64(DefaultRateLimit))),
		AdminSecret:               os.Getenv("ADMIN_SECRET"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	// Private key is optional: without one the server still quotes premiums
	// and reads chain state, it just cannot submit transactions.
	if c.PrivateKey != "" {
		key := c.PrivateKey
		if len(key) == 66 && key[:2] == "0x" {
			key = key[2:]
		}
		if len(key) != 64 {
			return fmt.Errorf("PRIVATE_KEY must be 64 hex characters (with or without 0x prefix)")
		}
	}

	if c.RPCURL == "" {
		return fmt.Errorf("RPC_URL is required")
	}

	// In production the upstream URLs the server calls out to must not point
	// into the private network. Development keeps local nodes working.
	if c.IsProduction() {
		if err := security.ValidateEndpointURL(c.RPCURL); err != nil {
			return fmt.Errorf("RPC_URL: %w", err)
		}
		if err := security.ValidateEndpointURL(c.WeatherBaseURL); err != nil {
			return fmt.Errorf("WEATHER_BASE_URL: %w", err)
		}
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
