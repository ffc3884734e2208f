// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Runtime settings
	Env       string // "development", "staging", "production"
	LogLevel  string
	LogFormat string // "text" or "json"

	// Blockchain settings
	RPCURL     string
	ChainID    int64
	PrivateKey string // Hex-encoded, with or without 0x prefix
	TokensFile string // Optional YAML file merged over the built-in token registry
	SwapRouter string // Router contract address; swap tools are disabled without it

	// Upstream services
	IndexerURL    string // Optional, history and token scans degrade without it
	IndexerAPIKey string
	IndexerWSURL  string // Optional WebSocket event stream
	PricingURL    string // Optional, fiat estimates are omitted without it
	PriceTTL      time.Duration
	RedisAddr     string // Optional, selects the Redis price cache

	// Storage
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Watcher
	ConfirmPollInterval time.Duration

	// Swap settings
	SlippageBps int64 // Default slippage tolerance in basis points

	// Operational surfaces
	AdminAddr    string // Optional, enables the admin HTTP server
	MCPHTTPAddr  string // Optional, serves MCP over Streamable HTTP instead of stdio
	OTLPEndpoint string // Optional, enables trace export
}

// Ethereum mainnet defaults
const (
	DefaultRPCURL      = "https://ethereum-rpc.publicnode.com"
	DefaultChainID     = 1
	DefaultEnv         = "development"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultPriceTTL    = 30 * time.Second
	DefaultConfirmPoll = 5 * time.Second
	DefaultSlippageBps = 50
)

// Load reads configuration from environment variables
// It loads .env file if present (for local development)
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Env:                 getEnv("WDK_ENV", DefaultEnv),
		LogLevel:            getEnv("WDK_LOG_LEVEL", DefaultLogLevel),
		LogFormat:           getEnv("WDK_LOG_FORMAT", DefaultLogFormat),
		RPCURL:              getEnv("WDK_RPC_URL", DefaultRPCURL),
		ChainID:             getEnvInt64("WDK_CHAIN_ID", DefaultChainID),
		PrivateKey:          os.Getenv("WDK_PRIVATE_KEY"), // Required, no default
		TokensFile:          os.Getenv("WDK_TOKENS_FILE"),
		SwapRouter:          os.Getenv("WDK_SWAP_ROUTER"),
		IndexerURL:          os.Getenv("WDK_INDEXER_URL"),
		IndexerAPIKey:       os.Getenv("WDK_INDEXER_API_KEY"),
		IndexerWSURL:        os.Getenv("WDK_INDEXER_WS_URL"),
		PricingURL:          os.Getenv("WDK_PRICING_URL"),
		PriceTTL:            getEnvDuration("WDK_PRICE_TTL", DefaultPriceTTL),
		RedisAddr:           os.Getenv("WDK_REDIS_ADDR"),
		DatabaseURL:         os.Getenv("WDK_DATABASE_URL"),
		ConfirmPollInterval: getEnvDuration("WDK_CONFIRM_POLL", DefaultConfirmPoll),
		SlippageBps:         getEnvInt64("WDK_SLIPPAGE_BPS", DefaultSlippageBps),
		AdminAddr:           os.Getenv("WDK_ADMIN_ADDR"),
		MCPHTTPAddr:         os.Getenv("WDK_MCP_HTTP_ADDR"),
		OTLPEndpoint:        os.Getenv("WDK_OTLP_ENDPOINT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.PrivateKey == "" {
		return fmt.Errorf("WDK_PRIVATE_KEY is required")
	}

	// Allow both with and without 0x prefix
	key := c.PrivateKey
	if len(key) == 66 && key[:2] == "0x" {
		key = key[2:]
	}
	if len(key) != 64 {
		return fmt.Errorf("WDK_PRIVATE_KEY must be 64 hex characters (with or without 0x prefix)")
	}

	if c.RPCURL == "" {
		return fmt.Errorf("WDK_RPC_URL is required")
	}

	if c.SlippageBps < 0 || c.SlippageBps > 10000 {
		return fmt.Errorf("WDK_SLIPPAGE_BPS must be between 0 and 10000, got %d", c.SlippageBps)
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
