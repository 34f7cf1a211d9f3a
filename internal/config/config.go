package config

import (
	"fmt"
	"os"

	"github.com/fernet/fernet-go"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Kite     KiteConfig
	Prices   PricesConfig
	IPO      IPOConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// KiteConfig holds the Kite Connect credentials and the fernet key used to
// encrypt the stored access token. TokenKey is nil when TOKEN_ENCRYPTION_KEY
// is unset, in which case token persistence is rejected at runtime.
type KiteConfig struct {
	APIKey    string
	APISecret string
	TokenKey  *fernet.Key
}

// PricesConfig holds the background live-price refresh schedule.
type PricesConfig struct {
	RefreshSpec string // cron spec, empty disables the refresher
}

// IPOConfig points at the IPO metadata endpoint used to backfill allotment
// entries during import. Empty disables the backfill.
type IPOConfig struct {
	BaseURL string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/trade_journal.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Kite: KiteConfig{
			APIKey:    os.Getenv("KITE_API_KEY"),
			APISecret: os.Getenv("KITE_API_SECRET"),
		},
		Prices: PricesConfig{
			RefreshSpec: getEnv("PRICE_REFRESH_SPEC", "@every 1m"),
		},
		IPO: IPOConfig{
			BaseURL: os.Getenv("IPO_API_URL"),
		},
	}

	if keyStr := os.Getenv("TOKEN_ENCRYPTION_KEY"); keyStr != "" {
		key, err := fernet.DecodeKey(keyStr)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_ENCRYPTION_KEY: %w", err)
		}
		config.Kite.TokenKey = key
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
