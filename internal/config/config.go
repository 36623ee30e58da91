package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	DataDir    string
	APIURL     string
	APITimeout time.Duration
	BaseURL    string // public URL embedded in QR sync links
}

// LoadConfig loads configuration from a .env file (if present) and
// environment variables, falling back to defaults.
func LoadConfig() *Config {
	godotenv.Load()

	return &Config{
		DataDir:    getEnv("GUESTLIST_DATA_DIR", "data"),
		APIURL:     getEnv("GUESTLIST_API_URL", ""),
		APITimeout: time.Duration(getEnvInt("GUESTLIST_API_TIMEOUT_SEC", 30)) * time.Second,
		BaseURL:    getEnv("GUESTLIST_BASE_URL", "https://guestlist.local/app"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
