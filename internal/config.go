package internal

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries the environment-driven settings for the client
type Config struct {
	// Backend
	BaseURL     string
	HTTPTimeout time.Duration

	// Local state
	SessionFile string
	CacheDir    string

	// Overlay cache entries older than this are dropped on load
	OverlayMaxAge time.Duration
}

// LoadConfig reads configuration from a .env file (if present) and the
// process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		LogDebug("No .env file loaded: %v", err)
	}

	return &Config{
		BaseURL:       getEnvWithDefault("TERAPIA_BASE_URL", "https://api.mentevital.com"),
		HTTPTimeout:   time.Duration(getEnvInt("TERAPIA_HTTP_TIMEOUT", 30)) * time.Second,
		SessionFile:   getEnvWithDefault("TERAPIA_SESSION_FILE", defaultSessionPath()),
		CacheDir:      getEnvWithDefault("TERAPIA_CACHE_DIR", defaultCacheDir()),
		OverlayMaxAge: time.Duration(getEnvInt("TERAPIA_OVERLAY_MAX_AGE_HOURS", 24)) * time.Hour,
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".terapia-admin"
	}
	return filepath.Join(home, ".terapia-admin")
}

func defaultSessionPath() string {
	return filepath.Join(defaultCacheDir(), "session.yaml")
}

func getEnvWithDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		LogWarn("Invalid integer for %s: %q, using default %d", key, v, def)
		return def
	}
	return n
}
