// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the server needs at startup. Secrets (JWT
// signing material, the Gemini API key) are injected here and never
// hard-coded anywhere else.
type Config struct {
	Port     string
	MongoURI string
	DBName   string

	// Single-key mode (JWTSecret) or rotation mode (JWTKeys + active kid).
	JWTSecret    string
	JWTKeys      map[string]string
	JWTActiveKID string
	TokenTTL     time.Duration

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	// Requests per minute allowed on signup/login, per email or IP.
	RateLimitRPM int
}

// Load reads configuration from the environment, honoring a local .env
// file when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment")
	}

	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	jwtKeysEnv := os.Getenv("JWT_KEYS")
	if jwtSecret == "" && jwtKeysEnv == "" {
		return nil, fmt.Errorf("either JWT_SECRET or JWT_KEYS must be set")
	}

	var jwtKeys map[string]string
	if jwtKeysEnv != "" {
		keys, err := parseKeyPairs(jwtKeysEnv)
		if err != nil {
			return nil, err
		}
		jwtKeys = keys
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	return &Config{
		Port:          getEnv("PORT", "3000"),
		MongoURI:      mongoURI,
		DBName:        getEnv("DB_NAME", "linguachat"),
		JWTSecret:     jwtSecret,
		JWTKeys:       jwtKeys,
		JWTActiveKID:  os.Getenv("JWT_ACTIVE_KID"),
		TokenTTL:      getEnvDuration("TOKEN_TTL", 7*24*time.Hour),
		GeminiAPIKey:  geminiKey,
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash-preview-05-20"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		RateLimitRPM:  getEnvInt("RATE_LIMIT_RPM", 10),
	}, nil
}

// parseKeyPairs parses the JWT_KEYS format: kid:secret,kid2:secret2
func parseKeyPairs(s string) (map[string]string, error) {
	keys := map[string]string{}
	for _, p := range strings.Split(s, ",") {
		if p == "" {
			continue
		}
		parts := strings.SplitN(p, ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid JWT_KEYS entry: %s", p)
		}
		keys[parts[0]] = parts[1]
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("JWT_KEYS contains no usable entries")
	}
	return keys, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
