// Package config loads server configuration from environment variables.
//
// A .env file in the working directory is honoured when present (local
// development); real deployments set the variables directly.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// DefaultFreeLanguage is the one language free-tier users may execute.
const DefaultFreeLanguage = "javascript"

type Config struct {
	Port               string
	DBPath             string
	JWTSecret          string
	ClerkWebhookSecret string
	GeminiAPIKey       string
	FreeLanguage       string
}

// Load reads configuration from the environment, applying defaults for
// everything that is safe to default. Secrets have no defaults — features
// that need them are disabled when they're empty.
func Load() *Config {
	// Ignore a missing .env; env vars may be set by the deployment instead.
	_ = godotenv.Load()

	return &Config{
		Port:               getEnv("PORT", "8080"),
		DBPath:             getEnv("DB_PATH", "data/codenest.db"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		ClerkWebhookSecret: getEnv("CLERK_WEBHOOK_SECRET", ""),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		FreeLanguage:       getEnv("FREE_LANGUAGE", DefaultFreeLanguage),
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)
	if exists {
		return val
	}
	return fallback
}
