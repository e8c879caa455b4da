package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DBPath        string
	JWTSecret     string
	AdminName     string
	AdminPassword string
	Environment   string
	Debug         bool
}

// Load reads configuration from a .env file (if present) and the
// environment, applying development defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "8080"),
		DBPath:        getEnv("DB_PATH", "league.db"),
		JWTSecret:     getEnv("JWT_SECRET", "league-secret-key"),
		AdminName:     getEnv("ADMIN_NAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),
		Environment:   getEnv("ENV", "development"),
		Debug:         getEnv("DEBUG", "") == "true",
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
