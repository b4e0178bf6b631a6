package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config carries the service's environment-backed settings.
type Config struct {
	CredentialsPath string
	OverpassURL     string
	HTTPPort        string
}

// Load reads an optional .env file and assembles the configuration from the
// environment, falling back to defaults suitable for local runs.
func Load() *Config {
	godotenv.Load()

	return &Config{
		CredentialsPath: getEnv("CREDENTIALS_PATH", "credentials.yaml"),
		OverpassURL:     getEnv("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
