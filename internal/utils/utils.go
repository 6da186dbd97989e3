package utils

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv returns the required variables, loading .env first. It fails on the
// first one that is missing or empty.
func LoadEnv(requiredVars []string) (map[string]string, error) {
	_ = godotenv.Load()

	envVars := make(map[string]string)

	for _, key := range requiredVars {
		value := os.Getenv(key)
		if value == "" {
			return nil, fmt.Errorf("missing required environment variable: %s", key)
		}
		envVars[key] = value
	}

	return envVars, nil
}
