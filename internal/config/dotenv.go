package config

import (
	"fmt"

	"github.com/joho/godotenv"
)

// LoadDotEnv reads KEY=value lines from path into the process environment so
// the env layer of Load sees them. Variables already set are not replaced.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
	}
	return nil
}
