package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/hotgen/hotgen/envconfig"
)

// LoadDotEnv loads environment variables from a .env file in the current
// directory, then re-reads the hotgen configuration so the new values
// take effect. A missing .env file is not an error.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to check if .env file exists: %w", err)
	}

	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("could not load .env: %w", err)
	}
	envconfig.LoadConfig()
	return nil
}
