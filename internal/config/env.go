package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// envFiles are the supported env file names, tried in order. The first file
// that parses wins. Existing process environment is never overwritten.
var envFiles = []string{".env", ".env.local"}

func loadEnvFiles() error {
	var lastErr error
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			lastErr = err
			continue
		}
		if err := godotenv.Load(path); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

// EnvDestination returns the destination override from the environment, if set.
func EnvDestination() (string, bool) {
	v := os.Getenv("BLOGBUILDER_DESTINATION")
	return v, v != ""
}

// EnvLogLevel returns the log level override from the environment, if set.
func EnvLogLevel() (string, bool) {
	v := os.Getenv("BLOGBUILDER_LOG_LEVEL")
	return v, v != ""
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
