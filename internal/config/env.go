package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment keys read by the server.
const (
	EnvAddr     = "WIRELOOP_ADDR"
	EnvLogLevel = "WIRELOOP_LOG_LEVEL"
	EnvTickRate = "WIRELOOP_TICK_RATE"
)

// EnvConfig holds values taken from the process environment.
type EnvConfig struct {
	Addr     *string
	LogLevel *string
	TickRate *int
}

// LoadEnv loads an optional dotenv file into the process environment and
// reads the server keys. Variables already set in the environment win over
// the file. A missing file is not an error.
func LoadEnv(path string) (EnvConfig, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return EnvConfig{}, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	var cfg EnvConfig
	if v, ok := os.LookupEnv(EnvAddr); ok && v != "" {
		cfg.Addr = &v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = &v
	}
	if v, ok := os.LookupEnv(EnvTickRate); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return EnvConfig{}, fmt.Errorf("invalid %s: %w", EnvTickRate, err)
		}
		cfg.TickRate = &n
	}
	return cfg, nil
}
