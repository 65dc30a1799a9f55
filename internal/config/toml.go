// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	LogLevel *string     `toml:"log-level"`
	Play     PlayConfig  `toml:"play"`
	Serve    ServeConfig `toml:"serve"`
}

// PlayConfig maps settings of the terminal game.
type PlayConfig struct {
	Level     *int    `toml:"level"`
	Touch     *bool   `toml:"touch"`
	Sound     *bool   `toml:"sound"`
	FPS       *int    `toml:"fps"`
	LevelsDir *string `toml:"levels-dir"`
}

// ServeConfig maps settings of the websocket server.
type ServeConfig struct {
	Addr           *string  `toml:"addr"`
	TickRate       *int     `toml:"tick-rate"`
	AllowedOrigins []string `toml:"allowed-origins"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
