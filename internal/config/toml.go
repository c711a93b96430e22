// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Quiz   QuizConfig   `toml:"quiz"`
	Store  StoreConfig  `toml:"store"`
	Events EventsConfig `toml:"events"`
	Serve  ServeConfig  `toml:"serve"`
	Log    LogConfig    `toml:"log"`
}

// QuizConfig maps quiz content settings.
type QuizConfig struct {
	Variant *string `toml:"variant"`
}

// StoreConfig maps persistence settings.
type StoreConfig struct {
	Path *string `toml:"path"`
}

// EventsConfig maps the optional event publisher.
type EventsConfig struct {
	AMQPURL  *string `toml:"amqp-url"`
	Exchange *string `toml:"exchange"`
}

// ServeConfig maps HTTP API settings.
type ServeConfig struct {
	Addr           *string  `toml:"addr"`
	AllowedOrigins []string `toml:"allowed-origins"`
	SessionTTL     *string  `toml:"session-ttl"`
	MaxSessions    *int     `toml:"max-sessions"`
}

// LogConfig maps logger settings.
type LogConfig struct {
	Mode *string `toml:"mode"`
	File *string `toml:"file"`
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
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Serve.SessionTTL != nil {
		if _, err := time.ParseDuration(*cfg.Serve.SessionTTL); err != nil {
			return FileConfig{}, fmt.Errorf("invalid serve.session-ttl: %w", err)
		}
	}
	return cfg, nil
}
