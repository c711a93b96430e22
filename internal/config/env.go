package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables honoured by the serve command.
const (
	EnvAddr           = "FUNNELQUIZ_ADDR"
	EnvDBPath         = "FUNNELQUIZ_DB"
	EnvVariant        = "FUNNELQUIZ_VARIANT"
	EnvAMQPURL        = "FUNNELQUIZ_AMQP_URL"
	EnvExchange       = "FUNNELQUIZ_EXCHANGE"
	EnvAllowedOrigins = "FUNNELQUIZ_ALLOWED_ORIGINS"
	EnvSessionTTL     = "FUNNELQUIZ_SESSION_TTL"
	EnvMaxSessions    = "FUNNELQUIZ_MAX_SESSIONS"
	EnvLogMode        = "FUNNELQUIZ_LOG_MODE"
)

// LoadDotEnv loads variables from a .env file without overriding the
// environment. It reports whether a file was found.
func LoadDotEnv(path string) (bool, error) {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("failed to load env file: %w", err)
	}
	return true, nil
}

// ApplyEnv overrides file config values with FUNNELQUIZ_* variables.
func ApplyEnv(cfg *FileConfig) error {
	if v, ok := lookup(EnvAddr); ok {
		cfg.Serve.Addr = &v
	}
	if v, ok := lookup(EnvDBPath); ok {
		cfg.Store.Path = &v
	}
	if v, ok := lookup(EnvVariant); ok {
		cfg.Quiz.Variant = &v
	}
	if v, ok := lookup(EnvAMQPURL); ok {
		cfg.Events.AMQPURL = &v
	}
	if v, ok := lookup(EnvExchange); ok {
		cfg.Events.Exchange = &v
	}
	if v, ok := lookup(EnvAllowedOrigins); ok {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Serve.AllowedOrigins = origins
	}
	if v, ok := lookup(EnvSessionTTL); ok {
		cfg.Serve.SessionTTL = &v
	}
	if v, ok := lookup(EnvMaxSessions); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMaxSessions, err)
		}
		cfg.Serve.MaxSessions = &n
	}
	if v, ok := lookup(EnvLogMode); ok {
		cfg.Log.Mode = &v
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
