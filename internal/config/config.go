// Package config loads the client configuration from the stacks config file
// and the environment. Environment variables win over the file, so a
// STACKS_SERVER_URL export is enough to point the client at another backend.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config captures everything the client needs to reach the library backend.
type Config struct {
	// ServerURL is the base URL of the library REST backend.
	ServerURL string `mapstructure:"server_url"`
	// RequestTimeoutSeconds bounds every single API request.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
	// LogFile is where the client writes its own log.
	LogFile string `mapstructure:"log_file"`
}

const (
	defaultConfigPath     = "~/.config/stacks/config.toml"
	defaultServerURL      = "http://localhost:3000"
	defaultRequestTimeout = 10
	defaultLogFile        = "~/.local/state/stacks/stacks.log"

	envPrefix = "STACKS"
)

// Load reads the config file at path, falling back to the default location
// when path is empty. A missing file is not an error; defaults and the
// environment still apply.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetDefault("server_url", defaultServerURL)
	v.SetDefault("request_timeout_seconds", defaultRequestTimeout)
	v.SetDefault("log_file", defaultLogFile)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if _, statErr := os.Stat(resolved); statErr == nil {
		v.SetConfigFile(resolved)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	} else if !errors.Is(statErr, os.ErrNotExist) {
		return Config{}, fmt.Errorf("open config %s: %w", resolved, statErr)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.ServerURL = strings.TrimSpace(cfg.ServerURL)
	if cfg.ServerURL == "" {
		cfg.ServerURL = defaultServerURL
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		cfg.RequestTimeoutSeconds = defaultRequestTimeout
	}
	cfg.LogFile = mustExpand(strings.TrimSpace(cfg.LogFile))

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
