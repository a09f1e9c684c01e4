package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"studio/internal/upload"
)

type cliConfig struct {
	APIURL                string `toml:"api_url"`
	Token                 string `toml:"token"`
	CORSOrigin            string `toml:"cors_origin"`
	PollIntervalSeconds   int    `toml:"poll_interval_seconds"`
	PollMaxFailures       int    `toml:"poll_max_failures"`
	PollMaxBackoffSeconds int    `toml:"poll_max_backoff_seconds"`
}

func defaultCLIConfig() cliConfig {
	policy := upload.DefaultPolicy()
	return cliConfig{
		APIURL:                "http://localhost:8080",
		PollIntervalSeconds:   int(policy.Interval / time.Second),
		PollMaxFailures:       policy.MaxFailures,
		PollMaxBackoffSeconds: int(policy.MaxBackoff / time.Second),
	}
}

// defaultConfigPath resolves $XDG_CONFIG_HOME/studio/studioctl.toml, falling
// back to the platform user config directory.
func defaultConfigPath() (string, error) {
	base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if base == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("resolve config dir: %w", err)
		}
		base = dir
	}
	return filepath.Join(base, "studio", "studioctl.toml"), nil
}

// loadCLIConfig reads path, or the default location when path is empty. A
// missing default file yields the defaults; a missing explicit file is an error.
func loadCLIConfig(path string) (*cliConfig, error) {
	cfg := defaultCLIConfig()

	explicit := path != ""
	if !explicit {
		resolved, err := defaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = resolved
	}

	file, err := os.Open(path)
	switch {
	case err == nil:
		defer file.Close()
		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("open config: %w", err)
	}

	if v := strings.TrimSpace(os.Getenv("STUDIO_API_URL")); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv("STUDIO_TOKEN")); v != "" {
		cfg.Token = v
	}
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	cfg.Token = strings.TrimSpace(cfg.Token)
	cfg.CORSOrigin = strings.TrimSpace(cfg.CORSOrigin)
	if cfg.PollIntervalSeconds <= 0 {
		return nil, fmt.Errorf("poll_interval_seconds must be positive, got %d", cfg.PollIntervalSeconds)
	}
	return &cfg, nil
}

func (c *cliConfig) policy() upload.Policy {
	return upload.Policy{
		Interval:    time.Duration(c.PollIntervalSeconds) * time.Second,
		MaxFailures: c.PollMaxFailures,
		MaxBackoff:  time.Duration(c.PollMaxBackoffSeconds) * time.Second,
	}
}
