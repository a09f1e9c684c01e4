package main

import (
	"errors"
	"os"
	"strings"
	"sync"

	"studio/internal/infra"
	"studio/internal/studioapi"
)

type globalFlags struct {
	configPath string
	apiURL     string
	token      string
	verbose    bool
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *cliConfig
	configErr  error

	loggerOnce sync.Once
	logger     infra.Logger
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*cliConfig, error) {
	c.configOnce.Do(func() {
		cfg, err := loadCLIConfig(strings.TrimSpace(c.flags.configPath))
		if err != nil {
			c.configErr = err
			return
		}
		if v := strings.TrimSpace(c.flags.apiURL); v != "" {
			cfg.APIURL = v
		}
		if v := strings.TrimSpace(c.flags.token); v != "" {
			cfg.Token = v
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) log() *infra.Logger {
	c.loggerOnce.Do(func() {
		c.logger = infra.NewConsoleLogger(os.Stderr, c.flags.verbose)
	})
	return &c.logger
}

func (c *commandContext) apiClient() (*studioapi.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if cfg.APIURL == "" {
		return nil, errors.New("api url is not configured; set api_url in the config file or pass --api-url")
	}
	return studioapi.NewClient(studioapi.Options{
		BaseURL: cfg.APIURL,
		Token:   cfg.Token,
		Logger:  c.log(),
	})
}
