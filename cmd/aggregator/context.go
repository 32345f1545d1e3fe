package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/games-aggregator/internal/app"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

// commandContext builds the App once per invocation, after flags are parsed.
type commandContext struct {
	configFile *string
	app        *app.App
}

func newCommandContext(configFile *string) *commandContext {
	return &commandContext{configFile: configFile}
}

func (c *commandContext) loadConfig() (app.Config, error) {
	if c.configFile != nil && strings.TrimSpace(*c.configFile) != "" {
		if err := os.Setenv("AGGREGATOR_CONFIG_FILE", *c.configFile); err != nil {
			return app.Config{}, err
		}
	}
	return app.LoadConfig()
}

func (c *commandContext) ensureApp(ctx context.Context) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return c.ensureAppWithConfig(ctx, cfg)
}

func (c *commandContext) ensureAppWithConfig(ctx context.Context, cfg app.Config) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a, err := app.NewWithConfig(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	c.app = a
	return a, nil
}

func (c *commandContext) close() {
	if c.app != nil {
		c.app.Close()
		c.app = nil
	}
}
