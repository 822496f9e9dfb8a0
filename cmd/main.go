package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/favtrack/internal/catalog"
	"github.com/desertthunder/favtrack/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var client *catalog.Client
	if config.Catalog.ClientID != "" && config.Catalog.ClientSecret != "" {
		if c, err := catalog.NewClient(config.Catalog); err == nil {
			if token := config.Catalog.Token(); token != nil {
				c.SetToken(token)
			}
			client = c
		} else {
			logger.Warn("catalog client unavailable", "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Catalog: client,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "favtrack",
		Usage:    "Watch the local player and favorite songs in the catalog",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrPlayerNotRunning) {
			logger.Warn("player is not running")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
