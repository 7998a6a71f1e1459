package main

import (
	"context"
	"os"

	"github.com/desertthunder/reveille/internal/services"
	"github.com/desertthunder/reveille/internal/shared"
	"github.com/desertthunder/reveille/internal/tokens"
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

	var player services.Player
	var manager *tokens.Manager

	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
			player = svc
			manager = tokens.NewManager(
				svc.OAuthConfig(),
				tokens.NewDefaultCache(),
				config.Credentials.Spotify.Username,
				logger,
			)
			manager.Seed(config.Credentials.Spotify.Token())
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Player: player,
		Tokens: manager,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "reveille",
		Usage:    "Wake up to Spotify: resume playback on a device at a set time",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
