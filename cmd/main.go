package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/NocturnalNick/spotify2youtube/internal/services"
	"github.com/NocturnalNick/spotify2youtube/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var source services.Source
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map(), logger); err == nil {
			source = svc
		}
	}

	dest := services.NewYouTubeService(config.Credentials.YouTube.ProxyURL)
	dest.SetAuthFile(config.Credentials.YouTube.AuthFile)

	runner := NewRunner(RunnerOpts{
		Config: config,
		Source: source,
		Dest:   dest,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "s2y",
		Usage:    "Transfer Spotify playlists to YouTube Music",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(ctx, os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
