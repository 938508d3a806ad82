package main

import (
	"context"
	"os"

	"github.com/NocturnalNick/spotify2youtube/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes a starter config file and initializes the cache database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		r.writePlain("Config file already exists at %s\n", configPath)
	} else {
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		r.writePlain("✓ Created %s\n", configPath)
	}

	config := r.loadConfig(cmd)

	db, _, err := r.openCache(config)
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Info("cache database initialized", "path", config.Cache.Path)
	r.writePlain("✓ Cache database ready at %s\n\n", config.Cache.Path)
	r.writePlain("Next steps:\n")
	r.writePlain("  1. Fill in Spotify credentials in %s\n", configPath)
	r.writePlain("  2. Run 's2y auth spotify'\n")
	r.writePlain("  3. Point credentials.youtube at your ytmusicapi proxy\n")

	return nil
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and initialize the cache database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}
