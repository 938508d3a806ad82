package main

import (
	"context"
	"fmt"

	"github.com/NocturnalNick/spotify2youtube/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheShow lists cached playlists with their age and validity.
func (r *Runner) CacheShow(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	db, cache, err := r.openCache(config)
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := cache.List()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}

	if len(entries) == 0 {
		return r.writePlain("Cache is empty.\n")
	}

	r.writePlain("Cached playlists (%s):\n\n", config.Cache.Path)
	for _, entry := range entries {
		status := "valid"
		if cache.Expired(entry) {
			status = "expired"
		}
		r.writePlain("  %s  %s (%d tracks, fetched %s, %s)\n",
			entry.PlaylistID, entry.Name, len(entry.Tracks),
			entry.FetchedAt.Format("2006-01-02 15:04"), status)
	}

	return nil
}

// CacheClear removes one cached playlist, or all of them.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	playlistID := cmd.StringArg("playlist-id")

	db, cache, err := r.openCache(config)
	if err != nil {
		return err
	}
	defer db.Close()

	if playlistID != "" {
		if err := cache.Delete(playlistID); err != nil {
			return err
		}
		r.logger.Info("removed cache entry", "playlist", playlistID)
		return r.writePlain("✓ Removed cached playlist %s\n", playlistID)
	}

	if !cmd.Bool("all") {
		return fmt.Errorf("%w: pass a playlist id or --all", shared.ErrMissingArgument)
	}

	if err := cache.Clear(); err != nil {
		return err
	}
	r.logger.Info("cleared playlist cache")
	return r.writePlain("✓ Cleared playlist cache\n")
}

// cacheCommand handles playlist cache inspection
func cacheCommand(r *Runner) *cli.Command {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}

	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and manage the playlist cache",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "List cached playlists",
				Flags: []cli.Flag{
					configFlag,
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.CacheShow,
			},
			{
				Name:  "clear",
				Usage: "Remove a cached playlist, or all with --all",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name:      "playlist-id",
						UsageText: "Spotify playlist ID to evict",
					},
				},
				Flags: []cli.Flag{
					configFlag,
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Clear every cached playlist",
					},
				},
				Action: r.CacheClear,
			},
		},
	}
}
