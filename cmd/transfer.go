package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/NocturnalNick/spotify2youtube/internal/match"
	"github.com/NocturnalNick/spotify2youtube/internal/shared"
	"github.com/NocturnalNick/spotify2youtube/internal/tasks"
	"github.com/NocturnalNick/spotify2youtube/internal/ui"
	ansi "github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// TransferRun runs a full Spotify → YouTube Music transfer for one playlist.
func (r *Runner) TransferRun(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.StringArg("playlist-id")
	if playlistID == "" {
		return fmt.Errorf("%w: playlist-id", shared.ErrMissingArgument)
	}

	if r.source == nil {
		return fmt.Errorf("%w: Spotify credentials not configured, run 's2y setup' and fill in config.toml", shared.ErrMissingCredentials)
	}

	config := r.loadConfig(cmd)

	privacy := cmd.String("privacy")
	if _, err := shared.PrivacyString(privacy); err != nil {
		return err
	}

	if err := r.source.Authenticate(ctx, config.Credentials.Spotify.Map()); err != nil {
		return fmt.Errorf("%w: run 's2y auth spotify' first: %v", shared.ErrNotAuthenticated, err)
	}
	if err := r.dest.Authenticate(ctx, map[string]string{"auth_file": config.Credentials.YouTube.AuthFile}); err != nil {
		return err
	}

	noCache := cmd.Bool("no-cache")

	var prompt tasks.Prompt
	switch {
	case cmd.Bool("headless"):
		prompt = tasks.StubPrompt{}
	case cmd.Bool("interactive-ui"):
		prompt = ui.NewPickerPrompt()
	default:
		prompt = ui.NewTerminalPrompt(r.input, r.output)
	}

	matcher := match.NewEngine(r.dest, config.Match, config.Transfer, r.logger)

	var engine *tasks.TransferEngine
	if noCache {
		engine = tasks.NewTransferEngine(r.source, r.dest, matcher, nil, prompt, config.Transfer, r.logger)
	} else {
		db, playlistCache, err := r.openCache(config)
		if err != nil {
			return err
		}
		defer db.Close()
		engine = tasks.NewTransferEngine(r.source, r.dest, matcher, playlistCache, prompt, config.Transfer, r.logger)
	}

	opts := tasks.RunOpts{
		PlaylistID:  playlistID,
		Name:        cmd.String("name"),
		Description: cmd.String("description"),
		Privacy:     privacy,
		Limit:       cmd.Int("limit"),
		NoCache:     noCache,
		SidecarPath: cmd.String("sidecar"),
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.renderProgress(progressCh)
	}()

	summary, err := engine.Run(ctx, opts, progressCh)
	close(progressCh)
	wg.Wait()

	if err != nil {
		return err
	}

	r.writePlainln("═══════════════════════════════════════")
	r.writePlain("Transfer Complete!\n")
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("Source: %s (%d tracks)\n", summary.PlaylistName, summary.TotalTracks)
	if summary.FromCache {
		r.writePlain("Source served from cache\n")
	}
	if summary.DestPlaylistID != "" {
		r.writePlain("Destination playlist: %s (%d tracks)\n", summary.DestPlaylistID, summary.TransferredCount())
	} else {
		r.writePlain("No tracks transferred, destination playlist not created\n")
	}
	r.writePlain("Auto-matched: %d  Manual: %d  Skipped: %d\n", summary.MatchedCount, summary.ManualCount, summary.SkippedCount)
	if summary.WriteFailures > 0 {
		r.writePlain("Write failures: %d\n", summary.WriteFailures)
	}
	if summary.SidecarPath != "" {
		r.writePlain("Unmatched report: %s\n", summary.SidecarPath)
	}

	return nil
}

// renderProgress consumes progress updates until the channel closes,
// drawing a bar for the matching phase and plain lines for the rest.
func (r *Runner) renderProgress(progressCh <-chan tasks.ProgressUpdate) {
	var bar *progressbar.ProgressBar

	finishBar := func() {
		if bar != nil {
			bar.Finish()
			r.writePlain("\n")
			bar = nil
		}
	}

	for update := range progressCh {
		switch update.Phase {
		case tasks.Reading:
			r.writePlain("→ %s\n", update.Message)
		case tasks.Matching:
			if update.Step == 0 {
				r.writePlain("\n→ %s\n", update.Message)
				bar = progressbar.NewOptions(
					update.Total,
					progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
					progressbar.OptionEnableColorCodes(true),
					progressbar.OptionSetTheme(progressbar.ThemeASCII),
					progressbar.OptionFullWidth(),
					progressbar.OptionShowCount(),
					progressbar.OptionSetDescription("[cyan]Matching tracks...[reset]"),
				)
				continue
			}
			if bar != nil {
				bar.Set(update.Step)
			}
		case tasks.Resolving:
			finishBar()
		case tasks.Writing:
			finishBar()
			r.writePlain("→ %s\n", update.Message)
		case tasks.Done:
			finishBar()
		case tasks.Failed:
			finishBar()
			r.writePlain("✗ %s\n", update.Message)
		}
	}
	finishBar()
}

// transferCommand handles playlist transfer operations
func transferCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "transfer",
		Usage: "Transfer playlists from Spotify to YouTube Music",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Transfer one playlist by Spotify playlist ID",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name:      "playlist-id",
						UsageText: "Spotify playlist ID",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.StringFlag{
						Name:    "name",
						Aliases: []string{"n"},
						Usage:   "Destination playlist name (defaults to the source name)",
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Destination playlist description (defaults to the source description)",
					},
					&cli.StringFlag{
						Name:  "privacy",
						Usage: "Destination privacy: public, private, or unlisted",
						Value: "private",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Transfer only the first N tracks (0 = all)",
					},
					&cli.BoolFlag{
						Name:  "no-cache",
						Usage: "Bypass the playlist cache for this run",
					},
					&cli.BoolFlag{
						Name:  "headless",
						Usage: "Never prompt; skip everything that does not auto-match",
					},
					&cli.BoolFlag{
						Name:  "interactive-ui",
						Usage: "Resolve unmatched tracks with a full-screen picker",
					},
					&cli.StringFlag{
						Name:  "sidecar",
						Usage: "Path for the unmatched-tracks report",
					},
				},
				Action: r.TransferRun,
			},
		},
	}
}
