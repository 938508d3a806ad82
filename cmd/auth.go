package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/NocturnalNick/spotify2youtube/internal/server"
	"github.com/NocturnalNick/spotify2youtube/internal/services"
	"github.com/NocturnalNick/spotify2youtube/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthSpotify performs the OAuth2 authorization code flow for Spotify.
//
// Starts a local HTTP server on the redirect URI's host:port, opens the
// browser for user authorization, exchanges the code, and persists the
// tokens to the config file.
func (r *Runner) AuthSpotify(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err == nil {
		if loaded, err := shared.LoadConfig(configPath); err == nil {
			config = loaded
		} else {
			r.logger.Warn("failed to load config, using defaults", "err", err)
		}
	}

	if config.Credentials.Spotify.ClientID == "" || config.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in %s", shared.ErrMissingCredentials, configPath)
	}

	spotify, err := services.NewSpotifyService(config.Credentials.Spotify.Map(), r.logger)
	if err != nil {
		return fmt.Errorf("failed to create Spotify service: %w", err)
	}

	token, err := r.doOAuth(ctx, config, spotify)
	if err != nil {
		return err
	}

	if err := config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}

	if err := shared.SaveConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", configPath)
	r.writePlain("You can now use: s2y transfer run <playlist-id>\n")

	return nil
}

// AuthStatus reports which credentials are configured and usable.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	spotify := config.Credentials.Spotify
	switch {
	case spotify.ClientID == "" || spotify.ClientSecret == "":
		r.writePlain("Spotify: ✗ client credentials not configured\n")
	case spotify.AccessToken == "":
		r.writePlain("Spotify: ✗ not authorized (run 's2y auth spotify')\n")
	default:
		r.writePlain("Spotify: ✓ authorized\n")
	}

	authFile := config.Credentials.YouTube.AuthFile
	if authFile == "" {
		r.writePlain("YouTube Music: ✗ auth_file not configured\n")
		return nil
	}
	if _, err := os.Stat(authFile); err != nil {
		r.writePlain("YouTube Music: ✗ auth_file missing at %s\n", authFile)
		return nil
	}
	r.writePlain("YouTube Music: ✓ auth file present (%s)\n", authFile)
	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server.
func (r *Runner) doOAuth(ctx context.Context, config *shared.Config, spotify *services.SpotifyService) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, err
	}

	oauthConfig := spotify.OAuthConfig()
	handler := server.NewOAuthHandler(oauthConfig, state)

	redirect, err := url.Parse(oauthConfig.RedirectURL)
	if err != nil || redirect.Host == "" {
		return nil, fmt.Errorf("%w: invalid redirect_uri %q", shared.ErrInvalidConfig, oauthConfig.RedirectURL)
	}

	authURL := spotify.GetAuthURL(state)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser automatically", "err", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	flowCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	done := make(chan error, 1)
	var result server.OAuthResult
	go func() {
		result = <-handler.Result()
		done <- result.Error()
	}()

	srv := server.NewCallbackServer(redirect.Host, r.logger)
	if err := srv.Serve(flowCtx, handler, done); err != nil {
		if flowCtx.Err() != nil {
			return nil, fmt.Errorf("%w: authorization timed out", shared.ErrAuthFailed)
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return result.Token, nil
}

// authCommand handles credential setup and inspection
func authCommand(r *Runner) *cli.Command {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}

	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with Spotify and check credential status",
		Commands: []*cli.Command{
			{
				Name:   "spotify",
				Usage:  "Authorize with Spotify using OAuth2",
				Flags:  []cli.Flag{configFlag},
				Action: r.AuthSpotify,
			},
			{
				Name:   "status",
				Usage:  "Show which credentials are configured",
				Flags:  []cli.Flag{configFlag},
				Action: r.AuthStatus,
			},
		},
	}
}
