// package services defines interfaces for the music catalogs on either
// side of a transfer: Spotify as the source, YouTube Music (via proxy)
// as the destination.
package services

import (
	"context"
	"strings"
)

// Source is a catalog a playlist is read from.
type Source interface {
	// Authenticate performs OAuth or API key authentication with the service.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// GetPlaylists retrieves all playlists for the authenticated user.
	GetPlaylists(ctx context.Context) ([]Playlist, error)

	// ExportPlaylist exports a playlist with its tracks in playlist order.
	// A limit > 0 truncates to the first limit tracks.
	ExportPlaylist(ctx context.Context, playlistID string, limit int) (*PlaylistExport, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// Destination is a catalog a playlist is written to.
type Destination interface {
	// Authenticate stores credentials for subsequent requests.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// SearchTracks searches the song catalog and returns up to limit
	// results in the service's ranking order.
	SearchTracks(ctx context.Context, query string, limit int) ([]Track, error)

	// CreatePlaylist creates an empty playlist and returns its ID.
	// privacy is one of PUBLIC, PRIVATE, UNLISTED.
	CreatePlaylist(ctx context.Context, name, description, privacy string) (string, error)

	// AddTracks appends the given track IDs to a playlist in order.
	// Callers are responsible for chunking to the API's batch limit.
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error

	// Name returns the name of the service (e.g., "YouTube Music")
	Name() string
}

// Playlist represents a music playlist from either service
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackCount  int
	Public      bool
}

// PlaylistExport represents a playlist with all its tracks for migration
type PlaylistExport struct {
	Playlist Playlist
	Tracks   []Track
}

// Track is the canonical, service-agnostic representation of a song.
// Immutable once read from the source.
type Track struct {
	ID         string   // Service-specific identifier (Spotify track id or YouTube video id)
	Title      string
	Artists    []string // Artist names in the order the service lists them
	Album      string
	DurationMS int
}

// PrimaryArtist returns the first listed artist, or "" if none.
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// ArtistLine joins all artists for display.
func (t Track) ArtistLine() string {
	return strings.Join(t.Artists, ", ")
}
