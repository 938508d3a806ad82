// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/NocturnalNick/spotify2youtube/internal/services"
)

// MockSource is a configurable test double for [services.Source].
type MockSource struct {
	AuthenticateFn   func(ctx context.Context, credentials map[string]string) error
	GetPlaylistsFn   func(ctx context.Context) ([]services.Playlist, error)
	ExportPlaylistFn func(ctx context.Context, playlistID string, limit int) (*services.PlaylistExport, error)
}

func (m *MockSource) Authenticate(ctx context.Context, credentials map[string]string) error {
	if m.AuthenticateFn != nil {
		return m.AuthenticateFn(ctx, credentials)
	}
	return nil
}

func (m *MockSource) GetPlaylists(ctx context.Context) ([]services.Playlist, error) {
	if m.GetPlaylistsFn != nil {
		return m.GetPlaylistsFn(ctx)
	}
	return []services.Playlist{}, nil
}

func (m *MockSource) ExportPlaylist(ctx context.Context, playlistID string, limit int) (*services.PlaylistExport, error) {
	if m.ExportPlaylistFn != nil {
		return m.ExportPlaylistFn(ctx, playlistID, limit)
	}
	return &services.PlaylistExport{}, nil
}

func (m *MockSource) Name() string { return "mock-source" }

// MockDestination is a configurable test double for [services.Destination].
type MockDestination struct {
	AuthenticateFn   func(ctx context.Context, credentials map[string]string) error
	SearchTracksFn   func(ctx context.Context, query string, limit int) ([]services.Track, error)
	CreatePlaylistFn func(ctx context.Context, name, description, privacy string) (string, error)
	AddTracksFn      func(ctx context.Context, playlistID string, trackIDs []string) error

	// Recorded calls for assertions.
	SearchQueries []string
	AddedBatches  [][]string
}

func (m *MockDestination) Authenticate(ctx context.Context, credentials map[string]string) error {
	if m.AuthenticateFn != nil {
		return m.AuthenticateFn(ctx, credentials)
	}
	return nil
}

func (m *MockDestination) SearchTracks(ctx context.Context, query string, limit int) ([]services.Track, error) {
	m.SearchQueries = append(m.SearchQueries, query)
	if m.SearchTracksFn != nil {
		return m.SearchTracksFn(ctx, query, limit)
	}
	return nil, nil
}

func (m *MockDestination) CreatePlaylist(ctx context.Context, name, description, privacy string) (string, error) {
	if m.CreatePlaylistFn != nil {
		return m.CreatePlaylistFn(ctx, name, description, privacy)
	}
	return "mock-playlist-id", nil
}

func (m *MockDestination) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	m.AddedBatches = append(m.AddedBatches, trackIDs)
	if m.AddTracksFn != nil {
		return m.AddTracksFn(ctx, playlistID, trackIDs)
	}
	return nil
}

func (m *MockDestination) Name() string { return "mock-destination" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
