// YouTube Music API [Destination] implementation
//
// Communicates with a local ytmusicapi proxy server. The proxy wraps the
// ytmusicapi Python library for YouTube Music operations.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/NocturnalNick/spotify2youtube/internal/shared"
)

const defaultYTBaseURL string = "http://localhost:8080"

// YouTubeArtist represents an artist in YouTube Music responses.
type YouTubeArtist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type youtubeAlbum struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// YouTubeTrack represents a track/video in YouTube Music responses.
type YouTubeTrack struct {
	VideoID     string          `json:"videoId"`
	Title       string          `json:"title"`
	Artists     []YouTubeArtist `json:"artists"`
	Album       *youtubeAlbum   `json:"album"`
	Duration    string          `json:"duration"`
	DurationSec int             `json:"duration_seconds"`
	ResultType  string          `json:"resultType,omitempty"`
}

// YouTubeService implements the [Destination] interface for YouTube Music via proxy.
type YouTubeService struct {
	baseURL    string
	authFile   string
	httpClient *http.Client
}

// NewYouTubeService creates a new YouTube Music service instance.
func NewYouTubeService(baseURL string) *YouTubeService {
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}

	return &YouTubeService{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube Music"
}

// SetAuthFile sets the auth file path sent with each proxy request.
func (y *YouTubeService) SetAuthFile(path string) {
	y.authFile = path
}

// SetHTTPClient replaces the underlying HTTP client. Used in tests.
func (y *YouTubeService) SetHTTPClient(client *http.Client) {
	if client != nil {
		y.httpClient = client
	}
}

// Authenticate stores the authentication file path for subsequent requests.
//
// Expects credentials["auth_file"] to contain the path to browser.json or oauth.json.
func (y *YouTubeService) Authenticate(ctx context.Context, credentials map[string]string) error {
	authFile, ok := credentials["auth_file"]
	if !ok || authFile == "" {
		return fmt.Errorf("%w: missing auth_file", shared.ErrMissingCredentials)
	}

	y.authFile = authFile
	return nil
}

// doRequest performs a request against the proxy, JSON-encoding body when
// present and decoding into result when non-nil.
func (y *YouTubeService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	apiURL := y.baseURL + endpoint

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if y.authFile != "" {
		req.Header.Set("X-Auth-File", y.authFile)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("youtube music API error (status %d): %s", resp.StatusCode, errResp.Detail)
		}
		return fmt.Errorf("youtube music API error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// SearchTracks searches the song catalog for query, returning up to limit
// candidates in the proxy's ranking order.
//
// Calls GET /api/search?q={query}&filter=songs&limit={limit} on the proxy.
// Results that are not songs (the proxy can interleave videos) are dropped.
func (y *YouTubeService) SearchTracks(ctx context.Context, query string, limit int) ([]Track, error) {
	if limit <= 0 {
		limit = 5
	}

	endpoint := fmt.Sprintf("/api/search?q=%s&filter=songs&limit=%d", url.QueryEscape(query), limit)

	var results []YouTubeTrack
	if err := y.doRequest(ctx, http.MethodGet, endpoint, nil, &results); err != nil {
		return nil, err
	}

	tracks := make([]Track, 0, len(results))
	for _, r := range results {
		if r.ResultType != "" && r.ResultType != "song" {
			continue
		}
		if r.VideoID == "" {
			continue
		}
		tracks = append(tracks, normalizeYouTubeTrack(r))
		if len(tracks) == limit {
			break
		}
	}

	return tracks, nil
}

// CreatePlaylist creates an empty playlist and returns its ID.
//
// Calls POST /api/playlists on the proxy.
func (y *YouTubeService) CreatePlaylist(ctx context.Context, name, description, privacy string) (string, error) {
	createReq := struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		PrivacyStatus string `json:"privacy_status"`
	}{
		Title:         name,
		Description:   description,
		PrivacyStatus: privacy,
	}

	var createResp struct {
		PlaylistID string `json:"playlist_id"`
	}

	if err := y.doRequest(ctx, http.MethodPost, "/api/playlists", createReq, &createResp); err != nil {
		return "", err
	}

	if createResp.PlaylistID == "" {
		return "", fmt.Errorf("proxy returned no playlist id")
	}

	return createResp.PlaylistID, nil
}

// AddTracks appends video IDs to a playlist in order.
//
// Calls POST /api/playlists/{id}/items on the proxy. The proxy accepts at
// most 100 ids per call; callers chunk accordingly.
func (y *YouTubeService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}

	addReq := struct {
		VideoIDs []string `json:"video_ids"`
	}{
		VideoIDs: trackIDs,
	}

	endpoint := fmt.Sprintf("/api/playlists/%s/items", playlistID)
	return y.doRequest(ctx, http.MethodPost, endpoint, addReq, nil)
}

// normalizeYouTubeTrack converts a proxy search result into the canonical
// form, preserving artist order. Proxy durations are in seconds.
func normalizeYouTubeTrack(yt YouTubeTrack) Track {
	artists := make([]string, 0, len(yt.Artists))
	for _, a := range yt.Artists {
		if a.Name != "" {
			artists = append(artists, a.Name)
		}
	}

	album := ""
	if yt.Album != nil {
		album = yt.Album.Name
	}

	return Track{
		ID:         yt.VideoID,
		Title:      yt.Title,
		Artists:    artists,
		Album:      album,
		DurationMS: yt.DurationSec * 1000,
	}
}
