package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/NocturnalNick/spotify2youtube/internal/shared"
	mocks "github.com/NocturnalNick/spotify2youtube/internal/testutil"
)

func newTestYouTube(rt http.RoundTripper) *YouTubeService {
	svc := NewYouTubeService("http://proxy.test")
	svc.SetAuthFile("browser.json")
	svc.SetHTTPClient(&http.Client{Transport: rt})
	return svc
}

func TestYouTubeAuthenticate(t *testing.T) {
	svc := NewYouTubeService("")

	t.Run("requires auth file", func(t *testing.T) {
		err := svc.Authenticate(context.Background(), map[string]string{})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("stores auth file", func(t *testing.T) {
		err := svc.Authenticate(context.Background(), map[string]string{"auth_file": "browser.json"})
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
	})
}

func TestYouTubeSearchTracks(t *testing.T) {
	ctx := context.Background()

	resultsJSON := `[
		{"videoId":"vid00000001","title":"Song A","artists":[{"name":"A"}],"duration_seconds":200,"resultType":"song"},
		{"videoId":"vid00000002","title":"Video B","artists":[{"name":"B"}],"duration_seconds":300,"resultType":"video"},
		{"videoId":"","title":"Broken","artists":[],"resultType":"song"},
		{"videoId":"vid00000003","title":"Song C","artists":[{"name":"C"},{"name":"D"}],"duration_seconds":100,"resultType":"song"}
	]`

	t.Run("builds the search request", func(t *testing.T) {
		var gotURL string
		var gotAuth string
		svc := newTestYouTube(mocks.FuncRoundTripper(func(r *http.Request) (*http.Response, error) {
			gotURL = r.URL.String()
			gotAuth = r.Header.Get("X-Auth-File")
			return mocks.JSONResponse(http.StatusOK, `[]`), nil
		}))

		if _, err := svc.SearchTracks(ctx, "M83 Midnight City", 5); err != nil {
			t.Fatalf("SearchTracks() error = %v", err)
		}

		if !strings.Contains(gotURL, "/api/search?") {
			t.Errorf("unexpected url %q", gotURL)
		}
		if !strings.Contains(gotURL, "q=M83+Midnight+City") {
			t.Errorf("query not escaped: %q", gotURL)
		}
		if !strings.Contains(gotURL, "filter=songs") || !strings.Contains(gotURL, "limit=5") {
			t.Errorf("missing filter or limit: %q", gotURL)
		}
		if gotAuth != "browser.json" {
			t.Errorf("X-Auth-File = %q", gotAuth)
		}
	})

	t.Run("drops non-songs and broken results", func(t *testing.T) {
		svc := newTestYouTube(mocks.FuncRoundTripper(func(r *http.Request) (*http.Response, error) {
			return mocks.JSONResponse(http.StatusOK, resultsJSON), nil
		}))

		tracks, err := svc.SearchTracks(ctx, "query", 5)
		if err != nil {
			t.Fatalf("SearchTracks() error = %v", err)
		}
		if len(tracks) != 2 {
			t.Fatalf("got %d tracks, want 2", len(tracks))
		}
		if tracks[0].ID != "vid00000001" || tracks[1].ID != "vid00000003" {
			t.Errorf("unexpected tracks %+v", tracks)
		}
		if tracks[0].DurationMS != 200000 {
			t.Errorf("duration not converted to ms: %d", tracks[0].DurationMS)
		}
		if tracks[1].ArtistLine() != "C, D" {
			t.Errorf("artist order lost: %q", tracks[1].ArtistLine())
		}
	})

	t.Run("caps results at limit", func(t *testing.T) {
		svc := newTestYouTube(mocks.FuncRoundTripper(func(r *http.Request) (*http.Response, error) {
			return mocks.JSONResponse(http.StatusOK, resultsJSON), nil
		}))

		tracks, err := svc.SearchTracks(ctx, "query", 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(tracks) != 1 {
			t.Errorf("got %d tracks, want 1", len(tracks))
		}
	})

	t.Run("surfaces proxy error detail", func(t *testing.T) {
		svc := newTestYouTube(mocks.FuncRoundTripper(func(r *http.Request) (*http.Response, error) {
			return mocks.JSONResponse(http.StatusUnauthorized, `{"detail":"auth headers expired"}`), nil
		}))

		_, err := svc.SearchTracks(ctx, "query", 5)
		if err == nil || !strings.Contains(err.Error(), "auth headers expired") {
			t.Errorf("expected detail in error, got %v", err)
		}
	})
}

func TestYouTubeCreatePlaylist(t *testing.T) {
	ctx := context.Background()

	t.Run("sends title description and privacy", func(t *testing.T) {
		var gotBody map[string]string
		svc := newTestYouTube(mocks.FuncRoundTripper(func(r *http.Request) (*http.Response, error) {
			data, _ := io.ReadAll(r.Body)
			json.Unmarshal(data, &gotBody)
			return mocks.JSONResponse(http.StatusOK, `{"playlist_id":"PL123"}`), nil
		}))

		id, err := svc.CreatePlaylist(ctx, "Road Trip", "windows down", "PRIVATE")
		if err != nil {
			t.Fatalf("CreatePlaylist() error = %v", err)
		}
		if id != "PL123" {
			t.Errorf("id = %q, want PL123", id)
		}
		if gotBody["title"] != "Road Trip" || gotBody["privacy_status"] != "PRIVATE" {
			t.Errorf("unexpected body %v", gotBody)
		}
	})

	t.Run("missing playlist id is an error", func(t *testing.T) {
		svc := newTestYouTube(mocks.FuncRoundTripper(func(r *http.Request) (*http.Response, error) {
			return mocks.JSONResponse(http.StatusOK, `{}`), nil
		}))

		if _, err := svc.CreatePlaylist(ctx, "x", "", "PRIVATE"); err == nil {
			t.Error("expected error for missing playlist id")
		}
	})
}

func TestYouTubeAddTracks(t *testing.T) {
	ctx := context.Background()

	t.Run("posts video ids to the playlist", func(t *testing.T) {
		var gotPath string
		var gotBody struct {
			VideoIDs []string `json:"video_ids"`
		}
		svc := newTestYouTube(mocks.FuncRoundTripper(func(r *http.Request) (*http.Response, error) {
			gotPath = r.URL.Path
			data, _ := io.ReadAll(r.Body)
			json.Unmarshal(data, &gotBody)
			return mocks.JSONResponse(http.StatusOK, `{"added":2}`), nil
		}))

		err := svc.AddTracks(ctx, "PL123", []string{"vid00000001", "vid00000002"})
		if err != nil {
			t.Fatalf("AddTracks() error = %v", err)
		}
		if gotPath != "/api/playlists/PL123/items" {
			t.Errorf("path = %q", gotPath)
		}
		if len(gotBody.VideoIDs) != 2 {
			t.Errorf("body = %+v", gotBody)
		}
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		calls := 0
		svc := newTestYouTube(mocks.FuncRoundTripper(func(r *http.Request) (*http.Response, error) {
			calls++
			return mocks.JSONResponse(http.StatusOK, `{}`), nil
		}))

		if err := svc.AddTracks(ctx, "PL123", nil); err != nil {
			t.Fatalf("AddTracks() error = %v", err)
		}
		if calls != 0 {
			t.Errorf("expected no request, got %d", calls)
		}
	})
}
