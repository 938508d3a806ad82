package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
)

// fakeTokenEndpoint returns an httptest server that answers token
// exchange requests with a static access token.
func fakeTokenEndpoint(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"exchanged_token","token_type":"Bearer","refresh_token":"refresh","expires_in":3600}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testOAuthConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client_id",
		ClientSecret: "client_secret",
		RedirectURL:  "http://127.0.0.1:8888/callback",
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}
}

func TestOAuthHandler(t *testing.T) {
	t.Run("Routes", func(t *testing.T) {
		t.Run("derived from redirect URL", func(t *testing.T) {
			config := testOAuthConfig("")
			config.RedirectURL = "http://127.0.0.1:8888/auth/spotify/done"

			routes := NewOAuthHandler(config, "state").Routes()
			if len(routes) != 1 || routes[0] != "/auth/spotify/done" {
				t.Errorf("Routes() = %v", routes)
			}
		})

		t.Run("falls back to /callback", func(t *testing.T) {
			config := testOAuthConfig("")
			config.RedirectURL = ""

			routes := NewOAuthHandler(config, "state").Routes()
			if len(routes) != 1 || routes[0] != "/callback" {
				t.Errorf("Routes() = %v", routes)
			}
		})
	})

	t.Run("successful callback exchanges the code", func(t *testing.T) {
		endpoint := fakeTokenEndpoint(t)
		handler := NewOAuthHandler(testOAuthConfig(endpoint.URL), "expected_state")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=expected_state&code=auth_code", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Authorization Successful") {
			t.Error("expected success page")
		}

		select {
		case result := <-handler.Result():
			if result.Error() != nil {
				t.Fatalf("unexpected error: %v", result.Error())
			}
			if result.Token == nil || result.Token.AccessToken != "exchanged_token" {
				t.Errorf("token = %+v", result.Token)
			}
		case <-time.After(time.Second):
			t.Fatal("no result received")
		}
	})

	t.Run("state mismatch is rejected", func(t *testing.T) {
		handler := NewOAuthHandler(testOAuthConfig(""), "expected_state")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=forged&code=auth_code", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "invalid state") {
			t.Errorf("error = %v", result.Error())
		}
	})

	t.Run("missing code reports the provider error", func(t *testing.T) {
		handler := NewOAuthHandler(testOAuthConfig(""), "expected_state")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=expected_state&error=access_denied&error_description=user+denied", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("error = %v", result.Error())
		}
	})

	t.Run("second callback is ignored", func(t *testing.T) {
		endpoint := fakeTokenEndpoint(t)
		handler := NewOAuthHandler(testOAuthConfig(endpoint.URL), "expected_state")

		first := httptest.NewRecorder()
		handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/callback?state=expected_state&code=one", nil))
		if first.Code != http.StatusOK {
			t.Fatalf("first callback status = %d", first.Code)
		}

		second := httptest.NewRecorder()
		handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/callback?state=expected_state&code=two", nil))
		if second.Code != http.StatusBadRequest {
			t.Errorf("second callback status = %d, want 400", second.Code)
		}
	})

	t.Run("Send delivers exactly once", func(t *testing.T) {
		handler := NewOAuthHandler(testOAuthConfig(""), "state")

		handler.Send(OAuthResult{err: errors.New("first")})
		handler.Send(OAuthResult{err: errors.New("second")})

		result := <-handler.Result()
		if result.Error() == nil || result.Error().Error() != "first" {
			t.Errorf("error = %v", result.Error())
		}

		if _, open := <-handler.Result(); open {
			t.Error("expected result channel to be closed")
		}
	})
}

func TestLogging(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.DebugLevel})

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	Logging(logger)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback", nil))

	if !called {
		t.Error("expected wrapped handler to run")
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestCallbackServer(t *testing.T) {
	t.Run("returns the done value", func(t *testing.T) {
		srv := NewCallbackServer("127.0.0.1:0", nil)
		handler := NewOAuthHandler(testOAuthConfig(""), "state")

		done := make(chan error, 1)
		done <- nil

		if err := srv.Serve(context.Background(), handler, done); err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	})

	t.Run("returns the context error on cancel", func(t *testing.T) {
		srv := NewCallbackServer("127.0.0.1:0", nil)
		handler := NewOAuthHandler(testOAuthConfig(""), "state")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := srv.Serve(ctx, handler, make(chan error))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	})
}
