// package server runs the loopback HTTP listener for CLI OAuth flows.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers.
// Implementations register their own path patterns.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Logging logs each request at debug level.
func Logging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("handled request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(started))
		})
	}
}

// CallbackServer is a one-shot HTTP server for OAuth redirect handling.
// It serves a single handler until the flow completes or the context is
// canceled, then shuts down.
type CallbackServer struct {
	addr   string
	logger *log.Logger
}

// NewCallbackServer creates a callback server bound to addr
// (host:port, matching the registered redirect URI).
func NewCallbackServer(addr string, logger *log.Logger) *CallbackServer {
	return &CallbackServer{addr: addr, logger: logger}
}

// Serve runs handler until done receives a value or ctx is canceled,
// then shuts the server down. The value received on done is returned as
// Serve's error.
func (s *CallbackServer) Serve(ctx context.Context, handler Handler, done <-chan error) error {
	mux := http.NewServeMux()

	wrapped := http.Handler(handler)
	if s.logger != nil {
		wrapped = Logging(s.logger)(wrapped)
	}
	for _, route := range handler.Routes() {
		mux.Handle(route, wrapped)
	}

	srv := &http.Server{Addr: s.addr, Handler: mux}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	var result error
	select {
	case err := <-serveErr:
		return err
	case err := <-done:
		result = err
	case <-ctx.Done():
		result = ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		srv.Close()
	}

	return result
}
