// package testutil contains HTTP test helpers that do not depend on
// other packages in this module, so they can be used from any test.
package testutil

import (
	"errors"
	"io"
	"net/http"
	"strings"
)

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// SequenceRoundTripper replays a fixed sequence of responses, one per
// request, repeating the last one when the sequence runs out.
type SequenceRoundTripper struct {
	Responses []*http.Response
	Errs      []error
	calls     int
}

func (s *SequenceRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	i := s.calls
	s.calls++
	if i >= len(s.Responses) {
		i = len(s.Responses) - 1
	}
	var err error
	if i < len(s.Errs) {
		err = s.Errs[i]
	}
	return s.Responses[i], err
}

// FuncRoundTripper routes each request through a function, for
// path-sensitive fakes.
type FuncRoundTripper func(*http.Request) (*http.Response, error)

func (f FuncRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// JSONResponse builds an *http.Response with a JSON string body.
func JSONResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}
