package match

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/NocturnalNick/spotify2youtube/internal/services"
	"github.com/NocturnalNick/spotify2youtube/internal/shared"
	mocks "github.com/NocturnalNick/spotify2youtube/internal/testing"
)

func testMatchConfig() shared.MatchConfig {
	return shared.MatchConfig{
		AutoAcceptThreshold: 0.80,
		ConsiderThreshold:   0.45,
		SearchLimit:         5,
		DurationToleranceMS: 10000,
	}
}

func testTransferConfig() shared.TransferConfig {
	return shared.TransferConfig{
		MaxRetries:        2,
		RetryBaseMS:       1,
		RequestsPerSecond: 1000,
	}
}

func newTestEngine(dest services.Destination) *Engine {
	return NewEngine(dest, testMatchConfig(), testTransferConfig(), shared.NewLogger(io.Discard))
}

func TestQuery(t *testing.T) {
	t.Run("primary artist plus title", func(t *testing.T) {
		track := services.Track{Title: "Midnight City", Artists: []string{"M83", "Other"}}
		if got := Query(track); got != "M83 Midnight City" {
			t.Errorf("Query() = %q", got)
		}
	})

	t.Run("no artists falls back to title", func(t *testing.T) {
		track := services.Track{Title: "Untitled"}
		if got := Query(track); got != "Untitled" {
			t.Errorf("Query() = %q", got)
		}
	})
}

func TestClassify(t *testing.T) {
	engine := newTestEngine(&mocks.MockDestination{})
	src := services.Track{Title: "Midnight City", Artists: []string{"M83"}, DurationMS: 243000}

	t.Run("no results is unmatched", func(t *testing.T) {
		result := engine.Classify(src, nil)
		if result.Kind != Unmatched {
			t.Errorf("Kind = %v, want Unmatched", result.Kind)
		}
	})

	t.Run("exact candidate auto-accepts", func(t *testing.T) {
		results := []services.Track{
			{ID: "exact000000", Title: "Midnight City", Artists: []string{"M83"}, DurationMS: 243000},
			{ID: "other000000", Title: "Something Else", Artists: []string{"Nobody"}, DurationMS: 100000},
		}

		result := engine.Classify(src, results)
		if result.Kind != Matched {
			t.Fatalf("Kind = %v, want Matched", result.Kind)
		}
		if result.VideoID != "exact000000" {
			t.Errorf("VideoID = %q, want the exact candidate", result.VideoID)
		}
		if result.Score < engine.cfg.AutoAcceptThreshold {
			t.Errorf("Score = %v below auto-accept threshold", result.Score)
		}
	})

	t.Run("middling candidates are ambiguous", func(t *testing.T) {
		// Same title, unknown artist, no duration: 0.5 score territory.
		results := []services.Track{
			{ID: "cover000001", Title: "Midnight City", Artists: []string{"Cover Band"}},
			{ID: "cover000002", Title: "Midnight City Remix", Artists: []string{"Someone"}},
		}

		result := engine.Classify(src, results)
		if result.Kind != Ambiguous {
			t.Fatalf("Kind = %v, want Ambiguous", result.Kind)
		}
		if len(result.Candidates) == 0 {
			t.Fatal("expected candidates for manual resolution")
		}
		for i := 1; i < len(result.Candidates); i++ {
			if result.Candidates[i-1].Score < result.Candidates[i].Score {
				t.Error("candidates not sorted by descending score")
			}
		}
	})

	t.Run("junk results are unmatched", func(t *testing.T) {
		results := []services.Track{
			{ID: "junk0000001", Title: "Completely Unrelated Podcast Episode", Artists: []string{"Host"}},
		}

		result := engine.Classify(src, results)
		if result.Kind != Unmatched {
			t.Errorf("Kind = %v, want Unmatched", result.Kind)
		}
	})

	t.Run("deterministic for identical inputs", func(t *testing.T) {
		results := []services.Track{
			{ID: "cover000001", Title: "Midnight City", Artists: []string{"Cover Band"}},
			{ID: "exact000000", Title: "Midnight City", Artists: []string{"M83"}, DurationMS: 243000},
		}

		first := engine.Classify(src, results)
		for i := 0; i < 5; i++ {
			again := engine.Classify(src, results)
			if again.Kind != first.Kind || again.VideoID != first.VideoID {
				t.Fatal("classification changed across identical runs")
			}
		}
	})
}

func TestMatch(t *testing.T) {
	ctx := context.Background()
	src := services.Track{Title: "Midnight City", Artists: []string{"M83"}, DurationMS: 243000}

	t.Run("uses the artist title query", func(t *testing.T) {
		dest := &mocks.MockDestination{}
		engine := newTestEngine(dest)

		engine.Match(ctx, src)

		if len(dest.SearchQueries) != 1 || dest.SearchQueries[0] != "M83 Midnight City" {
			t.Errorf("unexpected queries %v", dest.SearchQueries)
		}
	})

	t.Run("search failure downgrades to unmatched", func(t *testing.T) {
		dest := &mocks.MockDestination{
			SearchTracksFn: func(ctx context.Context, query string, limit int) ([]services.Track, error) {
				return nil, errors.New("proxy down")
			},
		}
		engine := newTestEngine(dest)

		result := engine.Match(ctx, src)
		if result.Kind != Unmatched {
			t.Errorf("Kind = %v, want Unmatched", result.Kind)
		}
		if len(dest.SearchQueries) != 2 {
			t.Errorf("expected 2 attempts, got %d", len(dest.SearchQueries))
		}
	})

	t.Run("retries transient failures", func(t *testing.T) {
		calls := 0
		dest := &mocks.MockDestination{
			SearchTracksFn: func(ctx context.Context, query string, limit int) ([]services.Track, error) {
				calls++
				if calls == 1 {
					return nil, errors.New("flaky")
				}
				return []services.Track{
					{ID: "exact000000", Title: "Midnight City", Artists: []string{"M83"}, DurationMS: 243000},
				}, nil
			},
		}
		engine := newTestEngine(dest)

		result := engine.Match(ctx, src)
		if result.Kind != Matched {
			t.Errorf("Kind = %v, want Matched after retry", result.Kind)
		}
	})

	t.Run("canceled context stops matching", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		dest := &mocks.MockDestination{}
		engine := newTestEngine(dest)

		start := time.Now()
		result := engine.Match(canceled, src)
		if result.Kind != Unmatched {
			t.Errorf("Kind = %v, want Unmatched", result.Kind)
		}
		if time.Since(start) > time.Second {
			t.Error("cancellation should not wait out retries")
		}
	})
}
