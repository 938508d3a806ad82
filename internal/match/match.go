// package match scores YouTube Music search candidates against canonical
// source tracks and classifies each track as matched, ambiguous, or
// unmatched.
package match

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/NocturnalNick/spotify2youtube/internal/services"
	"github.com/NocturnalNick/spotify2youtube/internal/shared"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// Kind classifies a match result.
type Kind int

const (
	// Matched means the top candidate cleared the auto-accept threshold.
	Matched Kind = iota
	// Ambiguous means at least one candidate cleared the consider
	// threshold but none cleared auto-accept; manual resolution applies.
	Ambiguous
	// Unmatched means no candidate was worth considering (or the search
	// failed after retries).
	Unmatched
)

func (k Kind) String() string {
	switch k {
	case Matched:
		return "matched"
	case Ambiguous:
		return "ambiguous"
	case Unmatched:
		return "unmatched"
	default:
		return ""
	}
}

// Candidate is a destination search result scored against a source track.
type Candidate struct {
	VideoID    string
	Title      string
	Artists    []string
	DurationMS int
	Score      float64
}

// ArtistLine joins the candidate's artists for display.
func (c Candidate) ArtistLine() string {
	return services.Track{Artists: c.Artists}.ArtistLine()
}

// Result is the outcome of matching one source track.
type Result struct {
	Kind       Kind
	VideoID    string      // set when Kind == Matched
	Score      float64     // top candidate's score, 0 when Unmatched with no results
	Candidates []Candidate // sorted by descending score when Kind == Ambiguous
}

// Engine matches canonical tracks against the destination catalog.
//
// Tracks are matched one at a time; the limiter spaces search calls to
// respect the destination's per-account rate limits.
type Engine struct {
	dest    services.Destination
	limiter *rate.Limiter
	logger  *log.Logger

	cfg       shared.MatchConfig
	retries   int
	retryBase time.Duration
}

// NewEngine creates a match engine over the given destination catalog.
func NewEngine(dest services.Destination, cfg shared.MatchConfig, transfer shared.TransferConfig, logger *log.Logger) *Engine {
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 5
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	rps := transfer.RequestsPerSecond
	if rps <= 0 {
		rps = 4.0
	}

	retries := transfer.MaxRetries
	if retries <= 0 {
		retries = 3
	}

	base := transfer.RetryBase()
	if base <= 0 {
		base = 500 * time.Millisecond
	}

	return &Engine{
		dest:      dest,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		logger:    shared.WithLogger(logger, "component", "match"),
		cfg:       cfg,
		retries:   retries,
		retryBase: base,
	}
}

// Query builds the destination search query for a track:
// "<primary artist> <title>".
func Query(track services.Track) string {
	if track.PrimaryArtist() == "" {
		return track.Title
	}
	return fmt.Sprintf("%s %s", track.PrimaryArtist(), track.Title)
}

// Match searches the destination catalog for track and classifies the
// result. Search failures are retried with bounded backoff; exhausted
// retries downgrade the track to Unmatched so one track's API failure
// never aborts the batch.
func (e *Engine) Match(ctx context.Context, track services.Track) Result {
	var results []services.Track

	err := shared.Retry(ctx, e.retries, e.retryBase, func() error {
		if err := e.limiter.Wait(ctx); err != nil {
			return shared.Permanent(err)
		}

		found, err := e.dest.SearchTracks(ctx, Query(track), e.cfg.SearchLimit)
		if err != nil {
			return err
		}
		results = found
		return nil
	})
	if err != nil {
		e.logger.Warn("search failed after retries, treating as unmatched",
			"title", track.Title, "artist", track.PrimaryArtist(), "err", err)
		return Result{Kind: Unmatched}
	}

	return e.Classify(track, results)
}

// Classify scores search results against the source track and applies the
// threshold policy. Deterministic given identical results and thresholds.
func (e *Engine) Classify(track services.Track, results []services.Track) Result {
	if len(results) == 0 {
		return Result{Kind: Unmatched}
	}

	candidates := make([]Candidate, len(results))
	for i, r := range results {
		candidates[i] = Candidate{
			VideoID:    r.ID,
			Title:      r.Title,
			Artists:    r.Artists,
			DurationMS: r.DurationMS,
			Score:      Score(track, r, e.cfg.DurationToleranceMS),
		}
	}

	// Stable sort keeps the service's ranking for equal scores.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	top := candidates[0]

	if top.Score >= e.cfg.AutoAcceptThreshold {
		return Result{Kind: Matched, VideoID: top.VideoID, Score: top.Score}
	}

	considered := candidates[:0:0]
	for _, c := range candidates {
		if c.Score >= e.cfg.ConsiderThreshold {
			considered = append(considered, c)
		}
	}

	if len(considered) > 0 {
		return Result{Kind: Ambiguous, Score: top.Score, Candidates: considered}
	}

	return Result{Kind: Unmatched, Score: top.Score}
}
