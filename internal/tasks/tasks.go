package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NocturnalNick/spotify2youtube/internal/formatter"
	"github.com/NocturnalNick/spotify2youtube/internal/match"
	"github.com/NocturnalNick/spotify2youtube/internal/repositories"
	"github.com/NocturnalNick/spotify2youtube/internal/services"
	"github.com/NocturnalNick/spotify2youtube/internal/shared"
	"github.com/charmbracelet/log"
)

// Outcome classifies how one track was resolved.
type Outcome int

const (
	// AutoMatched means the match engine accepted the top candidate.
	AutoMatched Outcome = iota
	// ManuallyMatched means the user picked a candidate or supplied an id.
	ManuallyMatched
	// Skipped means the track is left out of the destination playlist.
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case AutoMatched:
		return "auto"
	case ManuallyMatched:
		return "manual"
	case Skipped:
		return "skipped"
	default:
		return ""
	}
}

// ResolutionRecord ties a source track to its final disposition.
type ResolutionRecord struct {
	Track   services.Track
	Outcome Outcome
	VideoID string // set unless Skipped
	Reason  string // sidecar reason for Skipped records
}

// Summary is the final result of a transfer run.
type Summary struct {
	RunID          string
	PlaylistID     string
	PlaylistName   string
	DestPlaylistID string
	TotalTracks    int
	MatchedCount   int
	ManualCount    int
	SkippedCount   int
	WriteFailures  int
	FromCache      bool
	SidecarPath    string
	Elapsed        time.Duration
}

// TransferredCount is the number of tracks that ended up in the
// destination playlist.
func (s Summary) TransferredCount() int {
	return s.MatchedCount + s.ManualCount - s.WriteFailures
}

// RunOpts are the per-run parameters for a transfer.
type RunOpts struct {
	PlaylistID  string
	Name        string // destination playlist name, defaults to the source name
	Description string // defaults to the source description
	Privacy     string // public, private, or unlisted
	Limit       int    // 0 means all tracks
	NoCache     bool
	SidecarPath string
}

// TransferEngine runs the full pipeline for one playlist: read, match,
// resolve, write, report.
//
// The engine moves through phases strictly in order and never revisits
// one. Only a read failure aborts the run; from matching onward every
// per-track failure degrades to a sidecar entry instead.
type TransferEngine struct {
	source  services.Source
	dest    services.Destination
	matcher *match.Engine
	cache   *repositories.PlaylistCache
	prompt  Prompt
	logger  *log.Logger
	cfg     shared.TransferConfig
}

// NewTransferEngine creates a transfer engine. cache may be nil to run
// without caching; prompt may be nil to always skip unresolved tracks.
func NewTransferEngine(
	source services.Source,
	dest services.Destination,
	matcher *match.Engine,
	cache *repositories.PlaylistCache,
	prompt Prompt,
	cfg shared.TransferConfig,
	logger *log.Logger,
) *TransferEngine {
	if prompt == nil {
		prompt = StubPrompt{}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBaseMS <= 0 {
		cfg.RetryBaseMS = 500
	}
	if cfg.SidecarPath == "" {
		cfg.SidecarPath = "unmatched_tracks.json"
	}

	return &TransferEngine{
		source:  source,
		dest:    dest,
		matcher: matcher,
		cache:   cache,
		prompt:  prompt,
		logger:  shared.WithLogger(logger, "component", "transfer"),
		cfg:     cfg,
	}
}

// Run executes the transfer pipeline and returns a summary. Progress
// updates are sent to progressCh when provided; sends never block, so a
// slow consumer drops updates rather than stalling the transfer.
func (e *TransferEngine) Run(ctx context.Context, opts RunOpts, progressCh chan<- ProgressUpdate) (*Summary, error) {
	if opts.PlaylistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	privacy, err := shared.PrivacyString(opts.Privacy)
	if err != nil {
		return nil, err
	}
	opts.Privacy = privacy

	runID := shared.GenerateID()
	logger := shared.WithLogger(e.logger, "run", runID)
	logger.Info("starting transfer", "playlist", opts.PlaylistID)

	started := time.Now()

	export, fromCache, err := e.read(ctx, opts, progressCh)
	if err != nil {
		e.sendProgress(progressCh, ProgressUpdate{
			Phase:   Failed,
			Message: fmt.Sprintf("Failed to fetch playlist: %v", err),
		})
		return nil, err
	}

	records, err := e.matchAndResolve(ctx, export.Tracks, progressCh)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:        runID,
		PlaylistID:   opts.PlaylistID,
		PlaylistName: export.Playlist.Name,
		TotalTracks:  len(export.Tracks),
		FromCache:    fromCache,
	}
	for _, rec := range records {
		switch rec.Outcome {
		case AutoMatched:
			summary.MatchedCount++
		case ManuallyMatched:
			summary.ManualCount++
		case Skipped:
			summary.SkippedCount++
		}
	}

	name := opts.Name
	if name == "" {
		name = export.Playlist.Name
	}
	description := opts.Description
	if description == "" {
		description = export.Playlist.Description
	}

	destID, writeFailures, err := e.write(ctx, name, description, opts.Privacy, records, progressCh)
	if err != nil {
		return nil, err
	}
	summary.DestPlaylistID = destID
	summary.WriteFailures = writeFailures

	sidecarPath := opts.SidecarPath
	if sidecarPath == "" {
		sidecarPath = e.cfg.SidecarPath
	}
	if err := e.writeSidecar(records, sidecarPath); err != nil {
		e.logger.Error("failed to write sidecar report", "path", sidecarPath, "err", err)
	} else {
		summary.SidecarPath = sidecarPath
	}

	summary.Elapsed = time.Since(started)
	e.sendProgress(progressCh, doneUpdate(*summary))

	return summary, nil
}

// read fetches the source playlist, consulting the cache first unless
// the run disables it. Full fetches are written back to the cache;
// limited fetches are not, so a later full run is never served a
// truncated snapshot.
func (e *TransferEngine) read(ctx context.Context, opts RunOpts, progressCh chan<- ProgressUpdate) (*services.PlaylistExport, bool, error) {
	if e.cache != nil && !opts.NoCache {
		entry, err := e.cache.Get(opts.PlaylistID)
		if err != nil {
			e.logger.Warn("cache read failed, fetching from source", "err", err)
		} else if entry != nil {
			tracks := entry.Tracks
			if opts.Limit > 0 && opts.Limit < len(tracks) {
				tracks = tracks[:opts.Limit]
			}
			e.sendProgress(progressCh, cacheHitUpdate(entry.Name, len(tracks)))
			return &services.PlaylistExport{
				Playlist: services.Playlist{
					ID:          entry.PlaylistID,
					Name:        entry.Name,
					Description: entry.Description,
					TrackCount:  len(tracks),
				},
				Tracks: tracks,
			}, true, nil
		}
	}

	e.sendProgress(progressCh, readingUpdate(opts.PlaylistID))

	export, err := e.source.ExportPlaylist(ctx, opts.PlaylistID, opts.Limit)
	if err != nil {
		return nil, false, err
	}

	e.sendProgress(progressCh, foundPlaylistUpdate(export))

	if e.cache != nil && !opts.NoCache && opts.Limit == 0 {
		err := e.cache.Put(repositories.CacheEntry{
			PlaylistID:  opts.PlaylistID,
			Name:        export.Playlist.Name,
			Description: export.Playlist.Description,
			Tracks:      export.Tracks,
		})
		if err != nil {
			e.logger.Warn("cache write failed", "err", err)
		}
	}

	return export, false, nil
}

// matchAndResolve runs the match phase over every track, then the
// resolve phase over everything the engine could not auto-accept. All
// matching completes before the first prompt so interactive time is
// batched at the end.
func (e *TransferEngine) matchAndResolve(ctx context.Context, tracks []services.Track, progressCh chan<- ProgressUpdate) ([]ResolutionRecord, error) {
	e.sendProgress(progressCh, matchingStartUpdate(len(tracks)))

	type pending struct {
		index  int
		track  services.Track
		result match.Result
	}

	records := make([]ResolutionRecord, len(tracks))
	var unresolved []pending

	for i, track := range tracks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		e.sendProgress(progressCh, matchTrackUpdate(i+1, len(tracks), track))

		result := e.matcher.Match(ctx, track)
		if result.Kind == match.Matched {
			records[i] = ResolutionRecord{Track: track, Outcome: AutoMatched, VideoID: result.VideoID}
			continue
		}
		unresolved = append(unresolved, pending{index: i, track: track, result: result})
	}

	for n, p := range unresolved {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		e.sendProgress(progressCh, resolveUpdate(n+1, len(unresolved), p.track))

		reason := formatter.ReasonNoMatch
		if p.result.Kind == match.Ambiguous {
			reason = formatter.ReasonAmbiguous
		}

		choice, err := e.prompt.Ask(ctx, p.track, p.result.Candidates)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			e.logger.Warn("prompt failed, skipping track", "title", p.track.Title, "err", err)
			records[p.index] = ResolutionRecord{Track: p.track, Outcome: Skipped, Reason: reason}
			continue
		}

		switch choice.Kind {
		case ChoicePick:
			if choice.Candidate < 0 || choice.Candidate >= len(p.result.Candidates) {
				records[p.index] = ResolutionRecord{Track: p.track, Outcome: Skipped, Reason: reason}
				continue
			}
			records[p.index] = ResolutionRecord{
				Track:   p.track,
				Outcome: ManuallyMatched,
				VideoID: p.result.Candidates[choice.Candidate].VideoID,
			}
		case ChoiceManual:
			records[p.index] = ResolutionRecord{Track: p.track, Outcome: ManuallyMatched, VideoID: choice.VideoID}
		default:
			userReason := formatter.ReasonSkipped
			if p.result.Kind == match.Unmatched && len(p.result.Candidates) == 0 {
				userReason = formatter.ReasonNoMatch
			}
			records[p.index] = ResolutionRecord{Track: p.track, Outcome: Skipped, Reason: userReason}
		}
	}

	return records, nil
}

// write creates the destination playlist and adds resolved tracks in
// source order, in batches. A failed batch's records are downgraded to
// skips with a write-failure reason, in place so the sidecar keeps one
// source-ordered list, and the write continues with the next batch.
// Returns the number of downgraded records.
//
// When nothing resolved, no playlist is created: the destination is
// never mutated for an empty transfer.
func (e *TransferEngine) write(ctx context.Context, name, description, privacy string, records []ResolutionRecord, progressCh chan<- ProgressUpdate) (string, int, error) {
	var resolved []int
	for i, rec := range records {
		if rec.Outcome != Skipped {
			resolved = append(resolved, i)
		}
	}

	if len(resolved) == 0 {
		e.logger.Info("no tracks resolved, skipping playlist creation")
		return "", 0, nil
	}

	fail := func(idx int) {
		records[idx] = ResolutionRecord{Track: records[idx].Track, Outcome: Skipped, Reason: formatter.ReasonWriteFailed}
	}

	e.sendProgress(progressCh, createPlaylistUpdate(name))

	var destID string
	err := shared.Retry(ctx, e.cfg.MaxRetries, e.cfg.RetryBase(), func() error {
		id, err := e.dest.CreatePlaylist(ctx, name, description, privacy)
		if err != nil {
			return err
		}
		destID = id
		return nil
	})
	if err != nil {
		// Without a playlist every resolved track becomes a write failure.
		e.logger.Error("failed to create destination playlist", "name", name, "err", err)
		for _, idx := range resolved {
			fail(idx)
		}
		return "", len(resolved), nil
	}

	batches := (len(resolved) + e.cfg.BatchSize - 1) / e.cfg.BatchSize

	failures := 0
	for i := 0; i < len(resolved); i += e.cfg.BatchSize {
		end := min(i+e.cfg.BatchSize, len(resolved))
		batch := resolved[i:end]
		step := i/e.cfg.BatchSize + 1

		ids := make([]string, len(batch))
		for j, idx := range batch {
			ids[j] = records[idx].VideoID
		}

		e.sendProgress(progressCh, addBatchUpdate(step, batches, len(ids)))

		err := shared.Retry(ctx, e.cfg.MaxRetries, e.cfg.RetryBase(), func() error {
			return e.dest.AddTracks(ctx, destID, ids)
		})
		if err != nil {
			if ctx.Err() != nil {
				return destID, failures, ctx.Err()
			}
			e.logger.Error("failed to add batch", "batch", step, "size", len(ids), "err", err)
			e.sendProgress(progressCh, batchFailedUpdate(step, batches, len(ids)))
			for _, idx := range batch {
				fail(idx)
			}
			failures += len(batch)
		}
	}

	return destID, failures, nil
}

// writeSidecar collects skipped records into the sidecar report. The
// file is written on every run, empty when everything transferred.
func (e *TransferEngine) writeSidecar(records []ResolutionRecord, path string) error {
	entries := []formatter.UnmatchedEntry{}
	for _, rec := range records {
		if rec.Outcome != Skipped {
			continue
		}
		entries = append(entries, formatter.UnmatchedEntry{
			Title:   rec.Track.Title,
			Artists: rec.Track.Artists,
			Reason:  rec.Reason,
		})
	}
	return formatter.WriteUnmatchedReport(entries, path)
}

// sendProgress sends an update without blocking. Dropped updates are
// fine; the summary carries the authoritative counts.
func (e *TransferEngine) sendProgress(ch chan<- ProgressUpdate, update ProgressUpdate) {
	if ch == nil {
		return
	}
	select {
	case ch <- update:
	default:
	}
}
