package tasks

import (
	"fmt"

	"github.com/NocturnalNick/spotify2youtube/internal/services"
)

// ProgressUpdate represents a progress event during a transfer.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Pipeline phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Phase enumerates the transfer pipeline's states.
type Phase int

const (
	Idle Phase = iota
	Reading
	Matching
	Resolving
	Writing
	Done
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Reading:
		return "reading"
	case Matching:
		return "matching"
	case Resolving:
		return "resolving"
	case Writing:
		return "writing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

func readingUpdate(playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Reading,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching playlist %s from Spotify...", playlistID),
	}
}

func cacheHitUpdate(name string, trackCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Reading,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Using cached playlist: %s (%d tracks)", name, trackCount),
	}
}

func foundPlaylistUpdate(export *services.PlaylistExport) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Reading,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found playlist: %s (%d tracks)", export.Playlist.Name, len(export.Tracks)),
		Data:    export,
	}
}

func matchTrackUpdate(step, total int, tr services.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Matching,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, tr.PrimaryArtist(), tr.Title),
		Data:    tr,
	}
}

func matchingStartUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Matching,
		Step:    0,
		Total:   total,
		Message: "Searching for tracks on YouTube Music...",
	}
}

func resolveUpdate(step, total int, tr services.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Resolving,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Resolving: %s - %s", step, total, tr.PrimaryArtist(), tr.Title),
		Data:    tr,
	}
}

func createPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Writing,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Creating YouTube Music playlist: %s", name),
	}
}

func addBatchUpdate(step, total, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Writing,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Adding %d tracks...", step, total, count),
	}
}

func batchFailedUpdate(step, total, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Writing,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Failed to add batch of %d tracks", step, total, count),
	}
}

func doneUpdate(s Summary) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Transfer complete: %d matched, %d manual, %d skipped", s.MatchedCount, s.ManualCount, s.SkippedCount),
		Data:    s,
	}
}
