package tasks

import (
	"context"
	"strings"

	"github.com/NocturnalNick/spotify2youtube/internal/match"
	"github.com/NocturnalNick/spotify2youtube/internal/services"
)

// ChoiceKind enumerates the ways a user can resolve an unmatched track.
type ChoiceKind int

const (
	// ChoicePick selects one of the presented candidates.
	ChoicePick ChoiceKind = iota
	// ChoiceManual supplies an explicit video id or URL.
	ChoiceManual
	// ChoiceSkip leaves the track out of the destination playlist.
	ChoiceSkip
)

// Choice is a validated resolution decision for one track.
type Choice struct {
	Kind      ChoiceKind
	Candidate int    // index into the presented candidates, for ChoicePick
	VideoID   string // normalized 11-character id, for ChoiceManual
}

// Prompt is the interactive surface the resolver asks for decisions.
//
// Implementations own their input-validation loop: Ask only returns a
// valid Choice or an error. A non-interactive implementation that always
// skips keeps the pipeline usable headless.
type Prompt interface {
	Ask(ctx context.Context, track services.Track, candidates []match.Candidate) (Choice, error)
}

// StubPrompt is a [Prompt] that always skips. Used for --headless runs
// and in tests.
type StubPrompt struct{}

func (StubPrompt) Ask(ctx context.Context, track services.Track, candidates []match.Candidate) (Choice, error) {
	return Choice{Kind: ChoiceSkip}, nil
}

// videoIDLength is the fixed length of YouTube video identifiers.
const videoIDLength = 11

// ParseVideoID extracts and validates a YouTube video id from user input:
// full watch URLs, youtu.be short links, music.youtube.com links, or a
// bare 11-character id. Returns false for anything else.
func ParseVideoID(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}

	var id string
	switch {
	case strings.Contains(input, "youtube.com/watch"):
		if _, after, ok := strings.Cut(input, "v="); ok {
			id, _, _ = strings.Cut(after, "&")
		}
	case strings.Contains(input, "youtu.be/"):
		_, after, _ := strings.Cut(input, "youtu.be/")
		id, _, _ = strings.Cut(after, "?")
	case len(input) == videoIDLength && !strings.ContainsAny(input, "/?&= "):
		id = input
	}

	if len(id) != videoIDLength {
		return "", false
	}

	return id, true
}
