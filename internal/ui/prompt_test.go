package ui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/NocturnalNick/spotify2youtube/internal/match"
	"github.com/NocturnalNick/spotify2youtube/internal/services"
	"github.com/NocturnalNick/spotify2youtube/internal/tasks"
)

func testTrack() services.Track {
	return services.Track{
		ID:         "t1",
		Title:      "Midnight City",
		Artists:    []string{"M83"},
		DurationMS: 243000,
	}
}

func testCandidates() []match.Candidate {
	return []match.Candidate{
		{VideoID: "vid00000001", Title: "Midnight City", Artists: []string{"M83"}, DurationMS: 243000, Score: 0.72},
		{VideoID: "vid00000002", Title: "Midnight City (Cover)", Artists: []string{"Someone"}, DurationMS: 250000, Score: 0.51},
	}
}

func ask(t *testing.T, input string, candidates []match.Candidate) (tasks.Choice, string) {
	t.Helper()

	var out bytes.Buffer
	prompt := NewTerminalPrompt(strings.NewReader(input), &out)

	choice, err := prompt.Ask(context.Background(), testTrack(), candidates)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	return choice, out.String()
}

func TestTerminalPrompt(t *testing.T) {
	t.Run("number picks a candidate", func(t *testing.T) {
		choice, out := ask(t, "2\n", testCandidates())

		if choice.Kind != tasks.ChoicePick || choice.Candidate != 1 {
			t.Errorf("choice = %+v, want pick of candidate 1", choice)
		}
		if !strings.Contains(out, "1. M83 - Midnight City") {
			t.Errorf("candidate list missing:\n%s", out)
		}
		if !strings.Contains(out, "score 0.72") {
			t.Errorf("score missing:\n%s", out)
		}
	})

	t.Run("URL resolves to a manual id", func(t *testing.T) {
		choice, _ := ask(t, "https://music.youtube.com/watch?v=dQw4w9WgXcQ\n", testCandidates())

		if choice.Kind != tasks.ChoiceManual || choice.VideoID != "dQw4w9WgXcQ" {
			t.Errorf("choice = %+v, want manual dQw4w9WgXcQ", choice)
		}
	})

	t.Run("bare id resolves to a manual id", func(t *testing.T) {
		choice, _ := ask(t, "dQw4w9WgXcQ\n", testCandidates())

		if choice.Kind != tasks.ChoiceManual || choice.VideoID != "dQw4w9WgXcQ" {
			t.Errorf("choice = %+v", choice)
		}
	})

	t.Run("invalid input re-prompts", func(t *testing.T) {
		choice, out := ask(t, "99\nnot a url\n1\n", testCandidates())

		if choice.Kind != tasks.ChoicePick || choice.Candidate != 0 {
			t.Errorf("choice = %+v, want pick of candidate 0", choice)
		}
		if !strings.Contains(out, "Pick a number between 1 and 2") {
			t.Errorf("out-of-range message missing:\n%s", out)
		}
		if !strings.Contains(out, "Not a valid candidate number") {
			t.Errorf("invalid-input message missing:\n%s", out)
		}
	})

	t.Run("empty line skips", func(t *testing.T) {
		choice, _ := ask(t, "\n", testCandidates())
		if choice.Kind != tasks.ChoiceSkip {
			t.Errorf("choice = %+v, want skip", choice)
		}
	})

	t.Run("s skips", func(t *testing.T) {
		choice, _ := ask(t, "s\n", testCandidates())
		if choice.Kind != tasks.ChoiceSkip {
			t.Errorf("choice = %+v, want skip", choice)
		}
	})

	t.Run("EOF skips", func(t *testing.T) {
		choice, _ := ask(t, "", testCandidates())
		if choice.Kind != tasks.ChoiceSkip {
			t.Errorf("choice = %+v, want skip on closed input", choice)
		}
	})

	t.Run("no candidates still offers manual entry", func(t *testing.T) {
		choice, out := ask(t, "dQw4w9WgXcQ\n", nil)

		if choice.Kind != tasks.ChoiceManual {
			t.Errorf("choice = %+v", choice)
		}
		if !strings.Contains(out, "No candidates found") {
			t.Errorf("empty-candidate notice missing:\n%s", out)
		}
	})

	t.Run("canceled context aborts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		prompt := NewTerminalPrompt(strings.NewReader("1\n"), &bytes.Buffer{})
		_, err := prompt.Ask(ctx, testTrack(), testCandidates())
		if err == nil {
			t.Error("expected context error")
		}
	})
}
