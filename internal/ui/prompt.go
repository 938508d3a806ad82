package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/NocturnalNick/spotify2youtube/internal/match"
	"github.com/NocturnalNick/spotify2youtube/internal/services"
	"github.com/NocturnalNick/spotify2youtube/internal/shared"
	"github.com/NocturnalNick/spotify2youtube/internal/tasks"
)

// TerminalPrompt resolves unmatched tracks over stdin/stdout.
//
// For each track it prints the scored candidates and accepts a
// candidate number, a YouTube URL or bare video id, or an empty line to
// skip. Invalid input re-prompts; the loop only ends on a valid choice
// or EOF.
type TerminalPrompt struct {
	in  *bufio.Reader
	out io.Writer
}

var _ tasks.Prompt = (*TerminalPrompt)(nil)

// NewTerminalPrompt creates a prompt reading from in and writing to out.
func NewTerminalPrompt(in io.Reader, out io.Writer) *TerminalPrompt {
	return &TerminalPrompt{in: bufio.NewReader(in), out: out}
}

func (p *TerminalPrompt) Ask(ctx context.Context, track services.Track, candidates []match.Candidate) (tasks.Choice, error) {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, styles.title.Render(fmt.Sprintf("No confident match: %s - %s", track.ArtistLine(), track.Title)))

	if track.DurationMS > 0 {
		fmt.Fprintf(p.out, "Duration: %s\n", shared.FormatDuration(track.DurationMS))
	}

	if len(candidates) == 0 {
		fmt.Fprintln(p.out, styles.warn.Render("No candidates found."))
	} else {
		for i, c := range candidates {
			line := fmt.Sprintf("  %d. %s - %s", i+1, c.ArtistLine(), c.Title)
			if c.DurationMS > 0 {
				line += fmt.Sprintf(" [%s]", shared.FormatDuration(c.DurationMS))
			}
			line += fmt.Sprintf(" (score %.2f)", c.Score)
			fmt.Fprintln(p.out, line)
		}
	}

	fmt.Fprintln(p.out, styles.help.Render("Enter a number, paste a YouTube URL or video id, or press enter to skip."))

	for {
		if err := ctx.Err(); err != nil {
			return tasks.Choice{}, err
		}

		fmt.Fprint(p.out, "> ")

		line, err := p.in.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				// Treat a closed stdin as skip so piped runs finish.
				return tasks.Choice{Kind: tasks.ChoiceSkip}, nil
			}
			return tasks.Choice{}, fmt.Errorf("failed to read input: %w", err)
		}

		line = strings.TrimSpace(line)

		if line == "" || strings.EqualFold(line, "s") || strings.EqualFold(line, "skip") {
			return tasks.Choice{Kind: tasks.ChoiceSkip}, nil
		}

		if n, err := strconv.Atoi(line); err == nil {
			if n >= 1 && n <= len(candidates) {
				return tasks.Choice{Kind: tasks.ChoicePick, Candidate: n - 1}, nil
			}
			fmt.Fprintln(p.out, styles.err.Render(fmt.Sprintf("Pick a number between 1 and %d.", len(candidates))))
			continue
		}

		if id, ok := tasks.ParseVideoID(line); ok {
			return tasks.Choice{Kind: tasks.ChoiceManual, VideoID: id}, nil
		}

		fmt.Fprintln(p.out, styles.err.Render("Not a valid candidate number, URL, or 11-character video id."))
	}
}
