package tasks

import (
	"context"
	"testing"

	"github.com/NocturnalNick/spotify2youtube/internal/services"
)

func TestParseVideoID(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{"watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"watch URL with extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PL123&t=42", "dQw4w9WgXcQ", true},
		{"music watch URL", "https://music.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"short link with params", "https://youtu.be/dQw4w9WgXcQ?si=abcdef", "dQw4w9WgXcQ", true},
		{"bare id", "dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"bare id with whitespace", "  dQw4w9WgXcQ  ", "dQw4w9WgXcQ", true},
		{"empty", "", "", false},
		{"too short", "abc123", "", false},
		{"too long", "dQw4w9WgXcQextra", "", false},
		{"watch URL without v", "https://www.youtube.com/watch?list=PL123", "", false},
		{"truncated id in URL", "https://youtu.be/short", "", false},
		{"random text", "what is this", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseVideoID(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ParseVideoID(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseVideoID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStubPrompt(t *testing.T) {
	choice, err := StubPrompt{}.Ask(context.Background(), services.Track{Title: "x"}, nil)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if choice.Kind != ChoiceSkip {
		t.Errorf("Kind = %v, want ChoiceSkip", choice.Kind)
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{Idle, "idle"},
		{Reading, "reading"},
		{Matching, "matching"},
		{Resolving, "resolving"},
		{Writing, "writing"},
		{Done, "done"},
		{Failed, "failed"},
	}

	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}
