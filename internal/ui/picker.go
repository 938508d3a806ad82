package ui

import (
	"context"
	"fmt"

	"github.com/NocturnalNick/spotify2youtube/internal/match"
	"github.com/NocturnalNick/spotify2youtube/internal/services"
	"github.com/NocturnalNick/spotify2youtube/internal/shared"
	"github.com/NocturnalNick/spotify2youtube/internal/tasks"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// PickerPrompt resolves unmatched tracks with a full-screen bubbletea
// picker instead of line input. One program runs per track.
type PickerPrompt struct{}

var _ tasks.Prompt = PickerPrompt{}

// NewPickerPrompt creates the TUI-backed prompt.
func NewPickerPrompt() PickerPrompt {
	return PickerPrompt{}
}

func (PickerPrompt) Ask(ctx context.Context, track services.Track, candidates []match.Candidate) (tasks.Choice, error) {
	model := newPickerModel(track, candidates)

	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return tasks.Choice{}, fmt.Errorf("picker failed: %w", err)
	}

	m, ok := final.(*pickerModel)
	if !ok {
		return tasks.Choice{Kind: tasks.ChoiceSkip}, nil
	}
	return m.choice, nil
}

// candidateItem wraps [match.Candidate] to implement [list.Item].
type candidateItem struct {
	candidate match.Candidate
}

var _ list.Item = candidateItem{}

func (i candidateItem) FilterValue() string { return i.candidate.Title }
func (i candidateItem) Title() string       { return i.candidate.Title }
func (i candidateItem) Description() string {
	desc := i.candidate.ArtistLine()
	if i.candidate.DurationMS > 0 {
		desc = fmt.Sprintf("%s • %s", desc, shared.FormatDuration(i.candidate.DurationMS))
	}
	return fmt.Sprintf("%s • score %.2f", desc, i.candidate.Score)
}

// pickerKeyMap defines the [key.Binding] mapping for the picker.
type pickerKeyMap struct {
	up     key.Binding
	down   key.Binding
	enter  key.Binding
	manual key.Binding
	skip   key.Binding
	back   key.Binding
}

func newPickerKeyMap() pickerKeyMap {
	return pickerKeyMap{
		up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		manual: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "enter id/url")),
		skip:   key.NewBinding(key.WithKeys("s", "q"), key.WithHelp("s", "skip")),
		back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	}
}

func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.enter, k.manual, k.skip}
}

func (k pickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.manual, k.skip, k.back},
	}
}

// pickerModel is the per-track resolution view.
type pickerModel struct {
	track      services.Track
	candidates list.Model
	input      textinput.Model
	entering   bool
	invalid    bool
	choice     tasks.Choice
	help       help.Model
	keys       pickerKeyMap
}

func newPickerModel(track services.Track, candidates []match.Candidate) *pickerModel {
	items := make([]list.Item, len(candidates))
	for i, c := range candidates {
		items[i] = candidateItem{candidate: c}
	}

	l := list.New(items, list.NewDefaultDelegate(), 60, 14)
	l.Title = fmt.Sprintf("%s - %s", track.ArtistLine(), track.Title)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	input := textinput.New()
	input.Placeholder = "YouTube URL or 11-character video id"
	input.CharLimit = 120

	return &pickerModel{
		track:      track,
		candidates: l,
		input:      input,
		choice:     tasks.Choice{Kind: tasks.ChoiceSkip},
		help:       help.New(),
		keys:       newPickerKeyMap(),
	}
}

func (m *pickerModel) Init() tea.Cmd {
	return nil
}

func (m *pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.candidates.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		if m.entering {
			return m.handleManualKeys(msg)
		}
		return m.handleListKeys(msg)
	}

	var cmd tea.Cmd
	m.candidates, cmd = m.candidates.Update(msg)
	return m, cmd
}

func (m *pickerModel) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.skip):
		m.choice = tasks.Choice{Kind: tasks.ChoiceSkip}
		return m, tea.Quit

	case key.Matches(msg, m.keys.manual):
		m.entering = true
		m.invalid = false
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.enter):
		if _, ok := m.candidates.SelectedItem().(candidateItem); ok {
			m.choice = tasks.Choice{Kind: tasks.ChoicePick, Candidate: m.candidates.Index()}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.candidates, cmd = m.candidates.Update(msg)
	return m, cmd
}

func (m *pickerModel) handleManualKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.entering = false
		m.invalid = false
		m.input.Reset()
		return m, nil

	case key.Matches(msg, m.keys.enter):
		if id, ok := tasks.ParseVideoID(m.input.Value()); ok {
			m.choice = tasks.Choice{Kind: tasks.ChoiceManual, VideoID: id}
			return m, tea.Quit
		}
		m.invalid = true
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *pickerModel) View() string {
	if m.entering {
		view := styles.title.Render("Enter a YouTube URL or video id") + "\n\n" + m.input.View()
		if m.invalid {
			view += "\n" + styles.err.Render("Not a valid URL or 11-character video id.")
		}
		return view + "\n\n" + m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back})
	}

	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	return fmt.Sprintf("%s\n\n%s", m.candidates.View(), helpView)
}
