package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guiyumin/fbdl/internal/extractor"
)

var (
	extractInfoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	extractDoneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	extractErrStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	extractWarnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// extractState holds extraction state
type extractState struct {
	mu     sync.RWMutex
	done   bool
	err    error
	result *extractor.DownloadResult
	status string
	warn   string
}

func (s *extractState) setDone(result *extractor.DownloadResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = true
	s.result = result
}

func (s *extractState) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	s.done = true
}

func (s *extractState) setEvent(ev extractor.Event) {
	line := describeEvent(ev)
	if line == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.Kind == extractor.EventAttemptFailed {
		s.warn = line
		return
	}
	s.status = line
}

func (s *extractState) get() (bool, error, *extractor.DownloadResult) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.done, s.err, s.result
}

func (s *extractState) lines() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.warn
}

type extractTickMsg time.Time

type extractModel struct {
	spinner spinner.Model
	url     string
	state   *extractState
	cancel  context.CancelFunc
}

func newExtractModel(url string, state *extractState, cancel context.CancelFunc) extractModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return extractModel{
		spinner: s,
		url:     url,
		state:   state,
		cancel:  cancel,
	}
}

func extractTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return extractTickMsg(t)
	})
}

func (m extractModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, extractTickCmd())
}

func (m extractModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.cancel()
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case extractTickMsg:
		done, _, _ := m.state.get()
		if done {
			return m, tea.Quit
		}
		return m, extractTickCmd()
	}

	return m, nil
}

func (m extractModel) View() string {
	done, err, result := m.state.get()
	status, warn := m.state.lines()

	if err != nil {
		return fmt.Sprintf("\n  %s Extraction failed: %v\n\n",
			extractErrStyle.Render("✗"),
			err,
		)
	}

	if done && result != nil {
		return fmt.Sprintf("\n  %s Extracted\n  ID: %s  |  Qualities: %d\n\n",
			extractDoneStyle.Render("✓"),
			extractInfoStyle.Render(result.VideoID),
			len(result.Downloads),
		)
	}

	view := fmt.Sprintf("\n  %s Extracting: %s\n", m.spinner.View(), extractInfoStyle.Render(m.url))
	if status != "" {
		view += fmt.Sprintf("  %s\n", status)
	}
	if warn != "" {
		view += fmt.Sprintf("  %s\n", extractWarnStyle.Render(warn))
	}
	return view + "\n"
}

// runExtractWithSpinner runs extraction with a spinner TUI
func runExtractWithSpinner(ctx context.Context, ext extractor.Extractor, url string, a *app) (*extractor.DownloadResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	state := &extractState{}
	a.onEvent = state.setEvent

	// Start extraction in background
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		result, err := ext.Extract(ctx, url)
		if err != nil {
			state.setError(err)
		} else {
			state.setDone(result)
		}
	}()

	model := newExtractModel(url, state, cancel)
	p := tea.NewProgram(model)
	_, err := p.Run()

	// Quitting the TUI cancels ctx; wait so no event fires after we return
	cancel()
	<-finished

	if err != nil {
		return nil, err
	}

	done, extractErr, result := state.get()
	if extractErr != nil {
		return nil, extractErr
	}
	if !done {
		return nil, fmt.Errorf("extraction cancelled")
	}

	return result, nil
}
