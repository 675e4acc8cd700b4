package downloader

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	statsStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type progressMsg Progress

type doneMsg struct {
	path string
	err  error
}

type downloadModel struct {
	bar    progress.Model
	name   string
	last   Progress
	done   bool
	path   string
	err    error
	cancel context.CancelFunc
}

func newDownloadModel(name string, cancel context.CancelFunc) downloadModel {
	return downloadModel{
		bar:    progress.New(progress.WithDefaultGradient()),
		name:   name,
		last:   Progress{Total: -1},
		cancel: cancel,
	}
}

func (m downloadModel) Init() tea.Cmd {
	return nil
}

func (m downloadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			// Wait for the transfer goroutine to report the cancellation
			m.cancel()
		}

	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-4, 10), 80)

	case progressMsg:
		m.last = Progress(msg)

	case doneMsg:
		m.done = true
		m.path = msg.path
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

func (m downloadModel) View() string {
	if m.done {
		if m.err != nil {
			return fmt.Sprintf("\n  %s Download error: %v\n\n", errStyle.Render("✗"), m.err)
		}
		return fmt.Sprintf("\n  %s Download successful: %s\n\n", doneStyle.Render("✓"), m.path)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", titleStyle.Render(m.name))

	pct := m.last.Percent()
	if pct < 0 {
		pct = 0
	}
	fmt.Fprintf(&b, "  %s\n\n", m.bar.ViewAs(pct))
	fmt.Fprintf(&b, "  %s\n\n", statsStyle.Render(formatStats(m.last)))
	return b.String()
}

func formatStats(p Progress) string {
	speed := p.Speed()
	if p.Total <= 0 {
		return fmt.Sprintf("%s  |  %s/s", formatBytes(p.Downloaded), formatBytes(int64(speed)))
	}

	eta := "??:??"
	if speed > 0 {
		remaining := float64(p.Total-p.Downloaded) / speed
		eta = formatDuration(time.Duration(remaining * float64(time.Second)))
	}
	return fmt.Sprintf("%s / %s  |  %s/s  |  ETA %s",
		formatBytes(p.Downloaded), formatBytes(p.Total), formatBytes(int64(speed)), eta)
}

// RunDownloadTUI streams the file while rendering a progress bar
func RunDownloadTUI(ctx context.Context, d *Downloader, sourceURL, fileName, dir string) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newDownloadModel(fileName, cancel))

	go func() {
		path, err := d.StreamToDisk(ctx, sourceURL, fileName, dir, func(pr Progress) {
			p.Send(progressMsg(pr))
		})
		p.Send(doneMsg{path: path, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return "", err
	}

	m := final.(downloadModel)
	if m.err != nil {
		return "", m.err
	}
	if !m.done {
		return "", fmt.Errorf("download cancelled")
	}
	return m.path, nil
}

// PlainProgress renders progress as a single rewritten line, for non-terminal output
func PlainProgress(w io.Writer) ProgressFunc {
	return func(p Progress) {
		if pct := p.Percent(); pct >= 0 {
			fmt.Fprintf(w, "\rProgress: %.1f%% (%s/%s)", pct*100, formatBytes(p.Downloaded), formatBytes(p.Total))
			return
		}
		fmt.Fprintf(w, "\rProgress: %s", formatBytes(p.Downloaded))
	}
}
