// Package progress renders a Trainer's progress as a terminal UI.
package progress

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/musolver/musolver/internal/cfr"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	statStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

type tickMsg cfr.Progress

type doneMsg struct{}

// Model is a Bubble Tea program that renders a progress bar plus the
// most recently reported training statistics.
type Model struct {
	total int
	bar   progress.Model
	last  cfr.Progress
	done  bool
}

// NewModel returns a Model that renders progress toward total
// iterations.
func NewModel(total int) Model {
	return Model{
		total: total,
		bar:   progress.New(progress.WithDefaultGradient()),
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.last = cfr.Progress(msg)
		return m, nil
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) View() string {
	frac := 0.0
	if m.total > 0 {
		frac = float64(m.last.Iteration) / float64(m.total)
	}
	line := fmt.Sprintf("iter %d/%d  table %d  regret %.4f  %s",
		m.last.Iteration, m.total, m.last.TableSize, m.last.RegretMagnitude,
		m.last.IterationTime.Round(time.Microsecond))
	return titleStyle.Render("musolver") + "\n" +
		m.bar.ViewAs(frac) + "\n" +
		statStyle.Render(line) + "\n"
}

// Callback returns a progress func suitable for Trainer.Run and a done
// func to call once training finishes, both forwarding into program.
func Callback(program *tea.Program) (onProgress func(cfr.Progress), onDone func()) {
	onProgress = func(p cfr.Progress) {
		program.Send(tickMsg(p))
	}
	onDone = func() {
		program.Send(doneMsg{})
	}
	return onProgress, onDone
}
