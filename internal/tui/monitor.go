// Package tui renders a live view of the overlay process.
package tui

import (
	"fmt"
	"strings"

	"bocchi/internal/domain"
	"bocchi/internal/patcher"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MaxErrorLines is how many stderr lines the monitor keeps
const MaxErrorLines = 5

// EventMsg carries an overlay process event into the program
type EventMsg struct {
	Event domain.Event
}

// StoppedMsg is sent once the overlay process has been stopped
type StoppedMsg struct {
	Err error
}

// Stopper stops the overlay process
type Stopper interface {
	Stop() error
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle   = lipgloss.NewStyle().Bold(true)
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	footerStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)
)

// Monitor shows the state of a running overlay until the user quits
type Monitor struct {
	stopper Stopper
	keys    *KeyMap
	spinner spinner.Model
	mods    []string

	status   string
	progress string
	errors   []string
	exited   bool
	stopping bool
	err      error
	width    int
}

// NewMonitor creates a monitor for an overlay built from mods
func NewMonitor(stopper Stopper, mods []string) Monitor {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = progressStyle
	return Monitor{
		stopper: stopper,
		keys:    NewKeyMap(),
		spinner: s,
		mods:    mods,
		width:   80,
	}
}

// Sink forwards patcher events into a running program
func Sink(p *tea.Program) patcher.EventSink {
	return patcher.SinkFunc(func(e domain.Event) {
		p.Send(EventMsg{Event: e})
	})
}

// Status returns the last status line
func (m Monitor) Status() string {
	return m.status
}

// Progress returns the last forwarded progress message
func (m Monitor) Progress() string {
	return m.progress
}

// Errors returns the most recent stderr lines, oldest first
func (m Monitor) Errors() []string {
	return m.errors
}

// Exited reports whether the overlay process has ended
func (m Monitor) Exited() bool {
	return m.exited
}

// Err returns the error from stopping the overlay, if any
func (m Monitor) Err() error {
	return m.err
}

// Init implements tea.Model
func (m Monitor) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model
func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, nil

	case StoppedMsg:
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		if m.exited {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Monitor) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.keys.IsQuit(msg):
		if m.stopping {
			return m, nil
		}
		m.stopping = true
		return m, stopCmd(m.stopper)
	case m.keys.IsClear(msg):
		m.errors = nil
	}
	return m, nil
}

func (m *Monitor) handleEvent(e domain.Event) {
	switch e.Kind {
	case domain.EventStatus:
		// An empty status marks the end of the process
		if e.Text == "" {
			m.exited = true
			m.status = ""
			return
		}
		m.status = e.Text
	case domain.EventProgress:
		m.progress = e.Text
	case domain.EventError:
		m.errors = append(m.errors, e.Text)
		if len(m.errors) > MaxErrorLines {
			m.errors = m.errors[len(m.errors)-MaxErrorLines:]
		}
	}
}

func stopCmd(s Stopper) tea.Cmd {
	return func() tea.Msg {
		if s == nil {
			return StoppedMsg{}
		}
		return StoppedMsg{Err: s.Stop()}
	}
}

// View implements tea.Model
func (m Monitor) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("bocchi - skin overlay"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("%d mod(s): ", len(m.mods))))
	b.WriteString(strings.Join(m.mods, ", "))
	b.WriteString("\n\n")

	switch {
	case m.stopping:
		b.WriteString(statusStyle.Render("Stopping..."))
	case m.exited:
		b.WriteString(errStyle.Render("Overlay exited"))
	default:
		status := m.status
		if status == "" {
			status = "Starting"
		}
		b.WriteString(m.spinner.View() + " " + statusStyle.Render(status))
	}
	b.WriteString("\n")

	if m.progress != "" {
		b.WriteString(labelStyle.Render("Last: ") + progressStyle.Render(m.progress) + "\n")
	}

	if len(m.errors) > 0 {
		b.WriteString("\n")
		for _, line := range m.errors {
			b.WriteString(errStyle.Render(line) + "\n")
		}
	}

	b.WriteString(footerStyle.Render(m.keys.Help()))
	return b.String()
}
