package tui_test

import (
	"errors"
	"fmt"
	"testing"

	"bocchi/internal/domain"
	"bocchi/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStopper struct {
	calls int
	err   error
}

func (f *fakeStopper) Stop() error {
	f.calls++
	return f.err
}

func send(t *testing.T, m tui.Monitor, msg tea.Msg) (tui.Monitor, tea.Cmd) {
	t.Helper()
	model, cmd := m.Update(msg)
	updated, ok := model.(tui.Monitor)
	require.True(t, ok)
	return updated, cmd
}

func event(kind domain.EventKind, text string) tui.EventMsg {
	return tui.EventMsg{Event: domain.Event{Kind: kind, Text: text}}
}

func TestMonitor_InitialView(t *testing.T) {
	m := tui.NewMonitor(nil, []string{"Ahri_DRX Ahri", "Custom_Glow"})

	view := m.View()
	assert.Contains(t, view, "2 mod(s)")
	assert.Contains(t, view, "Ahri_DRX Ahri, Custom_Glow")
	assert.Contains(t, view, "Starting")
	assert.Contains(t, view, "q: stop and quit")
	assert.NotNil(t, m.Init())
}

func TestMonitor_TracksEvents(t *testing.T) {
	m := tui.NewMonitor(nil, nil)

	m, _ = send(t, m, event(domain.EventStatus, "Waiting for league match to start"))
	m, _ = send(t, m, event(domain.EventProgress, "Found League"))
	m, _ = send(t, m, event(domain.EventError, "overlay warning"))

	assert.Equal(t, "Waiting for league match to start", m.Status())
	assert.Equal(t, "Found League", m.Progress())
	assert.Equal(t, []string{"overlay warning"}, m.Errors())
	assert.False(t, m.Exited())

	view := m.View()
	assert.Contains(t, view, "Waiting for league match to start")
	assert.Contains(t, view, "Found League")
	assert.Contains(t, view, "overlay warning")
}

func TestMonitor_KeepsRecentErrors(t *testing.T) {
	m := tui.NewMonitor(nil, nil)
	for i := range tui.MaxErrorLines + 3 {
		m, _ = send(t, m, event(domain.EventError, fmt.Sprintf("line %d", i)))
	}

	require.Len(t, m.Errors(), tui.MaxErrorLines)
	assert.Equal(t, "line 3", m.Errors()[0])
	assert.Equal(t, fmt.Sprintf("line %d", tui.MaxErrorLines+2), m.Errors()[tui.MaxErrorLines-1])

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	assert.Empty(t, m.Errors())
}

func TestMonitor_EmptyStatusMeansExited(t *testing.T) {
	m := tui.NewMonitor(nil, nil)
	m, _ = send(t, m, event(domain.EventStatus, "Patching"))
	m, _ = send(t, m, event(domain.EventStatus, ""))

	assert.True(t, m.Exited())
	assert.Contains(t, m.View(), "Overlay exited")
}

func TestMonitor_QuitStopsOverlay(t *testing.T) {
	stopper := &fakeStopper{}
	m := tui.NewMonitor(stopper, nil)

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Stopping")

	// A second quit while stopping is ignored
	_, again := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Nil(t, again)

	msg := cmd()
	stopped, ok := msg.(tui.StoppedMsg)
	require.True(t, ok)
	assert.NoError(t, stopped.Err)
	assert.Equal(t, 1, stopper.calls)

	m, cmd = send(t, m, stopped)
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
	assert.NoError(t, m.Err())
}

func TestMonitor_StopErrorIsKept(t *testing.T) {
	stopErr := errors.New("kill failed")
	m := tui.NewMonitor(&fakeStopper{err: stopErr}, nil)

	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())

	assert.ErrorIs(t, m.Err(), stopErr)
}
