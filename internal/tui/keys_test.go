package tui_test

import (
	"testing"

	"bocchi/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestKeyMap_Quit(t *testing.T) {
	km := tui.NewKeyMap()

	assert.True(t, km.IsQuit(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}))
	assert.True(t, km.IsQuit(tea.KeyMsg{Type: tea.KeyCtrlC}))
	assert.True(t, km.IsQuit(tea.KeyMsg{Type: tea.KeyEsc}))
	assert.False(t, km.IsQuit(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}))
}

func TestKeyMap_Clear(t *testing.T) {
	km := tui.NewKeyMap()

	assert.True(t, km.IsClear(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}}))
	assert.False(t, km.IsClear(tea.KeyMsg{Type: tea.KeyEnter}))
	assert.Contains(t, km.Help(), "q: stop and quit")
}
