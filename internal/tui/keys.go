package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap defines keybindings for the monitor
type KeyMap struct{}

// NewKeyMap creates a new keymap
func NewKeyMap() *KeyMap {
	return &KeyMap{}
}

// IsQuit returns true if the key stops the overlay and quits
func (k *KeyMap) IsQuit(msg tea.KeyMsg) bool {
	return msg.String() == "q" || msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc
}

// IsClear returns true if the key clears the error log
func (k *KeyMap) IsClear(msg tea.KeyMsg) bool {
	return msg.String() == "c"
}

// Help returns the footer help text
func (k *KeyMap) Help() string {
	return "q: stop and quit  c: clear errors"
}
