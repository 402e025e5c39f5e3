// ABOUTME: Command dispatch layer between key presses and editor commands
// ABOUTME: Actions are registered by name and looked up through the KeyMap

package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Command runs an editor action and may return a follow-up tea.Cmd
type Command func() tea.Cmd

// Dispatcher maps action names to commands
type Dispatcher struct {
	keys     KeyMap
	commands map[string]Command
}

// NewDispatcher creates a dispatcher resolving keys through km
func NewDispatcher(km KeyMap) *Dispatcher {
	return &Dispatcher{
		keys:     km,
		commands: make(map[string]Command),
	}
}

// Handle registers the command for an action, replacing any previous one
func (d *Dispatcher) Handle(action string, cmd Command) {
	d.commands[action] = cmd
}

// SetKeys swaps the key map, e.g. after a config reload
func (d *Dispatcher) SetKeys(km KeyMap) {
	d.keys = km
}

// Keys returns the active key map
func (d *Dispatcher) Keys() KeyMap {
	return d.keys
}

// Dispatch runs the command bound to msg
// Returns false when no binding matches or the action has no command.
func (d *Dispatcher) Dispatch(msg tea.KeyMsg) (tea.Cmd, bool) {
	action, ok := d.keys.Action(msg)
	if !ok {
		return nil, false
	}

	cmd, ok := d.commands[action]
	if !ok {
		return nil, false
	}

	return cmd(), true
}
