// ABOUTME: Key bindings built from the [keys] config section
// ABOUTME: Maps key presses to editor action names using bubbles/key

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"eis-history/config"
)

// Action descriptions shown in the help line
var actionHelp = map[string]string{
	"up":        "up",
	"down":      "down",
	"delete":    "delete",
	"duplicate": "duplicate",
	"move-up":   "move up",
	"move-down": "move down",
	"mask":      "mask point",
	"focus":     "switch panel",
	"undo":      "undo",
	"redo":      "redo",
	"save":      "save",
	"quit":      "quit",
}

// KeyMap holds one binding per action, in config.Actions order
type KeyMap struct {
	order    []string
	bindings map[string]key.Binding
}

// NewKeyMap builds bindings from the config, falling back to default keys per action
func NewKeyMap(cfg config.Config) KeyMap {
	km := KeyMap{
		order:    append([]string{}, config.Actions...),
		bindings: make(map[string]key.Binding, len(config.Actions)),
	}

	for _, action := range config.Actions {
		keys := cfg.Bindings(action)
		km.bindings[action] = key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(strings.Join(keys, "/"), actionHelp[action]),
		)
	}

	return km
}

// Binding returns the binding of an action
func (km KeyMap) Binding(action string) key.Binding {
	return km.bindings[action]
}

// Action returns the first action whose binding matches msg
func (km KeyMap) Action(msg tea.KeyMsg) (string, bool) {
	for _, action := range km.order {
		if key.Matches(msg, km.bindings[action]) {
			return action, true
		}
	}

	return "", false
}

// Help renders a one-line key reference
func (km KeyMap) Help() string {
	parts := make([]string, 0, len(km.order))

	for _, action := range km.order {
		h := km.bindings[action].Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}

	return " " + strings.Join(parts, " | ")
}
