// ABOUTME: Event handling and state updates for the TUI
// ABOUTME: Implements the Bubble Tea Update() function and message handlers

package tui

import (
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model
//
//nolint:ireturn // Bubble Tea framework requires returning tea.Model interface
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("update panic")
			panic(r) // Re-panic so Bubble Tea can handle it
		}
	}()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		m.viewport.Width = max(minViewportWidth, dataSetPanelWidth-panelPadding)
		m.viewport.Height = max(minViewportHeight, msg.Height-totalUIChrome)
		m.viewport.YOffset = 0

		m.refresh()

		return m, nil

	case noticeMsg:
		if msg.err {
			m.setErrorMsg(msg.text)
		} else {
			m.setStatusMsg(msg.text)
		}

		return m, waitForEvent(m.events)

	case configChangedMsg:
		m.dispatcher.SetKeys(NewKeyMap(msg.cfg))

		if err := m.manager.SetOptions(msg.cfg.HistoryOptions()); err != nil {
			m.setErrorMsg("Config not applied: " + err.Error())
			return m, nil
		}

		m.refresh()
		m.setStatusMsg("Config reloaded")

		return m, nil

	case tea.KeyMsg:
		cmd, ok := m.dispatcher.Dispatch(msg)
		if !ok {
			return m, nil
		}

		if !m.quitting {
			if action, _ := m.dispatcher.Keys().Action(msg); action != "quit" {
				m.confirmQuit = false
			}
		}

		return m, cmd
	}

	return m, nil
}
