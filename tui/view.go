// ABOUTME: Top-level View() for the editor
// ABOUTME: Lays out the data set list, the points panel, status bar and help line

package tui

import (
	"runtime/debug"

	"github.com/charmbracelet/lipgloss"
)

// View renders the TUI
func (m *Model) View() string {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("view panic")
			panic(r) // Re-panic so Bubble Tea can handle it
		}
	}()

	if m.quitting {
		return "Closing project...\n"
	}

	panelHeight := m.height - (statusBarHeight + helpHeight + 1)

	leftPanelStyle := lipgloss.NewStyle().
		Width(dataSetPanelWidth).
		Height(panelHeight).
		Padding(0, 1)

	rightPanelWidth := max(minViewportWidth*2, m.width-dataSetPanelWidth-panelPadding)

	rightPanelStyle := lipgloss.NewStyle().
		Width(rightPanelWidth).
		Height(panelHeight).
		Padding(0, 1)

	combined := lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftPanelStyle.Render(m.renderDataSets()),
		rightPanelStyle.Render(m.renderPoints()),
	)

	return combined + "\n" + m.renderStatus() + "\n" + m.renderHelp()
}
