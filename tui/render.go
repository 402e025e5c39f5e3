// ABOUTME: Rendering functions for TUI components
// ABOUTME: Handles all visual formatting and display logic

package tui

import (
	"fmt"
	"strings"
	"time"
)

// renderDataSets renders the data set list with viewport scrolling
func (m *Model) renderDataSets() string {
	var s strings.Builder

	title := "Data sets"
	if m.focusedPanel == panelDataSets {
		title = "► " + title
	}

	s.WriteString(titleStyle.Render(title) + "\n\n")

	if len(m.project.DataSets) == 0 {
		s.WriteString(helpStyle.Render("No data sets. Import one with: eis-history import"))
		return s.String()
	}

	s.WriteString(m.viewport.View())

	return s.String()
}

// updateViewportContent builds and sets the viewport content
// Renders every data set and lets the viewport handle scrolling
func (m *Model) updateViewportContent() {
	var content strings.Builder

	for i, ds := range m.project.DataSets {
		line := fmt.Sprintf("%-3d %-24s %4d pts", i+1, truncate(ds.Label, 24), ds.Unmasked())

		if i == m.project.UI.Cursor {
			line = cursorStyle.Render(line)
		}

		content.WriteString(line + "\n")
	}

	m.viewport.SetContent(content.String())
}

// renderPoints renders the points and results of the active data set
func (m *Model) renderPoints() string {
	var s strings.Builder

	ds, ok := m.activeDataSet()

	title := "Points"
	if ok {
		title = "Points of " + truncate(ds.Label, 30)
	}

	if m.focusedPanel == panelPoints {
		title = "► " + title
	}

	s.WriteString(titleStyle.Render(title) + "\n\n")

	if !ok {
		return s.String()
	}

	header := fmt.Sprintf("%-4s %12s %12s %12s", "#", "f (Hz)", "Z' (ohm)", "-Z'' (ohm)")
	s.WriteString(headerStyle.Render(header) + "\n")

	results := m.project.ResultsFor(ds.ID)
	rows := max(1, m.viewport.Height-1-len(results))

	start, end := NewViewportManager(rows, m.pointPos, len(ds.Points)).Window()
	for i := start; i < end; i++ {
		pt := ds.Points[i]
		line := fmt.Sprintf("%-4d %12.4g %12.4g %12.4g", i+1, pt.Frequency, pt.Real, -pt.Imag)

		switch {
		case i == m.pointPos && m.focusedPanel == panelPoints:
			line = cursorStyle.Render(line)
		case pt.Masked:
			line = maskedStyle.Render(line)
		}

		s.WriteString(line + "\n")
	}

	for _, r := range results {
		label := r.Label
		if label == "" {
			label = string(r.Kind)
		}

		s.WriteString(helpStyle.Render(fmt.Sprintf("  [%s] %s", r.Kind, truncate(label, 40))) + "\n")
	}

	return s.String()
}

// renderStatus renders the status bar
func (m *Model) renderStatus() string {
	if m.statusMsg != "" && time.Since(m.statusMsgAge) < statusMessageDuration {
		if m.statusErr {
			return errorStatusStyle.Width(m.width).Render(m.statusMsg)
		}

		return statusStyle.Width(m.width).Render(m.statusMsg)
	}

	dirtyFlag := ""
	if m.status.Dirty {
		dirtyFlag = "[+] "
	}

	status := fmt.Sprintf("%s%s | %d data sets | Step %d/%d | U:%d R:%d",
		dirtyFlag,
		truncate(m.project.Label, 30),
		len(m.project.DataSets),
		m.status.Index+1,
		m.status.Len,
		m.status.Index,
		m.status.Len-m.status.Index-1,
	)

	return statusStyle.Width(m.width).Render(status)
}

// renderHelp renders the help text
func (m *Model) renderHelp() string {
	return helpStyle.Render(m.dispatcher.Keys().Help())
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return s[:maxLen]
	}

	return s[:maxLen-3] + "..."
}
