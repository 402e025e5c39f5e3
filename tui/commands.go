// ABOUTME: Editor commands bound to key actions
// ABOUTME: Each edit mutates the project and pushes a snapshot; undo/redo go through the manager

package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// handleUp handles the up action (context-aware navigation)
func (m *Model) handleUp() tea.Cmd {
	if m.focusedPanel == panelPoints {
		if m.pointPos > 0 {
			m.pointPos--
		}
	} else {
		m.setCursor(m.project.UI.Cursor - 1)
	}

	m.refresh()

	return nil
}

// handleDown handles the down action (context-aware navigation)
func (m *Model) handleDown() tea.Cmd {
	if m.focusedPanel == panelPoints {
		if ds, ok := m.activeDataSet(); ok && m.pointPos < len(ds.Points)-1 {
			m.pointPos++
		}
	} else {
		m.setCursor(m.project.UI.Cursor + 1)
	}

	m.refresh()

	return nil
}

// handleFocus switches between the data set list and the points table
func (m *Model) handleFocus() tea.Cmd {
	if m.focusedPanel == panelDataSets {
		m.focusedPanel = panelPoints
	} else {
		m.focusedPanel = panelDataSets
	}

	return nil
}

// deleteDataSet removes the data set at the cursor together with its results
func (m *Model) deleteDataSet() tea.Cmd {
	ds, ok := m.activeDataSet()
	if !ok {
		m.setStatusMsg("Nothing to delete")
		return nil
	}

	if err := m.project.RemoveDataSet(ds.ID); err != nil {
		m.setErrorMsg(err.Error())
		return nil
	}

	m.snapshot(fmt.Sprintf("Deleted %q", ds.Label))

	return nil
}

// duplicateDataSet copies the data set at the cursor
func (m *Model) duplicateDataSet() tea.Cmd {
	ds, ok := m.activeDataSet()
	if !ok {
		return nil
	}

	if _, err := m.project.DuplicateDataSet(ds.ID); err != nil {
		m.setErrorMsg(err.Error())
		return nil
	}

	m.snapshot(fmt.Sprintf("Duplicated %q", ds.Label))

	return nil
}

// moveDataSet shifts the data set at the cursor up (-1) or down (+1)
func (m *Model) moveDataSet(offset int) tea.Cmd {
	ds, ok := m.activeDataSet()
	if !ok {
		return nil
	}

	moved, err := m.project.MoveDataSet(ds.ID, offset)
	if err != nil {
		m.setErrorMsg(err.Error())
		return nil
	}

	if !moved {
		return nil
	}

	m.snapshot(fmt.Sprintf("Moved %q", ds.Label))

	return nil
}

// toggleMask masks or unmasks the point under the points cursor
func (m *Model) toggleMask() tea.Cmd {
	ds, ok := m.activeDataSet()
	if !ok || len(ds.Points) == 0 {
		return nil
	}

	masked, err := m.project.ToggleMask(ds.ID, m.pointPos)
	if err != nil {
		m.setErrorMsg(err.Error())
		return nil
	}

	verb := "Unmasked"
	if masked {
		verb = "Masked"
	}

	m.snapshot(fmt.Sprintf("%s point %d", verb, m.pointPos+1))

	return nil
}

// undo restores the previous snapshot
func (m *Model) undo() tea.Cmd {
	if !m.manager.Undo(m.project) {
		if !m.status.CanUndo {
			m.setStatusMsg("Nothing to undo")
		}

		m.refresh()

		return nil
	}

	m.refresh()
	m.setStatusMsg(fmt.Sprintf("Undo (Undo: %d, Redo: %d)", m.status.Index, m.status.Len-m.status.Index-1))

	return nil
}

// redo restores the next snapshot
func (m *Model) redo() tea.Cmd {
	if !m.manager.Redo(m.project) {
		if !m.status.CanRedo {
			m.setStatusMsg("Nothing to redo")
		}

		m.refresh()

		return nil
	}

	m.refresh()
	m.setStatusMsg(fmt.Sprintf("Redo (Undo: %d, Redo: %d)", m.status.Index, m.status.Len-m.status.Index-1))

	return nil
}

// save writes the project file and marks the current snapshot as saved
func (m *Model) save() tea.Cmd {
	if err := m.project.Save(m.path); err != nil {
		m.log.Error().Err(err).Str("path", m.path).Msg("save failed")
		m.setErrorMsg("Save failed: " + err.Error())

		return nil
	}

	m.manager.MarkSaved(m.project)
	m.refresh()
	m.setStatusMsg("Saved to " + m.path)
	m.log.Info().Str("path", m.path).Msg("project saved")

	return nil
}

// quit exits; with unsaved changes the first press only warns
func (m *Model) quit() tea.Cmd {
	if m.status.Dirty && !m.confirmQuit {
		m.confirmQuit = true
		m.setErrorMsg("Unsaved changes: save first or quit again to discard")

		return nil
	}

	m.quitting = true

	return tea.Quit
}
