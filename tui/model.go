// ABOUTME: Terminal UI model and core state management
// ABOUTME: Bubble Tea model editing one EIS project through the history manager

// Package tui provides an interactive terminal editor for EIS projects.
// Every edit is snapshotted by the history manager, so undo, redo, dirty
// tracking, auto-backup and crash recovery come for free.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"eis-history/config"
	"eis-history/history"
	"eis-history/project"
)

// Panel identifiers
const (
	panelDataSets = "datasets"
	panelPoints   = "points"
)

// Layout constants for UI dimensions
const (
	dataSetPanelWidth = 40 // Left panel width for the data set list
	panelPadding      = 2  // Horizontal spacing between panels

	titleHeight     = 2 // Panel title bars
	statusBarHeight = 1 // Bottom status bar
	helpHeight      = 1 // Help text line
	spacingHeight   = 2 // Vertical spacing between elements
	totalUIChrome   = titleHeight + statusBarHeight + helpHeight + spacingHeight

	minViewportWidth  = 20
	minViewportHeight = 5
)

const (
	statusMessageDuration = 5 * time.Second // How long to show transient status messages
	eventBufferSize       = 32              // history signals queued for the UI
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1)

	errorStatusStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("52")).
				Foreground(lipgloss.Color("15")).
				Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	cursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("240")).
			Foreground(lipgloss.Color("15"))

	maskedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Strikethrough(true)
)

// Model holds the editor state
type Model struct {
	// Dependencies
	manager *history.Manager
	project *project.Project
	log     zerolog.Logger

	path       string // project file written on save
	dispatcher *Dispatcher
	events     chan tea.Msg
	subs       []subscription

	// History state, refreshed after every command
	status history.Status

	// UI state
	width        int
	height       int
	quitting     bool
	confirmQuit  bool      // quit pressed once with unsaved changes
	statusMsg    string    // Temporary status message (e.g., "Project saved")
	statusErr    bool      // render statusMsg as an error
	statusMsgAge time.Time // When status message was set
	focusedPanel string
	pointPos     int            // cursor in the points table
	viewport     viewport.Model // scrolls the data set list
}

// newModel creates the editor for p; p must already have a snapshot in manager
func newModel(p *project.Project, path string, manager *history.Manager, cfg config.Config, log zerolog.Logger) *Model {
	m := &Model{
		manager:      manager,
		project:      p,
		log:          log.With().Str("component", "tui").Logger(),
		path:         path,
		events:       make(chan tea.Msg, eventBufferSize),
		viewport:     viewport.New(0, 0), // Width and height set on first WindowSizeMsg
		focusedPanel: panelDataSets,
	}

	m.dispatcher = NewDispatcher(NewKeyMap(cfg))
	m.registerCommands()
	m.subs = subscribe(manager.Bus(), m.events)
	manager.Bus().FlushBacklog() // notices from loading replay now that we listen
	m.setCursor(p.UI.Cursor)
	m.refresh()

	return m
}

func (m *Model) registerCommands() {
	d := m.dispatcher

	d.Handle("up", m.handleUp)
	d.Handle("down", m.handleDown)
	d.Handle("focus", m.handleFocus)
	d.Handle("delete", m.deleteDataSet)
	d.Handle("duplicate", m.duplicateDataSet)
	d.Handle("move-up", func() tea.Cmd { return m.moveDataSet(-1) })
	d.Handle("move-down", func() tea.Cmd { return m.moveDataSet(1) })
	d.Handle("mask", m.toggleMask)
	d.Handle("undo", m.undo)
	d.Handle("redo", m.redo)
	d.Handle("save", m.save)
	d.Handle("quit", m.quit)
}

// Run opens the editor and blocks until the user quits
// The project's history is closed on exit, which removes its recovery file.
func Run(ctx context.Context, opts Options, deps Dependencies) error {
	m := newModel(deps.Project, opts.ProjectPath, deps.Manager, deps.Config.Get(), deps.Log)
	defer m.close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if opts.ConfigPath != "" {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		go func() {
			err := deps.Config.Watch(watchCtx, opts.ConfigPath, deps.Log, func(cfg config.Config) {
				p.Send(configChangedMsg{cfg: cfg})
			})
			if err != nil {
				deps.Log.Warn().Err(err).Msg("config hot reload disabled")
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

// close detaches from the bus and destroys the project's history
func (m *Model) close() {
	unsubscribe(m.manager.Bus(), m.subs)
	m.manager.Flush()
	m.manager.Close(m.project)
}

// ========== Helper Methods ==========

// setStatusMsg sets a transient status message with current timestamp
func (m *Model) setStatusMsg(msg string) {
	m.statusMsg = msg
	m.statusErr = false
	m.statusMsgAge = time.Now()
}

// setErrorMsg sets a transient error message
func (m *Model) setErrorMsg(msg string) {
	m.setStatusMsg(msg)
	m.statusErr = true
}

// refresh re-reads the history status and rebuilds the visible content
func (m *Model) refresh() {
	m.status = m.manager.Status(m.project)

	if ds, ok := m.activeDataSet(); ok {
		m.pointPos = max(0, min(m.pointPos, len(ds.Points)-1))
	} else {
		m.pointPos = 0
	}

	m.ensureCursorVisible()
	m.updateViewportContent()
}

// activeDataSet returns the data set under the cursor
func (m *Model) activeDataSet() (project.DataSet, bool) {
	i, ok := m.project.FindDataSet(m.project.UI.ActiveDataSet)
	if !ok {
		return project.DataSet{}, false
	}

	return m.project.DataSets[i], true
}

// setCursor moves the data set cursor and records it in the project's UI state
func (m *Model) setCursor(i int) {
	if len(m.project.DataSets) == 0 {
		m.project.UI = project.UIState{}
		return
	}

	i = max(0, min(i, len(m.project.DataSets)-1))
	if i != m.project.UI.Cursor {
		m.pointPos = 0
	}

	m.project.UI.Cursor = i
	m.project.UI.ActiveDataSet = m.project.DataSets[i].ID
}

// ensureCursorVisible adjusts viewport offset to keep cursor visible with middle-of-screen scrolling
func (m *Model) ensureCursorVisible() {
	vm := NewViewportManager(m.viewport.Height, m.project.UI.Cursor, len(m.project.DataSets))
	m.viewport.SetYOffset(vm.CalculateOffset())
}

// snapshot records the current project state as a new history step
func (m *Model) snapshot(what string) {
	if err := m.manager.Snapshot(m.project); err != nil {
		m.log.Error().Err(err).Msg("snapshot failed")
		m.setErrorMsg("Snapshot failed: " + err.Error())
		m.refresh()

		return
	}

	m.refresh()
	m.setStatusMsg(fmt.Sprintf("%s (Undo: %d, Redo: %d)", what, m.status.Index, m.status.Len-m.status.Index-1))
}
