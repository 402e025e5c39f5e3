// ABOUTME: Signals published by the history manager
// ABOUTME: Lets UI code refresh status lines without polling the manager

package history

import "eis-history/signals"

// Direction of a cursor move
type Direction string

// Cursor move directions
const (
	Undo Direction = "undo"
	Redo Direction = "redo"
)

// PushEvent is published after a snapshot was pushed
type PushEvent struct {
	ProjectID string
	Index     int
	Len       int
	Dirty     bool
}

// MoveEvent is published after undo or redo restored a snapshot
type MoveEvent struct {
	ProjectID string
	Direction Direction
	Index     int
	Dirty     bool
}

// SaveEvent is published after a project was marked saved
type SaveEvent struct {
	ProjectID string
	Index     int
}

// WriteEvent reports the outcome of a backup or recovery write
type WriteEvent struct {
	ProjectID string
	Kind      string // "backup" or "recovery"
	Index     int
	Err       error
}

// ClosedEvent is published after a project's history was destroyed
type ClosedEvent struct {
	ProjectID string
}

// RestoreEvent reports a snapshot that could not be loaded back into a project
type RestoreEvent struct {
	ProjectID string
	Direction Direction
	Err       error
}

// History signals
var (
	SnapshotPushed = signals.New[PushEvent]("history.snapshot-pushed")
	HistoryMoved   = signals.New[MoveEvent]("history.moved")
	ProjectSaved   = signals.New[SaveEvent]("history.saved")
	ProjectClosed  = signals.New[ClosedEvent]("history.closed")
	BackupWritten  = signals.New[WriteEvent]("history.backup-written")
	BackupFailed   = signals.New[WriteEvent]("history.backup-failed")
	RecoveryFailed = signals.New[WriteEvent]("history.recovery-failed")
	RestoreFailed  = signals.New[RestoreEvent]("history.restore-failed")
)
