// ABOUTME: Snapshot stack holding serialized project states with a cursor
// ABOUTME: Push truncates the redo tail; step back/forward move the cursor by one

// Package history implements undo/redo, dirty tracking, auto-backup and crash recovery for projects.
package history

// Stack holds the serialized snapshots of one project
// The cursor marks the snapshot the user currently sees.
type Stack struct {
	snapshots []string
	index     int // -1 while empty
	maxSize   int // 0 means unbounded
	dropped   int // snapshots discarded from the front by maxSize
}

// NewStack creates an empty stack; maxSize 0 keeps every snapshot
func NewStack(maxSize int) *Stack {
	if maxSize < 0 {
		maxSize = 0
	}

	return &Stack{
		snapshots: []string{},
		index:     -1,
		maxSize:   maxSize,
	}
}

// Push appends a snapshot after the cursor and moves the cursor to it
// Everything after the cursor is discarded first (you can't redo after a new edit).
// Returns true when the oldest snapshot was dropped to respect maxSize.
func (s *Stack) Push(state string) bool {
	s.snapshots = append(s.snapshots[:s.index+1], state)
	s.index = len(s.snapshots) - 1

	if s.maxSize > 0 && len(s.snapshots) > s.maxSize {
		s.snapshots = s.snapshots[1:]
		s.index--
		s.dropped++

		return true
	}

	return false
}

// Resize changes maxSize and drops the snapshots that no longer fit
// The oldest snapshots go first, but never the one under the cursor; the rest comes
// off the redo tail. Returns the number dropped from the front.
func (s *Stack) Resize(maxSize int) int {
	if maxSize < 0 {
		maxSize = 0
	}

	s.maxSize = maxSize

	if maxSize == 0 || len(s.snapshots) <= maxSize {
		return 0
	}

	n := min(len(s.snapshots)-maxSize, s.index)

	s.snapshots = s.snapshots[n:]
	s.index -= n
	s.dropped += n

	if len(s.snapshots) > maxSize {
		s.snapshots = s.snapshots[:maxSize]
	}

	return n
}

// StepBack moves the cursor one snapshot back and returns it
// Returns false and leaves the cursor alone when already at the oldest snapshot.
func (s *Stack) StepBack() (string, bool) {
	if s.index <= 0 {
		return "", false
	}

	s.index--

	return s.snapshots[s.index], true
}

// StepForward moves the cursor one snapshot forward and returns it
func (s *Stack) StepForward() (string, bool) {
	if s.index < 0 || s.index >= len(s.snapshots)-1 {
		return "", false
	}

	s.index++

	return s.snapshots[s.index], true
}

// Current returns the snapshot under the cursor
func (s *Stack) Current() (string, bool) {
	if s.index < 0 {
		return "", false
	}

	return s.snapshots[s.index], true
}

// Index returns the cursor position, or -1 for an empty stack
func (s *Stack) Index() int {
	return s.index
}

// Len returns the number of stored snapshots
func (s *Stack) Len() int {
	return len(s.snapshots)
}

// Dropped returns how many snapshots were discarded from the front
func (s *Stack) Dropped() int {
	return s.dropped
}

// Position returns the cursor position counted from the first snapshot ever pushed
func (s *Stack) Position() int {
	return s.dropped + s.index
}

// UndoSize returns the number of snapshots before the cursor
func (s *Stack) UndoSize() int {
	if s.index < 0 {
		return 0
	}

	return s.index
}

// RedoSize returns the number of snapshots after the cursor
func (s *Stack) RedoSize() int {
	return len(s.snapshots) - s.index - 1
}
