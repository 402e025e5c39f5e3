// ABOUTME: Saved-index tracker computing the dirty flag of a project
// ABOUTME: Invalidates the save point when a new edit discards the branch holding it

package history

// Tracker remembers which snapshot index matches the last explicit save
type Tracker struct {
	saved int // -1 means never saved
}

// NewTracker creates a tracker for a project that was never saved
func NewTracker() *Tracker {
	return &Tracker{saved: -1}
}

// MarkSaved records index as the saved snapshot
func (t *Tracker) MarkSaved(index int) {
	t.saved = index
}

// Saved returns the saved snapshot index, or -1
func (t *Tracker) Saved() int {
	return t.saved
}

// Dirty reports whether the snapshot at index differs from the saved one
func (t *Tracker) Dirty(index int) bool {
	return t.saved < 0 || t.saved != index
}

// BeforePush must be called with the cursor position right before a push
// A save point after the cursor is about to be truncated away.
func (t *Tracker) BeforePush(cursor int) {
	if cursor < t.saved {
		t.saved = -1
	}
}

// Shift moves the save point down after snapshots were dropped from the front
func (t *Tracker) Shift(n int) {
	if t.saved < 0 {
		return
	}

	t.saved -= n
	if t.saved < 0 {
		t.saved = -1
	}
}

// Truncate forgets a save point that no longer fits in a stack of length snapshots
func (t *Tracker) Truncate(length int) {
	if t.saved >= length {
		t.saved = -1
	}
}
