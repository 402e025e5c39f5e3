// ABOUTME: History manager exposing snapshot/undo/redo/dirty/save per project
// ABOUTME: Drives auto-backup and recovery writes without ever failing a push on I/O

package history

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"eis-history/pool"
	"eis-history/signals"
)

// deferredQueueSize bounds the number of queued backup writes before Snapshot blocks
const deferredQueueSize = 64

// ErrInvalidOptions wraps option validation failures
var ErrInvalidOptions = errors.New("invalid history options")

// Project is the state the manager snapshots
// Serialize with session=true also includes UI-only fields.
type Project interface {
	ID() string
	Serialize(session bool) (string, error)
	Deserialize(data string) error
}

// Options configures a Manager
type Options struct {
	AutoBackupInterval int  // back up every N snapshots; 0 disables
	MaxSnapshots       int  // snapshots kept per project; 0 keeps all
	Recovery           bool // write a session recovery file after every change
	Deferred           bool // run backup and recovery writes on a background worker
}

// Validate rejects negative intervals and capacities
func (o Options) Validate() error {
	if o.AutoBackupInterval < 0 {
		return fmt.Errorf("%w: auto-backup interval %d is negative", ErrInvalidOptions, o.AutoBackupInterval)
	}

	if o.MaxSnapshots < 0 {
		return fmt.Errorf("%w: max snapshots %d is negative", ErrInvalidOptions, o.MaxSnapshots)
	}

	return nil
}

// Status summarizes a project's history for display
type Status struct {
	Index   int
	Len     int
	Saved   int
	Dirty   bool
	CanUndo bool
	CanRedo bool
}

type record struct {
	stack   *Stack
	tracker *Tracker
}

// Manager owns the snapshot stacks and saved-index trackers of open projects
type Manager struct {
	mu      sync.Mutex
	opts    Options
	store   Store
	bus     *signals.Bus
	log     zerolog.Logger
	records map[string]*record
	writer  *pool.WorkerPool // nil unless Options.Deferred
}

// NewManager creates a manager
// A nil store disables backup and recovery files; a nil bus gets a private live bus.
func NewManager(opts Options, store Store, bus *signals.Bus, log zerolog.Logger) (*Manager, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if store == nil {
		store = nopStore{}
	}

	if bus == nil {
		bus = signals.NewBus()
		bus.FlushBacklog()
	}

	m := &Manager{
		opts:    opts,
		store:   store,
		bus:     bus,
		log:     log.With().Str("component", "history").Logger(),
		records: make(map[string]*record),
	}

	if opts.Deferred {
		m.writer = pool.NewWorkerPool(1, deferredQueueSize)
	}

	return m, nil
}

// Bus returns the bus the manager publishes on
func (m *Manager) Bus() *signals.Bus {
	return m.bus
}

// Options returns the active options
func (m *Manager) Options() Options {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.opts
}

// SetOptions validates and applies new options
// A smaller MaxSnapshots trims existing stacks right away.
func (m *Manager) SetOptions(opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	m.mu.Lock()

	m.opts = opts

	for _, rec := range m.records {
		if n := rec.stack.Resize(opts.MaxSnapshots); n > 0 {
			rec.tracker.Shift(n)
		}

		rec.tracker.Truncate(rec.stack.Len())
	}

	var retired *pool.WorkerPool

	switch {
	case opts.Deferred && m.writer == nil:
		m.writer = pool.NewWorkerPool(1, deferredQueueSize)
	case !opts.Deferred && m.writer != nil:
		retired = m.writer
		m.writer = nil
	}

	m.mu.Unlock()

	if retired != nil {
		retired.Close()
	}

	m.log.Debug().
		Int("auto_backup_interval", opts.AutoBackupInterval).
		Int("max_snapshots", opts.MaxSnapshots).
		Bool("recovery", opts.Recovery).
		Bool("deferred", opts.Deferred).
		Msg("options updated")

	return nil
}

// Snapshot serializes p and pushes it onto its history
// The first snapshot creates the project's history. Only serialization errors are returned.
func (m *Manager) Snapshot(p Project) error {
	id := p.ID()

	state, err := p.Serialize(false)
	if err != nil {
		return fmt.Errorf("failed to serialize project %s: %w", id, err)
	}

	opts := m.Options()

	m.mu.Lock()

	rec, ok := m.records[id]
	if !ok {
		rec = &record{stack: NewStack(opts.MaxSnapshots), tracker: NewTracker()}
		m.records[id] = rec
	}

	rec.tracker.BeforePush(rec.stack.Index())

	if rec.stack.Push(state) {
		rec.tracker.Shift(1)
	}

	ev := PushEvent{
		ProjectID: id,
		Index:     rec.stack.Index(),
		Len:       rec.stack.Len(),
		Dirty:     rec.tracker.Dirty(rec.stack.Index()),
	}
	position := rec.stack.Position()

	m.mu.Unlock()

	m.log.Debug().Str("project", id).Int("index", ev.Index).Int("len", ev.Len).Msg("snapshot pushed")

	if shouldBackup(opts.AutoBackupInterval, position) {
		m.writeBackup(id, position, state)
	}

	if opts.Recovery {
		m.writeRecovery(p, position)
	}

	signals.Emit(m.bus, SnapshotPushed, ev)

	return nil
}

// Undo restores the previous snapshot into p
// Returns false at the start of the history.
func (m *Manager) Undo(p Project) bool {
	return m.move(p, Undo)
}

// Redo restores the next snapshot into p
// Returns false at the end of the history.
func (m *Manager) Redo(p Project) bool {
	return m.move(p, Redo)
}

func (m *Manager) move(p Project, dir Direction) bool {
	id := p.ID()
	rec := m.mustRecord(id)

	m.mu.Lock()

	var (
		state string
		ok    bool
	)

	if dir == Undo {
		state, ok = rec.stack.StepBack()
	} else {
		state, ok = rec.stack.StepForward()
	}

	m.mu.Unlock()

	if !ok {
		return false
	}

	if err := p.Deserialize(state); err != nil {
		m.mu.Lock()
		if dir == Undo {
			rec.stack.StepForward()
		} else {
			rec.stack.StepBack()
		}
		m.mu.Unlock()

		m.log.Error().Err(err).Str("project", id).Str("direction", string(dir)).Msg("failed to restore snapshot")
		signals.Emit(m.bus, RestoreFailed, RestoreEvent{ProjectID: id, Direction: dir, Err: err})

		return false
	}

	m.mu.Lock()
	ev := MoveEvent{
		ProjectID: id,
		Direction: dir,
		Index:     rec.stack.Index(),
		Dirty:     rec.tracker.Dirty(rec.stack.Index()),
	}
	position := rec.stack.Position()
	recovery := m.opts.Recovery
	m.mu.Unlock()

	if recovery {
		m.writeRecovery(p, position)
	}

	signals.Emit(m.bus, HistoryMoved, ev)

	return true
}

// IsDirty reports whether p has changes since its last save
func (m *Manager) IsDirty(p Project) bool {
	rec := m.mustRecord(p.ID())

	m.mu.Lock()
	defer m.mu.Unlock()

	return rec.tracker.Dirty(rec.stack.Index())
}

// MarkSaved records the current snapshot as saved and removes the auto-backup file
func (m *Manager) MarkSaved(p Project) {
	id := p.ID()
	rec := m.mustRecord(id)

	m.mu.Lock()
	rec.tracker.MarkSaved(rec.stack.Index())
	index := rec.stack.Index()
	m.mu.Unlock()

	m.schedule(func() {
		if err := m.store.RemoveBackup(id); err != nil {
			m.log.Error().Err(err).Str("project", id).Msg("failed to remove auto-backup")
			signals.Emit(m.bus, BackupFailed, WriteEvent{ProjectID: id, Kind: "backup", Index: index, Err: err})
		}
	})

	m.log.Debug().Str("project", id).Int("index", index).Msg("project saved")
	signals.Emit(m.bus, ProjectSaved, SaveEvent{ProjectID: id, Index: index})
}

// MarkLoaded records the current snapshot as the state already on disk
// Unlike MarkSaved it leaves the auto-backup file alone and publishes nothing.
func (m *Manager) MarkLoaded(p Project) {
	rec := m.mustRecord(p.ID())

	m.mu.Lock()
	rec.tracker.MarkSaved(rec.stack.Index())
	m.mu.Unlock()
}

// Close destroys the history of p and removes its recovery file
func (m *Manager) Close(p Project) {
	id := p.ID()
	m.mustRecord(id)

	m.mu.Lock()
	delete(m.records, id)
	m.mu.Unlock()

	m.schedule(func() {
		if err := m.store.RemoveRecovery(id); err != nil {
			m.log.Error().Err(err).Str("project", id).Msg("failed to remove recovery file")
			signals.Emit(m.bus, RecoveryFailed, WriteEvent{ProjectID: id, Kind: "recovery", Err: err})
		}
	})

	m.log.Debug().Str("project", id).Msg("history closed")
	signals.Emit(m.bus, ProjectClosed, ClosedEvent{ProjectID: id})
}

// Status returns the history summary of p
func (m *Manager) Status(p Project) Status {
	rec := m.mustRecord(p.ID())

	m.mu.Lock()
	defer m.mu.Unlock()

	return Status{
		Index:   rec.stack.Index(),
		Len:     rec.stack.Len(),
		Saved:   rec.tracker.Saved(),
		Dirty:   rec.tracker.Dirty(rec.stack.Index()),
		CanUndo: rec.stack.UndoSize() > 0,
		CanRedo: rec.stack.RedoSize() > 0,
	}
}

// Tracked reports whether a history exists for the project id
func (m *Manager) Tracked(projectID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.records[projectID]

	return ok
}

// Projects returns the ids of all tracked projects
func (m *Manager) Projects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// Flush waits for queued backup and recovery writes
func (m *Manager) Flush() {
	m.mu.Lock()
	w := m.writer
	m.mu.Unlock()

	if w != nil {
		w.Wait()
	}
}

// Shutdown flushes pending writes and stops the background worker
func (m *Manager) Shutdown() {
	m.mu.Lock()
	w := m.writer
	m.writer = nil
	m.mu.Unlock()

	if w != nil {
		w.Close()
	}
}

// mustRecord returns the history of a project and panics when there is none
// A missing history means the caller skipped Snapshot or used a closed project.
func (m *Manager) mustRecord(projectID string) *record {
	m.mu.Lock()
	rec, ok := m.records[projectID]
	m.mu.Unlock()

	if !ok {
		panic(fmt.Sprintf("history: project %q has no snapshot history", projectID))
	}

	return rec
}

func (m *Manager) schedule(task func()) {
	m.mu.Lock()
	w := m.writer
	m.mu.Unlock()

	if w == nil {
		task()
		return
	}

	w.Submit(task)
}

func (m *Manager) writeBackup(id string, index int, state string) {
	m.schedule(func() {
		ev := WriteEvent{ProjectID: id, Kind: "backup", Index: index}

		if err := m.store.WriteBackup(id, state); err != nil {
			ev.Err = err
			m.log.Error().Err(err).Str("project", id).Int("index", index).Msg("auto-backup failed")
			signals.Emit(m.bus, BackupFailed, ev)

			return
		}

		m.log.Info().Str("project", id).Int("index", index).Msg("auto-backup written")
		signals.Emit(m.bus, BackupWritten, ev)
	})
}

// writeRecovery serializes the session state now and writes it, possibly later
func (m *Manager) writeRecovery(p Project, index int) {
	id := p.ID()

	session, err := p.Serialize(true)
	if err != nil {
		m.log.Error().Err(err).Str("project", id).Msg("failed to serialize recovery snapshot")
		signals.Emit(m.bus, RecoveryFailed, WriteEvent{ProjectID: id, Kind: "recovery", Index: index, Err: err})

		return
	}

	m.schedule(func() {
		if err := m.store.WriteRecovery(id, session); err != nil {
			m.log.Error().Err(err).Str("project", id).Msg("recovery write failed")
			signals.Emit(m.bus, RecoveryFailed, WriteEvent{ProjectID: id, Kind: "recovery", Index: index, Err: err})
		}
	})
}

// shouldBackup reports whether the snapshot at index triggers an auto-backup
func shouldBackup(interval, index int) bool {
	return interval > 0 && index > 0 && index%interval == 0
}

type nopStore struct{}

func (nopStore) WriteBackup(string, string) error   { return nil }
func (nopStore) RemoveBackup(string) error          { return nil }
func (nopStore) WriteRecovery(string, string) error { return nil }
func (nopStore) RemoveRecovery(string) error        { return nil }
