// ABOUTME: Publish/subscribe bus decoupling history mutations from UI refresh logic
// ABOUTME: Typed signals, ordered handlers, startup backlog and error redirection

// Package signals provides an explicitly constructed publish/subscribe bus with typed signals.
package signals

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
)

// Errors returned by Unregister
var (
	ErrUnknownSignal   = errors.New("unknown signal")
	ErrHandlerNotFound = errors.New("handler not found")
)

// Handle identifies one registered handler
type Handle uint64

// Signal is a named event whose payload has type T
type Signal[T any] struct {
	name string
}

// New declares a signal with the given name
func New[T any](name string) Signal[T] {
	return Signal[T]{name: name}
}

// Name returns the signal name
func (s Signal[T]) Name() string {
	return s.name
}

// ErrorEvent describes a handler failure caught by the bus
type ErrorEvent struct {
	Signal string // signal whose handler failed
	Err    error
}

func (e ErrorEvent) String() string {
	return fmt.Sprintf("handler for %q failed: %v", e.Signal, e.Err)
}

// Error receives handler failures from every other signal
var Error = New[ErrorEvent]("error")

type entry struct {
	handle Handle
	fn     func(any) error
}

type queuedEvent struct {
	name    string
	payload any
}

// Bus dispatches signals to registered handlers
//
// A new bus starts in the buffering phase: emits for signals without handlers, or with
// older events still queued, are queued until FlushBacklog replays them. After that the bus is live and such emits
// are dropped.
type Bus struct {
	mu       sync.Mutex
	handlers map[string][]entry
	backlog  []queuedEvent
	queued   map[string]int // backlog events per signal
	live     bool
	flushing bool
	next     Handle
	diag     io.Writer
}

// NewBus creates a bus in the buffering phase
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]entry),
		queued:   make(map[string]int),
		diag:     os.Stderr,
	}
}

// SetDiagnostics sets where failures of error handlers are printed
func (b *Bus) SetDiagnostics(w io.Writer) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if w == nil {
		w = io.Discard
	}

	b.diag = w
}

// Register appends handler to the handlers of sig and returns its handle
func Register[T any](b *Bus, sig Signal[T], handler func(T) error) Handle {
	wrapped := func(payload any) error {
		v, ok := payload.(T)
		if !ok {
			return fmt.Errorf("signal %q: unexpected payload type %T", sig.name, payload)
		}

		return handler(v)
	}

	return b.register(sig.name, wrapped)
}

// Emit delivers payload to every handler of sig in registration order
func Emit[T any](b *Bus, sig Signal[T], payload T) {
	b.emit(sig.name, payload)
}

func (b *Bus) register(name string, fn func(any) error) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	b.handlers[name] = append(b.handlers[name], entry{handle: b.next, fn: fn})

	return b.next
}

// Unregister removes the handler identified by handle from the named signal
func (b *Bus) Unregister(name string, handle Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, ok := b.handlers[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSignal, name)
	}

	i := slices.IndexFunc(entries, func(e entry) bool { return e.handle == handle })
	if i < 0 {
		return fmt.Errorf("%w: %s handle %d", ErrHandlerNotFound, name, handle)
	}

	b.handlers[name] = slices.Delete(slices.Clone(entries), i, i+1)

	return nil
}

// Handlers returns the number of handlers registered for the named signal
func (b *Bus) Handlers(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.handlers[name])
}

// Live reports whether the backlog has been flushed
func (b *Bus) Live() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.live
}

// Pending returns the number of queued events
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.backlog)
}

// FlushBacklog switches the bus to the live phase and replays queued events in order
// Only the first call has any effect. Events emitted while the replay runs keep their
// place behind the queued events of the same signal.
func (b *Bus) FlushBacklog() {
	b.mu.Lock()
	if b.live || b.flushing {
		b.mu.Unlock()
		return
	}

	b.flushing = true

	for len(b.backlog) > 0 {
		ev := b.backlog[0]
		b.backlog = b.backlog[1:]
		b.queued[ev.name]--
		entries := slices.Clone(b.handlers[ev.name])
		b.mu.Unlock()

		b.dispatch(ev.name, entries, ev.payload)

		b.mu.Lock()
	}

	b.backlog = nil
	b.queued = nil
	b.flushing = false
	b.live = true
	b.mu.Unlock()
}

func (b *Bus) emit(name string, payload any) {
	b.mu.Lock()

	entries := b.handlers[name]

	// Before going live, an event waits behind older queued events of its signal
	if !b.live && (len(entries) == 0 || b.queued[name] > 0) {
		b.backlog = append(b.backlog, queuedEvent{name: name, payload: payload})
		b.queued[name]++
		b.mu.Unlock()

		return
	}

	if len(entries) == 0 {
		b.mu.Unlock()
		return
	}

	// Handlers run unlocked so they can register or emit themselves
	entries = slices.Clone(entries)
	b.mu.Unlock()

	b.dispatch(name, entries, payload)
}

func (b *Bus) dispatch(name string, entries []entry, payload any) {
	for _, e := range entries {
		if err := invoke(e.fn, payload); err != nil {
			b.fail(name, err)
		}
	}
}

// fail redirects a handler failure to the Error signal
// Failures of Error handlers are printed only, otherwise they would recurse.
func (b *Bus) fail(name string, err error) {
	if name == Error.name {
		b.mu.Lock()
		w := b.diag
		b.mu.Unlock()

		fmt.Fprintf(w, "signals: error handler failed: %v\n", err)

		return
	}

	b.emit(Error.name, ErrorEvent{Signal: name, Err: err})
}

// invoke calls fn and converts a panic into an error
func invoke(fn func(any) error, payload any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return fn(payload)
}
