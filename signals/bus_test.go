// ABOUTME: Tests for the signal bus
// ABOUTME: Covers ordering, unregistering, backlog replay and error redirection

package signals

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

var (
	testSaved   = New[string]("saved")
	testChanged = New[int]("changed")
)

func TestBus_HandlersRunInRegistrationOrder(t *testing.T) {
	bus := NewBus()
	bus.FlushBacklog()

	var calls []string

	Register(bus, testSaved, func(s string) error {
		calls = append(calls, "first:"+s)
		return nil
	})
	Register(bus, testSaved, func(s string) error {
		calls = append(calls, "second:"+s)
		return nil
	})

	Emit(bus, testSaved, "a")

	want := []string{"first:a", "second:a"}
	if len(calls) != len(want) {
		t.Fatalf("got %d calls, want %d", len(calls), len(want))
	}

	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestBus_UnregisterRemovesExactlyOne(t *testing.T) {
	bus := NewBus()
	bus.FlushBacklog()

	count := 0
	h1 := Register(bus, testChanged, func(int) error { count++; return nil })
	Register(bus, testChanged, func(int) error { count += 10; return nil })

	if err := bus.Unregister(testChanged.Name(), h1); err != nil {
		t.Fatalf("Unregister failed: %v", err)
	}

	if bus.Handlers(testChanged.Name()) != 1 {
		t.Errorf("Handlers() = %d, want 1", bus.Handlers(testChanged.Name()))
	}

	Emit(bus, testChanged, 1)

	if count != 10 {
		t.Errorf("count = %d, want 10", count)
	}

	if err := bus.Unregister(testChanged.Name(), h1); !errors.Is(err, ErrHandlerNotFound) {
		t.Errorf("second Unregister error = %v, want ErrHandlerNotFound", err)
	}
}

func TestBus_UnregisterUnknownSignal(t *testing.T) {
	bus := NewBus()

	err := bus.Unregister("nope", Handle(1))
	if !errors.Is(err, ErrUnknownSignal) {
		t.Errorf("Unregister error = %v, want ErrUnknownSignal", err)
	}
}

func TestBus_BacklogReplayedInOrder(t *testing.T) {
	bus := NewBus()

	Emit(bus, testChanged, 1)
	Emit(bus, testSaved, "x")
	Emit(bus, testChanged, 2)

	if bus.Pending() != 3 {
		t.Fatalf("Pending() = %d, want 3", bus.Pending())
	}

	var order []string

	Register(bus, testChanged, func(n int) error {
		order = append(order, "changed")
		return nil
	})
	Register(bus, testSaved, func(s string) error {
		order = append(order, "saved:"+s)
		return nil
	})

	bus.FlushBacklog()

	want := []string{"changed", "saved:x", "changed"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}

	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}

	if !bus.Live() {
		t.Error("bus should be live after flush")
	}

	if bus.Pending() != 0 {
		t.Errorf("Pending() = %d after flush, want 0", bus.Pending())
	}
}

func TestBus_BufferingDeliversWhenHandlerExists(t *testing.T) {
	bus := NewBus()

	got := 0
	Register(bus, testChanged, func(n int) error { got = n; return nil })

	Emit(bus, testChanged, 7)

	if got != 7 {
		t.Errorf("got %d, want 7 (delivered immediately)", got)
	}

	if bus.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", bus.Pending())
	}
}

func TestBus_BufferingKeepsOrderBehindQueuedEvents(t *testing.T) {
	bus := NewBus()

	Emit(bus, testChanged, 1)

	var order []int
	Register(bus, testChanged, func(n int) error {
		order = append(order, n)
		if n == 2 {
			Emit(bus, testChanged, 3) // emitted during replay
		}
		return nil
	})

	Emit(bus, testChanged, 2)

	if len(order) != 0 {
		t.Fatalf("order = %v, want nothing delivered ahead of the queued event", order)
	}

	if bus.Pending() != 2 {
		t.Errorf("Pending() = %d, want 2", bus.Pending())
	}

	bus.FlushBacklog()

	want := []int{1, 2, 3}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}

	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %d, want %d", i, order[i], want[i])
		}
	}

	Emit(bus, testChanged, 4)

	if order[len(order)-1] != 4 || bus.Pending() != 0 {
		t.Errorf("live emit not delivered directly: order=%v pending=%d", order, bus.Pending())
	}
}

func TestBus_LiveEmitWithoutHandlersIsDropped(t *testing.T) {
	bus := NewBus()
	bus.FlushBacklog()

	Emit(bus, testSaved, "lost")

	if bus.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", bus.Pending())
	}

	got := ""
	Register(bus, testSaved, func(s string) error { got = s; return nil })
	bus.FlushBacklog()

	if got != "" {
		t.Errorf("dropped event was delivered later: %q", got)
	}
}

func TestBus_HandlerErrorBecomesErrorSignal(t *testing.T) {
	bus := NewBus()
	bus.FlushBacklog()

	var caught []ErrorEvent

	Register(bus, Error, func(ev ErrorEvent) error {
		caught = append(caught, ev)
		return nil
	})
	Register(bus, testSaved, func(string) error { return errors.New("disk full") })
	Register(bus, testSaved, func(string) error { panic("bad handler") })

	after := false
	Register(bus, testSaved, func(string) error { after = true; return nil })

	Emit(bus, testSaved, "x")

	if len(caught) != 2 {
		t.Fatalf("caught %d error events, want 2", len(caught))
	}

	if caught[0].Signal != "saved" || !strings.Contains(caught[0].Err.Error(), "disk full") {
		t.Errorf("first error event = %v", caught[0])
	}

	if !strings.Contains(caught[1].String(), "bad handler") {
		t.Errorf("second error event = %v, want panic text", caught[1])
	}

	if !after {
		t.Error("handlers after a failing one should still run")
	}
}

func TestBus_ErrorHandlerFailureIsPrinted(t *testing.T) {
	bus := NewBus()
	bus.FlushBacklog()

	var diag bytes.Buffer
	bus.SetDiagnostics(&diag)

	calls := 0
	Register(bus, Error, func(ErrorEvent) error {
		calls++
		return errors.New("error handler broke")
	})
	Register(bus, testChanged, func(int) error { return errors.New("original") })

	Emit(bus, testChanged, 1)

	if calls != 1 {
		t.Errorf("error handler ran %d times, want 1", calls)
	}

	if !strings.Contains(diag.String(), "error handler broke") {
		t.Errorf("diagnostics = %q, want the error handler failure", diag.String())
	}
}

func TestBus_HandlerMayEmit(t *testing.T) {
	bus := NewBus()
	bus.FlushBacklog()

	got := ""
	Register(bus, testSaved, func(s string) error { got = s; return nil })
	Register(bus, testChanged, func(n int) error {
		Emit(bus, testSaved, "from handler")
		return nil
	})

	Emit(bus, testChanged, 1)

	if got != "from handler" {
		t.Errorf("got %q, want nested emit to be delivered", got)
	}
}
