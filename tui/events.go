// ABOUTME: Bridges history signals from the bus into Bubble Tea messages
// ABOUTME: Handlers never block; a full queue drops the notice

package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"eis-history/config"
	"eis-history/history"
	"eis-history/signals"
)

// noticeMsg is a history notification for the status line
type noticeMsg struct {
	text string
	err  bool
}

// configChangedMsg carries a hot-reloaded config
type configChangedMsg struct {
	cfg config.Config
}

type subscription struct {
	name   string
	handle signals.Handle
}

// subscribe registers bus handlers that forward history notices to events
func subscribe(bus *signals.Bus, events chan<- tea.Msg) []subscription {
	send := func(msg tea.Msg) {
		select {
		case events <- msg:
		default:
		}
	}

	return []subscription{
		{
			name: history.BackupWritten.Name(),
			handle: signals.Register(bus, history.BackupWritten, func(ev history.WriteEvent) error {
				send(noticeMsg{text: fmt.Sprintf("Auto-backup written at step %d", ev.Index)})
				return nil
			}),
		},
		{
			name: history.BackupFailed.Name(),
			handle: signals.Register(bus, history.BackupFailed, func(ev history.WriteEvent) error {
				send(noticeMsg{text: "Auto-backup failed: " + errText(ev.Err), err: true})
				return nil
			}),
		},
		{
			name: history.RecoveryFailed.Name(),
			handle: signals.Register(bus, history.RecoveryFailed, func(ev history.WriteEvent) error {
				send(noticeMsg{text: "Recovery file not written: " + errText(ev.Err), err: true})
				return nil
			}),
		},
		{
			name: history.RestoreFailed.Name(),
			handle: signals.Register(bus, history.RestoreFailed, func(ev history.RestoreEvent) error {
				send(noticeMsg{text: fmt.Sprintf("Could not %s: %s", ev.Direction, errText(ev.Err)), err: true})
				return nil
			}),
		},
	}
}

// unsubscribe removes the handlers added by subscribe
func unsubscribe(bus *signals.Bus, subs []subscription) {
	for _, s := range subs {
		_ = bus.Unregister(s.name, s.handle)
	}
}

// waitForEvent returns a command that waits for the next bus notice
func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}

		return msg
	}
}

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}

	return err.Error()
}
