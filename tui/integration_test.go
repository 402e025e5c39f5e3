// ABOUTME: Integration tests for the editor against real backup and recovery files
// ABOUTME: Drives key presses and checks what lands on disk

package tui

import (
	"errors"
	"os"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"eis-history/config"
	"eis-history/history"
	"eis-history/project"
)

func TestEditorWritesBackupAndRecovery(t *testing.T) {
	dir := t.TempDir()
	store := history.NewFileStore(dir+"/backups", dir+"/recovery")

	p := createTestProject(4)
	m := createTestModel(t, p, history.Options{AutoBackupInterval: 2, Recovery: true}, store, config.DefaultConfig())

	press(m, "x") // step 1
	press(m, "x") // step 2 -> backup

	backup, err := store.LoadBackup(p.ID())
	if err != nil {
		t.Fatalf("expected an auto-backup at step 2: %v", err)
	}

	restored, err := project.FromJSON(backup)
	if err != nil {
		t.Fatalf("backup is not a project document: %v", err)
	}

	if len(restored.DataSets) != 2 {
		t.Errorf("backup holds %d data sets, want 2", len(restored.DataSets))
	}

	ids, err := store.ListRecoverable()
	if err != nil || len(ids) != 1 || ids[0] != p.ID() {
		t.Errorf("ListRecoverable = %v, %v", ids, err)
	}

	press(m, "s")

	if _, err := store.LoadBackup(p.ID()); !errors.Is(err, history.ErrNoBackup) {
		t.Errorf("save should remove the auto-backup, got %v", err)
	}

	m.close()

	if _, err := os.Stat(store.RecoveryPath(p.ID())); !os.IsNotExist(err) {
		t.Error("closing the editor should remove the recovery file")
	}
}

func TestEditorIgnoresUnboundKeys(t *testing.T) {
	p := createTestProject(2)
	m := createTestModel(t, p, history.Options{}, nil, config.DefaultConfig())

	before := m.status

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	if cmd != nil {
		t.Error("unbound key should not produce a command")
	}

	if m.status != before {
		t.Error("unbound key should not change history")
	}
}
