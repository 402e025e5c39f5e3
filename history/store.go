// ABOUTME: File store for auto-backup and crash-recovery snapshot files
// ABOUTME: Writes are atomic (temp file + rename) and overwrite the previous copy

package history

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoBackup is returned when a backup or recovery file does not exist
var ErrNoBackup = errors.New("no backup")

const backupSuffix = "-auto-backup.json"

// Store persists backup and recovery copies of serialized projects
type Store interface {
	WriteBackup(projectID, data string) error
	RemoveBackup(projectID string) error
	WriteRecovery(projectID, data string) error
	RemoveRecovery(projectID string) error
}

// FileStore keeps backups as <id>-auto-backup.json and recovery snapshots as <id>.json
type FileStore struct {
	backupDir   string
	recoveryDir string
}

// NewFileStore creates a store writing into the given directories
// Directories are created on first write.
func NewFileStore(backupDir, recoveryDir string) *FileStore {
	return &FileStore{
		backupDir:   backupDir,
		recoveryDir: recoveryDir,
	}
}

// BackupPath returns the auto-backup file for a project
func (s *FileStore) BackupPath(projectID string) string {
	return filepath.Join(s.backupDir, projectID+backupSuffix)
}

// RecoveryPath returns the recovery file for a project
func (s *FileStore) RecoveryPath(projectID string) string {
	return filepath.Join(s.recoveryDir, projectID+".json")
}

// WriteBackup overwrites the project's auto-backup file
func (s *FileStore) WriteBackup(projectID, data string) error {
	if err := checkID(projectID); err != nil {
		return err
	}

	return writeAtomic(s.BackupPath(projectID), data)
}

// RemoveBackup deletes the project's auto-backup file; a missing file is not an error
func (s *FileStore) RemoveBackup(projectID string) error {
	if err := checkID(projectID); err != nil {
		return err
	}

	return removeIfExists(s.BackupPath(projectID))
}

// WriteRecovery overwrites the project's recovery file
func (s *FileStore) WriteRecovery(projectID, data string) error {
	if err := checkID(projectID); err != nil {
		return err
	}

	return writeAtomic(s.RecoveryPath(projectID), data)
}

// RemoveRecovery deletes the project's recovery file
func (s *FileStore) RemoveRecovery(projectID string) error {
	if err := checkID(projectID); err != nil {
		return err
	}

	return removeIfExists(s.RecoveryPath(projectID))
}

// LoadBackup reads the project's auto-backup file
func (s *FileStore) LoadBackup(projectID string) (string, error) {
	if err := checkID(projectID); err != nil {
		return "", err
	}

	return readFile(s.BackupPath(projectID))
}

// LoadRecovery reads the project's recovery file
func (s *FileStore) LoadRecovery(projectID string) (string, error) {
	if err := checkID(projectID); err != nil {
		return "", err
	}

	return readFile(s.RecoveryPath(projectID))
}

// ListBackups returns the ids of projects that have an auto-backup file
func (s *FileStore) ListBackups() ([]string, error) {
	return listIDs(s.backupDir, func(name string) (string, bool) {
		return strings.CutSuffix(name, backupSuffix)
	})
}

// ListRecoverable returns the ids of projects that left a recovery file behind
func (s *FileStore) ListRecoverable() ([]string, error) {
	return listIDs(s.recoveryDir, func(name string) (string, bool) {
		if strings.HasSuffix(name, backupSuffix) {
			return "", false
		}

		return strings.CutSuffix(name, ".json")
	})
}

// checkID rejects ids that would escape the store directories
func checkID(projectID string) error {
	if strings.TrimSpace(projectID) == "" {
		return errors.New("empty project id")
	}

	if strings.ContainsAny(projectID, `/\`) || strings.Contains(projectID, "..") {
		return fmt.Errorf("invalid project id %q", projectID)
	}

	return nil
}

func writeAtomic(path, data string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}

	return nil
}

func removeIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}

	return nil
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNoBackup, path)
	}

	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	return string(data), nil
}

func listIDs(dir string, match func(name string) (string, bool)) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var ids []string

	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}

		if id, ok := match(e.Name()); ok && id != "" {
			ids = append(ids, id)
		}
	}

	sort.Strings(ids)

	return ids, nil
}
