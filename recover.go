// ABOUTME: The recover command lists and restores projects left behind by crashed sessions
// ABOUTME: Reads recovery files first, then auto-backups, through the history file store

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"eis-history/history"
	"eis-history/project"
)

var (
	recoverRestore string
	recoverOut     string
	recoverDiscard string
)

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "List or restore unsaved work from crashed sessions",
	Long: `List or restore unsaved work from crashed sessions.

A recovery file holds the last state of a session that did not exit
cleanly. An auto-backup holds the state at the last backup step. When
both exist for a project the recovery file is restored.

Examples:
  eis-history recover
  eis-history recover --restore 0b7c... --out cell-a.json
  eis-history recover --discard 0b7c...`,
	Args: cobra.NoArgs,
	RunE: runRecover,
}

func init() {
	rootCmd.AddCommand(recoverCmd)

	recoverCmd.Flags().StringVar(&recoverRestore, "restore", "", "Project id to restore")
	recoverCmd.Flags().StringVar(&recoverOut, "out", "", "Where to write the restored project (required with --restore)")
	recoverCmd.Flags().StringVar(&recoverDiscard, "discard", "", "Project id whose backup and recovery files are deleted")
}

// candidate is a project with unsaved work on disk
type candidate struct {
	id       string
	source   string // "recovery" or "backup"
	modified time.Time
	project  *project.Project
	err      error
}

func runRecover(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment(false)
	if err != nil {
		return err
	}
	defer env.close()

	switch {
	case recoverRestore != "":
		if recoverOut == "" {
			return errors.New("--out is required with --restore")
		}

		return restoreProject(cmd, env.store, recoverRestore, recoverOut)
	case recoverDiscard != "":
		return discardProject(cmd, env.store, recoverDiscard)
	}

	candidates, err := findCandidates(env.store)
	if err != nil {
		return err
	}

	if len(candidates) == 0 {
		fmt.Fprintln(out(cmd), "Nothing to recover")
		return nil
	}

	return printCandidates(out(cmd), candidates)
}

// findCandidates collects every project with a recovery file or an auto-backup
func findCandidates(store *history.FileStore) ([]candidate, error) {
	recoverable, err := store.ListRecoverable()
	if err != nil {
		return nil, err
	}

	backups, err := store.ListBackups()
	if err != nil {
		return nil, err
	}

	var candidates []candidate

	for _, id := range recoverable {
		candidates = append(candidates, loadCandidate(id, "recovery", store.RecoveryPath(id), store.LoadRecovery))
	}

	for _, id := range backups {
		if slices.Contains(recoverable, id) {
			continue
		}

		candidates = append(candidates, loadCandidate(id, "backup", store.BackupPath(id), store.LoadBackup))
	}

	slices.SortFunc(candidates, func(a, b candidate) int {
		return b.modified.Compare(a.modified)
	})

	return candidates, nil
}

func loadCandidate(id, source, path string, load func(string) (string, error)) candidate {
	c := candidate{id: id, source: source}

	if info, err := os.Stat(path); err == nil {
		c.modified = info.ModTime()
	}

	data, err := load(id)
	if err != nil {
		c.err = err
		return c
	}

	c.project, c.err = project.FromJSON(data)

	return c
}

func printCandidates(w io.Writer, candidates []candidate) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(tw, "ID\tSource\tModified\tLabel\tData sets"); err != nil {
		return err
	}

	for _, c := range candidates {
		label, sets := "(unreadable: "+errString(c.err)+")", "-"
		if c.project != nil {
			label, sets = c.project.Label, fmt.Sprint(len(c.project.DataSets))
		}

		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			c.id, c.source, c.modified.Format(time.DateTime), label, sets); err != nil {
			return err
		}
	}

	return tw.Flush()
}

// restoreProject writes the newest unsaved state of id to path and removes the leftovers
func restoreProject(cmd *cobra.Command, store *history.FileStore, id, path string) error {
	source := "recovery"

	data, err := store.LoadRecovery(id)
	if errors.Is(err, history.ErrNoBackup) {
		source = "backup"
		data, err = store.LoadBackup(id)
	}

	if errors.Is(err, history.ErrNoBackup) {
		return fmt.Errorf("nothing to recover for %s", id)
	}

	if err != nil {
		return err
	}

	p, err := project.FromJSON(data)
	if err != nil {
		return fmt.Errorf("%s file for %s is damaged: %w", source, id, err)
	}

	if err := p.Save(path); err != nil {
		return err
	}

	fmt.Fprintf(out(cmd), "Restored %q from %s file to %s\n", p.Label, source, path)

	return discardFiles(store, id)
}

func discardProject(cmd *cobra.Command, store *history.FileStore, id string) error {
	if err := discardFiles(store, id); err != nil {
		return err
	}

	fmt.Fprintf(out(cmd), "Discarded unsaved work of %s\n", id)

	return nil
}

func discardFiles(store *history.FileStore, id string) error {
	if err := store.RemoveRecovery(id); err != nil {
		return err
	}

	return store.RemoveBackup(id)
}

func errString(err error) string {
	if err == nil {
		return "unknown"
	}

	return err.Error()
}
