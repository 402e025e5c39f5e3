// ABOUTME: The edit command opens a project in the terminal editor
// ABOUTME: Loads the file, records its first snapshot as saved and runs the TUI

package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"eis-history/config"
	"eis-history/history"
	"eis-history/project"
	"eis-history/tui"
)

var editCmd = &cobra.Command{
	Use:   "edit <project.json>",
	Short: "Open a project in the interactive editor",
	Long: `Open a project in the interactive editor.

Every change can be undone and redone. Unsaved changes are backed up
automatically and a recovery file is kept while the editor runs.

Examples:
  eis-history edit cell-a.json
  eis-history --debug edit cell-a.json`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment(true)
	if err != nil {
		return err
	}
	defer env.close()

	p, err := openProject(env, args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	if cmd != nil && cmd.Context() != nil {
		ctx = cmd.Context()
	}

	return tui.Run(ctx, tui.Options{
		ProjectPath: args[0],
		ConfigPath:  env.configPath,
	}, tui.Dependencies{
		Project: p,
		Manager: env.manager,
		Config:  config.NewSharedConfig(env.cfg),
		Log:     env.log,
	})
}

// openProject loads a project and records its on-disk state as the saved snapshot
// A project with unsaved work from a crashed session is refused, since its first
// snapshot would overwrite the recovery file.
func openProject(env *environment, path string) (*project.Project, error) {
	p, err := project.Load(path)
	if err != nil {
		return nil, err
	}

	sources, err := leftoverSources(env.store, p.ID())
	if err != nil {
		return nil, err
	}

	if len(sources) > 0 {
		env.log.Warn().Str("project", p.ID()).Strs("sources", sources).Msg("unsaved work found")

		return nil, fmt.Errorf("%s has unsaved work from a crashed session (%s); run 'eis-history recover --restore %s --out <file>' or 'eis-history recover --discard %s' first",
			path, strings.Join(sources, ", "), p.ID(), p.ID())
	}

	if err := env.manager.Snapshot(p); err != nil {
		return nil, fmt.Errorf("failed to snapshot %s: %w", path, err)
	}

	env.manager.MarkLoaded(p)

	env.log.Info().
		Str("project", p.ID()).
		Str("path", path).
		Int("data_sets", len(p.DataSets)).
		Msg("project opened")

	return p, nil
}

// leftoverSources names the recovery and backup files that exist for id
func leftoverSources(store *history.FileStore, id string) ([]string, error) {
	var sources []string

	recoverable, err := store.ListRecoverable()
	if err != nil {
		return nil, err
	}

	if slices.Contains(recoverable, id) {
		sources = append(sources, "recovery file")
	}

	backups, err := store.ListBackups()
	if err != nil {
		return nil, err
	}

	if slices.Contains(backups, id) {
		sources = append(sources, "auto-backup")
	}

	return sources, nil
}
