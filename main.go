// ABOUTME: Entry point for eis-history
// ABOUTME: Root cobra command, global flags and exit code handling

// Package main provides the eis-history command, an editor for EIS projects
// with undo/redo, auto-backup and crash recovery.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	debugMode bool
)

var rootCmd = &cobra.Command{
	Use:   "eis-history",
	Short: "Edit EIS projects with undo/redo, auto-backup and crash recovery",
	Long: `eis-history edits impedance spectroscopy projects in the terminal.

Every edit is kept as a snapshot so it can be undone and redone. Unsaved
work is written to auto-backup files at a configurable cadence and to a
recovery file after every step, so a crashed session can be restored.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./eis-history.toml or $HOME/.config/eis-history/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging to "+debugLogName)
}

func main() {
	os.Exit(run())
}

func run() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		return 1
	}

	return 0
}
