// ABOUTME: The new and import commands create projects and add CSV data to them
// ABOUTME: Both save through the project package's atomic writer

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"eis-history/project"
)

var (
	newForce    bool
	importLabel string
)

var newCmd = &cobra.Command{
	Use:   "new <label> <project.json>",
	Short: "Create an empty project",
	Long: `Create an empty project file.

Examples:
  eis-history new "Cell A" cell-a.json
  eis-history new "Cell A" cell-a.json --force`,
	Args: cobra.ExactArgs(2),
	RunE: runNew,
}

var importCmd = &cobra.Command{
	Use:   "import <project.json> <data.csv>",
	Short: "Add a CSV impedance spectrum to a project",
	Long: `Add a CSV impedance spectrum to a project as a new data set.

Each row holds frequency, real and imaginary impedance. Lines starting
with # are comments and a non-numeric first row is treated as a header.

Examples:
  eis-history import cell-a.json sweep-01.csv
  eis-history import cell-a.json sweep-01.csv --label "25 °C"`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(importCmd)

	newCmd.Flags().BoolVar(&newForce, "force", false, "Overwrite an existing file")
	importCmd.Flags().StringVar(&importLabel, "label", "", "Data set label (default: CSV file name)")
}

func runNew(cmd *cobra.Command, args []string) error {
	label, path := args[0], args[1]

	if _, err := os.Stat(path); err == nil && !newForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	p := project.New(label)
	if err := p.Save(path); err != nil {
		return err
	}

	fmt.Fprintf(out(cmd), "Created project %q (%s) in %s\n", label, p.ID(), path)

	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	path, csvPath := args[0], args[1]

	env, err := newEnvironment(false)
	if err != nil {
		return err
	}
	defer env.close()

	p, err := openProject(env, path)
	if err != nil {
		return err
	}
	defer env.manager.Close(p)

	ds, err := project.ImportCSV(csvPath, importLabel)
	if err != nil {
		return err
	}

	ds = p.AddDataSet(ds)

	if err := env.manager.Snapshot(p); err != nil {
		return err
	}

	if err := p.Save(path); err != nil {
		return err
	}

	env.manager.MarkSaved(p)

	env.log.Info().Str("data_set", ds.ID).Int("points", len(ds.Points)).Msg("data set imported")
	fmt.Fprintf(out(cmd), "Imported %d points from %s as %q\n", len(ds.Points), csvPath, ds.Label)

	return nil
}
