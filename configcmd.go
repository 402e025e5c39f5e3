// ABOUTME: The config command writes, prints and checks the TOML config file
// ABOUTME: Reports validation errors and keys bound to more than one action

package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"eis-history/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file",
	Long: `Write the default config file to the --config path or the default location.

Examples:
  eis-history config init
  eis-history --config ./eis-history.toml config init --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the config file and report key conflicts",
	Args:  cobra.NoArgs,
	RunE:  runConfigCheck,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configCheckCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}

	return config.GetConfigPath()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath()

	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.SaveConfig(path, config.DefaultConfig()); err != nil {
		return err
	}

	fmt.Fprintf(out(cmd), "Wrote default config to %s\n", path)

	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path := configPath()

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(out(cmd), "# %s\n", path)

	return toml.NewEncoder(out(cmd)).Encode(cfg)
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	path := configPath()

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}

	dups := cfg.Duplicates()
	if len(dups) == 0 {
		fmt.Fprintf(out(cmd), "%s is valid\n", path)
		return nil
	}

	keys := make([]string, 0, len(dups))
	for k := range dups {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	for _, k := range keys {
		fmt.Fprintf(out(cmd), "key %q is bound to more than one action: %s\n", k, strings.Join(dups[k], ", "))
	}

	return nil
}
