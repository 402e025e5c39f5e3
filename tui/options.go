// ABOUTME: TUI mode configuration and injected dependencies
// ABOUTME: Defines input parameters for running the editor

package tui

import (
	"github.com/rs/zerolog"

	"eis-history/config"
	"eis-history/history"
	"eis-history/project"
)

// Options contains configuration for running the TUI
type Options struct {
	ProjectPath string // Project file written on save
	ConfigPath  string // Watched for live config changes; empty disables hot reload
}

// Dependencies holds all external dependencies for the TUI
type Dependencies struct {
	Project *project.Project     // must already have a snapshot in Manager
	Manager *history.Manager
	Config  *config.SharedConfig
	Log     zerolog.Logger
}
