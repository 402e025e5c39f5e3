// ABOUTME: Shared initialization code for all commands
// ABOUTME: Loads config, builds the logger, backup store, signal bus and history manager

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"eis-history/config"
	"eis-history/history"
	"eis-history/logging"
	"eis-history/signals"
)

const debugLogName = logging.DebugLogFile

// environment holds everything a command needs to work on projects
type environment struct {
	cfg        config.Config
	configPath string
	log        zerolog.Logger
	store      *history.FileStore
	bus        *signals.Bus
	manager    *history.Manager
	logCloser  io.Closer
}

// newEnvironment loads config and wires the history stack
// Interactive commands never log to the terminal unless a log file is set.
func newEnvironment(interactive bool) (*environment, error) {
	path := configPath()
	cfg, cfgErr := config.LoadConfig(path)

	logCfg := logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	}

	if debugMode {
		logCfg.Level = "debug"
		logCfg.File = debugLogName
	}

	if interactive && logCfg.File == "" {
		logCfg.Output = io.Discard
	}

	log, closer, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}

	if cfgErr != nil {
		log.Warn().Err(cfgErr).Str("path", path).Msg("using default config")
	}

	env := &environment{
		cfg:        cfg,
		configPath: path,
		log:        log,
		store:      history.NewFileStore(cfg.Paths.BackupDir, cfg.Paths.RecoveryDir),
		bus:        signals.NewBus(),
		logCloser:  closer,
	}

	env.bus.SetDiagnostics(log)
	env.watchSignals()

	// The editor flushes once its own handlers are registered
	if !interactive {
		env.bus.FlushBacklog()
	}

	env.manager, err = history.NewManager(cfg.HistoryOptions(), env.store, env.bus, log)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("failed to create history manager: %w", err)
	}

	log.Debug().
		Str("config", path).
		Int("auto_backup_interval", cfg.History.AutoBackupInterval).
		Int("max_snapshots", cfg.History.MaxSnapshots).
		Bool("recovery", cfg.Recovery.Enabled).
		Msg("environment ready")

	return env, nil
}

// watchSignals logs handler failures and history writes
func (e *environment) watchSignals() {
	signals.Register(e.bus, signals.Error, func(ev signals.ErrorEvent) error {
		e.log.Error().Err(ev.Err).Str("signal", ev.Signal).Msg("signal handler failed")
		return nil
	})

	signals.Register(e.bus, history.BackupWritten, func(ev history.WriteEvent) error {
		e.log.Debug().Str("project", ev.ProjectID).Int("index", ev.Index).Msg("auto-backup written")
		return nil
	})
}

// close flushes pending writes, stops the writer and closes the log file
func (e *environment) close() {
	e.manager.Shutdown()

	if err := e.logCloser.Close(); err != nil {
		fmt.Printf("Warning: failed to close log file: %v\n", err)
	}
}

// out returns the command's output writer
func out(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}

	return cmd.OutOrStdout()
}
