package cli

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mnemo-srs/mnemo/internal/config"
	"github.com/mnemo-srs/mnemo/internal/history"
	"github.com/mnemo-srs/mnemo/internal/review"
	"github.com/mnemo-srs/mnemo/internal/vault"
)

// session wires a command invocation to the vault, the history store, and a
// synced review pass. Every subcommand except history opens one.
type session struct {
	settings config.Settings
	vault    *vault.Vault
	history  *history.Store
	pass     *review.Pass
}

// openSession loads settings, opens the stores, and runs a sync pass.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	settings, err := loadSettings(opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}

	logger := newLogger(opts, cmd)

	v, err := vault.New(settings.Vault, settings.IndexPath())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open vault", err)
	}
	if err := v.RebuildIndex(); err != nil {
		v.Close()
		return nil, WrapExitError(ExitCommandError, "index vault", err)
	}

	hist, err := history.Open(settings.HistoryPath(), logger)
	if err != nil {
		v.Close()
		return nil, WrapExitError(ExitCommandError, "open history", err)
	}

	pass, err := review.NewPass(v, hist, settings.SchedulerConfig(), review.Options{Logger: logger})
	if err != nil {
		hist.Close()
		v.Close()
		return nil, WrapExitError(ExitCommandError, "configure scheduler", err)
	}
	if err := pass.Sync(); err != nil {
		hist.Close()
		v.Close()
		return nil, WrapExitError(ExitCommandError, "sync vault", err)
	}

	return &session{settings: settings, vault: v, history: hist, pass: pass}, nil
}

// Close flushes the history store and releases the vault index.
func (s *session) Close() {
	s.history.Close()
	s.vault.Close()
}

// loadSettings reads the config file named by --config, falling back to
// ~/.config/mnemo/config.yaml. A missing file yields defaults.
func loadSettings(opts *RootOptions) (config.Settings, error) {
	path := opts.Config
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return config.Default(), nil
		}
		path = filepath.Join(home, ".config", "mnemo", "config.yaml")
	}
	return config.Load(path)
}

// newLogger builds the command's slog logger: debug-level text on stderr
// when --verbose is set, discarded otherwise.
func newLogger(opts *RootOptions, cmd *cobra.Command) *slog.Logger {
	if !opts.Verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// newFormatter builds the standard output formatter for a command.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
