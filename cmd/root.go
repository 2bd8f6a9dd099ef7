// Copyright © 2024 The BPLint authors

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bplint",
	Short: "bplint — linter for Polymer component templates",
	Long: `bplint statically analyzes component template documents (HTML with
Polymer-style <dom-module> components) and reports structural problems such
as missing or unused imports, duplicate component definitions and unsafe
binding syntax. Every problem is reported at an exact line and column.

Getting started:
  bplint lint x-foo.html          Lint a single component
  bplint lint src/                Lint every .html file under src
  bplint lint --format=pretty .   Show problems as annotated source
  bplint rules                    List the available rules

Configuration is read from flags, BPLINT_* environment variables (for
example BPLINT_LOG_LEVEL=debug) and a .bplint.yaml file in the working
directory or the home directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// usageError marks err as a bad invocation.
func usageError(err error) error {
	return &exitError{code: 2, err: err}
}

// exitCode returns the process exit code for an error returned by a command.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var xerr *exitError
	if errors.As(err, &xerr) {
		return xerr.code
	}
	return 2
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	var xerr *exitError
	if err != nil && (!errors.As(err, &xerr) || xerr.err != nil) {
		fmt.Fprintln(os.Stderr, "bplint:", err)
	}
	os.Exit(exitCode(err))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.bplint.yaml or $HOME/.bplint.yaml)")
	rootCmd.PersistentFlags().String("color", "auto",
		`Control colored output: "auto", "always", or "never".`)
	rootCmd.PersistentFlags().String("log-level", "warn",
		`Log level: "debug", "info", "warn", or "error".`)
	rootCmd.PersistentFlags().String("log-format", "text",
		`Log format: "text" or "json".`)
}

// newLogger creates a logger writing to w at the given level and format.
func newLogger(levelStr, formatStr string, w io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if formatStr == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
