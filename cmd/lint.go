// Copyright © 2024 The BPLint authors

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/luthersystems/bplint/docs"
	"github.com/luthersystems/bplint/lint"
	"github.com/spf13/cobra"
)

// LintCommand creates the "lint" cobra command. Embedders can pass
// WithRules to lint with their own rules and WithTracer to trace runs.
func LintCommand(opts ...Option) *cobra.Command {
	var c cmdConfig
	for _, o := range opts {
		o(&c)
	}

	cmd := &cobra.Command{
		Use:   "lint [flags] [files...]",
		Short: "Report problems in component template files",
		Long: `Report problems in component template files.

Each argument is a file, a directory, or a pattern ending in "/..."; the
latter two are searched recursively for files with one of the --ext
extensions. With no arguments a single document is read from stdin.

Exit codes:
  0  No problems found
  1  One or more problems were reported
  2  Bad invocation (invalid flags or config, unreadable files)

` + docs.DirectivesSummary + `
Available rules (use --rules to select specific ones):
` + lint.RuleDoc() + `
Examples:
  bplint lint x-foo.html                          # Lint a single file
  bplint lint src/                                # Lint every .html file under src
  bplint lint --format=json src/...               # Output findings as JSON
  bplint lint --rules=no-auto-binding x-foo.html  # Run only specific rules
  bplint lint --exclude=bower_components .        # Skip a directory
  cat x-foo.html | bplint lint                    # Lint from stdin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, args, &c)
		},
	}

	cmd.Flags().StringSlice("rules", nil,
		"Comma-separated list of rules to run (default: all).")
	cmd.Flags().StringSlice("ext", []string{".html"},
		"File extensions to lint when expanding directories.")
	cmd.Flags().StringArray("exclude", nil,
		"Glob pattern for files or directories to exclude (may be repeated).")
	cmd.Flags().StringP("format", "f", "text",
		`Output format: "text", "json", or "pretty".`)
	cmd.Flags().IntP("jobs", "j", 0,
		"Number of files to lint concurrently (default: number of CPUs).")

	return cmd
}

func runLint(cmd *cobra.Command, args []string, c *cmdConfig) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return usageError(err)
	}

	l := &lint.Linter{
		Rules:  c.selectRules(cfg.Rules),
		Logger: newLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr()),
		Tracer: c.tracer,
		Jobs:   cfg.Jobs,
	}

	var (
		results lint.Results
		stdin   []byte
	)
	if len(args) == 0 {
		stdin, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return usageError(fmt.Errorf("reading stdin: %w", err))
		}
		results = l.LintDocuments(cmd.Context(), []lint.Document{{Content: stdin}})
	} else {
		paths, err := expandArgs(args, cfg.Ext, cfg.Exclude)
		if err != nil {
			return usageError(err)
		}
		if len(paths) == 0 {
			return usageError(errors.New("no files to lint"))
		}
		results = l.LintFiles(cmd.Context(), paths)
	}

	n, err := report(cmd.OutOrStdout(), results, cfg, stdin)
	if err != nil {
		return usageError(err)
	}
	if failed := results.Failed(); len(failed) > 0 {
		for _, r := range failed {
			fmt.Fprintln(cmd.ErrOrStderr(), "bplint:", r.Err) //nolint:errcheck // best-effort output to writer
		}
		return &exitError{code: 2}
	}
	if n > 0 {
		return &exitError{code: 1}
	}
	return nil
}

// report writes results in the configured format and returns the number of
// findings reported.
func report(w io.Writer, results lint.Results, cfg *Config, stdin []byte) (int, error) {
	switch cfg.Format {
	case "json":
		return results.Findings(), lint.FormatJSON(w, results)
	case "pretty":
		return renderResults(w, results, cfg.ColorMode(), stdin)
	default:
		base, _ := os.Getwd()
		return lint.FormatText(w, results, lint.TextOptions{
			Color:   cfg.ColorMode().Enabled(fileFromWriter(w)),
			BaseDir: base,
		}), nil
	}
}

func readSource(name string) ([]byte, error) {
	return os.ReadFile(name) //nolint:gosec // CLI tool reads user-specified files
}

func fileFromWriter(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return nil
}

func init() {
	rootCmd.AddCommand(LintCommand())
}
