// Copyright © 2024 The BPLint authors

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/luthersystems/bplint/docs"
	"github.com/luthersystems/bplint/lint"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
	"github.com/spf13/cobra"
)

const docWidth = 72

// RulesCommand creates the "rules" cobra command, which documents the
// available rules and the suppression directives.
func RulesCommand(opts ...Option) *cobra.Command {
	var c cmdConfig
	for _, o := range opts {
		o(&c)
	}

	var guide bool

	cmd := &cobra.Command{
		Use:   "rules [flags] [RULE...]",
		Short: "Show documentation for lint rules",
		Long: `Show documentation for lint rules.

With no arguments every rule is listed. Use --guide to show the guide to
bplint-disable and bplint-enable directives.

Examples:
  bplint rules                    List all rules with their documentation
  bplint rules no-auto-binding    Show one rule
  bplint rules --guide            Show the suppression directive guide`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return usageError(err)
			}
			out := cmd.OutOrStdout()
			if guide {
				_, err := io.WriteString(out, docs.DirectivesGuide)
				return err
			}
			rules := c.catalog()
			if len(args) > 0 {
				rules = rules[:0:0]
				for _, name := range args {
					r := findRule(c.catalog(), name)
					if r == nil {
						return usageError(fmt.Errorf("unknown rule: %s", name))
					}
					rules = append(rules, r)
				}
			}
			writeRuleDocs(out, rules, cfg.ColorMode().Enabled(fileFromWriter(out)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&guide, "guide", false,
		"Show the guide to suppression directives.")

	return cmd
}

func findRule(rules []*lint.Rule, name string) *lint.Rule {
	for _, r := range rules {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// writeRuleDocs writes each rule name followed by its wrapped, indented
// documentation.
func writeRuleDocs(w io.Writer, rules []*lint.Rule, colored bool) {
	name := color.New(color.Bold)
	if colored {
		name.EnableColor()
	} else {
		name.DisableColor()
	}
	for i, r := range rules {
		if i > 0 {
			fmt.Fprintln(w) //nolint:errcheck // best-effort output to writer
		}
		fmt.Fprintf(w, "%s (%s)\n", name.Sprint(r.Name), r.Severity) //nolint:errcheck // best-effort output to writer
		if r.Doc == "" {
			continue
		}
		doc := indent.String(wrapDoc(r.Doc, docWidth), 2)
		fmt.Fprintln(w, strings.TrimSuffix(doc, "\n")) //nolint:errcheck // best-effort output to writer
	}
}

// wrapDoc word-wraps doc so no line exceeds width columns. Hyphens are not
// breakpoints because wordwrap does not count them toward the line length;
// words longer than width are broken by wrap.
func wrapDoc(doc string, width int) string {
	ww := wordwrap.NewWriter(width)
	ww.Breakpoints = nil
	_, _ = ww.Write([]byte(doc))
	_ = ww.Close()
	return wrap.String(ww.String(), width)
}

func init() {
	rootCmd.AddCommand(RulesCommand())
}
