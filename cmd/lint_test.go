// Copyright © 2024 The BPLint authors

package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luthersystems/bplint/lint"
	"github.com/luthersystems/bplint/parser/markup"
	"github.com/luthersystems/bplint/parser/token"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type cmdResult struct {
	stdout string
	stderr string
	code   int
}

// run executes cmd in-process with args and stdin, isolated from any user
// config file.
func run(t *testing.T, cmd *cobra.Command, stdin string, args ...string) cmdResult {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	var stdout, stderr bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.Execute()
	var xerr *exitError
	if err != nil && (!errors.As(err, &xerr) || xerr.err != nil) {
		stderr.WriteString(err.Error())
	}
	return cmdResult{stdout: stdout.String(), stderr: stderr.String(), code: exitCode(err)}
}

// writeFile writes content to name in a temp dir and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

const typelessButton = "<div>\n  <button>Save</button>\n</div>\n"

func TestLintCommand_DefaultFlags(t *testing.T) {
	cmd := LintCommand()
	assert.Equal(t, "lint [flags] [files...]", cmd.Use)

	for _, name := range []string{"rules", "ext", "exclude", "format", "jobs"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestLintCommand_Clean(t *testing.T) {
	p := writeFile(t, "x-foo.html", `<dom-module id="x-foo"><template></template></dom-module>`)
	res := run(t, LintCommand(), "", p)
	assert.Equal(t, 0, res.code, res.stderr)
	assert.Empty(t, res.stdout)
}

func TestLintCommand_TextFindings(t *testing.T) {
	t.Setenv("BPLINT_COLOR", "never")
	p := writeFile(t, "x-foo.html", typelessButton)
	res := run(t, LintCommand(), "", p)
	assert.Equal(t, 1, res.code, res.stderr)
	assert.Contains(t, res.stdout, "x-foo.html\n")
	assert.Contains(t, res.stdout, "  2:3  Unexpected button without type attribute:  no-typeless-buttons\n")
	assert.Contains(t, res.stdout, "✖ 1 error\n")
}

func TestLintCommand_JSON(t *testing.T) {
	p := writeFile(t, "x-foo.html", typelessButton)
	res := run(t, LintCommand(), "", "--format=json", p)
	assert.Equal(t, 1, res.code, res.stderr)

	var out []struct {
		Filename string         `json:"filename"`
		Errors   []lint.Finding `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	require.Len(t, out, 1)
	assert.Equal(t, p, out[0].Filename)
	require.Len(t, out[0].Errors, 1)
	assert.Equal(t, "no-typeless-buttons", out[0].Errors[0].Rule)
	assert.Equal(t, 2, out[0].Errors[0].Location.Line)
	assert.Equal(t, 3, out[0].Errors[0].Location.Col)
}

func TestLintCommand_Pretty(t *testing.T) {
	t.Setenv("BPLINT_COLOR", "never")
	p := writeFile(t, "x-foo.html", typelessButton)
	res := run(t, LintCommand(), "", "-f", "pretty", p)
	assert.Equal(t, 1, res.code, res.stderr)
	assert.Contains(t, res.stdout, "error[no-typeless-buttons]: Unexpected button without type attribute:")
	assert.Contains(t, res.stdout, "--> "+p+":2:3")
	assert.Contains(t, res.stdout, "<button>Save</button>")
	assert.Contains(t, res.stdout, "^^^^^^^^")
	assert.Contains(t, res.stdout, "<!-- bplint-disable no-typeless-buttons -->")
}

func TestLintCommand_Stdin(t *testing.T) {
	t.Setenv("BPLINT_COLOR", "never")
	res := run(t, LintCommand(), typelessButton)
	assert.Equal(t, 1, res.code, res.stderr)
	assert.Contains(t, res.stdout, "<input>\n")
	assert.Contains(t, res.stdout, "no-typeless-buttons")
}

func TestLintCommand_PrettyStdin(t *testing.T) {
	t.Setenv("BPLINT_COLOR", "never")
	res := run(t, LintCommand(), typelessButton, "--format=pretty")
	assert.Equal(t, 1, res.code, res.stderr)
	assert.Contains(t, res.stdout, "--> <stdin>:2:3")
	assert.Contains(t, res.stdout, "<button>Save</button>")
}

func TestLintCommand_Suppressed(t *testing.T) {
	src := "<div>\n  <!-- bplint-disable no-typeless-buttons -->\n  <button>Save</button>\n</div>\n"
	res := run(t, LintCommand(), src)
	assert.Equal(t, 0, res.code, res.stderr)
	assert.Empty(t, res.stdout)
}

func TestLintCommand_SelectRules(t *testing.T) {
	p := writeFile(t, "x-foo.html", typelessButton)
	res := run(t, LintCommand(), "", "--rules=no-hashtag-anchors,icon-titles", p)
	assert.Equal(t, 0, res.code, res.stderr)
}

func TestLintCommand_UndefinedRule(t *testing.T) {
	res := run(t, LintCommand(), "<p></p>", "--rules=no-such-rule")
	assert.Equal(t, 1, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Definition for rule 'no-such-rule' was not found")
}

func TestLintCommand_InvalidFormat(t *testing.T) {
	res := run(t, LintCommand(), "<p></p>", "--format=xml")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, `format must be one of [text json pretty], got "xml"`)
}

func TestLintCommand_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.html")
	ok := writeFile(t, "x-foo.html", typelessButton)
	res := run(t, LintCommand(), "", "--format=json", missing, ok)
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "missing.html")
	// The readable file is still reported.
	assert.Contains(t, res.stdout, "no-typeless-buttons")
}

func TestLintCommand_Directory(t *testing.T) {
	dir := writeTree(t, "x-foo/x-foo.html", "bower_components/x-bar/x-bar.html")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bower_components", "x-bar", "x-bar.html"), []byte(typelessButton), 0o600))
	res := run(t, LintCommand(), "", "--exclude=bower_components", dir)
	assert.Equal(t, 0, res.code, res.stderr)

	res = run(t, LintCommand(), "", dir)
	assert.Equal(t, 1, res.code, res.stderr)
}

func TestLintCommand_NoFiles(t *testing.T) {
	res := run(t, LintCommand(), "", "--ext=.htm", writeTree(t, "x-foo.html"))
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "no files to lint")
}

func TestLintCommand_ConfigFile(t *testing.T) {
	cfg := writeFile(t, "bplint.yaml", "format: json\nrules:\n  - no-hashtag-anchors\n")
	cfgFile = cfg
	t.Cleanup(func() { cfgFile = "" })

	res := run(t, LintCommand(), `<a href="#">x</a><button></button>`)
	assert.Equal(t, 1, res.code, res.stderr)
	assert.Contains(t, res.stdout, `"rule": "no-hashtag-anchors"`)
	assert.NotContains(t, res.stdout, "no-typeless-buttons")
}

func TestLintCommand_MissingConfigFile(t *testing.T) {
	cfgFile = filepath.Join(t.TempDir(), "nope.yaml")
	t.Cleanup(func() { cfgFile = "" })

	res := run(t, LintCommand(), "<p></p>")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "reading config")
}

func TestLintCommand_Env(t *testing.T) {
	t.Setenv("BPLINT_FORMAT", "json")
	res := run(t, LintCommand(), "<p></p>")
	assert.Equal(t, 0, res.code, res.stderr)
	assert.JSONEq(t, `[{"filename": "", "errors": []}]`, res.stdout)
}

func TestLintCommand_WithRules(t *testing.T) {
	custom := &lint.Rule{
		Name: "no-paragraphs",
		Register: func(pass *lint.Pass) {
			pass.Parser.OnStartTag(func(tag markup.StartTag) {
				if tag.Name == "p" {
					pass.Reportf(tag.Location, "Unexpected paragraph")
				}
			})
		},
	}
	res := run(t, LintCommand(WithRules(custom)), "<p></p>", "--rules=no-paragraphs")
	assert.Equal(t, 1, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Unexpected paragraph")
}

func TestLintCommand_WithTracer(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exp),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	res := run(t, LintCommand(WithTracer(tp.Tracer("test"))), "<p></p>")
	assert.Equal(t, 0, res.code, res.stderr)

	var names []string
	for _, s := range exp.GetSpans() {
		names = append(names, s.Name)
	}
	assert.ElementsMatch(t, []string{"bplint.lint", "bplint.batch"}, names)
}

// --- rule catalog ---

func TestSelectRules(t *testing.T) {
	replacement := &lint.Rule{Name: "icon-titles"}
	extra := &lint.Rule{Name: "x-extra"}
	c := &cmdConfig{}
	WithRules(replacement, extra)(c)

	all := c.selectRules(nil)
	require.Len(t, all, len(lint.DefaultRules())+1)
	assert.Same(t, replacement, findRule(all, "icon-titles"))
	assert.Same(t, extra, all[len(all)-1])

	picked := c.selectRules([]string{"x-extra", "no-auto-binding", "x-extra", "nope"})
	require.Len(t, picked, 3)
	assert.Same(t, extra, picked[0])
	assert.Same(t, lint.RuleNoAutoBinding, picked[1])
	assert.Equal(t, "nope", picked[2].Name)
	assert.Nil(t, picked[2].Register)
}

// --- rules command ---

func TestRulesCommand(t *testing.T) {
	res := run(t, RulesCommand(), "")
	assert.Equal(t, 0, res.code, res.stderr)
	for _, name := range lint.RuleNames() {
		assert.Contains(t, res.stdout, name+" (error)\n")
	}
	for _, line := range strings.Split(strings.TrimSpace(res.stdout), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), docWidth+2, line)
	}
}

func TestRulesCommand_Named(t *testing.T) {
	res := run(t, RulesCommand(), "", "no-hashtag-anchors")
	assert.Equal(t, 0, res.code, res.stderr)
	assert.True(t, strings.HasPrefix(res.stdout, "no-hashtag-anchors (error)\n  "), res.stdout)
	assert.NotContains(t, res.stdout, "no-auto-binding")
}

func TestRulesCommand_Unknown(t *testing.T) {
	res := run(t, RulesCommand(), "", "no-such-rule")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "unknown rule: no-such-rule")
}

func TestRulesCommand_Guide(t *testing.T) {
	res := run(t, RulesCommand(), "", "--guide")
	assert.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "# Suppression directives")
}

func TestWrapDoc_Hyphens(t *testing.T) {
	doc := "Icon elements (jha-icon-*) must carry a title so assistive technology can " +
		"announce them; the x-foo-bar-baz-qux elements are checked the same way."
	out := wrapDoc(doc, docWidth)
	assert.Equal(t, strings.Fields(doc), strings.Fields(out))
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len([]rune(line)), docWidth, line)
	}
}

func TestWrapDoc_LongWord(t *testing.T) {
	out := wrapDoc(strings.Repeat("x", docWidth+10), docWidth)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Len(t, lines[0], docWidth)
	assert.Len(t, lines[1], 10)
}

// --- diagnostics ---

func TestFindingToDiagnostic(t *testing.T) {
	src := []byte("<dom-module id=\"x-foo\">\n<template>\n  <a href=\"#\">top</a>\n")
	f := lint.Finding{
		Rule:     "no-hashtag-anchors",
		Message:  "Unexpected hashtag anchor",
		Location: token.Location{Line: 3, Col: 12, StartOffset: 46, EndOffset: 47},
		Severity: lint.SeverityWarning,
	}
	require.Equal(t, "#", string(src[46:47]))
	d := findingToDiagnostic("x-foo.html", src, f)
	assert.Equal(t, "no-hashtag-anchors", d.Code)
	require.Len(t, d.Spans, 1)
	assert.Equal(t, "x-foo.html", d.Spans[0].File)
	assert.Equal(t, 12, d.Spans[0].Col)
	assert.Equal(t, 12, d.Spans[0].EndCol)

	d = findingToDiagnostic("x-foo.html", nil, f)
	assert.Zero(t, d.Spans[0].EndCol)

	d = findingToDiagnostic("", src, lint.Finding{Location: token.Origin()})
	assert.Equal(t, "<stdin>", d.Spans[0].File)
	assert.Zero(t, d.Spans[0].EndCol)
}

func TestFindingToDiagnostic_MultiByte(t *testing.T) {
	src := []byte("<p>日本 {{x}}</p>")
	start := strings.Index(string(src), "日本")
	loc := token.Resolve(string(src), start, start+len("日本"), token.Origin())
	require.Equal(t, 4, loc.Col)
	require.Equal(t, 6, loc.Width())

	d := findingToDiagnostic("x-foo.html", src, lint.Finding{Rule: "r", Location: loc})
	assert.Equal(t, 4, d.Spans[0].Col)
	assert.Equal(t, 5, d.Spans[0].EndCol)
}

func TestSpanEndCol(t *testing.T) {
	src := []byte("<p>añb\ncd</p>")
	tests := []struct {
		name string
		loc  token.Location
		want int
	}{
		{"ascii", token.Location{Line: 1, Col: 1, StartOffset: 0, EndOffset: 3}, 3},
		{"multi-byte", token.Location{Line: 1, Col: 4, StartOffset: 3, EndOffset: 7}, 6},
		{"stops at newline", token.Location{Line: 1, Col: 5, StartOffset: 4, EndOffset: 10}, 6},
		{"empty", token.Location{Line: 1, Col: 2, StartOffset: 1, EndOffset: 1}, 0},
		{"out of range", token.Location{Line: 1, Col: 2, StartOffset: 1, EndOffset: 100}, 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, spanEndCol(src, test.loc))
		})
	}
}

// --- logging ---

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("info", "json", &buf)
	logger.Debug("hidden")
	logger.Info("shown", "file", "x-foo.html")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"file":"x-foo.html"`)

	buf.Reset()
	newLogger("bogus", "text", &buf).Info("hidden")
	assert.Empty(t, buf.String())
}
