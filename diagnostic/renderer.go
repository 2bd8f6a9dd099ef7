// Copyright © 2024 The BPLint authors

package diagnostic

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Renderer formats diagnostics as Rust-style annotated source snippets.
// A Renderer caches the source files it reads and must not be used
// concurrently.
type Renderer struct {
	// Color controls ANSI color output. Default is ColorAuto.
	Color ColorMode

	// SourceReader reads source file contents. If nil, os.ReadFile is used.
	SourceReader func(string) ([]byte, error)

	lines map[string][]string
}

// Render writes a single diagnostic to w.
func (r *Renderer) Render(w io.Writer, d Diagnostic) error {
	p := choosePalette(r.Color, fileFromWriter(w))
	bw := bufio.NewWriter(w)
	ew := &errWriter{w: bw}

	// Header: "error[rule]: message" or "warning: message"
	r.writeHeader(ew, d, p)

	for _, span := range d.Spans {
		r.writeSpan(ew, span, p)
	}

	for _, note := range d.Notes {
		ew.printf("   %s note: %s\n", p.boldCyan("="), note)
	}

	if ew.err != nil {
		return ew.err
	}
	return bw.Flush()
}

// RenderAll writes all diagnostics to w separated by blank lines.
func (r *Renderer) RenderAll(w io.Writer, diags []Diagnostic) error {
	for i, d := range diags {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := r.Render(w, d); err != nil {
			return err
		}
	}
	return nil
}

// errWriter wraps a writer and captures the first error, short-circuiting
// subsequent writes. This avoids checking every fmt.Fprintf return value.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, a ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, a...)
}

func (ew *errWriter) print(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (r *Renderer) writeHeader(ew *errWriter, d Diagnostic, p palette) {
	sevText := d.Severity.String()
	if d.Code != "" {
		sevText += "[" + d.Code + "]"
	}
	var sev string
	switch d.Severity {
	case SeverityError:
		sev = p.boldRed(sevText)
	case SeverityWarning:
		sev = p.yellow(sevText)
	default:
		sev = p.boldCyan(sevText)
	}
	ew.printf("%s: %s\n", sev, p.bold(d.Message))
}

func (r *Renderer) writeSpan(ew *errWriter, span Span, p palette) {
	// Location line: "  --> file:line:col"
	loc := span.File
	if span.Line > 0 {
		loc = fmt.Sprintf("%s:%d", span.File, span.Line)
		if span.Col > 0 {
			loc = fmt.Sprintf("%s:%d:%d", span.File, span.Line, span.Col)
		}
	}
	ew.printf("  %s %s\n", p.boldBlue("-->"), loc)

	source := r.readSourceLine(span.File, span.Line)
	if source == "" {
		// No source available, just show the location line with a gutter
		ew.printf("   %s\n", p.boldBlue("|"))
		return
	}

	lineStr := fmt.Sprintf("%d", span.Line)
	pad := strings.Repeat(" ", len(lineStr))
	gutter := p.boldBlue(pad + " |")

	ew.printf(" %s\n", gutter)

	displaySource := strings.ReplaceAll(source, "\t", "    ")
	ew.printf(" %s  %s\n", p.boldBlue(lineStr+" |"), displaySource)

	// Columns count runes.
	runes := []rune(source)
	col := span.Col
	endCol := span.EndCol
	if col <= 0 {
		col = 1
	}
	if endCol <= 0 {
		endCol = detectEndCol(runes, col)
	}
	if endCol < col {
		endCol = col
	}

	prefix := ""
	if col > 1 && col-1 <= len(runes) {
		prefix = string(runes[:col-1])
	}
	marked := ""
	if col-1 < len(runes) {
		marked = string(runes[col-1 : min(endCol, len(runes))])
	}
	underLen := displayWidth(marked)
	if endCol > len(runes) {
		underLen += endCol - max(len(runes), col-1)
	}
	underLen = max(underLen, 1)

	underPad := strings.Repeat(" ", displayWidth(prefix))
	underline := strings.Repeat("^", underLen)

	ew.printf(" %s  %s%s", gutter, underPad, p.boldRed(underline))
	if span.Label != "" {
		ew.printf(" %s", p.boldRed(span.Label))
	}
	ew.print("\n")

	ew.printf(" %s\n", gutter)
}

func (r *Renderer) readSourceLine(file string, line int) string {
	if line <= 0 || file == "" {
		return ""
	}
	lines, ok := r.lines[file]
	if !ok {
		lines = r.readLines(file)
		if r.lines == nil {
			r.lines = make(map[string][]string)
		}
		r.lines[file] = lines
	}
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

func (r *Renderer) readLines(file string) []string {
	reader := r.SourceReader
	if reader == nil {
		reader = func(name string) ([]byte, error) {
			return os.ReadFile(name) //nolint:gosec // reads user-specified source files for display
		}
	}
	data, err := reader(file)
	if err != nil {
		return nil
	}
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	return lines
}

// detectEndCol finds the end of the markup token starting at col: a tag
// name when col points at '<', otherwise a run of characters up to the next
// delimiter.
func detectEndCol(source []rune, col int) int {
	if col <= 0 || col > len(source) {
		return col
	}
	end := col - 1 // 0-based
	for end < len(source) && (source[end] == '<' || source[end] == '/') {
		end++
	}
	for end < len(source) {
		if isDelimiter(source[end]) {
			break
		}
		end++
	}
	if end <= col {
		return col // single character
	}
	return end // convert back to 1-based end column
}

func isDelimiter(ch rune) bool {
	switch ch {
	case ' ', '\t', '<', '>', '"', '\'', '=', '/':
		return true
	}
	return false
}

// displayWidth returns the terminal width of a string, expanding tabs to 4
// spaces and counting wide characters as two columns.
func displayWidth(s string) int {
	w := 0
	for _, ch := range s {
		if ch == '\t' {
			w += 4
		} else {
			w += runewidth.RuneWidth(ch)
		}
	}
	return w
}

// fileFromWriter attempts to extract an *os.File from a writer for terminal
// detection. Returns nil if the writer is not backed by a file.
func fileFromWriter(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return nil
}
