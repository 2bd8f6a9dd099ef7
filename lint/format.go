// Copyright © 2024 The BPLint authors

package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// TextOptions controls FormatText.
type TextOptions struct {
	// Color enables ANSI styling.
	Color bool

	// BaseDir, when set, makes file names relative to it.
	BaseDir string
}

// FormatText writes the unsuppressed findings of each document in the
// console format: the file name followed by one aligned line per finding,
// and a summary line when there is at least one finding. Documents that
// failed to lint are skipped. It returns the number of findings written.
func FormatText(w io.Writer, results Results, opts TextOptions) int {
	underline := color.New(color.Underline)
	summary := color.New(color.Bold, color.FgRed)
	if opts.Color {
		underline.EnableColor()
		summary.EnableColor()
	} else {
		underline.DisableColor()
		summary.DisableColor()
	}

	total := 0
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		findings := r.Filtered()
		if len(findings) == 0 {
			continue
		}
		fmt.Fprintln(w, underline.Sprint(displayName(r.Filename, opts.BaseDir))) //nolint:errcheck // best-effort output to writer
		writeFindings(w, findings)
		fmt.Fprintln(w) //nolint:errcheck // best-effort output to writer
		total += len(findings)
	}
	if total > 0 {
		s := "s"
		if total == 1 {
			s = ""
		}
		fmt.Fprintln(w, summary.Sprintf("✖ %d error%s", total, s)) //nolint:errcheck // best-effort output to writer
	}
	return total
}

func writeFindings(w io.Writer, findings []Finding) {
	var lineW, colW, msgW int
	for _, f := range findings {
		lineW = max(lineW, len(strconv.Itoa(f.Location.Line)))
		colW = max(colW, len(strconv.Itoa(f.Location.Col)))
		msgW = max(msgW, runewidth.StringWidth(f.Message))
	}
	for _, f := range findings {
		line := strconv.Itoa(f.Location.Line)
		col := strconv.Itoa(f.Location.Col)
		fmt.Fprintf(w, "  %s%s:%s%s  %s  %s\n", //nolint:errcheck // best-effort output to writer
			strings.Repeat(" ", lineW-len(line)), line,
			col, strings.Repeat(" ", colW-len(col)),
			runewidth.FillRight(f.Message, msgW),
			f.Rule)
	}
}

func displayName(filename, base string) string {
	if filename == "" {
		return "<input>"
	}
	if base == "" {
		return filename
	}
	abs, err := filepath.Abs(filename)
	if err != nil {
		return filename
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil {
		return filename
	}
	return rel
}

type jsonResult struct {
	Filename string    `json:"filename"`
	Errors   []Finding `json:"errors"`
	Error    string    `json:"error,omitempty"`
}

// FormatJSON writes the unsuppressed findings of each document as a JSON
// array with one element per document.
func FormatJSON(w io.Writer, results Results) error {
	out := make([]jsonResult, len(results))
	for i, r := range results {
		out[i] = jsonResult{Filename: r.Filename, Errors: r.Filtered()}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
		}
		if out[i].Errors == nil {
			out[i].Errors = []Finding{}
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
