// Copyright © 2024 The BPLint authors

package cmd

import (
	"bytes"
	"io"
	"unicode/utf8"

	"github.com/luthersystems/bplint/diagnostic"
	"github.com/luthersystems/bplint/directive"
	"github.com/luthersystems/bplint/lint"
	"github.com/luthersystems/bplint/parser/token"
)

// findingToDiagnostic converts a lint.Finding to a diagnostic.Diagnostic.
// src is the document content; when nil the renderer detects the extent of
// the span itself.
func findingToDiagnostic(filename string, src []byte, f lint.Finding) diagnostic.Diagnostic {
	sev := diagnostic.SeverityError
	switch f.Severity {
	case lint.SeverityWarning:
		sev = diagnostic.SeverityWarning
	case lint.SeverityInfo:
		sev = diagnostic.SeverityNote
	}
	d := diagnostic.Diagnostic{
		Severity: sev,
		Code:     f.Rule,
		Message:  f.Message,
	}
	if filename == "" {
		filename = "<stdin>"
	}
	span := diagnostic.Span{
		File: filename,
		Line: f.Location.Line,
		Col:  f.Location.Col,
	}
	if span.Col > 0 {
		span.EndCol = spanEndCol(src, f.Location)
	}
	d.Spans = append(d.Spans, span)
	d.Notes = append(d.Notes, "to suppress: add <!-- "+directive.Disable+" "+f.Rule+" --> inside the enclosing element")
	return d
}

// renderResults renders the unsuppressed findings of each document in the
// pretty format and returns the number written. stdin supplies the contents
// of documents read from stdin.
func renderResults(w io.Writer, results lint.Results, mode diagnostic.ColorMode, stdin []byte) (int, error) {
	r := &diagnostic.Renderer{Color: mode}
	if stdin != nil {
		r.SourceReader = func(name string) ([]byte, error) {
			if name == "<stdin>" {
				return stdin, nil
			}
			return readSource(name)
		}
	}
	var ds []diagnostic.Diagnostic
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		findings := res.Filtered()
		if len(findings) == 0 {
			continue
		}
		src := stdin
		if res.Filename != "" {
			// A file that cannot be reread falls back to end column detection.
			src, _ = readSource(res.Filename)
		}
		for _, f := range findings {
			ds = append(ds, findingToDiagnostic(res.Filename, src, f))
		}
	}
	return len(ds), r.RenderAll(w, ds)
}

// spanEndCol returns the 1-based column of the last character of loc within
// src, counting runes. Spans crossing a line end stop at the end of the
// line. It returns 0 when the span is empty or does not fit src.
func spanEndCol(src []byte, loc token.Location) int {
	if loc.Width() <= 0 || loc.StartOffset < 0 || loc.EndOffset > len(src) {
		return 0
	}
	span := src[loc.StartOffset:loc.EndOffset]
	if i := bytes.IndexByte(span, '\n'); i >= 0 {
		span = span[:i]
	}
	n := utf8.RuneCount(span)
	if n == 0 {
		return 0
	}
	return loc.Col + n - 1
}
