// Copyright © 2024 The BPLint authors

// Package token defines source locations within markup documents and the
// arithmetic needed to locate a sub-span of text inside its container.
package token

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Location identifies a span of a document.
//
// Line and Col are 1-based; Col counts runes from the start of the line.
// StartOffset and EndOffset are 0-based byte offsets into the document and
// EndOffset is never less than StartOffset.
type Location struct {
	Line        int `json:"line"`
	Col         int `json:"col"`
	StartOffset int `json:"startOffset"`
	EndOffset   int `json:"endOffset"`
}

// Origin returns the zero-width location of the first character of a
// document.
func Origin() Location {
	return Location{Line: 1, Col: 1}
}

// Width returns the number of bytes spanned by loc.
func (loc Location) Width() int {
	return loc.EndOffset - loc.StartOffset
}

// Before reports whether loc precedes other in document order. Only line and
// column take part in the ordering.
func (loc Location) Before(other Location) bool {
	return Compare(loc, other) < 0
}

func (loc Location) String() string {
	return fmt.Sprintf("%d:%d", loc.Line, loc.Col)
}

// Compare orders two locations by line and then by column. It returns a
// negative number when a precedes b, zero when they share a position and a
// positive number otherwise.
func Compare(a, b Location) int {
	if a.Line != b.Line {
		if a.Line < b.Line {
			return -1
		}
		return 1
	}
	switch {
	case a.Col < b.Col:
		return -1
	case a.Col > b.Col:
		return 1
	}
	return 0
}

// ResolveOffset returns the zero-width location of byte offset off within
// text, measured from the start of text.
func ResolveOffset(text string, off int) Location {
	return Resolve(text, off, off, Origin())
}

// Resolve computes the document location of the span [start, end) of text,
// where text itself begins exactly at base.
//
// A start offset past the last character is clamped to the last character,
// one inside a multi-byte character moves back to that character's first
// byte, and an end offset before start is raised to start. Empty text yields a
// zero-width location at base.
func Resolve(text string, start, end int, base Location) Location {
	if text == "" {
		base.EndOffset = base.StartOffset
		return base
	}
	if start < 0 {
		start = 0
	}
	if start > len(text)-1 {
		_, size := utf8.DecodeLastRuneInString(text)
		start = len(text) - size
		end = start
	}
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	if end < start {
		end = start
	}

	line, lineStart := 1, 0
	for {
		i := strings.IndexByte(text[lineStart:], '\n')
		if i < 0 || lineStart+i >= start {
			break
		}
		line++
		lineStart += i + 1
	}
	col := utf8.RuneCountInString(text[lineStart:start]) + 1

	return add(base, Location{
		Line:        line,
		Col:         col,
		StartOffset: start,
		EndOffset:   end,
	})
}

// add composes a location measured within a substring onto the location of
// that substring. A newline resets the column so the operation does not
// commute.
func add(from, rel Location) Location {
	res := from
	if rel.Line != 1 {
		res.Col = 1
	}
	res.Line += rel.Line - 1
	res.Col += rel.Col - 1
	res.StartOffset += rel.StartOffset
	res.EndOffset = res.StartOffset + rel.Width()
	return res
}

// LocationError is an error tied to a position in a document.
type LocationError struct {
	Err    error
	Source Location
	File   string
}

func (err *LocationError) Error() string {
	if err.File == "" {
		return fmt.Sprintf("%s: %s", err.Source, err.Err)
	}
	return fmt.Sprintf("%s:%s: %s", err.File, err.Source, err.Err)
}

func (err *LocationError) Unwrap() error {
	return err.Err
}
