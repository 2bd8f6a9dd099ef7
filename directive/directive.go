// Copyright © 2024 The BPLint authors

// Package directive recognizes linter directive comments and tracks which
// directives are in effect at every nesting level of a document.
//
// A directive is a comment of the form
//
//	<!-- bplint-disable rule-a, rule-b -->
//
// Directives apply to the element that encloses them, from the comment to
// the element's end tag. The Stack records the directive state after every
// change so the state in effect at any earlier location can be recovered once
// the whole document has been scanned.
package directive

import (
	"regexp"
	"slices"
	"strings"

	"github.com/luthersystems/bplint/parser/token"
)

// Directive names understood by the suppression filter.
const (
	Disable = "bplint-disable"
	Enable  = "bplint-enable"
)

// Prefix is shared by every directive keyword.
const Prefix = "bplint-"

var (
	matchDirective = regexp.MustCompile(`(?s)^\s*(bplint-[a-z][a-z0-9]*(?:-[a-z0-9]+)*)(?:\s+(.*?))?\s*$`)
	splitArgs      = regexp.MustCompile(`\s*(?:,\s*)+`)
)

// Directive is a single directive comment found in a document.
type Directive struct {
	Name     string         `json:"name"`
	Args     []string       `json:"args"`
	Location token.Location `json:"location"`
}

// Parse recognizes a directive in the text of a comment. The comment
// delimiters must already be stripped. It reports false when the comment is
// not a directive.
func Parse(comment string, loc token.Location) (Directive, bool) {
	m := matchDirective.FindStringSubmatch(comment)
	if m == nil {
		return Directive{}, false
	}
	return Directive{
		Name:     m[1],
		Args:     ParseArgs(m[2]),
		Location: loc,
	}, true
}

// ParseArgs splits a directive argument list on commas. Whitespace around
// commas is insignificant and empty arguments are dropped; whitespace alone
// never separates arguments.
func ParseArgs(s string) []string {
	s = strings.TrimSpace(s)
	args := []string{}
	if s == "" {
		return args
	}
	for _, arg := range splitArgs.Split(s, -1) {
		arg = strings.TrimSpace(arg)
		if arg != "" {
			args = append(args, arg)
		}
	}
	return args
}

// Names reports whether d names the given argument.
func (d Directive) Names(arg string) bool {
	return slices.Contains(d.Args, arg)
}

func (d Directive) clone() Directive {
	d.Args = slices.Clone(d.Args)
	if d.Args == nil {
		d.Args = []string{}
	}
	return d
}

func (d Directive) String() string {
	if len(d.Args) == 0 {
		return d.Name
	}
	return d.Name + " " + strings.Join(d.Args, ", ")
}
