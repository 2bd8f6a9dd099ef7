// Copyright © 2024 The BPLint authors

package diagnostic

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorMode controls when ANSI color codes are used.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // detect based on terminal and NO_COLOR
	ColorAlways                  // always use colors
	ColorNever                   // never use colors
)

// ParseColorMode converts "auto", "always" or "never" to a ColorMode.
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	}
	return ColorAuto, fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
}

// Enabled reports whether colors should be used when writing to w.
func (m ColorMode) Enabled(w *os.File) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default: // ColorAuto
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		return isTerminal(w)
	}
}

// palette styles the parts of a diagnostic.
type palette struct {
	bold     func(a ...interface{}) string
	yellow   func(a ...interface{}) string
	boldRed  func(a ...interface{}) string
	boldBlue func(a ...interface{}) string
	boldCyan func(a ...interface{}) string
}

func newPalette(enabled bool) palette {
	style := func(attrs ...color.Attribute) func(a ...interface{}) string {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return palette{
		bold:     style(color.Bold),
		yellow:   style(color.FgYellow),
		boldRed:  style(color.Bold, color.FgRed),
		boldBlue: style(color.Bold, color.FgBlue),
		boldCyan: style(color.Bold, color.FgCyan),
	}
}

// choosePalette selects the appropriate color palette based on the mode
// and the output file descriptor.
func choosePalette(mode ColorMode, w *os.File) palette {
	return newPalette(mode.Enabled(w))
}

// isTerminal reports whether f is connected to a terminal.
func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
