// Copyright © 2024 The BPLint authors

package markup

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"keygen": true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement reports whether name is an element that never has content
// or an end tag.
func IsVoidElement(name string) bool {
	return voidElements[name]
}

// Names matching the custom element grammar that are reserved by SVG and
// MathML.
var reservedNames = map[string]bool{
	"annotation-xml":   true,
	"color-profile":    true,
	"font-face":        true,
	"font-face-src":    true,
	"font-face-uri":    true,
	"font-face-format": true,
	"font-face-name":   true,
	"missing-glyph":    true,
	"dom-module":       true,
}

const pcenChar = `[-.0-9_a-z\x{B7}\x{C0}-\x{D6}\x{D8}-\x{F6}\x{F8}-\x{37D}\x{37F}-\x{1FFF}` +
	`\x{200C}\x{200D}\x{203F}\x{2040}\x{2070}-\x{218F}\x{2C00}-\x{2FEF}\x{3001}-\x{D7FF}` +
	`\x{F900}-\x{FDCF}\x{FDF0}-\x{FFFD}\x{10000}-\x{EFFFF}]`

var customElementName = regexp.MustCompile(`^[a-z]` + pcenChar + `*-` + pcenChar + `*$`)

// IsCustomElementName reports whether name is a valid custom element name.
// <dom-module> is treated as reserved because it defines components rather
// than using one.
func IsCustomElementName(name string) bool {
	return customElementName.MatchString(name) && !reservedNames[name]
}

// builtinElements are custom elements provided by Polymer itself. They are
// always available without an import.
var builtinElements = map[string]bool{
	"array-selector": true,
	"custom-style":   true,
	"dom-bind":       true,
	"dom-if":         true,
	"dom-repeat":     true,
	"dom-template":   true,
}

// IsBuiltinElement reports whether name is provided by the component
// library without an import.
func IsBuiltinElement(name string) bool {
	return builtinElements[name]
}

// ComponentNameFromPath derives a component name from a file path or import
// href by dropping the directory and the extension ext. It returns "" when
// the result is not a valid custom element name.
func ComponentNameFromPath(p, ext string) string {
	if p == "" {
		return ""
	}
	name := path.Base(filepath.ToSlash(p))
	name = strings.TrimSuffix(name, ext)
	if !IsCustomElementName(name) {
		return ""
	}
	return name
}
