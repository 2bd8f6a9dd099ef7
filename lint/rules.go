// Copyright © 2024 The BPLint authors

package lint

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/luthersystems/bplint/parser/markup"
	"github.com/luthersystems/bplint/parser/token"
)

var matchAutoBinding = regexp.MustCompile(`\{\{.*\}\}`)

// RuleNoAutoBinding reports two-way {{...}} bindings in attribute values and
// text.
var RuleNoAutoBinding = &Rule{
	Name:     "no-auto-binding",
	Doc:      "Report automatic {{...}} bindings.\n\nAutomatic bindings propagate changes in both directions, which makes data flow hard to follow. Use one-way [[...]] bindings and dispatch events to propagate changes upward.",
	Severity: SeverityError,
	Register: func(pass *Pass) {
		pass.Parser.OnStartTag(func(tag markup.StartTag) {
			for _, a := range tag.Attrs {
				if a.ValueOffset < 0 {
					continue
				}
				m := matchAutoBinding.FindStringIndex(a.RawValue())
				if m == nil {
					continue
				}
				kind := "property"
				if strings.HasSuffix(a.Name, "$") {
					kind = "attribute"
				}
				start, end := a.ValueOffset+m[0], a.ValueOffset+m[1]
				pass.Reportf(token.Resolve(a.Raw, start, end, a.Location),
					"Unexpected automatic binding in %s '%s': %s", kind, a.Name, a.Raw[start:end])
			}
		})
		pass.Parser.OnText(func(text markup.Text) {
			m := matchAutoBinding.FindStringIndex(text.Raw)
			if m == nil {
				return
			}
			pass.Reportf(token.Resolve(text.Raw, m[0], m[1], text.Location),
				"Unexpected automatic binding in text: %s", text.Raw[m[0]:m[1]])
		})
	},
}

// RuleNoMissingImport reports custom elements used without an import.
var RuleNoMissingImport = &Rule{
	Name:     "no-missing-import",
	Doc:      "Report custom elements that are used but not imported.\n\nA custom element is considered imported when a preceding <link rel=\"import\"> references a file named after it. Elements used through <style include=\"...\"> and is=\"...\" are checked too. The element library's own built-in elements never need an import.",
	Severity: SeverityError,
	Register: func(pass *Pass) {
		imports := make(map[string]bool)
		check := func(name string, loc token.Location) {
			if markup.IsBuiltinElement(name) || imports[name] {
				return
			}
			pass.Reportf(loc, "Custom element '%s' used but not imported", name)
		}
		pass.Parser.OnImport(func(href string, _ token.Location) {
			if name := componentName(href); name != "" {
				imports[name] = true
			}
		})
		pass.Parser.OnStartTag(func(tag markup.StartTag) {
			for _, use := range usesByAttribute(tag) {
				check(use.name, use.loc)
			}
		})
		pass.Parser.OnCustomElementStart(func(tag markup.StartTag) {
			check(tag.Name, tag.Location)
		})
	},
}

// RuleNoUnusedImport reports imported components that the document never
// uses.
var RuleNoUnusedImport = &Rule{
	Name:     "no-unused-import",
	Doc:      "Report imported components that are never used.\n\nReported at the import once the whole document has been read. Imports whose file name is not a valid custom element name are not checked.",
	Severity: SeverityError,
	Register: func(pass *Pass) {
		type imported struct {
			name string
			loc  token.Location
		}
		var imports []imported
		used := make(map[string]bool)
		pass.Parser.OnImport(func(href string, loc token.Location) {
			if name := componentName(href); name != "" {
				imports = append(imports, imported{name, loc})
			}
		})
		pass.Parser.OnStartTag(func(tag markup.StartTag) {
			for _, use := range usesByAttribute(tag) {
				used[use.name] = true
			}
		})
		pass.Parser.OnCustomElementStart(func(tag markup.StartTag) {
			used[tag.Name] = true
		})
		pass.Parser.OnEnd(func() {
			for _, imp := range imports {
				if !used[imp.name] {
					pass.Reportf(imp.loc, "Component <%s> was imported but never used", imp.name)
				}
			}
		})
	},
}

// RuleOneComponent reports documents defining more than one component.
var RuleOneComponent = &Rule{
	Name:     "one-component",
	Doc:      "Report more than one <dom-module> in a document.\n\nEach component belongs in its own file. Every <dom-module> after the first is reported.",
	Severity: SeverityError,
	Register: func(pass *Pass) {
		count := 0
		pass.Parser.OnDomModuleStart(func(id string, tag markup.StartTag) {
			count++
			if count > 1 {
				pass.Reportf(tag.Location, "More than one component defined: %s", id)
			}
		})
	},
}

// RuleComponentNameMatchesFilename reports components whose id differs from
// the name of the file defining them.
var RuleComponentNameMatchesFilename = &Rule{
	Name:     "component-name-matches-filename",
	Doc:      "Report a <dom-module> whose id does not match the file name.\n\nThe file x-foo.html is expected to declare <dom-module id=\"x-foo\">. Documents without a file name, or whose file name is not a valid custom element name, are not checked.",
	Severity: SeverityError,
	Register: func(pass *Pass) {
		expected := componentName(pass.Filename)
		if expected == "" {
			return
		}
		base := filepath.Base(pass.Filename)
		pass.Parser.OnDomModuleStart(func(id string, tag markup.StartTag) {
			if id == expected {
				return
			}
			pass.Reportf(tag.Location, "Expected '%s' to declare component '%s' but it declared '%s'", base, expected, id)
		})
	},
}

// RuleStyleInsideTemplate reports <style> elements outside any <template>.
var RuleStyleInsideTemplate = &Rule{
	Name:     "style-inside-template",
	Doc:      "Report <style> tags outside of <template>.\n\nStyles of a component must be inside its template to be scoped to it.",
	Severity: SeverityError,
	Register: func(pass *Pass) {
		depth := 0
		pass.Parser.OnStartTag(func(tag markup.StartTag) {
			switch {
			case tag.Name == "template":
				if !tag.SelfClosing {
					depth++
				}
			case tag.Name == "style" && depth < 1:
				pass.Reportf(tag.Location, "<style> tag outside of <template>")
			}
		})
		pass.Parser.OnEndTag(func(tag markup.EndTag) {
			if tag.Name == "template" && depth > 0 {
				depth--
			}
		})
	},
}

var buttonTags = map[string]bool{
	"button":     true,
	"jha-button": true,
}

// RuleNoTypelessButtons reports buttons without an explicit type.
var RuleNoTypelessButtons = &Rule{
	Name:     "no-typeless-buttons",
	Doc:      "Report buttons without a type attribute.\n\nA button without a type submits its enclosing form. Declare type=\"button\" or type=\"submit\" explicitly.",
	Severity: SeverityError,
	Register: func(pass *Pass) {
		pass.Parser.OnStartTag(func(tag markup.StartTag) {
			if !buttonTags[tag.Name] {
				return
			}
			for _, a := range tag.Attrs {
				if a.Name == "type" && a.Value != "" {
					return
				}
			}
			pass.Reportf(tag.Location, "Unexpected %s without type attribute:", tag.Name)
		})
	},
}

// RuleNoHashtagAnchors reports anchors whose href is just "#".
var RuleNoHashtagAnchors = &Rule{
	Name:     "no-hashtag-anchors",
	Doc:      "Report anchors with href=\"#\".\n\nAn anchor that links nowhere is a button in disguise. Use a <button> or a real link target.",
	Severity: SeverityError,
	Register: func(pass *Pass) {
		pass.Parser.OnStartTag(func(tag markup.StartTag) {
			if tag.Name != "a" {
				return
			}
			for _, a := range tag.Attrs {
				if a.Name != "href" || a.Value != "#" {
					continue
				}
				start := a.ValueOffset
				end := start + len(a.RawValue())
				pass.Reportf(token.Resolve(a.Raw, start, end, a.Location), "Unexpected hashtag anchor")
			}
		})
	},
}

var matchIcon = regexp.MustCompile(`jha-icon-[\w-]+`)

// RuleIconTitles reports icon elements without a title.
var RuleIconTitles = &Rule{
	Name:     "icon-titles",
	Doc:      "Report icons without a title attribute.\n\nIcon elements (jha-icon-*) must carry a title so assistive technology can describe them.",
	Severity: SeverityError,
	Register: func(pass *Pass) {
		pass.Parser.OnStartTag(func(tag markup.StartTag) {
			if !matchIcon.MatchString(tag.Name) || tag.HasAttr("title") {
				return
			}
			pass.Reportf(tag.Location, "Icon has no title attribute: %s", tag.Name)
		})
	},
}

// componentName derives the component a file or import href defines.
func componentName(p string) string {
	return markup.ComponentNameFromPath(p, path.Ext(filepath.ToSlash(p)))
}

type use struct {
	name string
	loc  token.Location
}

// usesByAttribute returns the components a start tag uses through
// attributes: the names listed in <style include="..."> and the extension
// named by is="..." on a built-in element.
func usesByAttribute(tag markup.StartTag) []use {
	if tag.Name == "style" {
		a, ok := tag.Attr("include")
		if !ok {
			return nil
		}
		var uses []use
		for _, name := range strings.Fields(a.Value) {
			uses = append(uses, use{name, a.Location})
		}
		return uses
	}
	if markup.IsCustomElementName(tag.Name) {
		return nil
	}
	if a, ok := tag.Attr("is"); ok && a.Value != "" {
		return []use{{a.Value, a.Location}}
	}
	return nil
}

// DefaultRules returns the built-in set of lint checks.
func DefaultRules() []*Rule {
	return []*Rule{
		RuleNoAutoBinding,
		RuleNoMissingImport,
		RuleNoUnusedImport,
		RuleOneComponent,
		RuleComponentNameMatchesFilename,
		RuleStyleInsideTemplate,
		RuleNoTypelessButtons,
		RuleNoHashtagAnchors,
		RuleIconTitles,
	}
}

// RuleByName returns the built-in rule with the given name.
func RuleByName(name string) (*Rule, bool) {
	for _, r := range DefaultRules() {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// Select returns the built-in rules with the given names, in the given
// order. Duplicate names are ignored. A name without a built-in rule is
// returned as an undefined rule, which reports itself when a document is
// linted. With no names every built-in rule is returned.
func Select(names []string) []*Rule {
	if len(names) == 0 {
		return DefaultRules()
	}
	seen := make(map[string]bool, len(names))
	rules := make([]*Rule, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		r, ok := RuleByName(name)
		if !ok {
			r = &Rule{Name: name, Severity: SeverityError}
		}
		rules = append(rules, r)
	}
	return rules
}

// RuleNames returns a sorted list of all built-in rule names.
func RuleNames() []string {
	rules := DefaultRules()
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name
	}
	sort.Strings(names)
	return names
}

// RuleDoc returns a formatted documentation string for all rules.
func RuleDoc() string {
	var b strings.Builder
	for _, r := range DefaultRules() {
		fmt.Fprintf(&b, "  %s\n", r.Name)
		lines := strings.Split(r.Doc, "\n")
		fmt.Fprintf(&b, "    %s\n\n", lines[0])
	}
	return b.String()
}
