// Copyright © 2024 The BPLint authors

// Package markup scans HTML-like component templates in a single forward
// pass and emits structural events with exact source locations.
//
// The Parser is an event source: consumers subscribe to the events they care
// about and then call Parse. Besides the plain tag, text and comment events
// it derives scope events (used to track directive nesting), directive
// events for bplint comments, and a few component-specific events for
// imports, <dom-module> definitions and custom elements.
package markup

import (
	"github.com/luthersystems/bplint/directive"
	"github.com/luthersystems/bplint/parser/token"
)

// Attr is an attribute of a start tag.
type Attr struct {
	// Name is the lower-cased attribute name.
	Name string
	// Value is the attribute value with character references decoded.
	Value string
	// Raw is the attribute exactly as written, e.g. `href="/a/{{b}}"`.
	Raw string
	// ValueOffset is the byte offset of the undecoded value within Raw, or
	// -1 when the attribute has no value.
	ValueOffset int
	// Location spans Raw within the document.
	Location token.Location
}

// RawValue returns the value as written in the source.
func (a Attr) RawValue() string {
	if a.ValueOffset < 0 {
		return ""
	}
	v := a.Raw[a.ValueOffset:]
	if a.ValueOffset > 0 {
		if q := a.Raw[a.ValueOffset-1]; (q == '"' || q == '\'') && len(v) > 0 && v[len(v)-1] == q {
			v = v[:len(v)-1]
		}
	}
	return v
}

// StartTag is an opening (or self-closing) tag.
type StartTag struct {
	Name        string
	Attrs       []Attr
	SelfClosing bool
	Raw         string
	Location    token.Location
}

// Attr returns the first attribute named name.
func (t StartTag) Attr(name string) (Attr, bool) {
	for _, a := range t.Attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attr{}, false
}

// AttrValue returns the value of the first attribute named name, or "".
func (t StartTag) AttrValue(name string) string {
	a, _ := t.Attr(name)
	return a.Value
}

// HasAttr reports whether the tag carries an attribute named name.
func (t StartTag) HasAttr(name string) bool {
	_, ok := t.Attr(name)
	return ok
}

// EndTag is a closing tag.
type EndTag struct {
	Name     string
	Location token.Location
}

// Text is a run of character data between tags.
type Text struct {
	// Data has character references decoded.
	Data string
	// Raw is the text exactly as written. Offsets computed against Raw can
	// be resolved against Location.
	Raw      string
	Location token.Location
}

// Comment is an HTML comment. Data excludes the delimiters.
type Comment struct {
	Data     string
	Location token.Location
}

// Parser emits events for a single document. Listeners must be registered
// before Parse is called and are invoked synchronously, in registration
// order, as the document is read.
type Parser struct {
	startTag       []func(StartTag)
	endTag         []func(EndTag)
	text           []func(Text)
	comment        []func(Comment)
	enterScope     []func(token.Location)
	leaveScope     []func(token.Location)
	directive      []func(directive.Directive)
	importTag      []func(href string, loc token.Location)
	domModuleStart []func(id string, tag StartTag)
	domModuleEnd   []func(EndTag)
	customStart    []func(StartTag)
	customEnd      []func(EndTag)
	end            []func()

	depth int
}

// New returns a Parser with no listeners.
func New() *Parser {
	return &Parser{}
}

var _ directive.Events = (*Parser)(nil)

// OnStartTag subscribes to every start tag.
func (p *Parser) OnStartTag(fn func(StartTag)) { p.startTag = append(p.startTag, fn) }

// OnEndTag subscribes to every end tag.
func (p *Parser) OnEndTag(fn func(EndTag)) { p.endTag = append(p.endTag, fn) }

// OnText subscribes to character data.
func (p *Parser) OnText(fn func(Text)) { p.text = append(p.text, fn) }

// OnComment subscribes to every comment, directives included.
func (p *Parser) OnComment(fn func(Comment)) { p.comment = append(p.comment, fn) }

// OnEnterScope subscribes to scope openings: start tags of elements that
// are neither void nor self-closing.
func (p *Parser) OnEnterScope(fn func(token.Location)) { p.enterScope = append(p.enterScope, fn) }

// OnLeaveScope subscribes to scope closings. Every scope opening is matched
// by exactly one closing; scopes left open at the end of the document are
// closed there.
func (p *Parser) OnLeaveScope(fn func(token.Location)) { p.leaveScope = append(p.leaveScope, fn) }

// OnDirective subscribes to bplint directive comments.
func (p *Parser) OnDirective(fn func(directive.Directive)) { p.directive = append(p.directive, fn) }

// OnImport subscribes to <link rel="import" href="..."> elements.
func (p *Parser) OnImport(fn func(href string, loc token.Location)) {
	p.importTag = append(p.importTag, fn)
}

// OnDomModuleStart subscribes to <dom-module> start tags.
func (p *Parser) OnDomModuleStart(fn func(id string, tag StartTag)) {
	p.domModuleStart = append(p.domModuleStart, fn)
}

// OnDomModuleEnd subscribes to </dom-module> end tags.
func (p *Parser) OnDomModuleEnd(fn func(EndTag)) { p.domModuleEnd = append(p.domModuleEnd, fn) }

// OnCustomElementStart subscribes to start tags of custom elements.
func (p *Parser) OnCustomElementStart(fn func(StartTag)) {
	p.customStart = append(p.customStart, fn)
}

// OnCustomElementEnd subscribes to end tags of custom elements.
func (p *Parser) OnCustomElementEnd(fn func(EndTag)) { p.customEnd = append(p.customEnd, fn) }

// OnEnd subscribes to the end of the document. It is not emitted when Parse
// fails.
func (p *Parser) OnEnd(fn func()) { p.end = append(p.end, fn) }

// Depth returns the number of scopes currently open.
func (p *Parser) Depth() int {
	return p.depth
}

func (p *Parser) emitStartTag(tag StartTag) {
	for _, fn := range p.startTag {
		fn(tag)
	}
	switch tag.Name {
	case "dom-module":
		id := tag.AttrValue("id")
		for _, fn := range p.domModuleStart {
			fn(id, tag)
		}
	case "link":
		if tag.AttrValue("rel") == "import" {
			href := tag.AttrValue("href")
			for _, fn := range p.importTag {
				fn(href, tag.Location)
			}
		}
	default:
		if IsCustomElementName(tag.Name) {
			for _, fn := range p.customStart {
				fn(tag)
			}
		}
	}
	if !tag.SelfClosing && !IsVoidElement(tag.Name) {
		p.depth++
		for _, fn := range p.enterScope {
			fn(tag.Location)
		}
	}
}

func (p *Parser) emitEndTag(tag EndTag) {
	switch {
	case tag.Name == "dom-module":
		for _, fn := range p.domModuleEnd {
			fn(tag)
		}
	case IsCustomElementName(tag.Name):
		for _, fn := range p.customEnd {
			fn(tag)
		}
	}
	for _, fn := range p.endTag {
		fn(tag)
	}
	if !IsVoidElement(tag.Name) && p.depth > 0 {
		p.emitLeaveScope(tag.Location)
	}
}

func (p *Parser) emitLeaveScope(loc token.Location) {
	p.depth--
	for _, fn := range p.leaveScope {
		fn(loc)
	}
}

func (p *Parser) emitText(text Text) {
	for _, fn := range p.text {
		fn(text)
	}
}

func (p *Parser) emitComment(c Comment) {
	for _, fn := range p.comment {
		fn(c)
	}
	d, ok := directive.Parse(c.Data, c.Location)
	if !ok {
		return
	}
	for _, fn := range p.directive {
		fn(d)
	}
}

func (p *Parser) emitEnd(loc token.Location) {
	for p.depth > 0 {
		p.emitLeaveScope(loc)
	}
	for _, fn := range p.end {
		fn()
	}
}
