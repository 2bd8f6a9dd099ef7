// Copyright © 2024 The BPLint authors

package markup

import (
	"context"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/luthersystems/bplint/parser/token"
	"golang.org/x/net/html"
)

// cursor tracks the position of the next unread byte.
type cursor struct {
	line   int
	col    int
	offset int
}

func (c cursor) location(n int) token.Location {
	return token.Location{
		Line:        c.line,
		Col:         c.col,
		StartOffset: c.offset,
		EndOffset:   c.offset + n,
	}
}

func (c *cursor) advance(raw string) {
	c.offset += len(raw)
	for len(raw) > 0 {
		nl := strings.IndexByte(raw, '\n')
		if nl < 0 {
			c.col += utf8.RuneCountInString(raw)
			return
		}
		c.line++
		c.col = 1
		raw = raw[nl+1:]
	}
}

// Parse reads the document from r and emits events to the registered
// listeners. It returns the first read error other than io.EOF, or the
// context's error if ctx is done before the document is fully read. The
// end event is only emitted when the whole document was read.
//
// A Parser is good for a single call to Parse.
func (p *Parser) Parse(ctx context.Context, r io.Reader) error {
	z := html.NewTokenizer(r)
	pos := cursor{line: 1, col: 1}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		tt := z.Next()
		if tt == html.ErrorToken {
			err := z.Err()
			if errors.Is(err, io.EOF) {
				p.emitEnd(pos.location(0))
				return nil
			}
			return &token.LocationError{Err: err, Source: pos.location(0)}
		}
		raw := string(z.Raw())
		loc := pos.location(len(raw))
		pos.advance(raw)
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			p.emitStartTag(StartTag{
				Name:        string(name),
				Attrs:       scanAttrs(raw, loc),
				SelfClosing: tt == html.SelfClosingTagToken,
				Raw:         raw,
				Location:    loc,
			})
		case html.EndTagToken:
			name, _ := z.TagName()
			p.emitEndTag(EndTag{Name: string(name), Location: loc})
		case html.TextToken:
			p.emitText(Text{Data: string(z.Text()), Raw: raw, Location: loc})
		case html.CommentToken:
			p.emitComment(Comment{Data: string(z.Text()), Location: loc})
		}
	}
}
