// Copyright © 2024 The BPLint authors

package markup

import (
	"strings"

	"github.com/luthersystems/bplint/parser/token"
	"golang.org/x/net/html"
)

// scanAttrs splits the raw text of a start tag into attributes. The
// tokenizer decodes attributes but discards their positions, so the raw tag
// is rescanned here. loc is the location of the whole tag.
func scanAttrs(raw string, loc token.Location) []Attr {
	i := 1
	for i < len(raw) && !isSpace(raw[i]) && raw[i] != '/' && raw[i] != '>' {
		i++
	}
	var attrs []Attr
	for i < len(raw) {
		for i < len(raw) && (isSpace(raw[i]) || raw[i] == '/') {
			i++
		}
		if i >= len(raw) || raw[i] == '>' {
			break
		}
		start := i
		// A leading '=' belongs to the name.
		i++
		for i < len(raw) && !isSpace(raw[i]) && raw[i] != '=' && raw[i] != '>' && raw[i] != '/' {
			i++
		}
		a := Attr{Name: strings.ToLower(raw[start:i]), ValueOffset: -1}
		end := i
		j := skipSpace(raw, i)
		if j < len(raw) && raw[j] == '=' {
			j = skipSpace(raw, j+1)
			var value string
			switch {
			case j < len(raw) && (raw[j] == '"' || raw[j] == '\''):
				q := raw[j]
				j++
				a.ValueOffset = j - start
				if k := strings.IndexByte(raw[j:], q); k >= 0 {
					value = raw[j : j+k]
					j += k + 1
				} else {
					value = strings.TrimSuffix(raw[j:], ">")
					j += len(value)
				}
			default:
				a.ValueOffset = j - start
				vs := j
				for j < len(raw) && !isSpace(raw[j]) && raw[j] != '>' {
					j++
				}
				value = raw[vs:j]
			}
			a.Value = html.UnescapeString(value)
			end = j
			i = j
		}
		a.Raw = raw[start:end]
		a.Location = token.Resolve(raw, start, end, loc)
		attrs = append(attrs, a)
	}
	return attrs
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}
