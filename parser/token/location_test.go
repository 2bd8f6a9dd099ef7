// Copyright © 2024 The BPLint authors

package token

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// col  1   5   10   15
//
//	'The quick \n'          line 1, offsets 0-10
//	'brown fox jumped \n'   line 2, offsets 11-28
//	'over \n'               line 3, offsets 29-34
//	'the lazy dog.'         line 4, offsets 35-47
const fourLines = "The quick \n" +
	"brown fox jumped \n" +
	"over \n" +
	"the lazy dog."

func TestResolveOffset(t *testing.T) {
	from := Location{Line: 3, Col: 16, StartOffset: 25}
	tests := []struct {
		off      int
		want     Location
		wantFrom Location
	}{
		{0, Location{1, 1, 0, 0}, Location{3, 16, 25, 25}},
		{10, Location{1, 11, 10, 10}, Location{3, 26, 35, 35}},
		{11, Location{2, 1, 11, 11}, Location{4, 1, 36, 36}},
		{20, Location{2, 10, 20, 20}, Location{4, 10, 45, 45}},
		{34, Location{3, 6, 34, 34}, Location{5, 6, 59, 59}},
		{35, Location{4, 1, 35, 35}, Location{6, 1, 60, 60}},
		{47, Location{4, 13, 47, 47}, Location{6, 13, 72, 72}},
	}
	for _, test := range tests {
		t.Run(fmt.Sprint(test.off), func(t *testing.T) {
			assert.Equal(t, test.want, ResolveOffset(fourLines, test.off))
			assert.Equal(t, test.wantFrom, Resolve(fourLines, test.off, test.off, from))
		})
	}
}

func TestResolve_SubSpanOnFirstLine(t *testing.T) {
	base := Location{Line: 1, Col: 8, StartOffset: 7, EndOffset: 22}
	got := Resolve("Hello, {{val}}!", 7, 14, base)
	assert.Equal(t, Location{Line: 1, Col: 15, StartOffset: 14, EndOffset: 21}, got)
}

func TestResolve_SubSpanOnLaterLineResetsColumn(t *testing.T) {
	// The attribute starts at 2:6 but the binding sits on its second line.
	attr := "title=\"first\n  {{second}}\""
	base := Location{Line: 2, Col: 6, StartOffset: 40, EndOffset: 40 + len(attr)}
	got := Resolve(attr, 15, 25, base)
	assert.Equal(t, Location{Line: 3, Col: 3, StartOffset: 55, EndOffset: 65}, got)
}

func TestResolve_EmptyText(t *testing.T) {
	assert.Equal(t, Location{Line: 1, Col: 1}, ResolveOffset("", 20))

	base := Location{Line: 4, Col: 9, StartOffset: 30, EndOffset: 38}
	assert.Equal(t, Location{Line: 4, Col: 9, StartOffset: 30, EndOffset: 30}, Resolve("", 3, 5, base))
}

func TestResolve_EndBeforeStart(t *testing.T) {
	got := Resolve(fourLines, 10, 5, Origin())
	assert.Equal(t, 10, got.EndOffset)
	assert.Equal(t, 0, got.Width())
}

func TestResolve_StartPastEnd(t *testing.T) {
	assert.Equal(t, ResolveOffset(fourLines, len(fourLines)-1), ResolveOffset(fourLines, 1000))
}

func TestResolve_StartPastEndMultibyte(t *testing.T) {
	got := ResolveOffset("añb✓", 100)
	assert.Equal(t, Location{Line: 1, Col: 4, StartOffset: 4, EndOffset: 4}, got)
}

func TestResolve_StartInsideMultibyte(t *testing.T) {
	// ñ occupies bytes 1-2 and ✓ bytes 4-6.
	assert.Equal(t, Location{Line: 1, Col: 2, StartOffset: 1, EndOffset: 3}, Resolve("añb✓", 2, 3, Origin()))
	assert.Equal(t, Location{Line: 1, Col: 4, StartOffset: 4, EndOffset: 7}, Resolve("añb✓", 5, 7, Origin()))
	assert.Equal(t, Location{Line: 2, Col: 1, StartOffset: 2, EndOffset: 2}, ResolveOffset("a\nñb", 3))
}

func TestResolve_ColumnsCountRunes(t *testing.T) {
	text := "<p>héllo {{x}}</p>"
	got := Resolve(text, 10, 15, Origin())
	assert.Equal(t, 10, got.Col)
	assert.Equal(t, 10, got.StartOffset)
	assert.Equal(t, 15, got.EndOffset)
}

func TestResolve_DoesNotMutateBase(t *testing.T) {
	base := Location{Line: 2, Col: 3, StartOffset: 10, EndOffset: 12}
	orig := base
	Resolve("abc\ndef", 5, 6, base)
	assert.Equal(t, orig, base)
}

func TestCompare(t *testing.T) {
	a := Location{Line: 2, Col: 5}
	b := Location{Line: 2, Col: 9}
	c := Location{Line: 3, Col: 1}

	assert.Negative(t, Compare(a, b))
	assert.Positive(t, Compare(b, a))
	assert.Negative(t, Compare(b, c))
	assert.Zero(t, Compare(a, Location{Line: 2, Col: 5, StartOffset: 99}))
	assert.True(t, a.Before(c))
	assert.False(t, c.Before(a))
	assert.False(t, a.Before(a))
}

// A later line with a small column must not sort before an earlier line with
// a large column.
func TestCompare_LineDominatesColumn(t *testing.T) {
	early := Location{Line: 1, Col: 40}
	late := Location{Line: 5, Col: 2}
	assert.True(t, early.Before(late))
	assert.False(t, late.Before(early))
}

func TestLocation_String(t *testing.T) {
	assert.Equal(t, "3:14", Location{Line: 3, Col: 14}.String())
}

func TestLocationError(t *testing.T) {
	inner := errors.New("boom")
	err := &LocationError{Err: inner, Source: Location{Line: 2, Col: 7}, File: "x-foo.html"}
	assert.Equal(t, "x-foo.html:2:7: boom", err.Error())
	assert.ErrorIs(t, err, inner)

	err.File = ""
	assert.Equal(t, "2:7: boom", err.Error())
}
