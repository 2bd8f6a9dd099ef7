// Copyright © 2024 The BPLint authors

// Package linttest provides helpers for testing lint rules against small
// documents.
package linttest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/luthersystems/bplint/lint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Lint runs rules over src and returns the result. The linter logs to the
// test log.
func Lint(t testing.TB, src string, filename string, rules ...*lint.Rule) *lint.Result {
	t.Helper()
	l := &lint.Linter{
		Rules:  rules,
		Logger: NewSlogLogger(t),
	}
	res, err := l.LintString(context.Background(), src, filename)
	require.NoError(t, err)
	return res
}

// Check runs a single rule over src and returns the unsuppressed findings.
func Check(t testing.TB, rule *lint.Rule, src string) []lint.Finding {
	t.Helper()
	return Lint(t, src, "test.html", rule).Filtered()
}

// Want describes an expected finding. Zero fields are not compared.
type Want struct {
	Line    int
	Col     int
	Rule    string
	Message string
}

func (w Want) matches(f lint.Finding) bool {
	return (w.Line == 0 || w.Line == f.Location.Line) &&
		(w.Col == 0 || w.Col == f.Location.Col) &&
		(w.Rule == "" || w.Rule == f.Rule) &&
		(w.Message == "" || w.Message == f.Message)
}

// AssertFindings checks that findings match want exactly, in order.
func AssertFindings(t testing.TB, findings []lint.Finding, want ...Want) bool {
	t.Helper()
	if !assert.Len(t, findings, len(want), "findings: %s", describe(findings)) {
		return false
	}
	ok := true
	for i, w := range want {
		if !w.matches(findings[i]) {
			t.Errorf("finding %d: got %s, want %+v", i, findings[i], w)
			ok = false
		}
	}
	return ok
}

// AssertNoFindings checks that there are no findings.
func AssertNoFindings(t testing.TB, findings []lint.Finding) bool {
	t.Helper()
	return assert.Empty(t, findings, "findings: %s", describe(findings))
}

// AssertHasFinding checks that at least one finding contains substr in its
// message.
func AssertHasFinding(t testing.TB, findings []lint.Finding, substr string) bool {
	t.Helper()
	for _, f := range findings {
		if strings.Contains(f.Message, substr) {
			return true
		}
	}
	t.Errorf("expected finding containing %q, got: %s", substr, describe(findings))
	return false
}

func describe(findings []lint.Finding) string {
	msgs := make([]string, len(findings))
	for i, f := range findings {
		msgs[i] = f.String()
	}
	return fmt.Sprintf("%v", msgs)
}
