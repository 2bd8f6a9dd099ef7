// Copyright © 2024 The BPLint authors

// Package lint provides static analysis for component template documents.
//
// The linter is modeled after go vet: each check is an independent Rule that
// subscribes to the events of a single forward pass over the document and
// reports findings. The framework handles tokenizing, running rules,
// collecting and ordering findings, and formatting output. Rules never see
// the suppression directives; findings are filtered against the directive
// stack after the pass (see FilterSuppressed).
package lint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/luthersystems/bplint/directive"
	"github.com/luthersystems/bplint/parser/markup"
	"github.com/luthersystems/bplint/parser/token"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Severity indicates the severity level of a finding.
type Severity int

const (
	severityUnset Severity = iota // unexported zero sentinel for default detection
	SeverityError
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the severity as a JSON string.
// An unset severity (zero value) is marshaled as "error".
func (s Severity) MarshalJSON() ([]byte, error) {
	if s == severityUnset {
		return json.Marshal("error")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes a severity from a JSON string.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return fmt.Errorf("unknown severity: %q", str)
	}
	return nil
}

// Rule defines a single lint check.
type Rule struct {
	// Name is a short identifier for this check (e.g. "no-missing-import").
	Name string

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	// Severity is the default severity for findings from this rule.
	Severity Severity

	// Register subscribes the check to the events of pass.Parser. It is
	// called once per document, before the document is read, so any state
	// the check needs should be created inside Register. A rule without a
	// Register function is undefined.
	Register func(pass *Pass)
}

// Pass provides context to a rule for one document.
type Pass struct {
	// Rule is the check being registered.
	Rule *Rule

	// Parser is the event source for the document.
	Parser *markup.Parser

	// Filename is the name of the document, if it has one.
	Filename string

	// Stack tracks the directives of the document. Rules normally have no
	// need for it; suppression is applied after the pass.
	Stack *directive.Stack

	findings *[]Finding
}

// Report records a finding.
func (p *Pass) Report(f Finding) {
	f.Rule = p.Rule.Name
	if f.Severity == severityUnset {
		f.Severity = p.Rule.Severity
	}
	*p.findings = append(*p.findings, f)
}

// Reportf is a convenience for reporting a finding at a location.
func (p *Pass) Reportf(loc token.Location, format string, args ...interface{}) {
	p.Report(Finding{
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	})
}

// Finding is a single reported problem.
type Finding struct {
	// Rule is the name of the check that found this problem.
	Rule string `json:"rule"`

	// Message is a human-readable description of the problem.
	Message string `json:"message"`

	// Location is the source location of the problem.
	Location token.Location `json:"location"`

	// Severity is the severity level of the finding.
	Severity Severity `json:"severity"`
}

// String returns the finding in go vet style: line:col: message (rule)
func (f Finding) String() string {
	return fmt.Sprintf("%s: %s (%s)", f.Location, f.Message, f.Rule)
}

// Context is what is known about a document once it has been linted.
type Context struct {
	Filename string
	// Stack is the completed directive stack of the document.
	Stack *directive.Stack
}

// Result is the outcome of linting one document.
type Result struct {
	Filename string

	// Errors holds every finding in document order, before suppression.
	Errors []Finding

	Context Context

	// Err is set when the document could not be read. Errors is empty in
	// that case.
	Err error
}

// Filtered returns the findings that are not suppressed by directives.
func (r *Result) Filtered() []Finding {
	if r.Context.Stack == nil {
		return r.Errors
	}
	return FilterSuppressed(r.Errors, r.Context.Stack)
}

// Results is the outcome of linting a batch of documents, in input order.
type Results []*Result

// Findings returns the total number of unsuppressed findings.
func (rs Results) Findings() int {
	n := 0
	for _, r := range rs {
		n += len(r.Filtered())
	}
	return n
}

// Failed returns the results of documents that could not be read.
func (rs Results) Failed() Results {
	var failed Results
	for _, r := range rs {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// Linter runs a set of rules over documents.
type Linter struct {
	Rules []*Rule

	// Logger receives debug output for each document. A nil Logger discards.
	Logger *slog.Logger

	// Tracer creates a span per document. The global tracer provider is used
	// when nil.
	Tracer trace.Tracer

	// Jobs limits the number of documents linted concurrently by a batch.
	// Zero or less means GOMAXPROCS.
	Jobs int
}

const tracerName = "github.com/luthersystems/bplint/lint"

func (l *Linter) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l.Logger
}

func (l *Linter) tracer() trace.Tracer {
	if l.Tracer == nil {
		return otel.Tracer(tracerName)
	}
	return l.Tracer
}

// LintFile reads and lints the named file.
func (l *Linter) LintFile(ctx context.Context, filename string) (*Result, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // read-only
	return l.LintReader(ctx, f, filename)
}

// LintBytes lints an in-memory document. The filename may be empty.
func (l *Linter) LintBytes(ctx context.Context, src []byte, filename string) (*Result, error) {
	return l.LintReader(ctx, bytes.NewReader(src), filename)
}

// LintString lints an in-memory document. The filename may be empty.
func (l *Linter) LintString(ctx context.Context, src string, filename string) (*Result, error) {
	return l.LintReader(ctx, strings.NewReader(src), filename)
}

// LintReader lints the document read from r. Findings in the result are
// sorted by location, with findings at the same location kept in the order
// they were reported. An error is returned only when the document cannot be
// read to the end.
func (l *Linter) LintReader(ctx context.Context, r io.Reader, filename string) (*Result, error) {
	ctx, span := l.tracer().Start(ctx, "bplint.lint",
		trace.WithAttributes(semconv.CodeFilepath(filename)))
	defer span.End()
	start := time.Now()

	p := markup.New()
	stack := directive.NewStack()
	stack.ListenTo(p)

	var findings []Finding
	for _, rule := range l.Rules {
		pass := &Pass{
			Rule:     rule,
			Parser:   p,
			Filename: filename,
			Stack:    stack,
			findings: &findings,
		}
		if rule.Register == nil {
			l.logger().Warn("undefined rule", "rule", rule.Name, "file", filename)
			pass.Report(Finding{
				Message:  fmt.Sprintf("Definition for rule '%s' was not found", rule.Name),
				Location: token.Origin(),
				Severity: SeverityError,
			})
			continue
		}
		rule.Register(pass)
	}

	if err := p.Parse(ctx, r); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if filename != "" {
			err = fmt.Errorf("%s: %w", filename, err)
		}
		return nil, err
	}

	slices.SortStableFunc(findings, func(a, b Finding) int {
		return token.Compare(a.Location, b.Location)
	})
	if findings == nil {
		findings = []Finding{}
	}

	span.SetAttributes(attribute.Int("bplint.findings", len(findings)))
	l.logger().Debug("linted document",
		"file", filename,
		"findings", len(findings),
		"duration", time.Since(start))

	return &Result{
		Filename: filename,
		Errors:   findings,
		Context:  Context{Filename: filename, Stack: stack},
	}, nil
}
