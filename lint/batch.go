// Copyright © 2024 The BPLint authors

package lint

import (
	"context"
	"runtime"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Document is one input of a batch.
type Document struct {
	Filename string

	// Content is linted in place of the file's contents when non-nil.
	Content []byte
}

// LintFiles lints the named files concurrently. See LintDocuments.
func (l *Linter) LintFiles(ctx context.Context, filenames []string) Results {
	docs := make([]Document, len(filenames))
	for i, name := range filenames {
		docs[i] = Document{Filename: name}
	}
	return l.LintDocuments(ctx, docs)
}

// LintDocuments lints each document in its own pass, up to Jobs at a time,
// and returns one result per document in input order. A document that
// cannot be read yields a result with Err set; it never affects the results
// of the other documents.
func (l *Linter) LintDocuments(ctx context.Context, docs []Document) Results {
	ctx, span := l.tracer().Start(ctx, "bplint.batch")
	defer span.End()
	span.SetAttributes(attribute.Int("bplint.documents", len(docs)))

	results := make(Results, len(docs))
	var g errgroup.Group
	g.SetLimit(l.jobs())
	for i, doc := range docs {
		g.Go(func() error {
			results[i] = l.lintDocument(ctx, doc)
			return nil
		})
	}
	_ = g.Wait() // workers never fail; errors are kept per result

	failed := len(results.Failed())
	span.SetAttributes(attribute.Int("bplint.failed", failed))
	l.logger().Debug("linted batch", "documents", len(docs), "failed", failed)
	return results
}

func (l *Linter) lintDocument(ctx context.Context, doc Document) *Result {
	var (
		res *Result
		err error
	)
	if doc.Content != nil {
		res, err = l.LintBytes(ctx, doc.Content, doc.Filename)
	} else {
		res, err = l.LintFile(ctx, doc.Filename)
	}
	if err != nil {
		l.logger().Warn("lint failed", "file", doc.Filename, "error", err)
		return &Result{
			Filename: doc.Filename,
			Errors:   []Finding{},
			Context:  Context{Filename: doc.Filename},
			Err:      err,
		}
	}
	return res
}

func (l *Linter) jobs() int {
	if l.Jobs > 0 {
		return l.Jobs
	}
	return runtime.GOMAXPROCS(0)
}
