// Package importer runs the offline jobs that produce Book records from
// external sources: Project Gutenberg texts, Wikipedia compilations and the
// library's Excel workbook. Sources run concurrently and fail independently.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kevinaaaquil/digilib/models"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultConcurrency = 4
)

// Source produces books. A source that fails may still return books, for
// example a placeholder that keeps the title discoverable.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.Book, error)
}

// SourceError records which source failed. It never aborts a run.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("import source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

type Runner struct {
	// Timeout bounds each source separately.
	Timeout     time.Duration
	Concurrency int
	Logger      *slog.Logger
}

// Report lists books in source order, followed by the failures.
type Report struct {
	Books  []models.Book
	Failed []*SourceError
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// Run fetches every source. The output order follows sources regardless of
// which finishes first.
func (r *Runner) Run(ctx context.Context, sources []Source) *Report {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	limit := r.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	results := make([][]models.Book, len(sources))
	failures := make([]*SourceError, len(sources))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, src := range sources {
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			books, err := src.Fetch(sctx)
			results[i] = books
			if err != nil {
				failures[i] = &SourceError{Source: src.Name(), Err: err}
				r.logger().Warn("import source failed", "source", src.Name(), "books", len(books), "error", err)
				return nil
			}
			r.logger().Info("import source done", "source", src.Name(), "books", len(books), "took", time.Since(start).Round(time.Millisecond))
			return nil
		})
	}
	_ = g.Wait()

	rep := &Report{}
	for i := range sources {
		rep.Books = append(rep.Books, results[i]...)
		if failures[i] != nil {
			rep.Failed = append(rep.Failed, failures[i])
		}
	}
	return rep
}
