// Package batch sequences multi-entity imports. Entity types are imported
// strictly in the configured order because later types reference earlier
// ones; the run halts on the first blocking failure and reports how many
// entity types fully committed. Previously committed entity types stay
// committed; a staged import does not roll back across entities.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tenjam/shopsync/internal/client"
	"github.com/tenjam/shopsync/internal/core"
)

// Importer runs the two-phase protocol for one entity batch. Satisfied by
// *client.Client; tests use a local fake.
type Importer interface {
	Preview(ctx context.Context, entity core.EntityType, content []byte) (*client.PreviewResponse, error)
	Confirm(ctx context.Context, entity core.EntityType, token string) (*core.CommitSummary, error)
}

// Source is one entity batch to import.
type Source struct {
	Entity  core.EntityType
	Name    string // origin label for logs, usually the file path
	Content []byte
}

// Result reports the outcome of a batch run.
type Result struct {
	Committed int                  // entity types fully committed
	Total     int                  // entity types attempted or planned
	Failed    core.EntityType      // entity type that halted the run, if any
	Err       error                // why the run halted
	Summaries []core.CommitSummary // commit summaries, in order
}

// OK reports whether every entity type committed.
func (r Result) OK() bool { return r.Err == nil && r.Committed == r.Total }

// Run executes preview+confirm sequentially over the sources, in the given
// order, halting on the first entity type whose preview reports blocking
// errors or whose confirm fails. The order is never changed and imports
// are never parallelized: referential checks for later entity types assume
// earlier ones are already committed.
func Run(ctx context.Context, imp Importer, sources []Source) Result {
	result := Result{Total: len(sources)}

	for _, src := range sources {
		logger := slog.Default().With("entity", src.Entity, "source", src.Name)

		preview, err := imp.Preview(ctx, src.Entity, src.Content)
		if err != nil {
			result.Failed = src.Entity
			result.Err = fmt.Errorf("preview %s: %w", src.Entity, err)
			return result
		}
		if len(preview.Errors) > 0 {
			for _, d := range preview.Errors {
				logger.Error("validation error", "detail", d.String())
			}
			result.Failed = src.Entity
			result.Err = fmt.Errorf("preview %s: %d validation errors", src.Entity, len(preview.Errors))
			return result
		}
		for _, d := range preview.Warnings {
			logger.Warn("validation warning", "detail", d.String())
		}

		summary, err := imp.Confirm(ctx, src.Entity, preview.ImportToken)
		if err != nil {
			result.Failed = src.Entity
			result.Err = fmt.Errorf("confirm %s: %w", src.Entity, err)
			return result
		}

		logger.Info("entity committed", "rows", summary.Committed)
		result.Summaries = append(result.Summaries, *summary)
		result.Committed++
	}

	return result
}

// WaitHealthy polls the probe until it succeeds or the timeout elapses.
// The batch driver uses it to gate the first import on backend liveness.
func WaitHealthy(ctx context.Context, probe func(context.Context) error, timeout, interval time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if lastErr = probe(ctx); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("backend not healthy after %s: %w", timeout, lastErr)
		case <-ticker.C:
		}
	}
}
