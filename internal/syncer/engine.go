// Package syncer reconciles a fresh parse of the manifest with the persisted
// generation and writes the result back.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/mvp-joe/component-atlas/internal/component"
	"github.com/mvp-joe/component-atlas/internal/logging"
	"github.com/mvp-joe/component-atlas/internal/parser"
	"github.com/mvp-joe/component-atlas/internal/store"
)

// Source produces a fresh parse of the manifest. *parser.Parser implements it.
type Source interface {
	Parse(ctx context.Context) (*parser.Result, error)
}

// Engine runs sync passes. Passes are serialized: a second call blocks until
// the first has persisted or failed.
type Engine struct {
	source Source
	store  store.Store
	logger *log.Logger

	mu  sync.Mutex
	now func() time.Time
}

// New creates a sync engine.
func New(source Source, st store.Store, logger *log.Logger) *Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Engine{
		source: source,
		store:  st,
		logger: logger,
		now:    time.Now,
	}
}

// Sync parses, diffs against the stored generation and persists the result.
// On success it also returns the records that were written, in manifest
// order. On failure the report has Success=false, the store is untouched and
// the returned records are nil.
func (e *Engine) Sync(ctx context.Context) (*SyncReport, []component.ComponentRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := e.now()
	report := newReport()
	fail := func(err error) (*SyncReport, []component.ComponentRecord) {
		report.Success = false
		report.Error = err.Error()
		report.DurationMs = e.now().Sub(start).Milliseconds()
		e.logger.Error("Sync failed", "error", err)
		return report, nil
	}

	result, err := e.source.Parse(ctx)
	if err != nil {
		return fail(fmt.Errorf("parse: %w", err))
	}
	for _, w := range result.Warnings {
		report.Warnings = append(report.Warnings, w.String())
	}
	fresh := component.Dedupe(result.Records())

	previous, err := e.store.Load(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fail(fmt.Errorf("load previous generation: %w", err))
	}

	d := Diff(previous, fresh)

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if err := e.store.Save(ctx, fresh); err != nil {
		return fail(fmt.Errorf("save: %w", err))
	}

	report.Success = true
	report.ComponentCount = len(fresh)
	report.NewComponents = d.New
	report.UpdatedComponents = d.Updated
	report.RemovedComponents = d.Removed
	report.UnchangedCount = d.Unchanged
	report.GenerationID = uuid.NewString()
	report.DurationMs = e.now().Sub(start).Milliseconds()

	e.logger.Info("Sync complete",
		"generation", report.GenerationID,
		"components", report.ComponentCount,
		"new", len(d.New),
		"updated", len(d.Updated),
		"removed", len(d.Removed),
		"warnings", len(report.Warnings),
	)

	return report, fresh
}

// Delta partitions two generations by name.
type Delta struct {
	New       []string // in fresh order
	Updated   []string // in fresh order
	Removed   []string // in previous order
	Unchanged int
}

// Diff compares the previous generation with a fresh, deduplicated one.
func Diff(previous, fresh []component.ComponentRecord) Delta {
	d := Delta{New: []string{}, Updated: []string{}, Removed: []string{}}

	prev := make(map[string]component.ComponentRecord, len(previous))
	for _, r := range previous {
		prev[r.Name] = r
	}
	inFresh := make(map[string]bool, len(fresh))

	for _, r := range fresh {
		inFresh[r.Name] = true
		old, ok := prev[r.Name]
		switch {
		case !ok:
			d.New = append(d.New, r.Name)
		case !component.Equal(old, r):
			d.Updated = append(d.Updated, r.Name)
		default:
			d.Unchanged++
		}
	}

	seen := make(map[string]bool, len(previous))
	for _, r := range previous {
		if !inFresh[r.Name] && !seen[r.Name] {
			seen[r.Name] = true
			d.Removed = append(d.Removed, r.Name)
		}
	}
	return d
}
