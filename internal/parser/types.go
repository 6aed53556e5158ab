package parser

import (
	"errors"
	"fmt"

	"github.com/mvp-joe/component-atlas/internal/component"
)

// ErrParseFailure means the manifest itself could not be read or parsed. It
// aborts the sync; per-export problems are Warnings instead.
var ErrParseFailure = errors.New("manifest parse failure")

// OutcomeKind tags an Outcome.
type OutcomeKind int

const (
	// Recognized means the export produced a component record.
	Recognized OutcomeKind = iota
	// Skipped means the export was not turned into a record; Reason says why.
	Skipped
)

func (k OutcomeKind) String() string {
	switch k {
	case Recognized:
		return "recognized"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the result of applying the export rules to one exported symbol.
// Exactly one of Record (Recognized) or Reason (Skipped) is meaningful.
type Outcome struct {
	Kind   OutcomeKind
	Name   string
	Record component.ComponentRecord
	Reason string
	Rule   string // name of the rule that produced the outcome
	File   string // project-relative file containing the export
	Line   int
}

// Warning is a non-fatal problem found while parsing.
type Warning struct {
	File    string
	Line    int
	Message string
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", w.File, w.Line, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.File, w.Message)
}

// Result is the output of one parse pass, in manifest order. Duplicate names
// are kept; the sync engine resolves them.
type Result struct {
	Outcomes []Outcome
	Warnings []Warning
}

// Records returns the recognized records in manifest order.
func (r *Result) Records() []component.ComponentRecord {
	records := make([]component.ComponentRecord, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.Kind == Recognized {
			records = append(records, o.Record)
		}
	}
	return records
}

// Counts returns the number of recognized and skipped outcomes.
func (r *Result) Counts() (recognized, skipped int) {
	for _, o := range r.Outcomes {
		if o.Kind == Recognized {
			recognized++
		} else {
			skipped++
		}
	}
	return recognized, skipped
}

// ProgressReporter receives parse progress callbacks.
type ProgressReporter interface {
	OnParseStart(totalExports int)
	OnExportParsed(name string)
	OnParseComplete(recognized, skipped int)
}

// NoOpProgressReporter discards progress.
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnParseStart(int)         {}
func (NoOpProgressReporter) OnExportParsed(string)    {}
func (NoOpProgressReporter) OnParseComplete(int, int) {}
