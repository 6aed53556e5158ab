package syncer

import (
	"fmt"
	"strings"
)

// SyncReport is the result of one sync run. It is returned to the caller and
// never persisted.
type SyncReport struct {
	Success           bool     `json:"success"`
	ComponentCount    int      `json:"componentCount"`
	NewComponents     []string `json:"newComponents"`
	UpdatedComponents []string `json:"updatedComponents"`
	RemovedComponents []string `json:"removedComponents"`
	UnchangedCount    int      `json:"unchangedCount"`
	Warnings          []string `json:"warnings"`
	Error             string   `json:"error,omitempty"`
	GenerationID      string   `json:"generationId,omitempty"`
	DurationMs        int64    `json:"durationMs"`
}

func newReport() *SyncReport {
	return &SyncReport{
		NewComponents:     []string{},
		UpdatedComponents: []string{},
		RemovedComponents: []string{},
		Warnings:          []string{},
	}
}

// Changed reports whether the run added, updated or removed anything.
func (r *SyncReport) Changed() bool {
	return len(r.NewComponents)+len(r.UpdatedComponents)+len(r.RemovedComponents) > 0
}

// Summary is a one-line human readable description.
func (r *SyncReport) Summary() string {
	if !r.Success {
		return fmt.Sprintf("sync failed: %s", r.Error)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d components (%d new, %d updated, %d removed, %d unchanged)",
		r.ComponentCount, len(r.NewComponents), len(r.UpdatedComponents), len(r.RemovedComponents), r.UnchangedCount)
	if len(r.Warnings) > 0 {
		fmt.Fprintf(&b, ", %d warnings", len(r.Warnings))
	}
	return b.String()
}
