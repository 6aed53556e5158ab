package watcher

import (
	"context"

	"github.com/mvp-joe/component-atlas/internal/syncer"
)

// FileWatcher monitors source files for changes with debouncing and pause/resume support.
type FileWatcher interface {
	// Start begins watching source directories, calling callback with debounced file changes.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error

	// Pause stops firing callbacks but continues accumulating events.
	Pause()

	// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
	Resume()
}

// Refresher runs one explicit sync. *discovery.Bootstrapper implements it.
type Refresher interface {
	Refresh(ctx context.Context, force bool) (*syncer.SyncReport, error)
}
