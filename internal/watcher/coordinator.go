package watcher

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/mvp-joe/component-atlas/internal/logging"
	"github.com/mvp-joe/component-atlas/internal/syncer"
)

// SyncCoordinator re-runs an explicit sync whenever the file watcher reports
// a batch of changes.
type SyncCoordinator struct {
	files     FileWatcher
	refresher Refresher
	logger    *log.Logger
	onReport  func(report *syncer.SyncReport)
	ctx       context.Context
}

// NewSyncCoordinator creates a coordinator. onReport, if non-nil, receives
// every sync report, including failed ones.
func NewSyncCoordinator(files FileWatcher, refresher Refresher, logger *log.Logger, onReport func(*syncer.SyncReport)) *SyncCoordinator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &SyncCoordinator{
		files:     files,
		refresher: refresher,
		logger:    logger,
		onReport:  onReport,
	}
}

// Start runs an initial sync, then syncs on every debounced batch of file
// changes. Changes seen during the initial sync are held back and fire once
// it completes. Blocks until ctx is cancelled.
func (c *SyncCoordinator) Start(ctx context.Context) error {
	c.ctx = ctx

	c.files.Pause()
	if err := c.files.Start(ctx, c.handleFileChange); err != nil {
		c.cleanup()
		return err
	}

	c.sync(nil)
	c.files.Resume()

	<-ctx.Done()
	c.cleanup()
	return ctx.Err()
}

func (c *SyncCoordinator) cleanup() {
	if err := c.files.Stop(); err != nil {
		c.logger.Warn("File watcher stop failed", "error", err)
	}
}

func (c *SyncCoordinator) handleFileChange(files []string) {
	if len(files) == 0 {
		return
	}
	c.logger.Info("Processing file changes", "count", len(files))
	c.sync(files)
}

func (c *SyncCoordinator) sync(files []string) {
	report, err := c.refresher.Refresh(c.ctx, false)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.logger.Error("Sync failed", "error", err)
		}
		return
	}

	if report.Success {
		c.logger.Info("Synced", "summary", report.Summary(), "changedFiles", len(files))
	} else {
		c.logger.Warn("Sync failed, keeping previous metadata", "error", report.Error)
	}
	if c.onReport != nil {
		c.onReport(report)
	}
}
