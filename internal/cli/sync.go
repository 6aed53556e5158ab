package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/component-atlas/internal/syncer"
	"github.com/mvp-joe/component-atlas/internal/watcher"
)

var (
	syncWatch bool
	syncQuiet bool
	syncJSON  bool
)

// errSyncFailed makes the process exit non-zero after a failed report has
// been printed.
var errSyncFailed = errors.New("sync failed")

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Re-parse the component manifest and update the metadata store",
	Long: `Parse the component manifest, diff the result against the stored metadata
and persist it, then print which components were added, updated or removed.

A failed parse never touches the store: the previous metadata stays in place.

With --watch, atlas keeps running and syncs again whenever a component,
manifest or doc file changes.

Examples:
  atlas sync
  atlas sync --json
  atlas sync --watch`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVarP(&syncWatch, "watch", "w", false, "sync again whenever source files change")
	syncCmd.Flags().BoolVarP(&syncQuiet, "quiet", "q", false, "suppress progress output")
	syncCmd.Flags().BoolVar(&syncJSON, "json", false, "print the sync report as JSON")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := currentAppOptions()
	if !syncQuiet && !syncJSON {
		opts.Progress = NewCLIProgressReporter(cmd.ErrOrStderr())
	}
	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if syncWatch {
		return watchAndSync(ctx, a, out, syncJSON)
	}
	return syncOnce(ctx, a, out, syncJSON)
}

func syncOnce(ctx context.Context, a *app, out io.Writer, asJSON bool) error {
	report, err := a.boot.Refresh(ctx, true)
	if err != nil {
		return err
	}
	if err := writeReport(out, report, asJSON); err != nil {
		return err
	}
	if !report.Success {
		return errSyncFailed
	}
	return nil
}

func watchAndSync(ctx context.Context, a *app, out io.Writer, asJSON bool) error {
	fw, err := watcher.NewFileWatcher(watcher.Options{
		Root:   a.root,
		Ignore: append(append([]string{}, a.cfg.Paths.Ignore...), ".atlas/**", ".git/**"),
		Logger: a.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	a.logger.Info("Watching for changes", "root", a.root)
	coord := watcher.NewSyncCoordinator(fw, a.boot, a.logger, func(report *syncer.SyncReport) {
		if err := writeReport(out, report, asJSON); err != nil {
			a.logger.Error("Failed to print report", "error", err)
		}
	})

	err = coord.Start(ctx)
	logSyncMetrics(a)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func logSyncMetrics(a *app) {
	m := a.boot.Metrics()
	if m.TotalSyncs == 0 {
		return
	}
	a.logger.Info("Sync totals",
		"syncs", m.TotalSyncs,
		"failed", m.FailedSyncs,
		"coalesced", m.CoalescedRefreshes,
		"components", m.ComponentCount,
		"lastError", m.LastSyncError)
}

func writeReport(out io.Writer, report *syncer.SyncReport, asJSON bool) error {
	if !asJSON {
		printReportSummary(out, report)
		return nil
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
