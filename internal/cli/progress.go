package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/component-atlas/internal/syncer"
)

// CLIProgressReporter draws a progress bar over manifest export statements
// while a sync parses. Output goes to stderr so stdout stays machine-readable.
type CLIProgressReporter struct {
	out       io.Writer
	bar       *progressbar.ProgressBar
	startTime time.Time
	total     int
	parsed    int
}

// NewCLIProgressReporter creates a reporter writing to out.
func NewCLIProgressReporter(out io.Writer) *CLIProgressReporter {
	return &CLIProgressReporter{out: out}
}

func (c *CLIProgressReporter) OnParseStart(totalExports int) {
	c.startTime = time.Now()
	c.total = totalExports
	c.parsed = 0

	if c.bar != nil {
		c.bar.Finish()
	}
	c.bar = progressbar.NewOptions(totalExports,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Parsing exports"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnExportParsed(name string) {
	if c.bar == nil {
		return
	}
	c.parsed++
	c.bar.Describe(fmt.Sprintf("Parsing %s", truncate(name, 32)))
	c.bar.Add(1)
}

func (c *CLIProgressReporter) OnParseComplete(recognized, skipped int) {
	if c.bar != nil {
		c.bar.Finish()
		c.bar = nil
	}
	fmt.Fprintf(c.out, "Parsed %d export statement(s): %d component(s), %d skipped export(s) in %.1fs\n",
		c.parsed, recognized, skipped, time.Since(c.startTime).Seconds())
}

// printReportSummary writes a human-readable sync summary.
func printReportSummary(w io.Writer, report *syncer.SyncReport) {
	if !report.Success {
		fmt.Fprintf(w, "✗ Sync failed: %s\n", report.Error)
		fmt.Fprintln(w, "  Previous metadata kept.")
		return
	}

	fmt.Fprintf(w, "✓ Sync complete: %s components in %dms\n", formatNumber(report.ComponentCount), report.DurationMs)
	printNames(w, "New", report.NewComponents)
	printNames(w, "Updated", report.UpdatedComponents)
	printNames(w, "Removed", report.RemovedComponents)
	fmt.Fprintf(w, "  Unchanged: %d\n", report.UnchangedCount)
	if len(report.Warnings) > 0 {
		fmt.Fprintf(w, "  Warnings:  %d (run with -v to see them as they occur)\n", len(report.Warnings))
	}
}

func printNames(w io.Writer, label string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(w, "  %-9s  %d: %s\n", label+":", len(names), joinTruncated(names, 8))
}

func joinTruncated(names []string, max int) string {
	out := ""
	for i, name := range names {
		if i == max {
			return out + fmt.Sprintf(", … (+%d more)", len(names)-max)
		}
		if i > 0 {
			out += ", "
		}
		out += name
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

// formatNumber formats a number with thousand separators.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", formatNumber(n/1000), n%1000)
}
