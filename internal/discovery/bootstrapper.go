// Package discovery owns the in-memory generation served to queries.
//
// The first query loads the persisted store, running one sync when the store
// does not exist yet. After that the snapshot stays cached for the process
// lifetime; only an explicit Refresh replaces it. Nothing here polls or
// watches files.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/mvp-joe/component-atlas/internal/component"
	"github.com/mvp-joe/component-atlas/internal/logging"
	"github.com/mvp-joe/component-atlas/internal/query"
	"github.com/mvp-joe/component-atlas/internal/store"
	"github.com/mvp-joe/component-atlas/internal/syncer"
)

const refreshKey = "sync"

// ErrNotReady is returned by queries when the initial load or sync failed.
// The next query retries.
var ErrNotReady = errors.New("component metadata not ready")

// State is the bootstrapper lifecycle state.
type State int32

const (
	Uninitialized State = iota
	Loading
	SyncingFresh
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case SyncingFresh:
		return "syncing_fresh"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Syncer runs a sync pass. *syncer.Engine implements it.
type Syncer interface {
	Sync(ctx context.Context) (*syncer.SyncReport, []component.ComponentRecord)
}

// Options configures a Bootstrapper.
type Options struct {
	// ForceSyncOnStart runs a sync on the first query even if a store exists.
	ForceSyncOnStart bool
	Logger           *log.Logger
}

// Bootstrapper lazily loads the current generation and serves it to queries.
type Bootstrapper struct {
	store  store.Store
	engine Syncer
	opts   Options
	logger *log.Logger

	state    atomic.Int32
	snapshot atomic.Pointer[query.Snapshot]
	metrics  *SyncMetrics

	initMu sync.Mutex
	group  singleflight.Group
}

// New creates a bootstrapper in the Uninitialized state.
func New(st store.Store, engine Syncer, opts Options) *Bootstrapper {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Bootstrapper{
		store:   st,
		engine:  engine,
		opts:    opts,
		logger:  logger,
		metrics: NewSyncMetrics(),
	}
}

// Metrics returns sync counters since the bootstrapper was created.
func (b *Bootstrapper) Metrics() MetricsSnapshot {
	return b.metrics.GetMetrics()
}

// State returns the current lifecycle state.
func (b *Bootstrapper) State() State {
	return State(b.state.Load())
}

func (b *Bootstrapper) setState(s State) {
	prev := State(b.state.Swap(int32(s)))
	if prev != s {
		b.logger.Debug("Bootstrapper state", "from", prev, "to", s)
	}
}

// Snapshot returns the current generation, loading or syncing it on first use.
func (b *Bootstrapper) Snapshot(ctx context.Context) (*query.Snapshot, error) {
	if snap := b.snapshot.Load(); snap != nil {
		return snap, nil
	}
	return b.ensureReady(ctx)
}

// ensureReady performs the one-time transition to Ready. Concurrent first
// queries wait for the same attempt.
func (b *Bootstrapper) ensureReady(ctx context.Context) (*query.Snapshot, error) {
	b.initMu.Lock()
	defer b.initMu.Unlock()

	if snap := b.snapshot.Load(); snap != nil {
		return snap, nil
	}

	b.setState(Loading)

	needSync := b.opts.ForceSyncOnStart
	records, err := b.store.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		b.logger.Info("No component store yet; running initial sync", "path", b.store.Path())
		needSync = true
	case err != nil:
		b.setState(Uninitialized)
		return nil, fmt.Errorf("%w: %w", ErrNotReady, err)
	}

	if !needSync {
		snap := query.NewSnapshot(records, "")
		b.snapshot.Store(snap)
		b.setState(Ready)
		b.logger.Info("Component metadata loaded", "components", snap.Len(), "path", b.store.Path())
		return snap, nil
	}

	b.setState(SyncingFresh)
	report, err := b.refresh(ctx)
	if err != nil {
		b.setState(Uninitialized)
		return nil, err
	}
	if !report.Success {
		// A forced start-up sync that fails still leaves a usable store behind.
		if records != nil {
			snap := query.NewSnapshot(records, "")
			b.snapshot.Store(snap)
			b.setState(Ready)
			b.logger.Warn("Start-up sync failed; serving stored generation", "error", report.Error)
			return snap, nil
		}
		b.setState(Uninitialized)
		return nil, fmt.Errorf("%w: initial sync failed: %s", ErrNotReady, report.Error)
	}

	b.setState(Ready)
	return b.snapshot.Load(), nil
}

// Refresh runs the sync engine and swaps in the new generation on success.
// Without force, a call that arrives while a sync is in flight shares that
// sync's report. With force, the caller gets a sync that starts after its
// request; the engine serializes it behind the in-flight one.
func (b *Bootstrapper) Refresh(ctx context.Context, force bool) (*syncer.SyncReport, error) {
	if force {
		b.group.Forget(refreshKey)
	}
	return b.refresh(ctx)
}

func (b *Bootstrapper) refresh(ctx context.Context) (*syncer.SyncReport, error) {
	leader := false
	v, err, shared := b.group.Do(refreshKey, func() (interface{}, error) {
		leader = true
		report, records := b.engine.Sync(ctx)
		if report == nil {
			return nil, errors.New("sync engine returned no report")
		}
		b.metrics.RecordSync(report)
		if report.Success {
			b.snapshot.Store(query.NewSnapshot(records, report.GenerationID))
			b.setState(Ready)
		}
		return report, nil
	})
	if err != nil {
		return nil, err
	}
	// Do reports shared to the leader too; only joiners count as coalesced.
	if shared && !leader {
		b.metrics.RecordCoalesced()
		b.logger.Debug("Refresh coalesced with in-flight sync")
	}
	return v.(*syncer.SyncReport), nil
}
