package watcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/component-atlas/internal/syncer"
)

// Test Plan for SyncCoordinator:
// - Start runs an initial sync and stops the watcher on context cancellation
// - File change batch triggers a non-forced Refresh
// - Changes during the initial sync are held until it completes
// - Failed reports are delivered to onReport; refresh errors are logged and skipped
// - Empty batches are ignored
// - File watcher Start failure is propagated

// mockFileWatcher implements FileWatcher for testing.
type mockFileWatcher struct {
	startErr    error
	callback    func(files []string)
	pauseCount  int
	resumeCount int
	stopCalled  bool
	paused      bool
	held        [][]string
	mu          sync.Mutex
}

func (m *mockFileWatcher) Start(ctx context.Context, callback func(files []string)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startErr != nil {
		return m.startErr
	}
	m.callback = callback
	return nil
}

func (m *mockFileWatcher) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalled = true
	return nil
}

func (m *mockFileWatcher) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseCount++
	m.paused = true
}

func (m *mockFileWatcher) Resume() {
	m.mu.Lock()
	m.resumeCount++
	m.paused = false
	held := m.held
	m.held = nil
	callback := m.callback
	m.mu.Unlock()

	for _, files := range held {
		callback(files)
	}
}

func (m *mockFileWatcher) triggerFileChange(files []string) {
	m.mu.Lock()
	if m.paused {
		m.held = append(m.held, files)
		m.mu.Unlock()
		return
	}
	callback := m.callback
	m.mu.Unlock()

	if callback != nil {
		callback(files)
	}
}

// mockRefresher implements Refresher for testing.
type mockRefresher struct {
	report *syncer.SyncReport
	err    error
	calls  int
	forced bool
	onCall func(call int)
	mu     sync.Mutex
}

func (m *mockRefresher) Refresh(ctx context.Context, force bool) (*syncer.SyncReport, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.forced = m.forced || force
	onCall := m.onCall
	m.mu.Unlock()

	if onCall != nil {
		onCall(call)
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.report != nil {
		return m.report, nil
	}
	return &syncer.SyncReport{Success: true}, nil
}

func (m *mockRefresher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type reportRecorder struct {
	mu      sync.Mutex
	reports []*syncer.SyncReport
}

func (r *reportRecorder) record(report *syncer.SyncReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
}

func (r *reportRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}

func (m *mockFileWatcher) resumed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resumeCount > 0
}

func startCoordinator(t *testing.T, coord *SyncCoordinator) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- coord.Start(ctx)
	}()
	return cancel, done
}

// Test: Start runs an initial sync and stops the watcher on context cancellation
func TestSyncCoordinator_StartAndStop(t *testing.T) {
	t.Parallel()

	files := &mockFileWatcher{}
	refresher := &mockRefresher{}
	recorder := &reportRecorder{}
	coord := NewSyncCoordinator(files, refresher, nil, recorder.record)

	cancel, done := startCoordinator(t, coord)

	require.Eventually(t, func() bool { return recorder.count() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	err := <-done
	assert.Equal(t, context.Canceled, err)

	files.mu.Lock()
	defer files.mu.Unlock()
	assert.True(t, files.stopCalled, "file watcher should be stopped")
	assert.Equal(t, 1, files.pauseCount)
	assert.Equal(t, 1, files.resumeCount)
	assert.False(t, refresher.forced, "watch syncs are never forced")
}

// Test: File change batch triggers a non-forced Refresh
func TestSyncCoordinator_FileChangeTriggersSync(t *testing.T) {
	t.Parallel()

	files := &mockFileWatcher{}
	refresher := &mockRefresher{}
	recorder := &reportRecorder{}
	coord := NewSyncCoordinator(files, refresher, nil, recorder.record)

	cancel, done := startCoordinator(t, coord)
	defer func() { cancel(); <-done }()

	require.Eventually(t, files.resumed, time.Second, 10*time.Millisecond)

	files.triggerFileChange([]string{"src/components/Button.tsx"})
	assert.Equal(t, 2, refresher.callCount())
	assert.Equal(t, 2, recorder.count())

	files.triggerFileChange(nil)
	assert.Equal(t, 2, refresher.callCount(), "empty batches are ignored")
}

// Test: Changes during the initial sync are held until it completes
func TestSyncCoordinator_ChangesDuringInitialSyncAreHeld(t *testing.T) {
	t.Parallel()

	files := &mockFileWatcher{}
	refresher := &mockRefresher{}
	refresher.onCall = func(call int) {
		if call == 1 {
			// Arrives mid-sync: must not start a second sync yet.
			files.triggerFileChange([]string{"src/index.ts"})
		}
	}
	recorder := &reportRecorder{}
	coord := NewSyncCoordinator(files, refresher, nil, recorder.record)

	cancel, done := startCoordinator(t, coord)
	defer func() { cancel(); <-done }()

	require.Eventually(t, func() bool { return recorder.count() == 2 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, refresher.callCount())
}

// Test: Failed reports are delivered; refresh errors are skipped
func TestSyncCoordinator_Failures(t *testing.T) {
	t.Parallel()

	t.Run("failed report", func(t *testing.T) {
		t.Parallel()

		files := &mockFileWatcher{}
		refresher := &mockRefresher{report: &syncer.SyncReport{Success: false, Error: "parse: boom"}}
		recorder := &reportRecorder{}
		coord := NewSyncCoordinator(files, refresher, nil, recorder.record)

		cancel, done := startCoordinator(t, coord)
		defer func() { cancel(); <-done }()

		require.Eventually(t, func() bool { return recorder.count() == 1 }, time.Second, 10*time.Millisecond)
		recorder.mu.Lock()
		assert.False(t, recorder.reports[0].Success)
		recorder.mu.Unlock()
	})

	t.Run("refresh error", func(t *testing.T) {
		t.Parallel()

		files := &mockFileWatcher{}
		refresher := &mockRefresher{err: errors.New("engine gone")}
		recorder := &reportRecorder{}
		coord := NewSyncCoordinator(files, refresher, nil, recorder.record)

		cancel, done := startCoordinator(t, coord)
		defer func() { cancel(); <-done }()

		require.Eventually(t, files.resumed, time.Second, 10*time.Millisecond)
		files.triggerFileChange([]string{"src/index.ts"})
		assert.Equal(t, 2, refresher.callCount(), "coordinator keeps running after errors")
		assert.Equal(t, 0, recorder.count())
	})
}

// Test: File watcher Start failure is propagated
func TestSyncCoordinator_StartError(t *testing.T) {
	t.Parallel()

	files := &mockFileWatcher{startErr: errors.New("too many open files")}
	refresher := &mockRefresher{}
	coord := NewSyncCoordinator(files, refresher, nil, nil)

	err := coord.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many open files")
	assert.Equal(t, 0, refresher.callCount())
	assert.True(t, files.stopCalled)
}
