package discovery

import (
	"sync"
	"time"

	"github.com/mvp-joe/component-atlas/internal/syncer"
)

// SyncMetrics tracks sync outcomes for one bootstrapper.
// All methods are thread-safe and can be called concurrently.
type SyncMetrics struct {
	lastSyncTime       time.Time
	lastSyncDuration   time.Duration
	lastSyncError      string
	lastGenerationID   string
	totalSyncs         int64
	successfulSyncs    int64
	failedSyncs        int64
	coalescedRefreshes int64
	componentCount     int
	mu                 sync.RWMutex
}

// MetricsSnapshot is an immutable copy of SyncMetrics at a point in time.
type MetricsSnapshot struct {
	LastSyncTime       time.Time     `json:"lastSyncTime"`
	LastSyncDuration   time.Duration `json:"lastSyncDurationNs"`
	LastSyncError      string        `json:"lastSyncError,omitempty"`
	LastGenerationID   string        `json:"lastGenerationId,omitempty"`
	TotalSyncs         int64         `json:"totalSyncs"`
	SuccessfulSyncs    int64         `json:"successfulSyncs"`
	FailedSyncs        int64         `json:"failedSyncs"`
	CoalescedRefreshes int64         `json:"coalescedRefreshes"`
	ComponentCount     int           `json:"componentCount"`
}

// NewSyncMetrics creates metrics with zero values.
func NewSyncMetrics() *SyncMetrics {
	return &SyncMetrics{}
}

// RecordSync records one finished sync. A failed sync leaves the component
// count at the last successful generation's, since that generation is still
// being served.
func (m *SyncMetrics) RecordSync(report *syncer.SyncReport) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastSyncTime = time.Now()
	m.lastSyncDuration = time.Duration(report.DurationMs) * time.Millisecond
	m.totalSyncs++

	if report.Success {
		m.successfulSyncs++
		m.lastSyncError = ""
		m.lastGenerationID = report.GenerationID
		m.componentCount = report.ComponentCount
	} else {
		m.failedSyncs++
		m.lastSyncError = report.Error
	}
}

// RecordCoalesced counts a refresh call whose sync result was shared with
// another caller.
func (m *SyncMetrics) RecordCoalesced() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coalescedRefreshes++
}

// GetMetrics returns a snapshot of current metrics.
func (m *SyncMetrics) GetMetrics() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MetricsSnapshot{
		LastSyncTime:       m.lastSyncTime,
		LastSyncDuration:   m.lastSyncDuration,
		LastSyncError:      m.lastSyncError,
		LastGenerationID:   m.lastGenerationID,
		TotalSyncs:         m.totalSyncs,
		SuccessfulSyncs:    m.successfulSyncs,
		FailedSyncs:        m.failedSyncs,
		CoalescedRefreshes: m.coalescedRefreshes,
		ComponentCount:     m.componentCount,
	}
}
