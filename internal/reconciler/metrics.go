package reconciler

import (
	"sort"
	"sync"
	"time"

	"github.com/pineunity/apmec-horizon/internal/apmec"
	"github.com/pineunity/apmec-horizon/pkg/logging"
)

// PollMetrics tracks poll outcomes per resource kind.
//
// A rising stale count for one kind usually points at the orchestration API
// rather than at the panel; errors and not-found outcomes end polling for the
// affected list.
type PollMetrics struct {
	mu sync.RWMutex

	kindMetrics map[apmec.Kind]*kindMetrics

	totalPolls    int64
	totalOK       int64
	totalStale    int64
	totalNotFound int64
	totalErrors   int64
}

// kindMetrics holds poll metrics for a single kind.
type kindMetrics struct {
	Kind          apmec.Kind
	Polls         int64
	OK            int64
	Stale         int64
	NotFound      int64
	Errors        int64
	RowsAdded     int64
	RowsUpdated   int64
	RowsRemoved   int64
	RowsSkipped   int64
	LastPollAt    time.Time
	LastSuccessAt time.Time
	LastFailureAt time.Time
}

// NewPollMetrics creates a new PollMetrics instance.
func NewPollMetrics() *PollMetrics {
	return &PollMetrics{
		kindMetrics: make(map[apmec.Kind]*kindMetrics),
	}
}

func (m *PollMetrics) getOrCreateKindMetrics(kind apmec.Kind) *kindMetrics {
	if metrics, exists := m.kindMetrics[kind]; exists {
		return metrics
	}

	metrics := &kindMetrics{Kind: kind}
	m.kindMetrics[kind] = metrics
	return metrics
}

// Record records the outcome of one poll or row refresh.
func (m *PollMetrics) Record(kind apmec.Kind, outcome Outcome, report Report) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	metrics := m.getOrCreateKindMetrics(kind)
	metrics.Polls++
	metrics.LastPollAt = now
	m.totalPolls++

	switch outcome {
	case OutcomeOK:
		metrics.OK++
		metrics.LastSuccessAt = now
		m.totalOK++
	case OutcomeStale:
		metrics.Stale++
		metrics.LastFailureAt = now
		m.totalStale++
	case OutcomeNotFound:
		metrics.NotFound++
		m.totalNotFound++
	case OutcomeError:
		metrics.Errors++
		metrics.LastFailureAt = now
		m.totalErrors++
		logging.Debug("PollMetrics", "Poll error for %s (errors: %d)", kind, metrics.Errors)
	}

	metrics.RowsAdded += int64(report.Added)
	metrics.RowsUpdated += int64(report.Updated)
	metrics.RowsRemoved += int64(report.Removed)
	metrics.RowsSkipped += int64(report.Skipped)
}

// PollMetricsSummary provides a summary of poll metrics.
type PollMetricsSummary struct {
	TotalPolls    int64            `json:"total_polls"`
	TotalOK       int64            `json:"total_ok"`
	TotalStale    int64            `json:"total_stale"`
	TotalNotFound int64            `json:"total_not_found"`
	TotalErrors   int64            `json:"total_errors"`
	StaleRate     float64          `json:"stale_rate"`
	ErrorRate     float64          `json:"error_rate"`
	PerKind       []KindMetricView `json:"per_kind"`
}

// KindMetricView is a read-only view of the metrics of one kind.
type KindMetricView struct {
	Kind          apmec.Kind `json:"kind"`
	Polls         int64      `json:"polls"`
	OK            int64      `json:"ok"`
	Stale         int64      `json:"stale"`
	NotFound      int64      `json:"not_found"`
	Errors        int64      `json:"errors"`
	RowsAdded     int64      `json:"rows_added"`
	RowsUpdated   int64      `json:"rows_updated"`
	RowsRemoved   int64      `json:"rows_removed"`
	RowsSkipped   int64      `json:"rows_skipped"`
	LastPollAt    time.Time  `json:"last_poll_at,omitempty"`
	LastSuccessAt time.Time  `json:"last_success_at,omitempty"`
	LastFailureAt time.Time  `json:"last_failure_at,omitempty"`
}

// GetKindMetrics returns the metrics of one kind, if it was ever polled.
func (m *PollMetrics) GetKindMetrics(kind apmec.Kind) (KindMetricView, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	metrics, ok := m.kindMetrics[kind]
	if !ok {
		return KindMetricView{}, false
	}
	return metrics.view(), true
}

// GetSummary returns totals and per-kind views sorted by kind.
func (m *PollMetrics) GetSummary() PollMetricsSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := PollMetricsSummary{
		TotalPolls:    m.totalPolls,
		TotalOK:       m.totalOK,
		TotalStale:    m.totalStale,
		TotalNotFound: m.totalNotFound,
		TotalErrors:   m.totalErrors,
		PerKind:       make([]KindMetricView, 0, len(m.kindMetrics)),
	}
	if m.totalPolls > 0 {
		summary.StaleRate = float64(m.totalStale) / float64(m.totalPolls)
		summary.ErrorRate = float64(m.totalErrors) / float64(m.totalPolls)
	}

	for _, metrics := range m.kindMetrics {
		summary.PerKind = append(summary.PerKind, metrics.view())
	}
	sort.Slice(summary.PerKind, func(i, j int) bool {
		return summary.PerKind[i].Kind < summary.PerKind[j].Kind
	})
	return summary
}

// Reset clears all metrics.
func (m *PollMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.kindMetrics = make(map[apmec.Kind]*kindMetrics)
	m.totalPolls = 0
	m.totalOK = 0
	m.totalStale = 0
	m.totalNotFound = 0
	m.totalErrors = 0
}

func (k *kindMetrics) view() KindMetricView {
	return KindMetricView{
		Kind:          k.Kind,
		Polls:         k.Polls,
		OK:            k.OK,
		Stale:         k.Stale,
		NotFound:      k.NotFound,
		Errors:        k.Errors,
		RowsAdded:     k.RowsAdded,
		RowsUpdated:   k.RowsUpdated,
		RowsRemoved:   k.RowsRemoved,
		RowsSkipped:   k.RowsSkipped,
		LastPollAt:    k.LastPollAt,
		LastSuccessAt: k.LastSuccessAt,
		LastFailureAt: k.LastFailureAt,
	}
}

// Global metrics instance, initialized lazily by GetPollMetrics.
var (
	globalPollMetrics   *PollMetrics
	globalPollMetricsMu sync.RWMutex
)

// GetPollMetrics returns the global poll metrics instance.
// It creates the instance on first access (lazy initialization).
func GetPollMetrics() *PollMetrics {
	globalPollMetricsMu.RLock()
	if globalPollMetrics != nil {
		defer globalPollMetricsMu.RUnlock()
		return globalPollMetrics
	}
	globalPollMetricsMu.RUnlock()

	globalPollMetricsMu.Lock()
	defer globalPollMetricsMu.Unlock()

	// Double-check after acquiring write lock
	if globalPollMetrics == nil {
		globalPollMetrics = NewPollMetrics()
	}
	return globalPollMetrics
}
