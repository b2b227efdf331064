package reconciler

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/pineunity/apmec-horizon/internal/apmec"
)

func TestPollMetrics_NewInstance(t *testing.T) {
	metrics := NewPollMetrics()
	if metrics == nil {
		t.Fatal("expected non-nil metrics instance")
	}
	if metrics.kindMetrics == nil {
		t.Error("expected kindMetrics map to be initialized")
	}
}

func TestPollMetrics_Record(t *testing.T) {
	metrics := NewPollMetrics()

	metrics.Record(apmec.KindMECA, OutcomeOK, Report{Added: 2, Skipped: 1})
	metrics.Record(apmec.KindMECA, OutcomeStale, Report{})
	metrics.Record(apmec.KindVIM, OutcomeError, Report{})
	metrics.Record(apmec.KindEvent, OutcomeNotFound, Report{})

	summary := metrics.GetSummary()
	if summary.TotalPolls != 4 {
		t.Errorf("expected TotalPolls=4, got %d", summary.TotalPolls)
	}
	if summary.TotalOK != 1 || summary.TotalStale != 1 || summary.TotalErrors != 1 || summary.TotalNotFound != 1 {
		t.Errorf("unexpected totals: %+v", summary)
	}
	if summary.StaleRate != 0.25 {
		t.Errorf("expected StaleRate=0.25, got %v", summary.StaleRate)
	}

	meca, ok := metrics.GetKindMetrics(apmec.KindMECA)
	if !ok {
		t.Fatal("expected meca metrics to exist")
	}
	if meca.Polls != 2 || meca.RowsAdded != 2 || meca.RowsSkipped != 1 {
		t.Errorf("unexpected meca metrics: %+v", meca)
	}
	if meca.LastSuccessAt.IsZero() || meca.LastFailureAt.IsZero() {
		t.Error("expected success and failure timestamps to be set")
	}

	if len(summary.PerKind) != 3 {
		t.Fatalf("expected 3 kinds, got %d", len(summary.PerKind))
	}
	if summary.PerKind[0].Kind != apmec.KindEvent {
		t.Errorf("expected per-kind views sorted by kind, got %s first", summary.PerKind[0].Kind)
	}
}

func TestPollMetrics_GetKindMetrics_NotFound(t *testing.T) {
	metrics := NewPollMetrics()

	_, ok := metrics.GetKindMetrics(apmec.KindNS)
	if ok {
		t.Error("expected no metrics for a kind that was never polled")
	}
}

func TestPollMetrics_Reset(t *testing.T) {
	metrics := NewPollMetrics()
	metrics.Record(apmec.KindMECA, OutcomeOK, Report{})
	metrics.Reset()

	summary := metrics.GetSummary()
	if summary.TotalPolls != 0 || len(summary.PerKind) != 0 {
		t.Errorf("expected empty metrics after reset, got %+v", summary)
	}
}

func TestPollMetrics_ConcurrentAccess(t *testing.T) {
	metrics := NewPollMetrics()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			metrics.Record(apmec.KindMECA, OutcomeOK, Report{Updated: 1})
		}()
		go func() {
			defer wg.Done()
			_ = metrics.GetSummary()
		}()
	}
	wg.Wait()

	if got := metrics.GetSummary().TotalPolls; got != 50 {
		t.Errorf("expected 50 polls, got %d", got)
	}
}

func TestPollMetricsSummary_JSON(t *testing.T) {
	metrics := NewPollMetrics()
	metrics.Record(apmec.KindMECA, OutcomeOK, Report{})

	data, err := json.Marshal(metrics.GetSummary())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["total_polls"] != float64(1) {
		t.Errorf("unexpected total_polls: %v", decoded["total_polls"])
	}
}

func TestGetPollMetrics_Singleton(t *testing.T) {
	if GetPollMetrics() != GetPollMetrics() {
		t.Error("expected the same global instance")
	}
}
