package reconciler

import (
	"context"
	"fmt"

	"github.com/pineunity/apmec-horizon/internal/apmec"
	"github.com/pineunity/apmec-horizon/internal/telemetry"
	"github.com/pineunity/apmec-horizon/pkg/logging"
)

// Source is the remote side of a poll. *apmec.Client implements it.
type Source interface {
	List(ctx context.Context, kind apmec.Kind, filters map[string]string) ([]apmec.Record, error)
	Show(ctx context.Context, kind apmec.Kind, id string) (apmec.Record, error)
	ListEvents(ctx context.Context, resourceID string) ([]apmec.Record, error)
}

// Scope holds the display lists of one session. Update runs fn under the
// scope's write lock and stores its result; View runs fn under the read lock.
// Clear forgets the list stored under key.
type Scope interface {
	Update(key Key, fn func(current List) List)
	View(key Key, fn func(current List))
	Clear(key Key)
}

// PollResult is what a list poll hands to the rendering layer.
type PollResult struct {
	Kind    apmec.Kind `json:"kind"`
	Outcome Outcome    `json:"outcome"`
	// HasMore tells the renderer whether to keep requesting updates.
	HasMore bool `json:"has_more"`
	// Message is a user visible explanation for every outcome but OK.
	Message string `json:"message,omitempty"`
	// Rows is a copy of the stored list taken under the scope lock.
	Rows   []Row  `json:"rows"`
	Report Report `json:"report"`

	// List is the stored list itself. Its rows are shared with later polls
	// of the same scope.
	List List  `json:"-"`
	Err  error `json:"-"`
}

// RowResult is the outcome of refreshing a single row.
type RowResult struct {
	Kind    apmec.Kind `json:"kind"`
	Outcome Outcome    `json:"outcome"`
	Message string     `json:"message,omitempty"`
	// Row is set for OK, and for Stale with the last known values.
	Row *Row  `json:"row,omitempty"`
	Err error `json:"-"`
}

// Poller runs fetch, reconcile and store for one display list at a time.
type Poller struct {
	Source  Source
	Metrics *PollMetrics
}

// NewPoller creates a poller recording into the global metrics.
func NewPoller(source Source) *Poller {
	return &Poller{Source: source, Metrics: GetPollMetrics()}
}

// Poll refreshes the list of kind stored in scope.
//
// The fetch, reconcile and store steps run synchronously. On success the
// reconciled list replaces the stored one inside a single scope update; on
// failure the stored list is left as it was and reported back unchanged.
// Poll never panics and never returns an error: the outcome says whether the
// caller should keep polling.
//
// Parameters:
//   - ctx: Context bounding the remote call
//   - scope: The session's list store
//   - kind: Resource kind to list (events are polled with PollEvents)
//   - filters: Query parameters passed to the API, may be nil
//
// Returns:
//   - PollResult: Outcome, rows to render, reconciliation report and message
func (p *Poller) Poll(ctx context.Context, scope Scope, kind apmec.Kind, filters map[string]string) (result PollResult) {
	key := Key{Kind: kind}
	ctx, span := telemetry.StartSpan(ctx, "poll "+key.String())
	defer func() { telemetry.EndSpan(span, result.Err) }()
	defer p.recoverPoll(scope, key, &result)

	records, err := p.Source.List(ctx, kind, filters)
	if err != nil {
		return p.failed(scope, key, err)
	}
	return p.store(scope, key, records)
}

// PollEvents refreshes the events of one resource. When parentKind is set,
// the parent is looked up first so that a deleted parent yields
// OutcomeNotFound instead of an empty event list.
func (p *Poller) PollEvents(ctx context.Context, scope Scope, parentKind apmec.Kind, resourceID string) (result PollResult) {
	key := Key{Kind: apmec.KindEvent, Parent: resourceID}
	ctx, span := telemetry.StartSpan(ctx, "poll "+key.String())
	defer func() { telemetry.EndSpan(span, result.Err) }()
	defer p.recoverPoll(scope, key, &result)

	if parentKind != "" {
		if _, err := p.Source.Show(ctx, parentKind, resourceID); err != nil {
			return p.eventsFailed(scope, key, err)
		}
	}

	records, err := p.Source.ListEvents(ctx, resourceID)
	if err != nil {
		return p.eventsFailed(scope, key, err)
	}
	return p.store(scope, key, records)
}

// eventsFailed is failed for an event list. A parent that is not found is
// gone for good, so its events are dropped from the scope.
func (p *Poller) eventsFailed(scope Scope, key Key, err error) PollResult {
	result := p.failed(scope, key, err)
	if result.Outcome == OutcomeNotFound {
		scope.Clear(key)
	}
	return result
}

func (p *Poller) store(scope Scope, key Key, records []apmec.Record) PollResult {
	result := PollResult{Kind: key.Kind, Outcome: OutcomeOK, HasMore: true}

	scope.Update(key, func(current List) List {
		next, report := Reconcile(key.Kind, current, records)
		result.List = next
		result.Rows = next.Snapshot()
		result.Report = report
		return next
	})

	if result.Report.Skipped > 0 {
		result.Message = fmt.Sprintf("%d malformed %s records were skipped", result.Report.Skipped, key.Kind)
	}

	p.metrics().Record(key.Kind, result.Outcome, result.Report)
	logging.Debug("Poller", "Polled %s: %d rows (+%d ~%d -%d !%d)", key, len(result.Rows),
		result.Report.Added, result.Report.Updated, result.Report.Removed, result.Report.Skipped)
	return result
}

// failed leaves the stored list untouched and reports it as the current one.
func (p *Poller) failed(scope Scope, key Key, err error) PollResult {
	result := PollResult{Kind: key.Kind, Outcome: Classify(err), Err: err}
	result.HasMore = result.Outcome.Continue()

	scope.View(key, func(current List) {
		result.List = current
		result.Rows = current.Snapshot()
	})

	switch result.Outcome {
	case OutcomeNotFound:
		result.Message = err.Error()
		logging.Info("Poller", "Stopping poll of %s: %v", key, err)
	case OutcomeStale:
		result.Message = fmt.Sprintf("Unable to refresh %s, showing last known data: %v", key.Kind.Plural(), err)
		logging.Warn("Poller", "Transient failure polling %s: %v", key, err)
	default:
		result.Message = fmt.Sprintf("Unable to get %s: %v", key.Kind.Plural(), err)
		logging.Error("Poller", err, "Failed to poll %s", key)
	}

	p.metrics().Record(key.Kind, result.Outcome, Report{})
	return result
}

// recoverPoll converts a panic below the poll boundary into OutcomeError.
func (p *Poller) recoverPoll(scope Scope, key Key, result *PollResult) {
	r := recover()
	if r == nil {
		return
	}
	err := fmt.Errorf("panic while polling %s: %v", key, r)
	logging.Error("Poller", err, "Recovered from panic")

	*result = PollResult{Kind: key.Kind, Outcome: OutcomeError, Err: err,
		Message: fmt.Sprintf("Unable to get %s: internal error", key.Kind.Plural())}
	// The panic happened before or inside the store update, so the stored
	// list is still the previous one.
	func() {
		defer func() { recover() }()
		scope.View(key, func(current List) {
			result.List = current
			result.Rows = current.Snapshot()
		})
	}()
	p.metrics().Record(key.Kind, OutcomeError, Report{})
}

// RefreshRow re-reads one resource and folds it into the stored list of its
// kind. A resource that no longer exists is removed from the list.
func (p *Poller) RefreshRow(ctx context.Context, scope Scope, kind apmec.Kind, id string) (result RowResult) {
	key := Key{Kind: kind}
	ctx, span := telemetry.StartSpan(ctx, "refresh "+key.String())
	defer func() { telemetry.EndSpan(span, result.Err) }()
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic while refreshing %s %s: %v", kind, id, r)
			logging.Error("Poller", err, "Recovered from panic")
			result = RowResult{Kind: kind, Outcome: OutcomeError, Err: err, Message: "internal error"}
			p.metrics().Record(kind, OutcomeError, Report{})
		}
	}()

	rec, err := p.Source.Show(ctx, kind, id)
	if err == nil {
		result = p.storeRow(scope, key, id, rec)
		p.metrics().Record(kind, result.Outcome, Report{})
		return result
	}

	result = RowResult{Kind: kind, Outcome: Classify(err), Err: err}
	switch result.Outcome {
	case OutcomeNotFound:
		scope.Update(key, func(current List) List {
			next, removed := remove(current, id)
			if removed {
				logging.Info("Poller", "Removed %s %s, it no longer exists", kind, id)
			}
			return next
		})
		result.Message = err.Error()
	case OutcomeStale:
		scope.View(key, func(current List) {
			if row := current.Find(id); row != nil {
				snapshot := *row
				result.Row = &snapshot
			}
		})
		if result.Row == nil {
			// Nothing to fall back to.
			result.Outcome = OutcomeError
			result.Message = fmt.Sprintf("Unable to get %s %s: %v", kind, id, err)
		} else {
			result.Message = fmt.Sprintf("Unable to refresh %s %s, showing last known data: %v", kind, id, err)
		}
	default:
		result.Message = fmt.Sprintf("Unable to get %s %s: %v", kind, id, err)
	}

	if result.Outcome == OutcomeError {
		logging.Error("Poller", err, "Failed to refresh %s %s", kind, id)
	}
	p.metrics().Record(kind, result.Outcome, Report{})
	return result
}

func (p *Poller) storeRow(scope Scope, key Key, id string, rec apmec.Record) RowResult {
	fresh, err := DecodeRow(key.Kind, rec)
	if err == nil && fresh.ID != id {
		err = fmt.Errorf("requested %s %s, got %s", key.Kind, id, fresh.ID)
	}
	if err != nil {
		return RowResult{Kind: key.Kind, Outcome: OutcomeError, Err: err,
			Message: fmt.Sprintf("Unable to get %s %s: %v", key.Kind, id, err)}
	}

	var snapshot Row
	scope.Update(key, func(current List) List {
		next, row, _ := upsert(current, fresh)
		snapshot = *row
		return next
	})
	return RowResult{Kind: key.Kind, Outcome: OutcomeOK, Row: &snapshot}
}

func (p *Poller) metrics() *PollMetrics {
	if p.Metrics == nil {
		return GetPollMetrics()
	}
	return p.Metrics
}

// Classify maps a fetch error onto a poll outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case apmec.IsNotFound(err):
		return OutcomeNotFound
	case apmec.IsTransient(err):
		return OutcomeStale
	default:
		return OutcomeError
	}
}
