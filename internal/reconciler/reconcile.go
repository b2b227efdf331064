package reconciler

import (
	"github.com/pineunity/apmec-horizon/internal/apmec"
	"github.com/pineunity/apmec-horizon/pkg/logging"
)

// Report counts what a reconciliation changed.
type Report struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Removed int `json:"removed"`
	Skipped int `json:"skipped"`
}

// Reconcile merges a successfully fetched batch into current and returns the
// new list in batch order.
//
// Rows whose ID appears in the batch keep their pointer and have their fields
// overwritten. New IDs get new rows. Rows missing from the batch are dropped.
// Records without an id, and repeated ids after the first, are skipped and
// counted in Report.Skipped; they never abort the batch.
//
// Parameters:
//   - kind: Resource kind of the batch, selecting the row projection
//   - current: The list stored by the previous poll (nil on the first poll)
//   - records: The records returned by the orchestration API, in server order
//
// Returns:
//   - List: The reconciled list; current itself is not modified
//   - Report: Counts of added, updated, removed and skipped rows
//
// Example:
//
//	next, report := reconciler.Reconcile(apmec.KindMECA, current, records)
//	if report.Skipped > 0 {
//		// some records were malformed
//	}
func Reconcile(kind apmec.Kind, current List, records []apmec.Record) (List, Report) {
	var report Report

	existing := make(map[string]*Row, len(current))
	for _, row := range current {
		existing[row.ID] = row
	}

	next := make(List, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for i, rec := range records {
		fresh, err := DecodeRow(kind, rec)
		if err != nil {
			report.Skipped++
			logging.Warn("Reconciler", "Skipping %s record at index %d: %v", kind, i, err)
			continue
		}
		if _, dup := seen[fresh.ID]; dup {
			report.Skipped++
			logging.Warn("Reconciler", "Skipping duplicate %s record %s at index %d", kind, fresh.ID, i)
			continue
		}
		seen[fresh.ID] = struct{}{}

		if row, ok := existing[fresh.ID]; ok {
			row.update(fresh)
			next = append(next, row)
			report.Updated++
			continue
		}

		row := fresh
		next = append(next, &row)
		report.Added++
	}

	report.Removed = len(existing) - report.Updated

	return next, report
}

// upsert updates the row with fresh.ID in place or appends a new row.
func upsert(current List, fresh Row) (List, *Row, bool) {
	if row := current.Find(fresh.ID); row != nil {
		row.update(fresh)
		return current, row, false
	}
	row := fresh
	next := make(List, len(current), len(current)+1)
	copy(next, current)
	return append(next, &row), &row, true
}

// remove returns current without the row with the given ID.
func remove(current List, id string) (List, bool) {
	next := make(List, 0, len(current))
	removed := false
	for _, row := range current {
		if row.ID == id {
			removed = true
			continue
		}
		next = append(next, row)
	}
	return next, removed
}
