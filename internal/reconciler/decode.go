package reconciler

import (
	"errors"

	"github.com/pineunity/apmec-horizon/internal/apmec"
)

// ErrMissingID is returned by DecodeRow for records without an id.
var ErrMissingID = errors.New("record has no id")

// DecodeRow projects a raw record onto a Row. Optional attributes that are
// absent or null become "". Only a missing or empty id is an error.
func DecodeRow(kind apmec.Kind, rec apmec.Record) (Row, error) {
	id, _ := rec.String("id")
	if id == "" {
		return Row{}, ErrMissingID
	}

	row := Row{
		ID:          id,
		Name:        rec.StringOr("name", ""),
		Description: rec.StringOr("description", ""),
		Status:      rec.StringOr("status", ""),
		ErrorReason: rec.StringOr("error_reason", ""),
	}

	if kind.Deployable() {
		row.VIM = rec.StringOr("vim_id", "")
		row.CatalogID = rec.StringOr(kind.CatalogField(), "")
	}

	if kind == apmec.KindEvent {
		row.EventType = rec.StringOr("event_type", "")
		row.ResourceState = rec.StringOr("resource_state", "")
		row.Details = rec.StringOr("event_details", "")
		// Older API releases misspell the timestamp key.
		row.Timestamp = rec.StringOr("timestamp", rec.StringOr("timecatamp", ""))
	}

	return row, nil
}
