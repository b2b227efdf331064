package reconciler

import (
	"encoding/json"
	"strings"

	"github.com/pineunity/apmec-horizon/internal/apmec"
)

// Status values with a special meaning for display.
const (
	StatusActive         = "ACTIVE"
	StatusError          = "ERROR"
	StatusDeleteComplete = "DELETE_COMPLETE"
)

// Row is the display projection of one remote resource. Rows are shared by
// pointer between polls so that renderers keyed on row identity see the same
// row while the resource exists. ID never changes after construction.
type Row struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	ErrorReason string `json:"error_reason"`

	// Instance rows (meca, mea, ns, nfy).
	VIM       string `json:"vim,omitempty"`
	CatalogID string `json:"catalog_id,omitempty"`

	// Event rows.
	EventType     string `json:"event_type,omitempty"`
	ResourceState string `json:"resource_state,omitempty"`
	Timestamp     string `json:"timestamp,omitempty"`
	Details       string `json:"details,omitempty"`
}

// update overwrites the mutable fields of r with those of fresh.
func (r *Row) update(fresh Row) {
	id := r.ID
	*r = fresh
	r.ID = id
}

// Selectable reports whether the row may be picked for bulk actions.
// Resources that finished deleting are still listed until they disappear
// upstream but can no longer be acted on.
func (r *Row) Selectable() bool {
	return r.Status != StatusDeleteComplete
}

// StatusClass maps the status to the console's three-state status column:
// "ok", "error" or "pending".
func (r *Row) StatusClass() string {
	switch {
	case r.Status == StatusActive:
		return "ok"
	case r.Status == StatusError || strings.HasSuffix(r.Status, "_FAILED"):
		return "error"
	default:
		return "pending"
	}
}

// List is an ordered display list, at most one row per ID, in upstream order.
type List []*Row

// Len returns the number of rows.
func (l List) Len() int { return len(l) }

// IDs returns the row IDs in order.
func (l List) IDs() []string {
	ids := make([]string, len(l))
	for i, r := range l {
		ids[i] = r.ID
	}
	return ids
}

// Find returns the row with the given ID, or nil.
func (l List) Find(id string) *Row {
	for _, r := range l {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// Snapshot copies the rows by value.
func (l List) Snapshot() []Row {
	out := make([]Row, len(l))
	for i, r := range l {
		out[i] = *r
	}
	return out
}

// Key addresses one display list inside a store scope. Parent is set for
// lists that belong to a resource, such as its events.
type Key struct {
	Kind   apmec.Kind
	Parent string
}

// String renders the key as "kind" or "kind/parent".
func (k Key) String() string {
	if k.Parent == "" {
		return string(k.Kind)
	}
	return string(k.Kind) + "/" + k.Parent
}

// MarshalJSON adds the derived status_class and can_be_selected fields the
// console renders with each row.
func (r Row) MarshalJSON() ([]byte, error) {
	type plain Row
	return json.Marshal(struct {
		plain
		StatusClass   string `json:"status_class"`
		CanBeSelected bool   `json:"can_be_selected"`
	}{plain: plain(r), StatusClass: r.StatusClass(), CanBeSelected: r.Selectable()})
}
