package reconciler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pineunity/apmec-horizon/internal/apmec"
)

func TestDecodeRow(t *testing.T) {
	tests := []struct {
		name    string
		kind    apmec.Kind
		rec     apmec.Record
		want    Row
		wantErr error
	}{
		{
			name: "instance with all fields",
			kind: apmec.KindMECA,
			rec: apmec.Record{
				"id": "a", "name": "edge", "description": "d", "status": "ACTIVE",
				"error_reason": "", "vim_id": "v1", "mecad_id": "c1",
			},
			want: Row{ID: "a", Name: "edge", Description: "d", Status: "ACTIVE", VIM: "v1", CatalogID: "c1"},
		},
		{
			name: "null optional fields",
			kind: apmec.KindMEA,
			rec:  apmec.Record{"id": "a", "description": nil, "error_reason": nil, "vim_id": nil},
			want: Row{ID: "a"},
		},
		{
			name: "numeric id",
			kind: apmec.KindVIM,
			rec:  apmec.Record{"id": json.Number("17")},
			want: Row{ID: "17"},
		},
		{
			name: "catalog kinds carry no vim",
			kind: apmec.KindMECAD,
			rec:  apmec.Record{"id": "c1", "vim_id": "ignored"},
			want: Row{ID: "c1"},
		},
		{
			name: "event",
			kind: apmec.KindEvent,
			rec: apmec.Record{
				"id": json.Number("5"), "event_type": "CREATE", "resource_state": "ACTIVE",
				"timestamp": "2026-01-02 03:04:05", "event_details": map[string]any{"vim": "v1"},
			},
			want: Row{ID: "5", EventType: "CREATE", ResourceState: "ACTIVE",
				Timestamp: "2026-01-02 03:04:05", Details: `{"vim":"v1"}`},
		},
		{
			name: "event with legacy timestamp key",
			kind: apmec.KindEvent,
			rec:  apmec.Record{"id": "6", "timecatamp": "2026-01-02 03:04:05", "event_details": "plain"},
			want: Row{ID: "6", Timestamp: "2026-01-02 03:04:05", Details: "plain"},
		},
		{
			name:    "missing id",
			kind:    apmec.KindMECA,
			rec:     apmec.Record{"name": "x"},
			wantErr: ErrMissingID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRow(tt.kind, tt.rec)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
