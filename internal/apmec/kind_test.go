package apmec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "meca", want: KindMECA},
		{in: "MECAS", want: KindMECA},
		{in: " vims ", want: KindVIM},
		{in: "nss", want: KindNS},
		{in: "events", want: KindEvent},
		{in: "servers", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKind_Catalog(t *testing.T) {
	assert.Equal(t, KindMECAD, KindMECA.Catalog())
	assert.Equal(t, "mecad_id", KindMECA.CatalogField())
	assert.Equal(t, "mead_id", KindMEA.CatalogField())
	assert.Equal(t, "nsd_id", KindNS.CatalogField())
	assert.True(t, KindNS.Deployable())
	assert.False(t, KindVIM.Deployable())
	assert.Equal(t, "", KindVIM.CatalogField())
}

func TestKinds(t *testing.T) {
	ks := Kinds()
	assert.Len(t, ks, 10)
	for _, k := range ks {
		assert.True(t, k.Valid())
		assert.NotEmpty(t, k.Plural())
	}
	assert.False(t, Kind("bogus").Valid())
}
