package deploy

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pineunity/apmec-horizon/internal/apmec"
	"github.com/pineunity/apmec-horizon/internal/apmec/apmectest"
)

func TestLoadChoices(t *testing.T) {
	api := apmectest.NewServer(t)
	api.Set(apmec.KindMECAD,
		apmec.Record{"id": "d2", "name": "video"},
		apmec.Record{"id": "d1", "name": "analytics"},
		apmec.Record{"name": "no id"},
	)
	api.Set(apmec.KindVIM, apmec.Record{"id": "v1"})

	choices, err := LoadChoices(context.Background(), api.Client(t), apmec.KindMECA)
	require.NoError(t, err)

	assert.Equal(t, apmec.KindMECA, choices.Kind)
	assert.Equal(t, []Choice{{ID: "d1", Name: "analytics"}, {ID: "d2", Name: "video"}}, choices.Catalogs)
	assert.Equal(t, []Choice{{ID: "v1", Name: "v1"}}, choices.VIMs, "name falls back to id")
}

func TestLoadChoices_FailedListIsEmpty(t *testing.T) {
	api := apmectest.NewServer(t)
	api.Set(apmec.KindMEAD, apmec.Record{"id": "d1", "name": "fw"})
	api.Fail(apmec.KindVIM, http.StatusInternalServerError, "")

	choices, err := LoadChoices(context.Background(), api.Client(t), apmec.KindMEA)
	require.NoError(t, err)
	assert.Len(t, choices.Catalogs, 1)
	assert.NotNil(t, choices.VIMs)
	assert.Empty(t, choices.VIMs)
}

func TestLoadChoices_NotDeployable(t *testing.T) {
	api := apmectest.NewServer(t)
	_, err := LoadChoices(context.Background(), api.Client(t), apmec.KindVIM)
	assert.Error(t, err)
}

func TestLoadChoices_Cancelled(t *testing.T) {
	api := apmectest.NewServer(t)
	api.Set(apmec.KindMECAD, apmec.Record{"id": "d1"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadChoices(ctx, api.Client(t), apmec.KindMECA)
	assert.ErrorIs(t, err, context.Canceled)
}
