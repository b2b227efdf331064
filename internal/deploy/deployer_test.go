package deploy

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pineunity/apmec-horizon/internal/apmec"
	"github.com/pineunity/apmec-horizon/internal/apmec/apmectest"
	"github.com/pineunity/apmec-horizon/internal/database"
)

func newTestDeployer(t *testing.T) (*Deployer, *apmectest.Server, *database.DB) {
	t.Helper()
	api := apmectest.NewServer(t)
	db, err := database.Open(database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewDeployer(api.Client(t), db), api, db
}

func TestDeployer_Deploy(t *testing.T) {
	d, api, db := newTestDeployer(t)
	ctx := context.Background()

	rec, err := d.Deploy(ctx, apmec.KindMECA, Request{
		Name:      "edge-app",
		CatalogID: "mecad-1",
		ParamRaw:  "flavor: small",
	}, "session-1234567890")
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID())
	assert.Equal(t, "PENDING_CREATE", rec.StringOr("status", ""))

	stored := api.Records(apmec.KindMECA)
	require.Len(t, stored, 1)
	assert.Equal(t, "mecad-1", stored[0]["mecad_id"])
	assert.Equal(t, map[string]any{"param_values": "flavor: small"}, stored[0]["attributes"])

	ops, err := db.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, database.StatusSucceeded, ops[0].Status)
	assert.Equal(t, ActionDeploy, ops[0].Action)
	assert.Equal(t, rec.ID(), ops[0].ResourceID)
}

func TestDeployer_DeployInvalid(t *testing.T) {
	d, api, db := newTestDeployer(t)
	ctx := context.Background()

	_, err := d.Deploy(ctx, apmec.KindMECA, Request{Name: "x"}, "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	assert.Equal(t, 0, api.Requests(http.MethodPost, apmec.KindMECA))
	ops, err := db.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestDeployer_RejectsDuplicateInFlight(t *testing.T) {
	for _, name := range []string{"edge-app", "edge-app ", "  edge-app", "edge-app\t"} {
		t.Run(name, func(t *testing.T) {
			d, api, db := newTestDeployer(t)
			ctx := context.Background()

			_, err := db.Begin(ctx, string(apmec.KindMECA), ActionDeploy, "edge-app")
			require.NoError(t, err)

			_, err = d.Deploy(ctx, apmec.KindMECA, Request{Name: name, CatalogID: "mecad-1"}, "")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDuplicateDeploy))
			assert.Equal(t, 0, api.Requests(http.MethodPost, apmec.KindMECA))
		})
	}
}

func TestDeployer_LogsTrimmedName(t *testing.T) {
	d, api, db := newTestDeployer(t)
	ctx := context.Background()

	_, err := d.Deploy(ctx, apmec.KindMECA, Request{Name: " edge-app ", CatalogID: "mecad-1"}, "")
	require.NoError(t, err)

	stored := api.Records(apmec.KindMECA)
	require.Len(t, stored, 1)
	assert.Equal(t, "edge-app", stored[0]["name"])

	ops, err := db.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "edge-app", ops[0].Name)
}

func TestDeployer_UpstreamFailureIsRecorded(t *testing.T) {
	d, api, db := newTestDeployer(t)
	ctx := context.Background()
	api.Fail(apmec.KindMECA, http.StatusConflict, `{"message": "name in use"}`)

	_, err := d.Deploy(ctx, apmec.KindMECA, Request{Name: "edge-app", CatalogID: "mecad-1"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name in use")

	ops, err := db.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, database.StatusFailed, ops[0].Status)
	assert.Contains(t, ops[0].Error, "name in use")

	// The failed deploy is no longer in flight and can be retried.
	api.Recover(apmec.KindMECA)
	_, err = d.Deploy(ctx, apmec.KindMECA, Request{Name: "edge-app", CatalogID: "mecad-1"}, "")
	assert.NoError(t, err)
}

func TestDeployer_Delete(t *testing.T) {
	d, api, db := newTestDeployer(t)
	ctx := context.Background()
	api.Set(apmec.KindMECA, apmec.Record{"id": "m1", "name": "one"})

	require.NoError(t, d.Delete(ctx, apmec.KindMECA, "m1", ""))
	assert.Empty(t, api.Records(apmec.KindMECA))

	err := d.Delete(ctx, apmec.KindMECA, "m1", "")
	assert.True(t, apmec.IsNotFound(err))

	ops, err := db.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, database.StatusFailed, ops[0].Status)
	assert.Equal(t, database.StatusSucceeded, ops[1].Status)
}

func TestDeployer_WithoutLog(t *testing.T) {
	api := apmectest.NewServer(t)
	d := NewDeployer(api.Client(t), nil)

	_, err := d.Deploy(context.Background(), apmec.KindMEA, Request{Name: "fw", CatalogID: "mead-1"}, "")
	require.NoError(t, err)
	assert.Len(t, api.Records(apmec.KindMEA), 1)
}
