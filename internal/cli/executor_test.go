package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pineunity/apmec-horizon/internal/apmec"
	"github.com/pineunity/apmec-horizon/internal/apmec/apmectest"
	"github.com/pineunity/apmec-horizon/internal/config"
	"github.com/pineunity/apmec-horizon/internal/deploy"
	"github.com/pineunity/apmec-horizon/internal/formatting"
)

type testExecutor struct {
	*Executor
	api    *apmectest.Server
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newTestExecutor(t *testing.T, format formatting.OutputFormat) *testExecutor {
	t.Helper()
	for _, key := range []string{config.EnvEndpoint, config.EnvToken, config.EnvListen, config.EnvSessionKey, config.EnvDatabase} {
		t.Setenv(key, "")
	}

	api := apmectest.NewServer(t)
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	e, err := NewExecutor(ExecutorOptions{
		Format:     format,
		ConfigPath: t.TempDir(),
		Endpoint:   api.URL + "/",
		Out:        out,
		ErrOut:     errOut,
	})
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })

	return &testExecutor{Executor: e, api: api, out: out, errOut: errOut}
}

func TestNewExecutor_RequiresConfigPath(t *testing.T) {
	_, err := NewExecutor(ExecutorOptions{Format: formatting.FormatTable})
	assert.Error(t, err)
}

func TestExecutor_EndpointOverride(t *testing.T) {
	e := newTestExecutor(t, formatting.FormatTable)
	assert.Equal(t, e.api.URL, e.Client().Endpoint())
	assert.Equal(t, e.api.URL, e.Config().Orchestrator.Endpoint)
}

func TestExecutor_List(t *testing.T) {
	e := newTestExecutor(t, formatting.FormatTable)
	e.api.Set(apmec.KindMECA,
		apmec.Record{"id": "m1", "name": "edge-a", "status": "ACTIVE"},
		apmec.Record{"name": "no id"},
	)

	require.NoError(t, e.List(context.Background(), apmec.KindMECA, nil))

	assert.Contains(t, e.out.String(), "edge-a")
	assert.Contains(t, e.out.String(), "Total: 1 mecas")
	assert.Contains(t, e.errOut.String(), "1 malformed meca records were skipped")
}

func TestExecutor_ListFailure(t *testing.T) {
	e := newTestExecutor(t, formatting.FormatJSON)
	e.api.Fail(apmec.KindMECA, http.StatusServiceUnavailable, "")

	err := e.List(context.Background(), apmec.KindMECA, nil)
	require.Error(t, err)
	assert.Empty(t, e.out.String())
}

func TestExecutor_ListUnauthorized(t *testing.T) {
	e := newTestExecutor(t, formatting.FormatJSON)
	e.api.Fail(apmec.KindVIM, http.StatusUnauthorized, "")

	err := e.List(context.Background(), apmec.KindVIM, nil)
	var authErr *AuthFailedError
	assert.ErrorAs(t, err, &authErr)
}

func TestExecutor_Get(t *testing.T) {
	e := newTestExecutor(t, formatting.FormatJSON)
	e.api.Set(apmec.KindMEA, apmec.Record{"id": "a1", "name": "fw"})

	require.NoError(t, e.Get(context.Background(), apmec.KindMEA, "a1"))
	assert.JSONEq(t, `{"id":"a1","name":"fw"}`, e.out.String())

	err := e.Get(context.Background(), apmec.KindMEA, "missing")
	assert.True(t, apmec.IsNotFound(err))
}

func TestExecutor_Events(t *testing.T) {
	e := newTestExecutor(t, formatting.FormatJSON)
	e.api.Set(apmec.KindMECA, apmec.Record{"id": "m1"})
	e.api.Set(apmec.KindEvent,
		apmec.Record{"id": "e1", "resource_id": "m1", "event_type": "CREATE"},
		apmec.Record{"id": "e2", "resource_id": "other", "event_type": "CREATE"},
	)

	require.NoError(t, e.Events(context.Background(), apmec.KindMECA, "m1"))
	assert.Contains(t, e.out.String(), `"id": "e1"`)
	assert.NotContains(t, e.out.String(), `"e2"`)

	err := e.Events(context.Background(), apmec.KindMECA, "gone")
	assert.True(t, apmec.IsNotFound(err))
}

func TestExecutor_WatchCount(t *testing.T) {
	e := newTestExecutor(t, formatting.FormatTable)
	e.api.Set(apmec.KindNS, apmec.Record{"id": "n1", "name": "svc", "status": "ACTIVE"})

	err := e.Watch(context.Background(), apmec.KindNS, nil, WatchOptions{Interval: time.Millisecond, Count: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(e.out.String(), "Every 1ms: nss"))
	assert.Equal(t, 3, e.api.Requests(http.MethodGet, apmec.KindNS))
}

func TestExecutor_WatchStaleKeepsRows(t *testing.T) {
	e := newTestExecutor(t, formatting.FormatTable)
	e.api.Set(apmec.KindNS, apmec.Record{"id": "n1", "name": "svc", "status": "ACTIVE"})
	ctx := context.Background()

	require.NoError(t, e.Watch(ctx, apmec.KindNS, nil, WatchOptions{Interval: time.Millisecond, Count: 1}))
	e.out.Reset()

	e.api.Fail(apmec.KindNS, http.StatusBadGateway, "")
	require.NoError(t, e.Watch(ctx, apmec.KindNS, nil, WatchOptions{Interval: time.Millisecond, Count: 1}))

	assert.Contains(t, e.out.String(), "svc", "last known rows are shown")
	assert.Contains(t, e.errOut.String(), "showing last known data")
}

func TestExecutor_WatchStopsOnError(t *testing.T) {
	e := newTestExecutor(t, formatting.FormatTable)
	e.api.Fail(apmec.KindNS, http.StatusNotFound, `{"message": "gone"}`)

	err := e.Watch(context.Background(), apmec.KindNS, nil, WatchOptions{Interval: time.Millisecond})
	require.Error(t, err)
	assert.True(t, apmec.IsNotFound(err))

	e.api.Fail(apmec.KindNS, http.StatusForbidden, "")
	err = e.Watch(context.Background(), apmec.KindNS, nil, WatchOptions{Interval: time.Millisecond})
	require.Error(t, err)
}

func TestExecutor_WatchEndsWithContext(t *testing.T) {
	e := newTestExecutor(t, formatting.FormatTable)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	err := e.Watch(ctx, apmec.KindVIM, nil, WatchOptions{Interval: 5 * time.Millisecond})
	assert.NoError(t, err)
}

func TestExecutor_DeployAndDelete(t *testing.T) {
	e := newTestExecutor(t, formatting.FormatTable)
	ctx := context.Background()

	err := e.Deploy(ctx, apmec.KindMECA, deploy.Request{Name: "edge", CatalogID: "d1"})
	require.NoError(t, err)
	assert.Contains(t, e.out.String(), "create operation initiated")

	recs := e.api.Records(apmec.KindMECA)
	require.Len(t, recs, 1)
	id := recs[0].ID()

	e.out.Reset()
	err = e.Delete(ctx, apmec.KindMECA, []string{id, "missing"})
	require.Error(t, err)
	assert.True(t, apmec.IsNotFound(err))
	assert.Contains(t, e.out.String(), id+" delete operation initiated")
	assert.Empty(t, e.api.Records(apmec.KindMECA))

	e.out.Reset()
	e.formatter.SetOptions(formatting.Options{Format: formatting.FormatJSON, Quiet: true, Out: e.out})
	e.options.Format = formatting.FormatJSON
	require.NoError(t, e.Operations(ctx, 10))
	assert.Equal(t, 3, strings.Count(e.out.String(), `"status"`))
}

func TestExecutor_DeployValidation(t *testing.T) {
	e := newTestExecutor(t, formatting.FormatTable)

	err := e.Deploy(context.Background(), apmec.KindMECA, deploy.Request{Name: "edge"})
	var verr *deploy.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 0, e.api.Requests(http.MethodPost, apmec.KindMECA))
}

func TestExecutor_OperationsEmpty(t *testing.T) {
	e := newTestExecutor(t, formatting.FormatTable)
	require.NoError(t, e.Operations(context.Background(), 10))
	assert.Equal(t, "No operations recorded\n", e.out.String())
}
