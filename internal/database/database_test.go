package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	db.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return db
}

func TestOpen_AppliesMigrations(t *testing.T) {
	db := openTestDB(t)

	v, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "operations.db")
	ctx := context.Background()

	db, err := Open(path)
	require.NoError(t, err)
	op, err := db.Begin(ctx, "meca", "deploy", "edge-1")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening keeps the data and does not re-run migrations.
	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	ops, err := db.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, op.ID, ops[0].ID)
}

func TestBeginFinish(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	op, err := db.Begin(ctx, "meca", "deploy", "edge-1")
	require.NoError(t, err)
	assert.NotEmpty(t, op.ID)
	assert.Equal(t, StatusPending, op.Status)

	_, err = db.Begin(ctx, "meca", "deploy", "edge-1")
	require.ErrorIs(t, err, ErrInFlight)

	require.NoError(t, db.Finish(ctx, op.ID, "meca-123", nil))

	ops, err := db.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, StatusSucceeded, ops[0].Status)
	assert.Equal(t, "meca-123", ops[0].ResourceID)
	assert.Empty(t, ops[0].Error)
	assert.True(t, ops[0].UpdatedAt.After(ops[0].CreatedAt))
}

func TestFinish_Failure(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	op, err := db.Begin(ctx, "mea", "deploy", "fw")
	require.NoError(t, err)
	require.NoError(t, db.Finish(ctx, op.ID, "", errors.New("quota exceeded")))

	ops, err := db.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, ops[0].Status)
	assert.Equal(t, "quota exceeded", ops[0].Error)

	// A finished operation cannot be finished again.
	assert.Error(t, db.Finish(ctx, op.ID, "", nil))
	assert.Error(t, db.Finish(ctx, "missing", "", nil))
}

func TestBegin_RejectsDuplicateInFlight(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first, err := db.Begin(ctx, "meca", "deploy", "edge-1")
	require.NoError(t, err)

	_, err = db.Begin(ctx, "meca", "deploy", "edge-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInFlight))

	// Other names, kinds and actions are independent.
	_, err = db.Begin(ctx, "meca", "deploy", "edge-2")
	assert.NoError(t, err)
	_, err = db.Begin(ctx, "mea", "deploy", "edge-1")
	assert.NoError(t, err)
	_, err = db.Begin(ctx, "meca", "delete", "edge-1")
	assert.NoError(t, err)

	// Once finished, the same deploy can start again.
	require.NoError(t, db.Finish(ctx, first.ID, "", errors.New("boom")))
	_, err = db.Begin(ctx, "meca", "deploy", "edge-1")
	assert.NoError(t, err)
}

func TestRecent_NewestFirstWithLimit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := db.Begin(ctx, "ns", "deploy", name)
		require.NoError(t, err)
	}

	ops, err := db.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, "c", ops[0].Name)
	assert.Equal(t, "b", ops[1].Name)

	ops, err = db.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, ops, 3)
}

func TestAbandonPending(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	done, err := db.Begin(ctx, "meca", "deploy", "done")
	require.NoError(t, err)
	require.NoError(t, db.Finish(ctx, done.ID, "id-1", nil))
	_, err = db.Begin(ctx, "meca", "deploy", "stuck")
	require.NoError(t, err)

	n, err := db.AbandonPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ops, err := db.Recent(ctx, 10)
	require.NoError(t, err)
	statuses := map[string]string{}
	for _, op := range ops {
		statuses[op.Name] = op.Status
	}
	assert.Equal(t, map[string]string{"done": StatusSucceeded, "stuck": StatusAbandoned}, statuses)

	// An abandoned operation no longer blocks a retry.
	_, err = db.Begin(ctx, "meca", "deploy", "stuck")
	assert.NoError(t, err)
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "operations.db")

	db, err := Open(path)
	require.NoError(t, err)
	assert.NoError(t, db.Close())
	assert.FileExists(t, path)
}
