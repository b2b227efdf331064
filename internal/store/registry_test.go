package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ScopeIsStablePerSession(t *testing.T) {
	r := NewRegistry()

	a := r.Scope("a")
	assert.Same(t, a, r.Scope("a"))
	assert.NotSame(t, a, r.Scope("b"))
	assert.Equal(t, 2, r.Len())

	r.Drop("a")
	assert.Equal(t, 1, r.Len())
	assert.NotSame(t, a, r.Scope("a"), "a dropped session starts empty")
}

func TestRegistry_Sweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry()
	r.now = func() time.Time { return now }

	r.Scope("old")
	now = now.Add(30 * time.Minute)
	r.Scope("recent")
	now = now.Add(45 * time.Minute)

	dropped := r.Sweep(time.Hour)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, 1, r.Len())

	// Touching a session keeps it alive.
	r.Scope("recent")
	now = now.Add(59 * time.Minute)
	assert.Equal(t, 0, r.Sweep(time.Hour))
}

func TestSweeper(t *testing.T) {
	r := NewRegistry()
	now := time.Now()
	r.now = func() time.Time { return now }
	r.Scope("idle")
	now = now.Add(2 * time.Hour)

	s, err := NewSweeper(r, "@every 1h", time.Hour)
	require.NoError(t, err)
	s.Start()
	defer s.Stop()

	s.Run()
	assert.Equal(t, 0, r.Len())
}

func TestNewSweeper_InvalidSchedule(t *testing.T) {
	_, err := NewSweeper(NewRegistry(), "whenever", time.Hour)
	assert.Error(t, err)
}
