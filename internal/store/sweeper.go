package store

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pineunity/apmec-horizon/pkg/logging"
)

// Sweeper periodically drops idle session scopes from a registry.
type Sweeper struct {
	cron     *cron.Cron
	registry *Registry
	idle     time.Duration
}

// NewSweeper schedules registry.Sweep(idle) on the given cron schedule.
func NewSweeper(registry *Registry, schedule string, idle time.Duration) (*Sweeper, error) {
	s := &Sweeper{
		cron:     cron.New(),
		registry: registry,
		idle:     idle,
	}
	if _, err := s.cron.AddFunc(schedule, s.Run); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Run sweeps once.
func (s *Sweeper) Run() {
	if dropped := s.registry.Sweep(s.idle); dropped > 0 {
		logging.Info("Store", "Dropped %d idle session scopes (%d remaining)", dropped, s.registry.Len())
	}
}

// Start begins running the schedule in the background.
func (s *Sweeper) Start() {
	s.cron.Start()
	logging.Debug("Store", "Session sweeper started")
}

// Stop stops the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logging.Debug("Store", "Session sweeper stopped")
}
