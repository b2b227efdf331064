package app

import (
	"context"
	"fmt"

	"github.com/pineunity/apmec-horizon/internal/apmec"
	"github.com/pineunity/apmec-horizon/internal/database"
	"github.com/pineunity/apmec-horizon/internal/server"
	"github.com/pineunity/apmec-horizon/internal/telemetry"
	"github.com/pineunity/apmec-horizon/pkg/logging"
)

// Services holds everything the panel backend runs on.
type Services struct {
	// DB is the operations log.
	DB *database.DB

	// Client talks to the orchestration API. Reload swaps its endpoint and
	// credentials in place.
	Client *apmec.Client

	// Server is the panel HTTP backend.
	Server *server.Server

	shutdownTelemetry func(context.Context) error
}

// InitializeServices creates the services in dependency order:
//  1. Tracing (when telemetry.enabled)
//  2. Operations log, marking operations left pending by a previous run
//  3. Orchestration client
//  4. Panel backend
//
// On error everything created so far is closed again.
func InitializeServices(ctx context.Context, cfg *Config) (_ *Services, err error) {
	panel := cfg.PanelConfig
	s := &Services{}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	if panel.Telemetry.Enabled {
		s.shutdownTelemetry, err = telemetry.Initialize(ctx, telemetry.Config{
			ServiceName:    panel.Telemetry.ServiceName,
			ServiceVersion: cfg.Version,
			Endpoint:       panel.Telemetry.Endpoint,
			Insecure:       panel.Telemetry.Insecure,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		logging.Info("Bootstrap", "Exporting traces to %s", panel.Telemetry.Endpoint)
	}

	s.DB, err = database.Open(panel.Database.Path)
	if err != nil {
		return nil, err
	}
	abandoned, err := s.DB.AbandonPending(ctx)
	if err != nil {
		return nil, err
	}
	if abandoned > 0 {
		logging.Warn("Bootstrap", "Marked %d operations left pending by a previous run as abandoned", abandoned)
	}

	s.Client, err = apmec.NewClient(panel.Orchestrator)
	if err != nil {
		return nil, err
	}

	s.Server, err = server.New(*panel, s.Client, s.DB)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the operations log and flushes pending spans.
func (s *Services) Close() {
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			logging.Warn("Bootstrap", "Failed to close operations log: %v", err)
		}
		s.DB = nil
	}
	if s.shutdownTelemetry != nil {
		if err := s.shutdownTelemetry(context.Background()); err != nil {
			logging.Warn("Bootstrap", "Failed to flush traces: %v", err)
		}
		s.shutdownTelemetry = nil
	}
}
