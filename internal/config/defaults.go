package config

import "time"

const (
	// DefaultListen is the default address of the panel backend.
	DefaultListen = "127.0.0.1:8095"

	// DefaultTimeout bounds each call against the orchestration API.
	DefaultTimeout = 30 * time.Second

	// DefaultSessionMaxAge is the session cookie lifetime.
	DefaultSessionMaxAge = 12 * time.Hour

	// DefaultSweepSchedule runs the idle session sweep every 15 minutes.
	DefaultSweepSchedule = "@every 15m"

	// DefaultPollInterval matches the console's table refresh period.
	DefaultPollInterval = 10 * time.Second

	// DefaultServiceName is reported to the tracing backend.
	DefaultServiceName = "mecpanel"
)

// GetDefaultConfig returns the default configuration. The database path is
// left empty and resolved relative to the configuration directory by LoadConfig.
func GetDefaultConfig() PanelConfig {
	return PanelConfig{
		Orchestrator: OrchestratorConfig{
			Endpoint: "http://localhost:9896",
			Auth: AuthConfig{
				Mode: AuthModeKeystone,
			},
			Timeout: DefaultTimeout,
		},
		Panel: ServerConfig{
			Listen:        DefaultListen,
			SessionMaxAge: DefaultSessionMaxAge,
			SweepSchedule: DefaultSweepSchedule,
			PollInterval:  DefaultPollInterval,
		},
		Telemetry: TelemetryConfig{
			ServiceName: DefaultServiceName,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
