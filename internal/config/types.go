package config

import "time"

// PanelConfig is the top-level configuration structure for mecpanel.
type PanelConfig struct {
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	Panel        ServerConfig       `yaml:"panel"`
	Database     DatabaseConfig     `yaml:"database"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// AuthMode selects how the API token is presented to the orchestration API.
type AuthMode string

const (
	// AuthModeKeystone sends the token in the X-Auth-Token header.
	AuthModeKeystone AuthMode = "keystone"
	// AuthModeBearer sends the token as an Authorization: Bearer header.
	AuthModeBearer AuthMode = "bearer"
	// AuthModeNone sends no credentials.
	AuthModeNone AuthMode = "none"
)

// OrchestratorConfig describes how to reach the MEC orchestration REST API.
type OrchestratorConfig struct {
	Endpoint string        `yaml:"endpoint"`           // Base URL, e.g. http://controller:9896
	Auth     AuthConfig    `yaml:"auth,omitempty"`     // Credentials
	CACert   string        `yaml:"ca_cert,omitempty"`  // PEM bundle to trust in addition to system roots
	Insecure bool          `yaml:"insecure,omitempty"` // Skip TLS verification
	Timeout  time.Duration `yaml:"timeout,omitempty"`  // Per request timeout (default: 30s)
}

// AuthConfig holds the API credentials.
type AuthConfig struct {
	Mode  AuthMode `yaml:"mode,omitempty"`
	Token string   `yaml:"token,omitempty"`
}

// ServerConfig configures `mecpanel serve`.
type ServerConfig struct {
	Listen        string        `yaml:"listen,omitempty"`          // Listen address (default: 127.0.0.1:8095)
	SessionKey    string        `yaml:"session_key,omitempty"`     // Cookie signing key
	SessionMaxAge time.Duration `yaml:"session_max_age,omitempty"` // Cookie lifetime and idle limit for row stores
	SweepSchedule string        `yaml:"sweep_schedule,omitempty"`  // cron schedule for dropping idle session stores
	PollInterval  time.Duration `yaml:"poll_interval,omitempty"`   // Interval used by `mecpanel watch`

	// AllowedOrigins enables CORS for a console served from another origin.
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// DatabaseConfig configures the operations log.
type DatabaseConfig struct {
	Path string `yaml:"path,omitempty"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled,omitempty"`
	Endpoint    string `yaml:"endpoint,omitempty"`
	Insecure    bool   `yaml:"insecure,omitempty"`
	ServiceName string `yaml:"service_name,omitempty"`
}

// LoggingConfig configures pkg/logging.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}
