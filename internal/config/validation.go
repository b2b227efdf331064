package config

import (
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/pineunity/apmec-horizon/pkg/logging"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for values that would only fail later at
// runtime. All problems are reported at once in a *ConfigurationErrorCollection.
func (c PanelConfig) Validate(filePath string) error {
	errs := NewConfigurationErrorCollection()
	fileName := filepath.Base(filePath)

	add := func(field, message string, suggestions ...string) {
		errs.Add(ConfigurationError{
			FilePath:    filePath,
			FileName:    fileName,
			ErrorType:   "validation",
			Field:       field,
			Message:     message,
			Suggestions: suggestions,
		})
	}

	if err := validateEndpoint(c.Orchestrator.Endpoint); err != nil {
		add("orchestrator.endpoint", err.Error(),
			"Set orchestrator.endpoint or "+EnvEndpoint+" to the API base URL, e.g. http://controller:9896")
	}

	switch c.Orchestrator.Auth.Mode {
	case AuthModeKeystone, AuthModeBearer, AuthModeNone, "":
	default:
		add("orchestrator.auth.mode", fmt.Sprintf("unknown auth mode %q", c.Orchestrator.Auth.Mode),
			"Use one of: keystone, bearer, none")
	}

	if c.Orchestrator.Timeout < 0 {
		add("orchestrator.timeout", "must not be negative")
	}

	if c.Panel.Listen != "" {
		if _, _, err := net.SplitHostPort(c.Panel.Listen); err != nil {
			add("panel.listen", fmt.Sprintf("invalid listen address: %v", err), "Use host:port, e.g. 127.0.0.1:8095")
		}
	}

	if c.Panel.SessionMaxAge < 0 {
		add("panel.session_max_age", "must not be negative")
	}

	if c.Panel.SweepSchedule != "" {
		if _, err := cron.ParseStandard(c.Panel.SweepSchedule); err != nil {
			add("panel.sweep_schedule", fmt.Sprintf("invalid cron schedule: %v", err),
				"Use a cron expression or a descriptor such as @every 15m")
		}
	}

	if c.Panel.PollInterval < 0 {
		add("panel.poll_interval", "must not be negative")
	}

	for _, origin := range c.Panel.AllowedOrigins {
		if origin == "*" {
			continue
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" || (u.Path != "" && u.Path != "/") {
			add("panel.allowed_origins", fmt.Sprintf("invalid origin %q", origin),
				"Use scheme://host[:port], e.g. https://console.example.com")
		}
	}

	if c.Telemetry.Enabled && strings.TrimSpace(c.Telemetry.Endpoint) == "" {
		add("telemetry.endpoint", "is required when telemetry is enabled")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		add("logging.format", fmt.Sprintf("unknown log format %q", c.Logging.Format), "Use text or json")
	}

	if errs.HasErrors() {
		logging.Debug("ConfigLoader", "Configuration has %d validation errors", errs.Count())
		return errs
	}
	return nil
}

func validateEndpoint(endpoint string) error {
	if strings.TrimSpace(endpoint) == "" {
		return fmt.Errorf("is required")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
