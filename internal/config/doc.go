// Package config provides configuration management for mecpanel.
//
// Configuration is loaded from a single directory. The default directory is
// ~/.config/mecpanel; every command accepts --config-path to use another one.
//
// # Configuration File
//
// The directory contains config.yaml:
//
//	orchestrator:
//	  endpoint: https://controller:9896
//	  auth:
//	    mode: keystone        # keystone | bearer | none
//	    token: gAAAAAB...
//	  ca_cert: /etc/ssl/apmec-ca.pem
//	  timeout: 30s
//	panel:
//	  listen: 127.0.0.1:8095
//	  session_key: change-me
//	  session_max_age: 12h
//	  sweep_schedule: "@every 15m"
//	  poll_interval: 10s
//	  allowed_origins:
//	    - https://console.example.com
//	database:
//	  path: /var/lib/mecpanel/operations.db
//	telemetry:
//	  enabled: false
//	  endpoint: localhost:4318
//	logging:
//	  level: info
//	  format: json
//
// A missing config.yaml is not an error; defaults from GetDefaultConfig are
// used. When database.path is empty the operations log is stored as
// operations.db next to config.yaml.
//
// # Environment Overrides
//
// The following variables override values read from the file:
//
//   - MECPANEL_ENDPOINT: orchestrator.endpoint
//   - MECPANEL_TOKEN: orchestrator.auth.token
//   - MECPANEL_LISTEN: panel.listen
//   - MECPANEL_SESSION_KEY: panel.session_key
//   - MECPANEL_DATABASE: database.path
//
// # Validation
//
// LoadConfig validates the merged configuration and returns a
// *ConfigurationErrorCollection listing every problem found, each with the
// offending field and suggestions.
//
// # Hot Reload
//
// Watcher observes the configuration directory with fsnotify and calls back
// with the reloaded configuration. `mecpanel serve` uses it to swap the
// orchestration endpoint and token without a restart.
package config
