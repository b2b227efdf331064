// Package logging provides the structured logging used throughout mecpanel.
//
// It is a thin layer over log/slog that adds a mandatory subsystem name to
// every entry so output can be filtered per component:
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//	logging.Info("Poller", "Polled %s: %d rows", kind, n)
//	logging.Error("Server", err, "Failed to deploy %s", name)
//
// The CLI uses the text handler; `mecpanel serve` may switch to JSON output
// through the logging.format configuration key.
//
// # Subsystems
//
//   - Bootstrap: startup and configuration loading
//   - Config: configuration parsing and hot reload
//   - APMEC: calls against the orchestration REST API
//   - Reconciler / Poller: display list reconciliation and polling
//   - Store: per-session row stores
//   - Server / HTTP: panel backend
//   - Deploy: deploy form handling
//   - Database: operations log
//
// # Audit Logging
//
// Deploy and terminate actions are recorded with Audit:
//
//	logging.Audit(logging.AuditEvent{
//	    Action:  "deploy",
//	    Outcome: "success",
//	    Kind:    "meca",
//	    Target:  "edge-cache",
//	})
//
// Audit entries are logged at INFO with an [AUDIT] message prefix.
//
// All functions are safe for concurrent use. Messages logged before Init are
// written to stderr when they are warnings or errors and dropped otherwise.
package logging
