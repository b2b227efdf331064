// Package app bootstraps and runs `mecpanel serve`.
//
// NewApplication loads config.yaml from the configuration directory,
// configures logging from its logging section and creates the services the
// panel backend needs:
//
//   - OpenTelemetry tracing, when telemetry.enabled is set
//   - The operations log (internal/database). Operations still pending from a
//     previous run are marked abandoned, since their outcome is unknown.
//   - The orchestration client (internal/apmec)
//   - The panel backend (internal/server)
//
// Run starts a config.Watcher that applies orchestrator changes to the
// running server, then serves until the context is cancelled.
//
//	application, err := app.NewApplication(ctx, app.NewConfig(debug, configPath, "", version))
//	if err != nil {
//		return err
//	}
//	return application.Run(ctx)
package app
