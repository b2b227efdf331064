// Package database stores the operations log of mecpanel in SQLite.
//
// Every deploy and delete sent to the orchestration API is recorded as an
// Operation: pending when the request starts, then succeeded or failed. A
// unique index over pending rows guarantees that the same action on the same
// resource name cannot be in flight twice; Begin reports that as ErrInFlight.
//
// The schema is managed with goose; migrations are embedded in the binary
// and applied by Open.
package database
