// Package reconciler keeps displayed resource lists consistent with the
// orchestration API across independent polls.
//
// # Overview
//
// Each poll is one synchronous fetch, reconcile and store cycle:
//
//	records := source.List(kind)             // remote fetch
//	next, report := Reconcile(kind, cur, rs) // merge, preserving row pointers
//	scope.Update(key, next)                  // atomic replace
//
// Reconcile is pure apart from updating existing rows in place. A row keeps
// its pointer for as long as its id is returned by the API, so renderers that
// key UI state on row identity (expanded details, selection) do not flicker.
//
// # Outcomes
//
// The Poller never returns an error or panics. Every poll ends in an Outcome:
//
//   - OutcomeOK: fresh data stored
//   - OutcomeStale: transient failure (network, 5xx, malformed body); the
//     previous list is returned unchanged and polling continues
//   - OutcomeNotFound: the resource or its parent is gone; polling stops
//   - OutcomeError: any other failure; polling stops and Message is shown
//
// Records without an id are skipped and counted; they never fail a poll.
//
// # Scopes
//
// Lists are stored per session in a Scope (see internal/store), keyed by kind
// and, for event lists, by the parent resource id. Nothing is shared between
// sessions.
//
// # Metrics
//
// PollMetrics counts outcomes and row changes per kind. The panel exposes the
// summary at /api/v1/metrics.
package reconciler
