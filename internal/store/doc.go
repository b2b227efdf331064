// Package store holds the display lists of each panel session.
//
// A Scope is the Row Identity Store of one browser session: a map from
// reconciler.Key to the last successfully reconciled reconciler.List. Lists
// are replaced whole under the scope lock, so readers see either the
// previous or the next list and never a partial one. There is no TTL and no
// row eviction; a list changes only when a poll stores a new one.
//
// A Registry maps session ids to scopes. Scopes of sessions that have been
// idle longer than the session cookie lifetime are dropped by Sweep, which
// Sweeper runs on a cron schedule while the panel is serving.
package store
