// Package cli implements the operator commands of mecpanel on top of the
// orchestration client and the reconciler.
//
// Executor loads the configuration, builds the orchestration client and
// renders results through internal/formatting. Lists are polled through a
// reconciler.Poller with a single local store scope, so `mecpanel watch`
// keeps row identity and falls back to the last known rows on transient
// failures exactly like the panel does.
//
// Errors from the client are translated by FriendlyError into
// ConnectionError (TLS, DNS, timeout, network) or AuthFailedError, each with
// guidance for the operator. NotFound errors are passed through so that the
// command layer can exit with code 2.
//
// A spinner is shown on stderr while fetching, only for table output on an
// interactive terminal and never with --quiet.
package cli
