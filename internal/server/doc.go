// Package server implements the panel backend consumed by the host console.
//
// Every list request is one synchronous poll: the orchestration API is
// fetched, the result is reconciled into the display list of the caller's
// session and the list is returned as JSON. The console repeats the request
// for as long as has_more is true.
//
// # Routes
//
//	GET    /api/v1/{kind}              poll the list of kind
//	GET    /api/v1/{kind}/{id}         refresh a single row
//	GET    /api/v1/{kind}/{id}/events  poll the events of a resource
//	GET    /api/v1/{kind}/{id}/detail  raw resource for the detail view
//	POST   /api/v1/{kind}              deploy (meca, mea, nfy, ns)
//	DELETE /api/v1/{kind}/{id}         terminate
//	GET    /api/v1/deploy/choices      catalog and VIM choices, ?kind=
//	GET    /api/v1/operations          recent deploys and deletes
//	GET    /api/v1/metrics             poll metrics
//	GET    /healthz
//
// Poll outcomes map to status codes: ok and stale 200, not_found 404, error
// 502. Errors are returned as {"error": "..."}.
//
// # Sessions
//
// A gorilla/sessions cookie (mecpanel-session) carries a random session id.
// The id selects the session's store scope, so display lists are never shared
// between browsers. Idle scopes are dropped by a cron sweeper once the
// session cookie would have expired.
package server
