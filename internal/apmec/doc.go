// Package apmec is a client for the MEC orchestration REST API.
//
// Every resource kind (MEC applications, their catalogs, VIMs, events,
// forwarding paths and network services) is exposed under
// <endpoint>/v1.0/<plural> with the usual list, show, create and delete
// calls. Responses are wrapped in an envelope named after the kind:
//
//	GET  /v1.0/mecas        -> {"mecas": [...]}
//	GET  /v1.0/mecas/<id>   -> {"meca": {...}}
//	POST /v1.0/mecas        <- {"meca": {...}}
//
// Resources are returned as Record values so that fields unknown to this
// package survive a round trip.
//
// Errors are typed. IsNotFound identifies a 404, IsTransient identifies
// failures a later poll may not see (transport errors, malformed bodies, 5xx,
// 408, 429). Everything else is a *StatusError.
package apmec
