// Package observability provides structured logging, Prometheus metrics and
// health probes shared by every barrister service.
//
// The logger is a thin wrapper around log/slog emitting JSON, with
// context-propagated request and guild IDs. Metrics cover the decision API
// (permission checks, rule evaluations, bypasses) and the persistence layer.
package observability
