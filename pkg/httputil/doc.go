// Package httputil provides shared HTTP plumbing for the decision API:
// JSON response writers with consistent error shapes, request body and
// path/query parameter parsing, and the middleware chain (request IDs,
// structured request logging, panic recovery, body limits).
package httputil
