// Package middleware provides HTTP middleware components shared by the
// gateway and the backend services: request IDs, panic recovery, access
// logging, CORS, rate limiting and Prometheus metrics. All middleware use
// the standard func(http.Handler) http.Handler shape so they compose with
// plain net/http servers.
package middleware
