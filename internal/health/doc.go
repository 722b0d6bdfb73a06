// Package health provides liveness and readiness probe endpoints for the
// gateway and the backend services.
package health
