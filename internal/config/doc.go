// Package config defines the gateway's static configuration: listeners,
// CORS, token validation, clusters, routes, and authorization policies.
// Configuration is loaded once at startup and validated before the gateway
// serves traffic; the watcher supports hot reload by producing a fresh,
// fully validated configuration that callers swap in atomically.
package config
