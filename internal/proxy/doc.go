// Package proxy forwards authorized requests to backend clusters. The
// dispatcher strips the route's namespace prefix, picks a destination by
// round robin, attaches the caller's identity headers, and relays the
// response verbatim. Dispatch is the only blocking step in the request
// pipeline: it runs under a bounded timeout, inherits inbound cancellation,
// and optionally sits behind a per-cluster circuit breaker.
package proxy
