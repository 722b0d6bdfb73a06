// Package service holds the pieces shared by the backend services sitting
// behind the gateway: bearer-token authentication middleware, role checks
// and access to the identity metadata the gateway forwards.
//
// The backends do not trust the X-User-* headers for enforcement. They
// re-validate the forwarded bearer token and derive roles from it
// themselves, so a request that bypasses the gateway gains nothing. The
// headers are surfaced as request metadata only.
package service
