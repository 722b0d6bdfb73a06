// Package gateway wires authentication, authorization, routing and
// dispatch into the request pipeline served on the data plane.
//
// The pipeline evaluates every request through a fixed sequence: CORS
// preflights are answered first, then the bearer token is validated (401
// on failure), the route is matched (404 when nothing matches), the
// route's policy is evaluated (403 on deny), identity headers are
// attached and the request is dispatched upstream. All routing and policy
// state lives in an immutable Generation swapped atomically on reload, so
// a request never observes a half-applied configuration.
package gateway
