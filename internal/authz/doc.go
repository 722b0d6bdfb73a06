// Package authz evaluates named authorization policies against a derived
// identity. A policy is a conjunction of requirement clauses: role membership,
// attribute equality, attribute presence, a UTC working-hours window, or a
// CEL expression. Evaluation walks clauses in declaration order and denies on
// the first failure; the failing clause is reported to callers for logging
// but is never disclosed to the client. New requirement kinds plug into the
// interpreter without touching the pipeline.
package authz
