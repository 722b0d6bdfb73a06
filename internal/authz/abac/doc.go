// Package abac compiles CEL expressions into policy requirements. An
// expression sees the identity as subject, username, roles, attributes, and
// the evaluation hour, and must produce a boolean.
package abac
