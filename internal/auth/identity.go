package auth

import "context"

// Identity is the caller identity derived once per request from a verified
// claim set. It is immutable after creation and never persisted.
type Identity struct {
	// Subject is the unique user identifier from the token subject claim.
	Subject string

	// Username is the human-readable name from preferred_username.
	Username string

	// Roles is the union of roles found across all claim sources.
	Roles []string

	// Attributes holds attribute claims (country, department, tenant).
	// Keys are present only when the token carried them.
	Attributes map[string]string
}

// HasRole reports whether the identity holds the given role.
func (i *Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the identity holds at least one of the roles.
func (i *Identity) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if i.HasRole(role) {
			return true
		}
	}
	return false
}

// Attribute returns the named attribute and whether it is present.
func (i *Identity) Attribute(key string) (string, bool) {
	v, ok := i.Attributes[key]
	return v, ok
}

type identityContextKey struct{}

// ContextWithIdentity stores an identity in the context.
func ContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext returns the identity stored in the context, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(*Identity)
	return identity, ok && identity != nil
}
