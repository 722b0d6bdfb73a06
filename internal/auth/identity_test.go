package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityHasRole(t *testing.T) {
	t.Parallel()

	identity := &Identity{Roles: []string{"Admin", "User"}}

	assert.True(t, identity.HasRole("Admin"))
	assert.True(t, identity.HasRole("User"))
	assert.False(t, identity.HasRole("Support"))
	assert.False(t, identity.HasRole("admin"), "role comparison is case sensitive")
}

func TestIdentityHasAnyRole(t *testing.T) {
	t.Parallel()

	identity := &Identity{Roles: []string{"Support"}}

	assert.True(t, identity.HasAnyRole("User", "Admin", "Support"))
	assert.False(t, identity.HasAnyRole("User", "Admin"))
	assert.False(t, identity.HasAnyRole())
}

func TestIdentityAttribute(t *testing.T) {
	t.Parallel()

	identity := &Identity{Attributes: map[string]string{"country": "CL"}}

	value, ok := identity.Attribute("country")
	assert.True(t, ok)
	assert.Equal(t, "CL", value)

	_, ok = identity.Attribute("department")
	assert.False(t, ok)
}

func TestIdentityContext(t *testing.T) {
	t.Parallel()

	identity := &Identity{Subject: "user-123"}
	ctx := ContextWithIdentity(context.Background(), identity)

	got, ok := IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, identity, got)

	_, ok = IdentityFromContext(context.Background())
	assert.False(t, ok)
}
