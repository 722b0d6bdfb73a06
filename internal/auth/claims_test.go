package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractIdentityFields(t *testing.T) {
	t.Parallel()

	extractor := NewExtractor(ExtractorConfig{
		AttributeClaims: []string{"country", "department", "tenant"},
	})

	identity := extractor.Extract(Claims{
		"sub":                "user-123",
		"preferred_username": "jdoe",
		"country":            "CL",
		"department":         "IT",
	})

	assert.Equal(t, "user-123", identity.Subject)
	assert.Equal(t, "jdoe", identity.Username)
	assert.Equal(t, "CL", identity.Attributes["country"])
	assert.Equal(t, "IT", identity.Attributes["department"])
	_, ok := identity.Attributes["tenant"]
	assert.False(t, ok, "absent claim must not appear as attribute")
}

func TestExtractRoleShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		audience string
		claims   Claims
		expected []string
	}{
		{
			name:     "audience scoped roles",
			audience: "gateway-client",
			claims: Claims{
				"resource_access": map[string]any{
					"gateway-client": map[string]any{
						"roles": []any{"Admin", "User"},
					},
					"other-client": map[string]any{
						"roles": []any{"Ignored"},
					},
				},
			},
			expected: []string{"Admin", "User"},
		},
		{
			name:     "no audience unions all clients in name order",
			audience: "",
			claims: Claims{
				"resource_access": map[string]any{
					"beta":  map[string]any{"roles": []any{"B"}},
					"alpha": map[string]any{"roles": []any{"A"}},
				},
			},
			expected: []string{"A", "B"},
		},
		{
			name: "realm wide roles",
			claims: Claims{
				"realm_access": map[string]any{
					"roles": []any{"Support"},
				},
			},
			expected: []string{"Support"},
		},
		{
			name: "flat roles array",
			claims: Claims{
				"roles": []any{"User", "Support"},
			},
			expected: []string{"User", "Support"},
		},
		{
			name: "bare string role",
			claims: Claims{
				"roles": "Admin",
			},
			expected: []string{"Admin"},
		},
		{
			name: "json encoded object claim",
			claims: Claims{
				"realm_access": `{"roles":["Admin"]}`,
			},
			expected: []string{"Admin"},
		},
		{
			name: "json encoded roles array",
			claims: Claims{
				"roles": `["User"]`,
			},
			expected: []string{"User"},
		},
		{
			name:     "all sources contribute with dedup",
			audience: "gateway-client",
			claims: Claims{
				"resource_access": map[string]any{
					"gateway-client": map[string]any{
						"roles": []any{"Admin"},
					},
				},
				"realm_access": map[string]any{
					"roles": []any{"Admin", "User"},
				},
				"roles": []any{"User", "Support"},
			},
			expected: []string{"Admin", "User", "Support"},
		},
		{
			name:     "no role claims",
			claims:   Claims{"sub": "user-123"},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			extractor := NewExtractor(ExtractorConfig{Audience: tt.audience})
			identity := extractor.Extract(tt.claims)
			assert.Equal(t, tt.expected, identity.Roles)
		})
	}
}

func TestExtractMalformedSourceIsolation(t *testing.T) {
	t.Parallel()

	// A malformed audience-scoped claim must not block the other sources.
	extractor := NewExtractor(ExtractorConfig{Audience: "gateway-client"})
	identity := extractor.Extract(Claims{
		"resource_access": 42,
		"realm_access": map[string]any{
			"roles": []any{"User"},
		},
	})

	assert.Equal(t, []string{"User"}, identity.Roles)
}

func TestExtractNonStringAttributeSkipped(t *testing.T) {
	t.Parallel()

	extractor := NewExtractor(ExtractorConfig{
		AttributeClaims: []string{"country", "level"},
	})
	identity := extractor.Extract(Claims{
		"country": "CL",
		"level":   7,
	})

	require.NotNil(t, identity.Attributes)
	assert.Equal(t, "CL", identity.Attributes["country"])
	_, ok := identity.Attributes["level"]
	assert.False(t, ok)
}

func TestExtractNeverReturnsNil(t *testing.T) {
	t.Parallel()

	extractor := NewExtractor(ExtractorConfig{})
	identity := extractor.Extract(Claims{})

	require.NotNil(t, identity)
	assert.Empty(t, identity.Subject)
	assert.Empty(t, identity.Roles)
	assert.NotNil(t, identity.Attributes)
}
