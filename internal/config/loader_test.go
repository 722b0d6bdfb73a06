package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
server:
  address: ":8080"
auth:
  issuer: http://localhost:8180/realms/demo
  audience: gateway-client
  secret: test-secret
clusters:
  - name: orders-cluster
    destinations:
      - http://localhost:8081
routes:
  - id: orders-get-route
    pathPattern: /api/orders/{**catch-all}
    clusterId: orders-cluster
    policy: RequireUser
    priority: 1
policies:
  - name: RequireUser
    requirements:
      - rolesAny: [User, Admin, Support]
`

func TestLoadFromReader(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromReader(strings.NewReader(validYAML))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "test-secret", cfg.Auth.Secret)
	require.Len(t, cfg.Routes, 1)
	assert.Equal(t, "orders-get-route", cfg.Routes[0].ID)
	require.Len(t, cfg.Policies, 1)
	assert.Equal(t, []string{"User", "Admin", "Support"}, cfg.Policies[0].Requirements[0].RolesAny)
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromReader(strings.NewReader(validYAML))
	require.NoError(t, err)

	assert.Equal(t, DefaultReadTimeout, cfg.Server.ReadTimeout.Duration())
	assert.Equal(t, DefaultClusterTimeout, cfg.Clusters[0].Timeout.Duration())
	assert.Equal(t, DefaultClockSkew, cfg.Auth.ClockSkew.Duration())
	assert.Equal(t, DefaultAttributeClaims, cfg.Auth.AttributeClaims)
}

func TestLoadEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_AUTHGATE_SECRET", "from-env")

	yaml := strings.ReplaceAll(validYAML, "test-secret", "${TEST_AUTHGATE_SECRET}")
	cfg, err := LoadFromReader(strings.NewReader(yaml))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.Secret)
}

func TestLoadEnvSubstitutionDefault(t *testing.T) {
	t.Parallel()

	yaml := strings.ReplaceAll(validYAML, "test-secret", "${UNSET_AUTHGATE_VAR:-fallback-secret}")
	cfg, err := LoadFromReader(strings.NewReader(yaml))
	require.NoError(t, err)
	assert.Equal(t, "fallback-secret", cfg.Auth.Secret)
}

func TestLoadInvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := LoadFromReader(strings.NewReader("server: [not a map"))
	assert.Error(t, err)
}

func TestLoadDurationParsing(t *testing.T) {
	t.Parallel()

	yaml := strings.Replace(validYAML, `destinations:`, "timeout: 5s\n    destinations:", 1)
	cfg, err := LoadFromReader(strings.NewReader(yaml))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Clusters[0].Timeout.Duration())
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	t.Parallel()

	yaml := strings.Replace(validYAML, `destinations:`, "timeout: nonsense\n    destinations:", 1)
	_, err := LoadFromReader(strings.NewReader(yaml))
	assert.Error(t, err)
}
