package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() *GatewayConfig {
	return &GatewayConfig{
		Auth: AuthConfig{
			Issuer:   "http://localhost:8180/realms/demo",
			Audience: "gateway-client",
			Secret:   "test-secret",
		},
		Clusters: []Cluster{
			{Name: "orders-cluster", Destinations: []string{"http://localhost:8081"}},
		},
		Policies: []Policy{
			{Name: "RequireUser", Requirements: []Requirement{{RolesAny: []string{"User"}}}},
		},
		Routes: []Route{
			{
				ID:          "orders-get-route",
				PathPattern: "/api/orders/{**catch-all}",
				Methods:     []string{"GET"},
				ClusterID:   "orders-cluster",
				PolicyName:  "RequireUser",
			},
		},
	}
}

func TestValidateAcceptsBaseConfig(t *testing.T) {
	t.Parallel()

	require.NoError(t, baseConfig().Validate())
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*GatewayConfig)
		wantErr string
	}{
		{
			name: "jwksUrl and secret together",
			mutate: func(c *GatewayConfig) {
				c.Auth.JWKSURL = "http://localhost:8180/realms/demo/protocol/openid-connect/certs"
			},
			wantErr: "mutually exclusive",
		},
		{
			name: "malformed jwksUrl",
			mutate: func(c *GatewayConfig) {
				c.Auth.Secret = ""
				c.Auth.JWKSURL = "not a url"
			},
			wantErr: "invalid jwksUrl",
		},
		{
			name:    "cluster without name",
			mutate:  func(c *GatewayConfig) { c.Clusters[0].Name = "" },
			wantErr: "cluster: name is required",
		},
		{
			name: "duplicate cluster name",
			mutate: func(c *GatewayConfig) {
				c.Clusters = append(c.Clusters, c.Clusters[0])
			},
			wantErr: "duplicate name",
		},
		{
			name:    "cluster without destinations",
			mutate:  func(c *GatewayConfig) { c.Clusters[0].Destinations = nil },
			wantErr: "at least one destination",
		},
		{
			name: "destination without scheme",
			mutate: func(c *GatewayConfig) {
				c.Clusters[0].Destinations = []string{"localhost:8081"}
			},
			wantErr: "invalid destination",
		},
		{
			name: "breaker threshold zero",
			mutate: func(c *GatewayConfig) {
				c.Clusters[0].Breaker = &BreakerConfig{FailureThreshold: 0}
			},
			wantErr: "failureThreshold must be positive",
		},
		{
			name:    "policy without name",
			mutate:  func(c *GatewayConfig) { c.Policies[0].Name = "" },
			wantErr: "policy: name is required",
		},
		{
			name: "duplicate policy name",
			mutate: func(c *GatewayConfig) {
				c.Policies = append(c.Policies, c.Policies[0])
			},
			wantErr: "duplicate name",
		},
		{
			name:    "policy without requirements",
			mutate:  func(c *GatewayConfig) { c.Policies[0].Requirements = nil },
			wantErr: "at least one requirement",
		},
		{
			name: "requirement with no variant",
			mutate: func(c *GatewayConfig) {
				c.Policies[0].Requirements = []Requirement{{}}
			},
			wantErr: "exactly one requirement kind",
		},
		{
			name: "requirement with two variants",
			mutate: func(c *GatewayConfig) {
				c.Policies[0].Requirements = []Requirement{{
					RolesAny:     []string{"Admin"},
					ClaimPresent: "country",
				}}
			},
			wantErr: "exactly one requirement kind",
		},
		{
			name: "claimEquals without value",
			mutate: func(c *GatewayConfig) {
				c.Policies[0].Requirements = []Requirement{{
					ClaimEquals: &ClaimMatch{Key: "country"},
				}}
			},
			wantErr: "claimEquals needs key and value",
		},
		{
			name: "timeWindow hour out of range",
			mutate: func(c *GatewayConfig) {
				c.Policies[0].Requirements = []Requirement{{
					TimeWindow: &TimeWindow{StartHourUTC: 12, EndHourUTC: 24},
				}}
			},
			wantErr: "timeWindow hours must be in [0,23]",
		},
		{
			name: "timeWindow start after end",
			mutate: func(c *GatewayConfig) {
				c.Policies[0].Requirements = []Requirement{{
					TimeWindow: &TimeWindow{StartHourUTC: 22, EndHourUTC: 12},
				}}
			},
			wantErr: "start must not exceed end",
		},
		{
			name:    "route without id",
			mutate:  func(c *GatewayConfig) { c.Routes[0].ID = "" },
			wantErr: "route: id is required",
		},
		{
			name: "duplicate route id",
			mutate: func(c *GatewayConfig) {
				c.Routes = append(c.Routes, c.Routes[0])
			},
			wantErr: "duplicate id",
		},
		{
			name:    "path without leading slash",
			mutate:  func(c *GatewayConfig) { c.Routes[0].PathPattern = "api/orders" },
			wantErr: "must start with /",
		},
		{
			name:    "non-trailing wildcard",
			mutate:  func(c *GatewayConfig) { c.Routes[0].PathPattern = "/api/{**}/orders" },
			wantErr: "wildcard segment must be trailing",
		},
		{
			name:    "malformed wildcard segment",
			mutate:  func(c *GatewayConfig) { c.Routes[0].PathPattern = "/api/orders/{id}" },
			wantErr: "not a valid wildcard",
		},
		{
			name:    "invalid method",
			mutate:  func(c *GatewayConfig) { c.Routes[0].Methods = []string{"FETCH"} },
			wantErr: `invalid method "FETCH"`,
		},
		{
			name:    "unknown cluster",
			mutate:  func(c *GatewayConfig) { c.Routes[0].ClusterID = "missing" },
			wantErr: `unknown cluster "missing"`,
		},
		{
			name:    "unknown policy",
			mutate:  func(c *GatewayConfig) { c.Routes[0].PolicyName = "missing" },
			wantErr: `unknown policy "missing"`,
		},
		{
			name: "rate limit enabled without rate",
			mutate: func(c *GatewayConfig) {
				c.Limits.Enabled = true
			},
			wantErr: "requestsPerSecond must be positive",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := baseConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateCollectsMultipleErrors(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.Clusters[0].Destinations = nil
	cfg.Routes[0].PolicyName = "missing"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one destination")
	assert.Contains(t, err.Error(), `unknown policy "missing"`)
}

func TestValidateMethodCaseInsensitive(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.Routes[0].Methods = []string{"get", "Post"}
	assert.NoError(t, cfg.Validate())
}
