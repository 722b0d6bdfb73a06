package config

import (
	"time"

	"github.com/authgate/authgate/internal/observability"
)

// GatewayConfig is the root configuration for the gateway process.
type GatewayConfig struct {
	Server  ServerConfig               `yaml:"server"`
	Admin   AdminConfig                `yaml:"admin"`
	Logging observability.LogConfig    `yaml:"logging"`
	Tracing observability.TracerConfig `yaml:"tracing"`
	CORS    CORSConfig                 `yaml:"cors"`
	Auth    AuthConfig                 `yaml:"auth"`
	Limits  RateLimitConfig            `yaml:"rateLimit"`

	Clusters []Cluster `yaml:"clusters"`
	Routes   []Route   `yaml:"routes"`
	Policies []Policy  `yaml:"policies"`
}

// ServerConfig configures the data-plane HTTP listener.
type ServerConfig struct {
	Address        string   `yaml:"address"`
	ReadTimeout    Duration `yaml:"readTimeout"`
	WriteTimeout   Duration `yaml:"writeTimeout"`
	IdleTimeout    Duration `yaml:"idleTimeout"`
	MaxHeaderBytes int      `yaml:"maxHeaderBytes"`
}

// AdminConfig configures the admin listener serving health and metrics.
type AdminConfig struct {
	Address     string `yaml:"address"`
	MetricsPath string `yaml:"metricsPath"`
}

// CORSConfig configures the fixed CORS policy answered on preflight and
// attached to actual responses.
type CORSConfig struct {
	AllowOrigin      string   `yaml:"allowOrigin"`
	AllowMethods     []string `yaml:"allowMethods"`
	AllowHeaders     []string `yaml:"allowHeaders"`
	AllowCredentials bool     `yaml:"allowCredentials"`
	MaxAge           int      `yaml:"maxAge"`
}

// AuthConfig configures bearer-token validation and claim extraction.
type AuthConfig struct {
	// Issuer is the required token issuer. Empty disables the issuer check.
	Issuer string `yaml:"issuer"`

	// Audience is the required token audience. It also selects the client
	// entry used when reading audience-scoped roles. Empty disables the
	// audience check and unions roles across all clients.
	Audience string `yaml:"audience"`

	// JWKSURL points at the issuer's JWKS endpoint. Mutually exclusive
	// with Secret.
	JWKSURL string `yaml:"jwksUrl"`

	// Secret is a shared HMAC secret, mainly for tests and local setups.
	// Supports ${VAR} substitution.
	Secret string `yaml:"secret"`

	// ClockSkew is the accepted clock skew for exp/nbf checks.
	ClockSkew Duration `yaml:"clockSkew"`

	// AttributeClaims lists the claims copied into Identity.Attributes.
	AttributeClaims []string `yaml:"attributeClaims"`
}

// RateLimitConfig configures data-plane rate limiting.
type RateLimitConfig struct {
	Enabled bool `yaml:"enabled"`

	// RequestsPerSecond and Burst drive the local token bucket.
	RequestsPerSecond int `yaml:"requestsPerSecond"`
	Burst             int `yaml:"burst"`

	// RedisAddr switches to a Redis fixed-window limiter shared across
	// gateway replicas. Empty keeps the local bucket.
	RedisAddr string   `yaml:"redisAddr"`
	Window    Duration `yaml:"window"`
}

// Cluster names a set of destination base URLs requests can be forwarded to.
type Cluster struct {
	Name         string   `yaml:"name"`
	Destinations []string `yaml:"destinations"`

	// Timeout bounds a single dispatch to this cluster.
	Timeout Duration `yaml:"timeout"`

	// Breaker enables a circuit breaker in front of this cluster.
	Breaker *BreakerConfig `yaml:"breaker"`
}

// BreakerConfig configures the per-cluster circuit breaker.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that trips
	// the breaker.
	FailureThreshold int `yaml:"failureThreshold"`

	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout Duration `yaml:"openTimeout"`
}

// Route binds a path pattern and method set to a cluster and a policy.
type Route struct {
	ID          string `yaml:"id"`
	PathPattern string `yaml:"pathPattern"`

	// Methods lists the HTTP methods the route accepts. Empty means ANY.
	Methods []string `yaml:"methods"`

	ClusterID  string `yaml:"clusterId"`
	PolicyName string `yaml:"policy"`

	// Priority orders overlapping routes; lower values are preferred.
	Priority int `yaml:"priority"`
}

// Policy is a named conjunction of requirements. All requirements must pass.
type Policy struct {
	Name         string        `yaml:"name"`
	Requirements []Requirement `yaml:"requirements"`
}

// Requirement is one clause of a policy. Exactly one variant must be set.
type Requirement struct {
	// RolesAny passes when the identity holds at least one of the roles.
	RolesAny []string `yaml:"rolesAny"`

	// ClaimEquals passes when the named attribute equals the value.
	ClaimEquals *ClaimMatch `yaml:"claimEquals"`

	// ClaimPresent passes when the named attribute is present and non-empty.
	ClaimPresent string `yaml:"claimPresent"`

	// TimeWindow passes when the current UTC hour is inside the window,
	// boundaries included.
	TimeWindow *TimeWindow `yaml:"timeWindow"`

	// Expression is a CEL expression over the identity.
	Expression string `yaml:"expression"`
}

// ClaimMatch names an attribute and its required value.
type ClaimMatch struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// TimeWindow is an inclusive range of UTC hours.
type TimeWindow struct {
	StartHourUTC int `yaml:"startHourUtc"`
	EndHourUTC   int `yaml:"endHourUtc"`
}

// Default timeouts applied when the configuration leaves them unset.
const (
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultClusterTimeout  = 15 * time.Second
	DefaultClockSkew       = 30 * time.Second
	DefaultRateLimitWindow = time.Second
)

// DefaultAttributeClaims are the claims copied into Identity.Attributes when
// the configuration does not override the list.
var DefaultAttributeClaims = []string{"country", "department", "tenant"}

// ApplyDefaults fills unset fields with defaults.
func (c *GatewayConfig) ApplyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(DefaultReadTimeout)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(DefaultWriteTimeout)
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = Duration(DefaultIdleTimeout)
	}
	if c.Admin.Address == "" {
		c.Admin.Address = ":9090"
	}
	if c.Admin.MetricsPath == "" {
		c.Admin.MetricsPath = "/metrics"
	}
	if c.Logging.Level == "" {
		c.Logging = observability.DefaultLogConfig()
	}
	if c.Auth.ClockSkew == 0 {
		c.Auth.ClockSkew = Duration(DefaultClockSkew)
	}
	if len(c.Auth.AttributeClaims) == 0 {
		c.Auth.AttributeClaims = append([]string(nil), DefaultAttributeClaims...)
	}
	if c.Limits.Window == 0 {
		c.Limits.Window = Duration(DefaultRateLimitWindow)
	}
	for i := range c.Clusters {
		if c.Clusters[i].Timeout == 0 {
			c.Clusters[i].Timeout = Duration(DefaultClusterTimeout)
		}
	}
}
