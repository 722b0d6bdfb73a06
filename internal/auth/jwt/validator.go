package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/observability"
)

// jwksMinRefreshInterval floors how often the JWKS cache refetches keys.
const jwksMinRefreshInterval = 15 * time.Minute

// Config holds token validation settings.
type Config struct {
	// Issuer is the required iss value. Empty disables the check.
	Issuer string

	// Audience is the required aud value. Empty disables the check.
	Audience string

	// Secret enables HS256 validation with a shared secret.
	Secret string

	// JWKSURL enables asymmetric validation against a JWKS endpoint.
	JWKSURL string

	// ClockSkew is the accepted skew for time-based claims.
	ClockSkew time.Duration
}

// validator implements auth.TokenValidator with jwx.
type validator struct {
	config  Config
	keySet  jwk.Set
	hmacKey jwk.Key
	logger  observability.Logger
}

// ValidatorOption configures a validator.
type ValidatorOption func(*validator)

// WithValidatorLogger sets the validator logger.
func WithValidatorLogger(logger observability.Logger) ValidatorOption {
	return func(v *validator) { v.logger = logger }
}

// NewValidator creates a token validator. The context governs the lifetime
// of the JWKS refresh cache, if one is configured.
func NewValidator(ctx context.Context, cfg Config, opts ...ValidatorOption) (auth.TokenValidator, error) {
	v := &validator{
		config: cfg,
		logger: observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(v)
	}

	switch {
	case cfg.Secret != "":
		key, err := jwk.FromRaw([]byte(cfg.Secret))
		if err != nil {
			return nil, fmt.Errorf("build HMAC key: %w", err)
		}
		v.hmacKey = key

	case cfg.JWKSURL != "":
		cache := jwk.NewCache(ctx)
		if err := cache.Register(cfg.JWKSURL, jwk.WithMinRefreshInterval(jwksMinRefreshInterval)); err != nil {
			return nil, fmt.Errorf("register JWKS endpoint: %w", err)
		}
		v.keySet = jwk.NewCachedSet(cache, cfg.JWKSURL)

	default:
		return nil, errors.New("either a secret or a JWKS URL is required")
	}

	return v, nil
}

// Validate verifies the token and returns its claim set.
func (v *validator) Validate(ctx context.Context, token string) (auth.Claims, error) {
	opts := []jwt.ParseOption{
		jwt.WithContext(ctx),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(v.config.ClockSkew),
	}
	if v.hmacKey != nil {
		opts = append(opts, jwt.WithKey(jwa.HS256, v.hmacKey))
	} else {
		opts = append(opts, jwt.WithKeySet(v.keySet))
	}
	if v.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.config.Issuer))
	}
	if v.config.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.config.Audience))
	}

	parsed, err := jwt.Parse([]byte(token), opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return nil, fmt.Errorf("%w: %s", auth.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %s", auth.ErrInvalidToken, err)
	}

	claims, err := parsed.AsMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: read claims: %s", auth.ErrInvalidToken, err)
	}
	return auth.Claims(claims), nil
}
