package gateway

import (
	"context"
	"fmt"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/auth/jwt"
	"github.com/authgate/authgate/internal/authz"
	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/middleware"
	"github.com/authgate/authgate/internal/observability"
	"github.com/authgate/authgate/internal/proxy"
	"github.com/authgate/authgate/internal/router"
)

// Generation is one immutable compiled configuration: route table, policy
// engine, dispatcher, token validator and CORS policy built together from
// a single validated config. Reloads build a fresh Generation and swap it
// in whole; a failed build leaves the previous one serving.
type Generation struct {
	Routes     *router.Table
	Engine     *authz.Engine
	Dispatcher *proxy.Dispatcher
	Validator  auth.TokenValidator
	Extractor  *auth.Extractor
	CORS       *middleware.CORS
}

// BuildGeneration compiles a validated configuration. The context governs
// the lifetime of the JWKS refresh cache.
func BuildGeneration(ctx context.Context, cfg *config.GatewayConfig, logger observability.Logger) (*Generation, error) {
	routes, err := router.NewTable(cfg.Routes)
	if err != nil {
		return nil, fmt.Errorf("compiling routes: %w", err)
	}

	engine, err := authz.FromConfig(cfg.Policies, authz.WithEngineLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("compiling policies: %w", err)
	}

	dispatcher, err := proxy.NewDispatcher(cfg.Clusters, proxy.WithDispatcherLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("compiling clusters: %w", err)
	}

	validator, err := jwt.NewValidator(ctx, jwt.Config{
		Issuer:    cfg.Auth.Issuer,
		Audience:  cfg.Auth.Audience,
		Secret:    cfg.Auth.Secret,
		JWKSURL:   cfg.Auth.JWKSURL,
		ClockSkew: cfg.Auth.ClockSkew.Duration(),
	}, jwt.WithValidatorLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("building token validator: %w", err)
	}

	extractor := auth.NewExtractor(auth.ExtractorConfig{
		Audience:        cfg.Auth.Audience,
		AttributeClaims: cfg.Auth.AttributeClaims,
	}, auth.WithExtractorLogger(logger))

	return &Generation{
		Routes:     routes,
		Engine:     engine,
		Dispatcher: dispatcher,
		Validator:  validator,
		Extractor:  extractor,
		CORS:       middleware.NewCORS(cfg.CORS),
	}, nil
}
