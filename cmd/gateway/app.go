package main

import (
	"context"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/gateway"
	"github.com/authgate/authgate/internal/health"
	"github.com/authgate/authgate/internal/middleware"
	"github.com/authgate/authgate/internal/observability"
)

// application holds the wired gateway components.
type application struct {
	cfg           *config.GatewayConfig
	logger        observability.Logger
	pipeline      *gateway.Pipeline
	tracer        *observability.Tracer
	dataServer    *http.Server
	adminServer   *http.Server
	limiterCloser io.Closer
	checker       *health.Checker
}

// newApplication builds the pipeline, middleware chain and both HTTP
// servers from a validated configuration. The context governs background
// components such as the JWKS refresh cache.
func newApplication(ctx context.Context, cfg *config.GatewayConfig, logger observability.Logger) (*application, error) {
	tracer, err := observability.NewTracer(ctx, cfg.Tracing)
	if err != nil {
		return nil, err
	}

	gen, err := gateway.BuildGeneration(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	pipeline := gateway.NewPipeline(gen,
		gateway.WithPipelineLogger(logger),
		gateway.WithPipelineTracer(tracer),
	)

	rateLimit, limiterCloser := middleware.RateLimitFromConfig(cfg.Limits, logger)

	var handler http.Handler = pipeline
	handler = rateLimit(handler)
	handler = middleware.Metrics()(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID()(handler)
	handler = middleware.Recovery(logger)(handler)

	checker := health.NewChecker(version)
	checker.RegisterCheck("config", func() health.Check {
		if pipeline.Generation() == nil {
			return health.Check{Status: health.StatusUnhealthy, Message: "no configuration loaded"}
		}
		return health.Check{Status: health.StatusHealthy}
	})

	return &application{
		cfg:           cfg,
		logger:        logger,
		pipeline:      pipeline,
		tracer:        tracer,
		dataServer:    newDataServer(cfg.Server, handler),
		adminServer:   newAdminServer(cfg.Admin, checker),
		limiterCloser: limiterCloser,
		checker:       checker,
	}, nil
}

// newDataServer builds the data-plane HTTP server.
func newDataServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:           cfg.Address,
		Handler:        handler,
		ReadTimeout:    cfg.ReadTimeout.Duration(),
		WriteTimeout:   cfg.WriteTimeout.Duration(),
		IdleTimeout:    cfg.IdleTimeout.Duration(),
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}
}

// newAdminServer builds the admin server exposing health and metrics.
func newAdminServer(cfg config.AdminConfig, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", checker.HealthHandler())
	mux.HandleFunc("/ready", checker.ReadinessHandler())
	mux.Handle(cfg.MetricsPath, promhttp.Handler())

	return &http.Server{
		Addr:    cfg.Address,
		Handler: mux,
	}
}
