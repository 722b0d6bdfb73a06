// Package main is the entry point for the orders backend service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/auth/jwt"
	"github.com/authgate/authgate/internal/observability"
	"github.com/authgate/authgate/internal/service"
	"github.com/authgate/authgate/internal/service/orders"
)

func main() {
	addr := flag.String("addr", getEnvOrDefault("ORDERS_ADDR", ":8081"), "Listen address")
	issuer := flag.String("issuer", os.Getenv("ORDERS_JWT_ISSUER"), "Required token issuer")
	audience := flag.String("audience", os.Getenv("ORDERS_JWT_AUDIENCE"), "Required token audience")
	jwksURL := flag.String("jwks-url", os.Getenv("ORDERS_JWKS_URL"), "JWKS endpoint for token validation")
	secret := flag.String("secret", os.Getenv("ORDERS_JWT_SECRET"), "HS256 shared secret for token validation")
	logLevel := flag.String("log-level", getEnvOrDefault("ORDERS_LOG_LEVEL", "info"), "Log level")
	flag.Parse()

	logger, err := observability.NewLogger(observability.LogConfig{Level: *logLevel, Format: "json"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validator, err := jwt.NewValidator(ctx, jwt.Config{
		Issuer:    *issuer,
		Audience:  *audience,
		JWKSURL:   *jwksURL,
		Secret:    *secret,
		ClockSkew: 30 * time.Second,
	}, jwt.WithValidatorLogger(logger))
	if err != nil {
		logger.Fatal("failed to build token validator", observability.Error(err))
	}

	extractor := auth.NewExtractor(auth.ExtractorConfig{Audience: *audience}, auth.WithExtractorLogger(logger))
	router := orders.NewRouter(orders.NewRepository(), validator, extractor, logger)

	if err := service.Run(ctx, *addr, router, logger); err != nil {
		logger.Fatal("server failed", observability.Error(err))
	}
	logger.Info("orders service stopped")
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}
