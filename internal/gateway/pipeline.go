package gateway

import (
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/observability"
	"github.com/authgate/authgate/internal/router"
)

// Client-facing error bodies. Deny responses are deliberately generic:
// which clause failed is logged, never returned.
const (
	errUnauthorized = `{"message":"unauthorized"}`
	errForbidden    = `{"message":"forbidden"}`
	errNotFound     = `{"message":"no route matched"}`
)

// Pipeline is the data-plane request handler. It consults the current
// Generation exactly once per request, so a concurrent reload never mixes
// old routes with new policies.
type Pipeline struct {
	generation atomic.Pointer[Generation]
	logger     observability.Logger
	tracer     *observability.Tracer
	metrics    *Metrics
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineLogger sets the pipeline logger.
func WithPipelineLogger(logger observability.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = logger }
}

// WithPipelineTracer enables a span around upstream dispatch.
func WithPipelineTracer(tracer *observability.Tracer) PipelineOption {
	return func(p *Pipeline) { p.tracer = tracer }
}

// NewPipeline creates a pipeline serving the given initial generation.
func NewPipeline(gen *Generation, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		logger:  observability.NopLogger(),
		metrics: GetMetrics(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.Swap(gen)
	return p
}

// Swap atomically replaces the serving generation. In-flight requests
// keep the generation they loaded at entry.
func (p *Pipeline) Swap(gen *Generation) {
	p.generation.Store(gen)
	p.metrics.generationGauge.Set(float64(gen.Routes.Generation()))
}

// Generation returns the generation currently serving traffic.
func (p *Pipeline) Generation() *Generation {
	return p.generation.Load()
}

// ServeHTTP runs the request through the pipeline stages in order:
// preflight, authenticate, match, authorize, propagate, dispatch.
func (p *Pipeline) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	gen := p.generation.Load()

	// OPTIONS requests carry no credentials and are answered before any
	// authentication so browsers can probe protected routes.
	if gen.CORS.HandlePreflight(w, r) {
		p.metrics.decisionsTotal.WithLabelValues("", DecisionPreflight).Inc()
		return
	}

	identity, ok := p.authenticate(gen, w, r)
	if !ok {
		return
	}

	route, err := gen.Routes.Match(r.URL.Path, r.Method)
	if err != nil {
		if !errors.Is(err, router.ErrNoRoute) {
			p.logger.Error("route match failed", observability.Error(err))
		}
		p.metrics.decisionsTotal.WithLabelValues("", DecisionNoRoute).Inc()
		p.writeError(w, http.StatusNotFound, errNotFound)
		return
	}

	if !p.authorize(gen, w, r, route, identity) {
		return
	}

	gen.CORS.Apply(w, r)
	p.dispatch(gen, w, r, route, identity)
}

// authenticate validates the bearer token and derives the identity.
// It answers 401 itself and returns ok=false when the request must stop.
func (p *Pipeline) authenticate(gen *Generation, w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	token, err := auth.BearerToken(r)
	if err != nil {
		p.deny401(w, r, err)
		return nil, false
	}

	claims, err := gen.Validator.Validate(r.Context(), token)
	if err != nil {
		p.deny401(w, r, err)
		return nil, false
	}

	return gen.Extractor.Extract(claims), true
}

func (p *Pipeline) deny401(w http.ResponseWriter, r *http.Request, err error) {
	p.logger.Debug("authentication failed",
		observability.String("path", r.URL.Path),
		observability.String("method", r.Method),
		observability.Error(err),
	)
	p.metrics.decisionsTotal.WithLabelValues("", DecisionUnauthenticated).Inc()
	w.Header().Set("WWW-Authenticate", `Bearer realm="authgate"`)
	p.writeError(w, http.StatusUnauthorized, errUnauthorized)
}

// authorize evaluates the route's policy. Routes without a policy name
// require authentication only.
func (p *Pipeline) authorize(gen *Generation, w http.ResponseWriter, r *http.Request, route *router.Route, identity *auth.Identity) bool {
	if route.PolicyName == "" {
		return true
	}

	decision, err := gen.Engine.Evaluate(route.PolicyName, identity, time.Now())
	if err != nil {
		// Unreachable with a validated configuration; fail closed.
		p.logger.Error("policy evaluation failed",
			observability.String("route", route.ID),
			observability.String("policy", route.PolicyName),
			observability.Error(err),
		)
		p.metrics.decisionsTotal.WithLabelValues(route.ID, DecisionForbidden).Inc()
		p.writeError(w, http.StatusForbidden, errForbidden)
		return false
	}

	if !decision.Allowed {
		p.logger.Info("request denied",
			observability.String("route", route.ID),
			observability.String("policy", decision.Policy),
			observability.String("failed_requirement", decision.FailedRequirement),
			observability.String("subject", identity.Subject),
			observability.Strings("roles", identity.Roles),
		)
		p.metrics.decisionsTotal.WithLabelValues(route.ID, DecisionForbidden).Inc()
		p.writeError(w, http.StatusForbidden, errForbidden)
		return false
	}

	return true
}

// dispatch forwards the request upstream with the identity attached.
func (p *Pipeline) dispatch(gen *Generation, w http.ResponseWriter, r *http.Request, route *router.Route, identity *auth.Identity) {
	if p.tracer != nil {
		ctx, span := p.tracer.Start(r.Context(), "gateway.dispatch",
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("gateway.route", route.ID),
				attribute.String("gateway.cluster", route.ClusterID),
				attribute.String("gateway.subject", identity.Subject),
			),
		)
		defer span.End()
		r = r.WithContext(ctx)
	}

	start := time.Now()
	gen.Dispatcher.Dispatch(w, r, route, identity)
	p.metrics.upstreamLatency.WithLabelValues(route.ClusterID).Observe(time.Since(start).Seconds())
	p.metrics.decisionsTotal.WithLabelValues(route.ID, DecisionForwarded).Inc()
}

func (p *Pipeline) writeError(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

var _ http.Handler = (*Pipeline)(nil)
