package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/observability"
	"github.com/authgate/authgate/internal/router"
)

// hopHeaders are stripped before forwarding.
var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Cluster is a compiled destination cluster.
type Cluster struct {
	name         string
	destinations []*url.URL
	timeout      time.Duration
	breaker      *gobreaker.CircuitBreaker
	next         atomic.Uint64
}

// newCluster compiles a validated cluster configuration.
func newCluster(cfg config.Cluster, logger observability.Logger) (*Cluster, error) {
	c := &Cluster{
		name:    cfg.Name,
		timeout: cfg.Timeout.Duration(),
	}
	for _, dest := range cfg.Destinations {
		u, err := url.Parse(dest)
		if err != nil {
			return nil, fmt.Errorf("cluster %s: destination %q: %w", cfg.Name, dest, err)
		}
		c.destinations = append(c.destinations, u)
	}

	if cfg.Breaker != nil {
		threshold := uint32(cfg.Breaker.FailureThreshold) //nolint:gosec // validated positive
		openTimeout := cfg.Breaker.OpenTimeout.Duration()
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    cfg.Name,
			Timeout: openTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			// A client disconnect says nothing about upstream health.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state change",
					observability.String("cluster", name),
					observability.String("from", from.String()),
					observability.String("to", to.String()),
				)
			},
		})
	}

	return c, nil
}

// pick returns the next destination in round-robin order.
func (c *Cluster) pick() *url.URL {
	n := c.next.Add(1)
	return c.destinations[(n-1)%uint64(len(c.destinations))]
}

// Dispatcher forwards requests to backend clusters.
type Dispatcher struct {
	clusters  map[string]*Cluster
	transport http.RoundTripper
	logger    observability.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the dispatcher logger.
func WithDispatcherLogger(logger observability.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithTransport overrides the outbound transport, mainly for tests.
func WithTransport(transport http.RoundTripper) DispatcherOption {
	return func(d *Dispatcher) { d.transport = transport }
}

// NewDispatcher compiles cluster configurations into a dispatcher. The
// dispatcher belongs to one configuration generation and is swapped along
// with the route table on reload.
func NewDispatcher(clusters []config.Cluster, opts ...DispatcherOption) (*Dispatcher, error) {
	d := &Dispatcher{
		clusters:  make(map[string]*Cluster, len(clusters)),
		transport: http.DefaultTransport,
		logger:    observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}

	for _, cc := range clusters {
		cluster, err := newCluster(cc, d.logger)
		if err != nil {
			return nil, err
		}
		if _, exists := d.clusters[cluster.name]; exists {
			return nil, fmt.Errorf("duplicate cluster %s", cluster.name)
		}
		d.clusters[cluster.name] = cluster
	}
	return d, nil
}

// Dispatch forwards the request along the matched route, attaching the
// identity headers, and relays the response verbatim. It blocks until the
// upstream responds, the cluster timeout fires, or the inbound request is
// cancelled.
func (d *Dispatcher) Dispatch(w http.ResponseWriter, r *http.Request, route *router.Route, identity *auth.Identity) {
	cluster, ok := d.clusters[route.ClusterID]
	if !ok {
		// Unreachable with a validated configuration.
		d.writeError(w, http.StatusBadGateway, "no such cluster")
		return
	}

	target := cluster.pick()
	strippedPath := route.StripPrefix(r.URL.Path)
	identityHeaders := IdentityHeaders(identity)

	ctx := r.Context()
	if cluster.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cluster.timeout)
		defer cancel()
	}
	r = r.WithContext(ctx)

	transport := d.transport
	if cluster.breaker != nil {
		transport = &breakerTransport{breaker: cluster.breaker, base: transport}
	}

	reverseProxy := &httputil.ReverseProxy{
		Director: func(req *http.Request) {
			req.URL.Scheme = target.Scheme
			req.URL.Host = target.Host
			req.URL.Path = singleJoin(target.Path, strippedPath)
			req.URL.RawQuery = r.URL.RawQuery
			req.Host = target.Host

			for _, h := range hopHeaders {
				req.Header.Del(h)
			}
			for header, values := range identityHeaders {
				req.Header.Del(header)
				for _, value := range values {
					req.Header.Add(header, value)
				}
			}
			setForwardedHeaders(req, r)
		},
		Transport:    transport,
		ErrorHandler: d.errorHandler(route),
	}

	reverseProxy.ServeHTTP(w, r)
}

// singleJoin joins a base path and a sub path with exactly one slash.
func singleJoin(base, sub string) string {
	switch {
	case base == "" || base == "/":
		return sub
	case sub == "/":
		return base
	default:
		return base + sub
	}
}

// setForwardedHeaders fills the standard X-Forwarded-* headers.
func setForwardedHeaders(req *http.Request, original *http.Request) {
	if clientIP, _, err := net.SplitHostPort(original.RemoteAddr); err == nil {
		if prior := original.Header.Get("X-Forwarded-For"); prior != "" {
			clientIP = prior + ", " + clientIP
		}
		req.Header.Set("X-Forwarded-For", clientIP)
	}
	proto := "http"
	if original.TLS != nil {
		proto = "https"
	}
	req.Header.Set("X-Forwarded-Proto", proto)
	req.Header.Set("X-Forwarded-Host", original.Host)
}

// errorHandler maps upstream failures to the gateway's error taxonomy:
// timeouts to 504, an open breaker to 503, everything else to 502.
func (d *Dispatcher) errorHandler(route *router.Route) func(http.ResponseWriter, *http.Request, error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		status := http.StatusBadGateway
		message := "upstream unavailable"
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			status = http.StatusGatewayTimeout
			message = "upstream timeout"
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			status = http.StatusServiceUnavailable
			message = "upstream circuit open"
		case errors.Is(err, context.Canceled):
			// Client went away; nothing useful to write.
			return
		}

		d.logger.Error("dispatch failed",
			observability.String("route", route.ID),
			observability.String("cluster", route.ClusterID),
			observability.String("path", r.URL.Path),
			observability.Error(err),
		)
		d.writeError(w, status, message)
	}
}

func (d *Dispatcher) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, fmt.Sprintf(`{"message":%q}`, message))
}

// breakerTransport runs the upstream round trip through a circuit breaker.
// Only transport-level failures count against the breaker; upstream HTTP
// error statuses are relayed untouched.
type breakerTransport struct {
	breaker *gobreaker.CircuitBreaker
	base    http.RoundTripper
}

func (t *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.breaker.Execute(func() (interface{}, error) {
		return t.base.RoundTrip(req)
	})
	if err != nil {
		return nil, err
	}
	return resp.(*http.Response), nil
}
