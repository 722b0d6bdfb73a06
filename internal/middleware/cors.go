package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/authgate/authgate/internal/config"
)

// CORS applies a single fixed cross-origin policy. Preflight requests are
// answered before authentication, so browsers can probe protected routes
// without a token.
type CORS struct {
	allowOrigin      string
	allowMethods     string
	allowHeaders     string
	allowCredentials bool
	maxAge           string
}

// NewCORS precomputes header values from configuration.
func NewCORS(cfg config.CORSConfig) *CORS {
	return &CORS{
		allowOrigin:      cfg.AllowOrigin,
		allowMethods:     strings.Join(cfg.AllowMethods, ", "),
		allowHeaders:     strings.Join(cfg.AllowHeaders, ", "),
		allowCredentials: cfg.AllowCredentials,
		maxAge:           strconv.Itoa(cfg.MaxAge),
	}
}

// originAllowed reports whether the Origin header matches the policy.
func (c *CORS) originAllowed(origin string) bool {
	if origin == "" {
		return false
	}
	return c.allowOrigin == "*" || c.allowOrigin == origin
}

// Apply sets the CORS response headers for an actual (non-preflight)
// response when the request origin is allowed.
func (c *CORS) Apply(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get(HeaderOrigin)
	if !c.originAllowed(origin) {
		return
	}

	header := w.Header()
	header.Set("Access-Control-Allow-Origin", c.allowOrigin)
	if c.allowCredentials {
		header.Set("Access-Control-Allow-Credentials", "true")
	}
	header.Add("Vary", HeaderOrigin)
}

// HandlePreflight answers any OPTIONS request with 200 before
// authentication. It reports whether the request was short-circuited.
func (c *CORS) HandlePreflight(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodOptions {
		return false
	}

	origin := r.Header.Get(HeaderOrigin)
	header := w.Header()
	header.Add("Vary", HeaderOrigin)

	if !c.originAllowed(origin) {
		// Not an allowed origin: answer without CORS headers and let the
		// browser enforce the failure.
		w.WriteHeader(http.StatusOK)
		return true
	}

	header.Set("Access-Control-Allow-Origin", c.allowOrigin)
	if c.allowMethods != "" {
		header.Set("Access-Control-Allow-Methods", c.allowMethods)
	}
	if c.allowHeaders != "" {
		header.Set("Access-Control-Allow-Headers", c.allowHeaders)
	}
	if c.allowCredentials {
		header.Set("Access-Control-Allow-Credentials", "true")
	}
	if c.maxAge != "0" {
		header.Set("Access-Control-Max-Age", c.maxAge)
	}
	w.WriteHeader(http.StatusOK)
	return true
}

// Handler wraps a handler with the CORS policy: preflights are answered
// directly, other requests get the response headers attached.
func (c *CORS) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c.HandlePreflight(w, r) {
			return
		}
		c.Apply(w, r)
		next.ServeHTTP(w, r)
	})
}
