package router

import (
	"regexp"
	"strings"

	"github.com/authgate/authgate/internal/config"
)

// catchAllSegment matches a trailing wildcard segment such as {**} or
// {**catch-all}.
var catchAllSegment = regexp.MustCompile(`^\{\*\*[^/{}]*\}$`)

// Route is a compiled route entry.
type Route struct {
	// ID is the unique route identifier.
	ID string

	// ClusterID names the destination cluster.
	ClusterID string

	// PolicyName names the policy guarding this route.
	PolicyName string

	// Priority orders overlapping routes; lower values win.
	Priority int

	// prefix is the non-wildcard part of the pattern, without a trailing
	// slash. For an exact pattern it is the whole path.
	prefix string

	// wildcard marks a pattern with a trailing catch-all segment.
	wildcard bool

	// methods is the allowed method set; nil means ANY.
	methods map[string]bool
}

// compileRoute turns a validated config route into its compiled form.
func compileRoute(rc config.Route) *Route {
	route := &Route{
		ID:         rc.ID,
		ClusterID:  rc.ClusterID,
		PolicyName: rc.PolicyName,
		Priority:   rc.Priority,
	}

	pattern := rc.PathPattern
	if idx := strings.LastIndex(pattern, "/"); idx >= 0 && catchAllSegment.MatchString(pattern[idx+1:]) {
		route.wildcard = true
		pattern = pattern[:idx]
	}
	route.prefix = strings.TrimSuffix(pattern, "/")

	if len(rc.Methods) > 0 {
		route.methods = make(map[string]bool, len(rc.Methods))
		for _, method := range rc.Methods {
			route.methods[strings.ToUpper(method)] = true
		}
	}

	return route
}

// MatchesPath reports whether the path matches the route pattern.
func (r *Route) MatchesPath(path string) bool {
	if !r.wildcard {
		return path == r.prefix
	}
	return path == r.prefix || strings.HasPrefix(path, r.prefix+"/")
}

// MatchesMethod reports whether the method is allowed. HEAD rides along
// with GET, matching common upstream behavior.
func (r *Route) MatchesMethod(method string) bool {
	if r.methods == nil {
		return true
	}
	method = strings.ToUpper(method)
	if method == "HEAD" && r.methods["GET"] {
		return true
	}
	return r.methods[method]
}

// specificity orders routes that tie on priority: the longer the
// non-wildcard prefix, the more specific the route. Exact routes outrank
// wildcard routes with the same prefix.
func (r *Route) specificity() int {
	s := len(r.prefix) * 2
	if !r.wildcard {
		s++
	}
	return s
}

// StripPrefix removes the route's namespace prefix from the path, yielding
// the path forwarded to the backend. The result always starts with "/".
func (r *Route) StripPrefix(path string) string {
	stripped := strings.TrimPrefix(path, r.prefix)
	if stripped == "" {
		return "/"
	}
	if !strings.HasPrefix(stripped, "/") {
		return "/" + stripped
	}
	return stripped
}
