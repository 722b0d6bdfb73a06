package router

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/authgate/authgate/internal/config"
)

// ErrNoRoute is returned when no configured route matches a request.
var ErrNoRoute = errors.New("no matching route")

// Table is one immutable generation of compiled routes. Concurrent readers
// may hold a Table across a reload; they always observe one consistent
// generation.
type Table struct {
	routes     []*Route
	generation uint64
}

var generationCounter atomic.Uint64

// NewTable compiles a validated route configuration into a table.
func NewTable(routes []config.Route) (*Table, error) {
	t := &Table{
		routes:     make([]*Route, 0, len(routes)),
		generation: generationCounter.Add(1),
	}
	ids := make(map[string]bool, len(routes))
	for _, rc := range routes {
		if ids[rc.ID] {
			return nil, fmt.Errorf("duplicate route id %s", rc.ID)
		}
		ids[rc.ID] = true
		t.routes = append(t.routes, compileRoute(rc))
	}
	return t, nil
}

// Generation identifies this table build.
func (t *Table) Generation() uint64 {
	return t.generation
}

// Routes returns the compiled routes in declaration order.
func (t *Table) Routes() []*Route {
	return t.routes
}

// Match resolves a path and method to exactly one route. Candidates are
// filtered on path and method, then ordered by priority (lower first),
// specificity (longer non-wildcard prefix first), and declaration order.
func (t *Table) Match(path, method string) (*Route, error) {
	var best *Route
	for _, route := range t.routes {
		if !route.MatchesPath(path) || !route.MatchesMethod(method) {
			continue
		}
		if best == nil || better(route, best) {
			best = route
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrNoRoute, method, path)
	}
	return best, nil
}

// better reports whether candidate should replace current. Declaration
// order wins ties because candidates are visited in declaration order and
// a tie keeps current.
func better(candidate, current *Route) bool {
	if candidate.Priority != current.Priority {
		return candidate.Priority < current.Priority
	}
	return candidate.specificity() > current.specificity()
}

// Holder publishes the current table to concurrent readers. Swap is a
// single atomic store, so a reload is all-or-nothing: an in-flight request
// matches against either the old generation or the new one, never a mix.
type Holder struct {
	table atomic.Pointer[Table]
}

// NewHolder creates a holder seeded with a table.
func NewHolder(t *Table) *Holder {
	h := &Holder{}
	h.table.Store(t)
	return h
}

// Load returns the current table.
func (h *Holder) Load() *Table {
	return h.table.Load()
}

// Swap atomically replaces the current table.
func (h *Holder) Swap(t *Table) {
	h.table.Store(t)
}
