package authz

import (
	"errors"
	"fmt"
	"time"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/observability"
)

// ErrUnknownPolicy is returned when a route names a policy the engine does
// not hold. Startup validation makes this unreachable in a healthy process.
var ErrUnknownPolicy = errors.New("unknown policy")

// Decision is the result of evaluating a policy.
type Decision struct {
	// Allowed reports whether every clause passed.
	Allowed bool

	// Policy is the evaluated policy name.
	Policy string

	// FailedRequirement describes the first failing clause when denied.
	// It is for internal logging only and must not reach the client.
	FailedRequirement string
}

// Policy is a named conjunction of requirements, evaluated in declaration
// order with a short-circuit on the first failure.
type Policy struct {
	Name         string
	Requirements []Requirement
}

// Evaluate applies the conjunction to the identity at the given time.
func (p *Policy) Evaluate(identity *auth.Identity, now time.Time) Decision {
	for _, requirement := range p.Requirements {
		if !requirement.Satisfied(identity, now) {
			return Decision{
				Allowed:           false,
				Policy:            p.Name,
				FailedRequirement: requirement.Describe(),
			}
		}
	}
	return Decision{Allowed: true, Policy: p.Name}
}

// Engine holds a generation of named policies. It is immutable after
// construction; reloads build a new Engine and swap it in with the rest of
// the configuration generation.
type Engine struct {
	policies map[string]*Policy
	logger   observability.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the engine logger.
func WithEngineLogger(logger observability.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an engine from compiled policies.
func NewEngine(policies []*Policy, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		policies: make(map[string]*Policy, len(policies)),
		logger:   observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, policy := range policies {
		if _, exists := e.policies[policy.Name]; exists {
			return nil, fmt.Errorf("duplicate policy %s", policy.Name)
		}
		e.policies[policy.Name] = policy
	}
	return e, nil
}

// HasPolicy reports whether the engine holds the named policy.
func (e *Engine) HasPolicy(name string) bool {
	_, ok := e.policies[name]
	return ok
}

// Evaluate evaluates the named policy against the identity at the given
// time and returns the decision.
func (e *Engine) Evaluate(policyName string, identity *auth.Identity, now time.Time) (Decision, error) {
	policy, ok := e.policies[policyName]
	if !ok {
		return Decision{}, fmt.Errorf("%w: %s", ErrUnknownPolicy, policyName)
	}

	decision := policy.Evaluate(identity, now)
	if !decision.Allowed {
		e.logger.Debug("policy denied",
			observability.String("policy", decision.Policy),
			observability.String("failed_requirement", decision.FailedRequirement),
			observability.String("subject", identity.Subject),
		)
	}
	return decision, nil
}

// FromConfig compiles configured policies into an engine. CEL compilation
// errors surface here, making them fatal at startup and reload time.
func FromConfig(policies []config.Policy, opts ...EngineOption) (*Engine, error) {
	logger := observability.NopLogger()
	compiled := make([]*Policy, 0, len(policies))
	for _, pc := range policies {
		policy := &Policy{Name: pc.Name}
		for _, rc := range pc.Requirements {
			requirement, err := buildRequirement(rc, logger)
			if err != nil {
				return nil, fmt.Errorf("policy %s: %w", pc.Name, err)
			}
			policy.Requirements = append(policy.Requirements, requirement)
		}
		compiled = append(compiled, policy)
	}
	return NewEngine(compiled, opts...)
}

func buildRequirement(rc config.Requirement, logger observability.Logger) (Requirement, error) {
	switch {
	case len(rc.RolesAny) > 0:
		return RoleIn{Roles: rc.RolesAny}, nil
	case rc.ClaimEquals != nil:
		return ClaimEquals{Key: rc.ClaimEquals.Key, Value: rc.ClaimEquals.Value}, nil
	case rc.ClaimPresent != "":
		return ClaimPresent{Key: rc.ClaimPresent}, nil
	case rc.TimeWindow != nil:
		return TimeWindow{
			StartHourUTC: rc.TimeWindow.StartHourUTC,
			EndHourUTC:   rc.TimeWindow.EndHourUTC,
		}, nil
	case rc.Expression != "":
		return NewExpression(rc.Expression, logger)
	default:
		return nil, errors.New("empty requirement")
	}
}
