package abac

import (
	"fmt"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/authgate/authgate/internal/auth"
)

// Program is a compiled CEL expression over an identity.
type Program struct {
	source  string
	program cel.Program
}

// newEnv builds the CEL environment shared by all expressions.
func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("subject", cel.StringType),
		cel.Variable("username", cel.StringType),
		cel.Variable("roles", cel.ListType(cel.StringType)),
		cel.Variable("attributes", cel.MapType(cel.StringType, cel.StringType)),
		cel.Variable("hour", cel.IntType),
	)
}

// Compile compiles a CEL expression. Compilation errors are configuration
// errors and must fail startup or reject a reload.
func Compile(source string) (*Program, error) {
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	ast, issues := env.Compile(source)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile expression %q: %w", source, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression %q must evaluate to bool, got %s", source, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build program for %q: %w", source, err)
	}

	return &Program{source: source, program: program}, nil
}

// Source returns the original expression text.
func (p *Program) Source() string {
	return p.source
}

// Eval evaluates the expression for the identity at the given time.
func (p *Program) Eval(identity *auth.Identity, now time.Time) (bool, error) {
	attributes := identity.Attributes
	if attributes == nil {
		attributes = map[string]string{}
	}
	roles := identity.Roles
	if roles == nil {
		roles = []string{}
	}

	out, _, err := p.program.Eval(map[string]any{
		"subject":    identity.Subject,
		"username":   identity.Username,
		"roles":      roles,
		"attributes": attributes,
		"hour":       now.UTC().Hour(),
	})
	if err != nil {
		return false, fmt.Errorf("evaluate %q: %w", p.source, err)
	}

	allowed, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression %q produced %T, want bool", p.source, out.Value())
	}
	return allowed, nil
}
