package authz

import (
	"fmt"
	"time"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/authz/abac"
	"github.com/authgate/authgate/internal/observability"
)

// Expression passes when its compiled CEL program evaluates to true. An
// evaluation error denies: a broken expression must fail closed.
type Expression struct {
	program *abac.Program
	logger  observability.Logger
}

// NewExpression compiles a CEL expression into a requirement.
func NewExpression(source string, logger observability.Logger) (Expression, error) {
	program, err := abac.Compile(source)
	if err != nil {
		return Expression{}, err
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return Expression{program: program, logger: logger}, nil
}

func (r Expression) Describe() string {
	return fmt.Sprintf("expression(%s)", r.program.Source())
}

func (r Expression) Satisfied(identity *auth.Identity, now time.Time) bool {
	allowed, err := r.program.Eval(identity, now)
	if err != nil {
		r.logger.Warn("expression requirement failed closed",
			observability.String("expression", r.program.Source()),
			observability.Error(err),
		)
		return false
	}
	return allowed
}
