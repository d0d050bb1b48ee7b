package validators

import (
	"context"
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/jsamuelsen11/go-dispatch-service/internal/app/dispatch"
	"github.com/jsamuelsen11/go-dispatch-service/internal/domain"
	"github.com/jsamuelsen11/go-dispatch-service/internal/domain/session"
)

var _ dispatch.SessionValidator = (*Expr)(nil)

var errEmptyPolicy = errors.New("validators: empty policy expression")

// policyEnv is the environment policy expressions are evaluated against.
type policyEnv struct {
	Subject   string   `expr:"subject"`
	Roles     []string `expr:"roles"`
	SessionID string   `expr:"session_id"`
	ClientIP  string   `expr:"client_ip"`
}

// Expr accepts requests for which a boolean expression over the caller's
// principal evaluates to true, for example:
//
//	"admin" in roles && client_ip startsWith "10."
//
// The expression is compiled once, at construction. *vm.Program is safe for
// concurrent use.
type Expr struct {
	source   string
	program  *vm.Program
	resolver PrincipalResolver
}

// NewExpr compiles expression and returns a validator that resolves the
// principal through resolver before evaluating it.
func NewExpr(expression string, resolver PrincipalResolver) (*Expr, error) {
	if expression == "" {
		return nil, errEmptyPolicy
	}
	if resolver == nil {
		return nil, errors.New("validators: nil principal resolver")
	}

	program, err := expr.Compile(expression, expr.Env(policyEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compiling policy %q: %w", expression, err)
	}

	return &Expr{source: expression, program: program, resolver: resolver}, nil
}

// Validate resolves the principal and evaluates the policy.
func (v *Expr) Validate(ctx context.Context, creds session.Credentials) error {
	p, err := v.resolver.Principal(ctx, creds)
	if err != nil {
		return err
	}

	env := policyEnv{
		Subject:   p.Subject,
		Roles:     p.Roles,
		SessionID: p.SessionID,
		ClientIP:  creds.ClientIP,
	}
	out, err := vm.Run(v.program, env)
	if err != nil {
		return fmt.Errorf("evaluating policy %q: %w", v.source, err)
	}
	if allowed, _ := out.(bool); !allowed {
		return fmt.Errorf("%w: policy denied %q", domain.ErrForbidden, p.Subject)
	}
	return nil
}

// Source returns the policy expression.
func (v *Expr) Source() string {
	return v.source
}
