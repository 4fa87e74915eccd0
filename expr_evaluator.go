package wizard

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprEvaluatorOption configures an expr evaluator instance.
type ExprEvaluatorOption func(*exprEvaluator)

// ExprWithFunctions replaces the helper functions exposed to expressions.
func ExprWithFunctions(registry *FunctionRegistry) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		if registry == nil {
			return
		}
		e.functions = registry.Clone()
	}
}

// exprEvaluator compiles inclusion rules using github.com/expr-lang/expr.
type exprEvaluator struct {
	functions *FunctionRegistry
}

// NewExprEvaluator constructs an Evaluator backed by expr-lang/expr. It is the
// default engine.
func NewExprEvaluator(opts ...ExprEvaluatorOption) Evaluator {
	e := &exprEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.functions = functionsOrDefault(e.functions)
	return e
}

func (e *exprEvaluator) Engine() string { return "expr" }

// Compile type-checks expression against the declared controls.
func (e *exprEvaluator) Compile(expression string, declared []string) (CompiledRule, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	variables := ruleVariables(declared, e.functions)
	env := make(map[string]any, len(variables)+1)
	for _, name := range variables {
		env[name] = nil
	}
	env[ControlsBinding] = map[string]any{}

	options := []exprlang.Option{
		exprlang.Env(env),
		exprlang.AllowUndefinedVariables(),
	}
	for _, name := range e.functions.Names() {
		options = append(options, exprlang.Function(name, e.call(name)))
	}
	program, err := exprlang.Compile(expression, options...)
	if err != nil {
		return nil, err
	}
	return &exprCompiledRule{program: program, variables: variables}, nil
}

func (e *exprEvaluator) call(name string) func(...any) (any, error) {
	return func(arguments ...any) (any, error) {
		return e.functions.Call(name, arguments...)
	}
}

type exprCompiledRule struct {
	program   *exprvm.Program
	variables []string
}

func (r *exprCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	return exprlang.Run(r.program, ctx.bindings(r.variables))
}
