//go:build js_eval

package wizard

import (
	"fmt"

	"github.com/dop251/goja"
)

type jsEvaluator struct {
	functions *FunctionRegistry
}

// NewJSEvaluator constructs an Evaluator backed by goja. Each evaluation runs
// in a fresh runtime.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	cfg := applyJSEvaluatorOptions(opts)
	return &jsEvaluator{functions: cfg.functions}
}

func (e *jsEvaluator) Engine() string { return "js" }

func (e *jsEvaluator) Compile(expression string, declared []string) (CompiledRule, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	program, err := goja.Compile("", wrapExpression(expression), true)
	if err != nil {
		return nil, err
	}
	return &jsCompiledRule{
		evaluator: e,
		program:   program,
		variables: ruleVariables(declared, e.functions),
	}, nil
}

func wrapExpression(expression string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}

func (e *jsEvaluator) inject(vm *goja.Runtime, env map[string]any) error {
	for key, value := range env {
		if err := vm.Set(key, value); err != nil {
			return err
		}
	}
	for _, name := range e.functions.Names() {
		fn := name
		if err := vm.Set(fn, func(arguments ...any) (any, error) {
			return e.functions.Call(fn, arguments...)
		}); err != nil {
			return err
		}
	}
	return nil
}

type jsCompiledRule struct {
	evaluator *jsEvaluator
	program   *goja.Program
	variables []string
}

func (r *jsCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	vm := goja.New()
	if err := r.evaluator.inject(vm, ctx.bindings(r.variables)); err != nil {
		return nil, err
	}
	value, err := vm.RunProgram(r.program)
	if err != nil {
		return nil, err
	}
	return value.Export(), nil
}

func jsEvaluatorAvailable() bool {
	return true
}
