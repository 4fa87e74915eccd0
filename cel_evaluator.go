package wizard

import (
	"fmt"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithFunctions replaces the helper functions exposed to expressions.
func CELWithFunctions(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		if registry == nil {
			return
		}
		e.functions = registry.Clone()
	}
}

type celEvaluator struct {
	functions *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go. Controls are
// declared as dyn variables; helpers accept one or two arguments.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.functions = functionsOrDefault(e.functions)
	return e
}

func (e *celEvaluator) Engine() string { return "cel" }

func (e *celEvaluator) Compile(expression string, declared []string) (CompiledRule, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	variables := ruleVariables(declared, e.functions)
	env, err := e.buildEnv(variables)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	return &celCompiledRule{program: program, variables: variables}, nil
}

func (e *celEvaluator) buildEnv(variables []string) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable(ControlsBinding, celgo.MapType(celgo.StringType, celgo.DynType)),
	}
	for _, name := range variables {
		opts = append(opts, celgo.Variable(name, celgo.DynType))
	}
	for _, name := range e.functions.Names() {
		opts = append(opts, celgo.Function(name,
			celgo.Overload(name+"_dyn", []*celgo.Type{celgo.DynType}, celgo.DynType,
				celgo.UnaryBinding(func(arg ref.Val) ref.Val {
					return e.invoke(name, arg)
				})),
			celgo.Overload(name+"_dyn_dyn", []*celgo.Type{celgo.DynType, celgo.DynType}, celgo.DynType,
				celgo.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					return e.invoke(name, lhs, rhs)
				})),
		))
	}
	return celgo.NewEnv(opts...)
}

func (e *celEvaluator) invoke(name string, values ...ref.Val) ref.Val {
	args := make([]any, 0, len(values))
	for _, val := range values {
		if val == types.NullValue {
			args = append(args, nil)
			continue
		}
		args = append(args, val.Value())
	}
	result, err := e.functions.Call(name, args...)
	if err != nil {
		return types.NewErr("%s", err.Error())
	}
	if result == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(result)
}

type celCompiledRule struct {
	program   celgo.Program
	variables []string
}

func (r *celCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	out, _, err := r.program.Eval(ctx.bindings(r.variables))
	if err != nil {
		return nil, err
	}
	return out.Value(), nil
}
