package wizard

import (
	"errors"
	"fmt"
	"sort"
	"unicode"
)

// ErrNoEvaluator is returned when a questionnaire carries inclusion rules but
// no usable evaluator is configured.
var ErrNoEvaluator = errors.New("wizard: evaluator not configured")

// ControlsBinding names the variable holding the full control snapshot inside
// rule expressions. Controls whose ids are not identifiers are reachable only
// through it, e.g. controls["pres_user_Any User"].
const ControlsBinding = "controls"

// Evaluator compiles inclusion rule expressions. declared lists the control
// ids a rule may reference directly; an absent control evaluates as null.
type Evaluator interface {
	Compile(expression string, declared []string) (CompiledRule, error)
}

// CompiledRule evaluates a compiled expression against a control snapshot.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// RuleContext is the input to a rule evaluation.
type RuleContext struct {
	// Field is the section.field the rule gates, used in error metadata.
	Field    string
	Controls ControlState
}

// bindings returns the variables visible to a rule: every declared control,
// null when absent, plus the controls map.
func (ctx RuleContext) bindings(declared []string) map[string]any {
	env := make(map[string]any, len(declared)+1)
	for _, name := range declared {
		env[name] = ctx.Controls[name]
	}
	controls := make(map[string]any, len(ctx.Controls))
	for key, value := range ctx.Controls {
		controls[key] = value
	}
	env[ControlsBinding] = controls
	return env
}

// ruleVariables filters declared down to names usable as identifiers in every
// engine.
func ruleVariables(declared []string, functions *FunctionRegistry) []string {
	seen := make(map[string]struct{}, len(declared))
	out := make([]string, 0, len(declared))
	for _, name := range declared {
		if name == ControlsBinding || !isIdentifier(name) {
			continue
		}
		if functions != nil && functions.Has(name) {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || (r < unicode.MaxASCII && unicode.IsLetter(r)):
		case i > 0 && r < unicode.MaxASCII && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

// rule is a compiled inclusion rule bound to the field it gates.
type rule struct {
	engine     string
	expression string
	field      string
	compiled   CompiledRule
}

func compileRule(evaluator Evaluator, expression, field string, declared []string) (*rule, error) {
	if evaluator == nil {
		return nil, wrapRuleError("", expression, field, ErrNoEvaluator)
	}
	engine := engineName(evaluator)
	compiled, err := evaluator.Compile(expression, declared)
	if err != nil {
		return nil, wrapRuleError(engine, expression, field, err)
	}
	if compiled == nil {
		return nil, wrapRuleError(engine, expression, field, fmt.Errorf("evaluator returned no rule"))
	}
	return &rule{engine: engine, expression: expression, field: field, compiled: compiled}, nil
}

// allows runs the rule. Errors and non-boolean results exclude the field.
func (r *rule) allows(state ControlState) (bool, error) {
	value, err := r.compiled.Evaluate(RuleContext{Field: r.field, Controls: state})
	if err != nil {
		return false, wrapRuleError(r.engine, r.expression, r.field, err)
	}
	allowed, ok := value.(bool)
	if !ok {
		return false, wrapRuleError(r.engine, r.expression, r.field, fmt.Errorf("result %T is not a boolean", value))
	}
	return allowed, nil
}

func engineName(e Evaluator) string {
	if named, ok := e.(interface{ Engine() string }); ok {
		return named.Engine()
	}
	return "custom"
}
