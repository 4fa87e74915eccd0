package wizard

import (
	"errors"
	"fmt"
)

// ErrPayloadShape reports a payload whose root is not a mapping.
var ErrPayloadShape = errors.New("wizard: payload root must be a mapping")

// ErrMalformedValue reports a field value whose type does not match its kind.
var ErrMalformedValue = errors.New("wizard: malformed field value")

// ShapeError is returned by Restore when the payload cannot be walked at all.
// Nothing is applied when it is returned.
type ShapeError struct {
	Got string
}

func (e *ShapeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%v: got %s", ErrPayloadShape, e.Got)
}

func (e *ShapeError) Unwrap() error {
	return ErrPayloadShape
}

// FieldError describes why a single field value could not be decoded.
type FieldError struct {
	Section string
	Field   string
	Kind    FieldKind
	Err     error
}

func (e *FieldError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("wizard: %s.%s (%s): %v", e.Section, e.Field, e.Kind, e.Err)
}

func (e *FieldError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// malformed wraps ErrMalformedValue with the offending type.
func malformed(expected string, got any) error {
	return fmt.Errorf("%w: expected %s, got %s", ErrMalformedValue, expected, describeType(got))
}

// RuleError captures evaluator metadata alongside the originating error.
type RuleError struct {
	Engine string
	Expr   string
	Field  string
	Err    error
}

func (e *RuleError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("wizard: %s rule %s field=%s: %v", e.Engine, describeExpression(e.Expr), e.Field, e.Err)
}

func (e *RuleError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapRuleError(engine, expr, field string, err error) error {
	if err == nil {
		return nil
	}

	var ruleErr *RuleError
	if errors.As(err, &ruleErr) {
		if ruleErr.Engine == "" {
			ruleErr.Engine = engine
		}
		if ruleErr.Expr == "" {
			ruleErr.Expr = expr
		}
		if ruleErr.Field == "" {
			ruleErr.Field = field
		}
		return ruleErr
	}

	return &RuleError{
		Engine: engine,
		Expr:   expr,
		Field:  field,
		Err:    err,
	}
}

func describeType(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any, []string:
		return "list"
	case map[string]any, map[string]string, Payload:
		return "mapping"
	case float32, float64, int, int32, int64:
		return "number"
	default:
		return fmt.Sprintf("%T", value)
	}
}
