package wizard

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
)

// RuleFunction is a helper callable from inclusion rules.
type RuleFunction func(args ...any) (any, error)

// FunctionRegistry stores rule helpers keyed by name.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]RuleFunction
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]RuleFunction),
	}
}

// DefaultFunctions returns a registry with the built-in helpers:
//
//	blank(value)          true for null, "", and empty lists
//	selected(list, label) true when label is an element of list
func DefaultFunctions() *FunctionRegistry {
	r := NewFunctionRegistry()
	_ = r.Register("blank", ruleBlank)
	_ = r.Register("selected", ruleSelected)
	return r
}

func ruleBlank(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("blank expects 1 argument, got %d", len(args))
	}
	switch typed := args[0].(type) {
	case nil:
		return true, nil
	case string:
		return strings.TrimSpace(typed) == "", nil
	}
	if list, ok := stringList(args[0]); ok {
		return len(list) == 0, nil
	}
	return false, nil
}

func ruleSelected(args ...any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("selected expects 2 arguments, got %d", len(args))
	}
	label, ok := args[1].(string)
	if !ok {
		return nil, fmt.Errorf("selected label must be a string, got %s", describeType(args[1]))
	}
	if args[0] == nil {
		return false, nil
	}
	list, ok := stringList(args[0])
	if !ok {
		return nil, fmt.Errorf("selected expects a list, got %s", describeType(args[0]))
	}
	return slices.Contains(list, label), nil
}

// Register stores fn under name guarding against duplicates. Names must be
// identifiers so every engine can call them directly.
func (r *FunctionRegistry) Register(name string, fn RuleFunction) error {
	if fn == nil {
		return fmt.Errorf("wizard: function %q is nil", name)
	}
	if !isIdentifier(name) {
		return fmt.Errorf("wizard: function name %q is not an identifier", name)
	}
	if name == ControlsBinding {
		return fmt.Errorf("wizard: function name %q is reserved", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]RuleFunction)
	}
	if _, exists := r.functions[name]; exists {
		return fmt.Errorf("wizard: function %q already registered", name)
	}
	r.functions[name] = fn
	return nil
}

// Has reports whether name is registered.
func (r *FunctionRegistry) Has(name string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.functions[name]
	return ok
}

// Clone returns a shallow copy of the registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{
		functions: make(map[string]RuleFunction, len(r.functions)),
	}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("wizard: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[name]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("wizard: function %q not registered", name)
	}
	return fn(args...)
}

// Names returns registered function names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func functionsOrDefault(registry *FunctionRegistry) *FunctionRegistry {
	if registry == nil {
		return DefaultFunctions()
	}
	return registry.Clone()
}
