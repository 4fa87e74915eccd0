package wizard

import (
	"fmt"
	"sort"
	"sync"
)

// Codec encodes one field kind from control values into a payload value and
// decodes it back into control updates. Implementations must be pure.
type Codec interface {
	// Empty is the payload value used when the field is absent or excluded.
	Empty(field FieldDescriptor) any
	// Encode reads the field's controls from state. It never fails; mistyped
	// control values encode as if absent.
	Encode(field FieldDescriptor, state ControlState) any
	// Decode turns a payload value into updates. An error marks the value as
	// malformed for the kind and the field is skipped.
	Decode(ctx DecodeContext, field FieldDescriptor, value any) (Decoded, error)
}

// DecodeContext carries read-only collaborators consulted while decoding.
type DecodeContext struct {
	Enumerations EnumerationProvider
}

func (ctx DecodeContext) members(field FieldDescriptor) []string {
	if field.Enumeration != "" && ctx.Enumerations != nil {
		if members, ok := ctx.Enumerations.Members(field.Enumeration); ok {
			return members
		}
	}
	return field.Options
}

// Decoded is the outcome of decoding a single field.
type Decoded struct {
	Updates  []Update
	Warnings []Warning
}

func (d *Decoded) set(control string, value any) {
	d.Updates = append(d.Updates, Update{Control: control, Value: value})
}

func (d *Decoded) warn(code WarningCode, format string, args ...any) {
	d.Warnings = append(d.Warnings, newWarning(code, format, args...))
}

// Registry maps field kinds to codecs.
type Registry struct {
	mu     sync.RWMutex
	codecs map[FieldKind]Codec
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[FieldKind]Codec)}
}

// DefaultRegistry returns a registry holding the built-in codecs for every kind.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.set(KindCheckboxGroup, checkboxCodec{})
	r.set(KindEnumWithCustom, enumCodec{})
	r.set(KindVerbatimString, verbatimCodec{})
	r.set(KindFreeText, freeTextCodec{})
	r.set(KindDerivedTimeline, timelineCodec{})
	return r
}

// Register stores codec for kind guarding against duplicates.
func (r *Registry) Register(kind FieldKind, codec Codec) error {
	if codec == nil {
		return fmt.Errorf("wizard: codec for kind %q is nil", kind)
	}
	if kind == "" {
		return fmt.Errorf("wizard: codec kind must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.codecs == nil {
		r.codecs = make(map[FieldKind]Codec)
	}
	if _, exists := r.codecs[kind]; exists {
		return fmt.Errorf("wizard: codec for kind %q already registered", kind)
	}
	r.codecs[kind] = codec
	return nil
}

func (r *Registry) set(kind FieldKind, codec Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.codecs == nil {
		r.codecs = make(map[FieldKind]Codec)
	}
	r.codecs[kind] = codec
}

// Lookup returns the codec registered for kind.
func (r *Registry) Lookup(kind FieldKind) (Codec, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	codec, ok := r.codecs[kind]
	return codec, ok
}

// Kinds returns registered kinds sorted alphabetically.
func (r *Registry) Kinds() []FieldKind {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]FieldKind, 0, len(r.codecs))
	for kind := range r.codecs {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Clone returns a shallow copy of the registry.
func (r *Registry) Clone() *Registry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &Registry{codecs: make(map[FieldKind]Codec, len(r.codecs))}
	for kind, codec := range r.codecs {
		clone.codecs[kind] = codec
	}
	return clone
}
