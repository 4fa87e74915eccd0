// Package hydrate decodes loosely typed payload records into structs.
package hydrate

import (
	"encoding/json"
	"errors"
	"fmt"
)

var errNilRecord = errors.New("record is nil")

// Context identifies the payload record being decoded.
type Context struct {
	Section string
	Field   string
}

func (c Context) String() string {
	switch {
	case c.Section == "":
		return c.Field
	case c.Field == "":
		return c.Section
	default:
		return c.Section + "." + c.Field
	}
}

// Rewrite edits a private copy of the record before it is decoded, e.g. to
// map legacy keys onto current ones.
type Rewrite func(Context, map[string]any) error

// Check inspects the decoded value.
type Check[T any] func(Context, T) error

// Option configures a Decoder.
type Option[T any] func(*Decoder[T])

// Rewriting runs fn before decoding. Rewrites run in registration order.
func Rewriting[T any](fn Rewrite) Option[T] {
	return func(d *Decoder[T]) {
		if fn != nil {
			d.rewrites = append(d.rewrites, fn)
		}
	}
}

// Checking runs fn on the decoded value.
func Checking[T any](fn Check[T]) Option[T] {
	return func(d *Decoder[T]) {
		if fn != nil {
			d.checks = append(d.checks, fn)
		}
	}
}

// Decoder converts records into T. It is immutable after construction.
type Decoder[T any] struct {
	rewrites []Rewrite
	checks   []Check[T]
}

func NewDecoder[T any](opts ...Option[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts record into T. The caller's record is never modified.
func (d *Decoder[T]) Decode(ctx Context, record map[string]any) (T, error) {
	var out T
	if record == nil {
		return out, fmt.Errorf("hydrate: %s: %w", ctx, errNilRecord)
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return out, fmt.Errorf("hydrate: %s: %w", ctx, err)
	}
	if len(d.rewrites) > 0 {
		if raw, err = d.rewrite(ctx, raw); err != nil {
			return out, err
		}
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("hydrate: decode %s: %w", ctx, err)
	}

	for _, check := range d.checks {
		if err := check(ctx, out); err != nil {
			var zero T
			return zero, fmt.Errorf("hydrate: check %s: %w", ctx, err)
		}
	}
	return out, nil
}

// rewrite applies the rewrites to a copy decoded from raw and encodes it again.
func (d *Decoder[T]) rewrite(ctx Context, raw []byte) ([]byte, error) {
	var working map[string]any
	if err := json.Unmarshal(raw, &working); err != nil {
		return nil, fmt.Errorf("hydrate: %s: %w", ctx, err)
	}
	for _, fn := range d.rewrites {
		if err := fn(ctx, working); err != nil {
			return nil, fmt.Errorf("hydrate: rewrite %s: %w", ctx, err)
		}
	}
	out, err := json.Marshal(working)
	if err != nil {
		return nil, fmt.Errorf("hydrate: %s: %w", ctx, err)
	}
	return out, nil
}
