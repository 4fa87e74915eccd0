package layering

import (
	"reflect"
	"sort"
	"time"
)

// MergeStates composes control-state layers ordered from strongest to weakest.
// A key present in a stronger layer wins even when its value is a zero value:
// an explicit false, "" or empty list is a user decision, not a gap. Keys only
// present in weaker layers fill in. The result shares no lists with its inputs.
func MergeStates(layers ...map[string]any) map[string]any {
	size := 0
	for _, layer := range layers {
		size += len(layer)
	}
	merged := make(map[string]any, size)
	for i := len(layers) - 1; i >= 0; i-- {
		for key, value := range layers[i] {
			merged[key] = CloneValue(value)
		}
	}
	return merged
}

// CloneState returns a deep copy of a single layer. A nil layer yields an
// empty, non-nil map.
func CloneState(state map[string]any) map[string]any {
	out := make(map[string]any, len(state))
	for key, value := range state {
		out[key] = CloneValue(value)
	}
	return out
}

// CloneValue copies list and map values so callers can mutate the result
// without touching the source layer. Scalars are returned as-is.
func CloneValue(value any) any {
	switch typed := value.(type) {
	case []string:
		if typed == nil {
			return typed
		}
		out := make([]string, len(typed))
		copy(out, typed)
		return out
	case []any:
		if typed == nil {
			return typed
		}
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = CloneValue(item)
		}
		return out
	case map[string]any:
		if typed == nil {
			return typed
		}
		return CloneState(typed)
	case map[string]string:
		if typed == nil {
			return typed
		}
		out := make(map[string]string, len(typed))
		for key, item := range typed {
			out[key] = item
		}
		return out
	case time.Time:
		return typed
	default:
		return value
	}
}

// Diff reports the keys whose values differ between base and next, including
// keys only present on one side, sorted. Lists are compared element-wise.
func Diff(base, next map[string]any) []string {
	var changed []string
	seen := make(map[string]struct{}, len(next))
	for key, value := range next {
		seen[key] = struct{}{}
		prev, ok := base[key]
		if !ok || !equalValue(prev, value) {
			changed = append(changed, key)
		}
	}
	for key := range base {
		if _, ok := seen[key]; !ok {
			changed = append(changed, key)
		}
	}
	sort.Strings(changed)
	return changed
}

func equalValue(a, b any) bool {
	switch left := a.(type) {
	case []string:
		right, ok := b.([]string)
		if !ok || len(left) != len(right) {
			return false
		}
		for i := range left {
			if left[i] != right[i] {
				return false
			}
		}
		return true
	case time.Time:
		right, ok := b.(time.Time)
		return ok && left.Equal(right)
	case []any, map[string]any, map[string]string:
		return reflect.DeepEqual(a, b)
	default:
		defer func() { _ = recover() }()
		return a == b
	}
}
