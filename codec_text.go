package wizard

import (
	"sort"
	"strings"
)

// verbatimCodec copies strings without normalization. With a Prefix it
// gathers every control of the family into a map keyed by the suffix.
type verbatimCodec struct{}

func (verbatimCodec) Empty(field FieldDescriptor) any {
	if field.Prefix != "" {
		return map[string]string{}
	}
	return ""
}

func (verbatimCodec) Encode(field FieldDescriptor, state ControlState) any {
	if field.Prefix == "" {
		text, _ := stringValue(state[field.Control])
		return text
	}
	entries := map[string]string{}
	for control, value := range state {
		key, ok := strings.CutPrefix(control, field.Prefix)
		if !ok || key == "" {
			continue
		}
		if text, ok := stringValue(value); ok {
			entries[key] = text
		}
	}
	return entries
}

func (verbatimCodec) Decode(_ DecodeContext, field FieldDescriptor, value any) (Decoded, error) {
	var out Decoded
	if field.Prefix == "" {
		text, ok := stringValue(value)
		if !ok {
			return Decoded{}, malformed("string", value)
		}
		out.set(field.Control, text)
		return out, nil
	}

	entries, ok := stringMap(value)
	if !ok {
		return Decoded{}, malformed("mapping of strings", value)
	}
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if key == "" {
			continue
		}
		out.set(field.Prefix+key, entries[key])
	}
	return out, nil
}

func stringMap(value any) (map[string]string, bool) {
	switch typed := value.(type) {
	case map[string]string:
		return typed, true
	case map[string]any:
		out := make(map[string]string, len(typed))
		for key, item := range typed {
			text, ok := item.(string)
			if !ok {
				return nil, false
			}
			out[key] = text
		}
		return out, true
	default:
		return nil, false
	}
}

// freeTextCodec copies a text control, optionally gated by a toggle.
type freeTextCodec struct{}

func (freeTextCodec) Empty(FieldDescriptor) any {
	return ""
}

func (freeTextCodec) Encode(field FieldDescriptor, state ControlState) any {
	if field.Toggle != "" {
		if enabled, _ := boolValue(state[field.Toggle]); !enabled {
			return ""
		}
	}
	text, _ := stringValue(state[field.Control])
	return text
}

func (freeTextCodec) Decode(_ DecodeContext, field FieldDescriptor, value any) (Decoded, error) {
	text, ok := stringValue(value)
	if !ok {
		return Decoded{}, malformed("string", value)
	}
	var out Decoded
	out.set(field.Control, text)
	if field.Toggle != "" {
		out.set(field.Toggle, text != "")
	}
	return out, nil
}
