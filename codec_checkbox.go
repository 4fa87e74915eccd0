package wizard

import "slices"

// checkboxCodec handles multi-select groups. A group is either a family of
// boolean controls named Prefix+label or a single list control.
type checkboxCodec struct{}

func (checkboxCodec) Empty(FieldDescriptor) any {
	return []string{}
}

func (checkboxCodec) Encode(field FieldDescriptor, state ControlState) any {
	selected := []string{}
	if field.Control != "" {
		chosen, _ := stringList(state[field.Control])
		for _, option := range field.Options {
			if slices.Contains(chosen, option) {
				selected = append(selected, option)
			}
		}
		return selected
	}
	for _, option := range field.Options {
		if checked, _ := boolValue(state[field.Prefix+option]); checked {
			selected = append(selected, option)
		}
	}
	return selected
}

func (checkboxCodec) Decode(_ DecodeContext, field FieldDescriptor, value any) (Decoded, error) {
	labels, ok := stringList(value)
	if !ok {
		return Decoded{}, malformed("list of strings", value)
	}

	var out Decoded
	for _, label := range labels {
		if !slices.Contains(field.Options, label) {
			out.warn(WarningUnknownOption, "option %q is not offered and was ignored", label)
		}
	}

	if field.Control != "" {
		recognized := []string{}
		for _, option := range field.Options {
			if slices.Contains(labels, option) {
				recognized = append(recognized, option)
			}
		}
		out.set(field.Control, recognized)
		return out, nil
	}

	for _, option := range field.Options {
		out.set(field.Prefix+option, slices.Contains(labels, option))
	}
	return out, nil
}
