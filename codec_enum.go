package wizard

// enumCodec handles "choose one, or type your own" fields: a selector control
// plus a free-text override used when the selector holds the sentinel.
type enumCodec struct{}

func (enumCodec) Empty(FieldDescriptor) any {
	return ""
}

func (enumCodec) Encode(field FieldDescriptor, state ControlState) any {
	return SelectedChoice(field, state).Value()
}

func (enumCodec) Decode(ctx DecodeContext, field FieldDescriptor, value any) (Decoded, error) {
	text, ok := stringValue(value)
	if !ok {
		return Decoded{}, malformed("string", value)
	}

	choice := ResolveChoice(text, ctx.members(field))
	if choice.IsKnown() && text == field.otherLabel() {
		// A member spelled like the sentinel would encode back as the
		// (empty) override text.
		choice = Custom(text)
	}

	var out Decoded
	switch {
	case choice.IsKnown():
		out.set(field.Control, choice.Value())
		out.set(field.Custom, "")
	case choice.IsCustom():
		out.set(field.Control, field.otherLabel())
		out.set(field.Custom, choice.Value())
	default:
		out.set(field.Control, field.Placeholder)
		out.set(field.Custom, "")
	}
	return out, nil
}

// SelectedChoice reads an enum field's selector and override controls. The
// sentinel selects the override text; the placeholder or a missing selector
// selects nothing.
func SelectedChoice(field FieldDescriptor, state ControlState) Choice {
	selector, _ := stringValue(state[field.Control])
	switch selector {
	case "", field.Placeholder:
		return Unset()
	case field.otherLabel():
		text, _ := stringValue(state[field.Custom])
		return Custom(text)
	default:
		return Known(selector)
	}
}
