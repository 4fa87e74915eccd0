// Package wizard converts questionnaire form state into a portable, versioned
// payload and back.
//
// A Questionnaire declares every field once (name, kind, controls). A Builder
// encodes a ControlState snapshot into a Payload; a Restorer decodes a Payload
// into a list of Updates the caller applies to its own state. For any snapshot
// S, rebuilding from ApplyUpdates(nil, Restore(Build(S))) yields Build(S).
package wizard

// Wizard pairs a Builder and a Restorer over the same questionnaire.
type Wizard struct {
	*Builder
	*Restorer
}

// New constructs a Wizard for q.
func New(q Questionnaire, opts ...Option) (*Wizard, error) {
	builder, err := NewBuilder(q, opts...)
	if err != nil {
		return nil, err
	}
	restorer, err := NewRestorer(q, opts...)
	if err != nil {
		return nil, err
	}
	return &Wizard{Builder: builder, Restorer: restorer}, nil
}

// NewNAF constructs a Wizard for the NAF solution questionnaire.
func NewNAF(opts ...Option) (*Wizard, error) {
	return New(NAFQuestionnaire(), opts...)
}

// Load restores payload and applies the updates over state. The returned
// state is new; state is not modified. On a shape error state is returned
// unchanged as a copy.
func (w *Wizard) Load(state ControlState, payload any) (ControlState, Result, error) {
	result, err := w.Restore(payload)
	if err != nil {
		return state.Clone(), result, err
	}
	return ApplyUpdates(state, result.Updates), result, nil
}
