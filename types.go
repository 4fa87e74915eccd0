package wizard

import "github.com/goliatone/go-wizard/layering"

// PayloadVersion is the schema version stamped on every built payload.
const PayloadVersion = 1

// VersionKey holds the payload schema version at the top level of a payload.
const VersionKey = "version"

// ControlState maps on-screen control identifiers to their current value.
// Values are strings, booleans, string lists, dates (time.Time) or integers.
// The UI layer owns it; the wizard only reads snapshots and proposes updates.
type ControlState map[string]any

// Clone returns a copy of the state with list values copied.
func (s ControlState) Clone() ControlState {
	return ControlState(layering.CloneState(s))
}

// Payload is the portable record produced by a Builder. Each section key maps
// to a map of field name to value.
type Payload map[string]any

// Section returns the named section when present and shaped as a mapping.
func (p Payload) Section(name string) (map[string]any, bool) {
	raw, ok := p[name]
	if !ok {
		return nil, false
	}
	section, ok := raw.(map[string]any)
	return section, ok
}

// Update proposes a new value for a single control.
type Update struct {
	Control string `json:"control"`
	Value   any    `json:"value"`
}

// Result carries the updates and warnings produced by a restore.
type Result struct {
	Updates  []Update  `json:"updates"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// FieldKind identifies how a field is encoded and decoded.
type FieldKind string

const (
	KindCheckboxGroup   FieldKind = "checkbox_group"
	KindEnumWithCustom  FieldKind = "enum_with_custom"
	KindVerbatimString  FieldKind = "verbatim_string"
	KindFreeText        FieldKind = "free_text"
	KindDerivedTimeline FieldKind = "derived_timeline"
)

// DefaultOtherLabel is the selector value that routes an enum field to its
// free-text override control.
const DefaultOtherLabel = "Other"

// FieldDescriptor declares a field once so that building and restoring apply
// the same encoding rule.
type FieldDescriptor struct {
	Name string
	Kind FieldKind

	// Control is the primary control: the text input, the enum selector or
	// the multiselect list.
	Control string
	// Prefix addresses a control family: per-option checkboxes
	// (Prefix+label) or keyed verbatim entries (Prefix+key).
	Prefix string
	// Options lists checkbox labels or static enum members in display order.
	Options []string
	// Enumeration names a provider list consulted by enum fields.
	Enumeration string
	// Custom is the free-text override control of an enum field.
	Custom string
	// OtherLabel overrides DefaultOtherLabel.
	OtherLabel string
	// Placeholder is the selector value shown when nothing is chosen.
	Placeholder string
	// Toggle gates a free-text field; the text is only encoded when the
	// toggle control is true.
	Toggle string
	// When is an inclusion rule. It sees the controls as they would be
	// restored from the encoded ungated fields, never the raw snapshot, and
	// controls owned by gated fields are not visible to it.
	When string
	// Timeline names the controls of a derived timeline field.
	Timeline *TimelineControls
}

// Controls returns every control identifier the field reads or writes. Family
// fields report their prefix followed by "*".
func (f FieldDescriptor) Controls() []string {
	var out []string
	add := func(id string) {
		if id != "" {
			out = append(out, id)
		}
	}
	add(f.Control)
	add(f.Custom)
	add(f.Toggle)
	if f.Prefix != "" {
		if f.Kind == KindCheckboxGroup && f.Control == "" {
			for _, option := range f.Options {
				out = append(out, f.Prefix+option)
			}
		} else {
			out = append(out, f.Prefix+"*")
		}
	}
	if f.Timeline != nil {
		tl := f.Timeline
		add(tl.StartDate)
		add(tl.StaffCount)
		add(tl.ExternalStaffCount)
		add(tl.PhaseCount)
		add(tl.PhaseName + "*")
		add(tl.PhaseDuration + "*")
		add(tl.PhaseNotes + "*")
		add(tl.PhaseStart + "*")
		add(tl.PhaseEnd + "*")
		add(tl.Completion)
	}
	return out
}

func (f FieldDescriptor) otherLabel() string {
	if f.OtherLabel != "" {
		return f.OtherLabel
	}
	return DefaultOtherLabel
}

// TimelineControls names the controls backing a derived timeline. Phase
// controls are prefixes completed with the zero-based row index.
type TimelineControls struct {
	StartDate          string
	StaffCount         string
	ExternalStaffCount string
	PhaseCount         string
	PhaseName          string
	PhaseDuration      string
	PhaseNotes         string
	PhaseStart         string
	PhaseEnd           string
	Completion         string
}

// DefaultTimelineControls returns the control ids used by the questionnaire UI.
func DefaultTimelineControls() *TimelineControls {
	return &TimelineControls{
		StartDate:          "timeline_start_date",
		StaffCount:         "timeline_staff_count",
		ExternalStaffCount: "timeline_external_staff_count",
		PhaseCount:         "timeline_phase_count",
		PhaseName:          "timeline_phase_name_",
		PhaseDuration:      "timeline_phase_duration_",
		PhaseNotes:         "timeline_phase_notes_",
		PhaseStart:         "timeline_phase_start_",
		PhaseEnd:           "timeline_phase_end_",
		Completion:         "timeline_completion",
	}
}

// Section groups the fields stored under one payload key.
type Section struct {
	Name   string
	Fields []FieldDescriptor
}

// Questionnaire is the ordered set of sections a payload covers.
type Questionnaire struct {
	Sections []Section
}

// SectionNames lists section keys in declaration order.
func (q Questionnaire) SectionNames() []string {
	names := make([]string, 0, len(q.Sections))
	for _, section := range q.Sections {
		names = append(names, section.Name)
	}
	return names
}

// Field looks up a field descriptor by section and field name.
func (q Questionnaire) Field(section, field string) (FieldDescriptor, bool) {
	for _, s := range q.Sections {
		if s.Name != section {
			continue
		}
		for _, f := range s.Fields {
			if f.Name == field {
				return f, true
			}
		}
	}
	return FieldDescriptor{}, false
}
