package wizard

import "slices"

// Enumeration names consulted by the questionnaire.
const (
	EnumDeploymentStrategies = "deployment_strategies"
	EnumUseCaseCategories    = "use_case_categories"
)

// EnumerationProvider answers membership questions for named lists. It is
// read-only from the wizard's point of view.
type EnumerationProvider interface {
	Members(name string) ([]string, bool)
}

// StaticEnumerations is an in-memory EnumerationProvider.
type StaticEnumerations map[string][]string

// Members implements EnumerationProvider.
func (s StaticEnumerations) Members(name string) ([]string, bool) {
	members, ok := s[name]
	return members, ok
}

type choiceKind uint8

const (
	choiceUnset choiceKind = iota
	choiceKnown
	choiceCustom
)

// Choice is the resolved value of an enum field: nothing chosen, a known
// member, or custom text typed next to the "Other" sentinel.
type Choice struct {
	kind  choiceKind
	value string
}

// Unset returns the empty choice.
func Unset() Choice { return Choice{} }

// Known returns a choice for a recognised enumeration member.
func Known(value string) Choice { return Choice{kind: choiceKnown, value: value} }

// Custom returns a choice carrying operator-typed text verbatim.
func Custom(text string) Choice { return Choice{kind: choiceCustom, value: text} }

// ResolveChoice classifies a stored value against the known members. An empty
// value is unset; anything else that is not a member is custom text kept
// exactly as given.
func ResolveChoice(value string, members []string) Choice {
	if value == "" {
		return Unset()
	}
	if slices.Contains(members, value) {
		return Known(value)
	}
	return Custom(value)
}

func (c Choice) IsUnset() bool  { return c.kind == choiceUnset }
func (c Choice) IsKnown() bool  { return c.kind == choiceKnown }
func (c Choice) IsCustom() bool { return c.kind == choiceCustom }

// Value returns the member or the custom text; empty when unset.
func (c Choice) Value() string { return c.value }

func (c Choice) String() string {
	switch c.kind {
	case choiceKnown:
		return "known(" + c.value + ")"
	case choiceCustom:
		return "custom(" + c.value + ")"
	default:
		return "unset"
	}
}
