package wizard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Paths lists every field as "section.field" in declaration order.
func (q Questionnaire) Paths() []string {
	var paths []string
	for _, section := range q.Sections {
		for _, field := range section.Fields {
			paths = append(paths, joinPath(section.Name, field.Name))
		}
	}
	return paths
}

// Validate checks the questionnaire against the built-in codecs.
func (q Questionnaire) Validate() error {
	return q.validate(DefaultRegistry())
}

func (q Questionnaire) validate(registry *Registry) error {
	var errs []error
	sections := map[string]struct{}{}
	for i, section := range q.Sections {
		if section.Name == "" {
			errs = append(errs, fmt.Errorf("wizard: section %d has no name", i))
			continue
		}
		if section.Name == VersionKey {
			errs = append(errs, fmt.Errorf("wizard: section name %q is reserved", section.Name))
		}
		if _, dup := sections[section.Name]; dup {
			errs = append(errs, fmt.Errorf("wizard: duplicate section %q", section.Name))
		}
		sections[section.Name] = struct{}{}

		fields := map[string]struct{}{}
		for _, field := range section.Fields {
			path := joinPath(section.Name, field.Name)
			if field.Name == "" {
				errs = append(errs, fmt.Errorf("wizard: section %q has a field without a name", section.Name))
				continue
			}
			if _, dup := fields[field.Name]; dup {
				errs = append(errs, fmt.Errorf("wizard: duplicate field %q", path))
			}
			fields[field.Name] = struct{}{}
			if _, ok := registry.Lookup(field.Kind); !ok {
				errs = append(errs, fmt.Errorf("wizard: field %q has unknown kind %q", path, field.Kind))
				continue
			}
			if err := checkControls(field); err != nil {
				errs = append(errs, fmt.Errorf("wizard: field %q: %w", path, err))
			}
		}
	}
	return errors.Join(errs...)
}

func checkControls(field FieldDescriptor) error {
	switch field.Kind {
	case KindCheckboxGroup:
		if len(field.Options) == 0 {
			return errors.New("checkbox group declares no options")
		}
		if (field.Control == "") == (field.Prefix == "") {
			return errors.New("checkbox group needs exactly one of control or prefix")
		}
	case KindEnumWithCustom:
		if field.Control == "" || field.Custom == "" {
			return errors.New("enum field needs a selector and a custom control")
		}
		if field.Placeholder != "" && field.Placeholder == field.otherLabel() {
			return errors.New("placeholder must differ from the other label")
		}
	case KindVerbatimString:
		if (field.Control == "") == (field.Prefix == "") {
			return errors.New("verbatim field needs exactly one of control or prefix")
		}
	case KindFreeText:
		if field.Control == "" {
			return errors.New("free text field needs a control")
		}
	}
	return nil
}

// declaredControls lists every concrete control id the questionnaire names,
// sorted. Control families contribute their known members only.
func (q Questionnaire) declaredControls() []string {
	seen := map[string]struct{}{}
	for _, section := range q.Sections {
		for _, field := range section.Fields {
			for _, id := range field.Controls() {
				if strings.HasSuffix(id, "*") {
					continue
				}
				seen[id] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, ".")
}
