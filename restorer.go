package wizard

import (
	"time"
)

// Restorer turns payloads back into control updates. It is immutable after
// construction and safe for concurrent use.
type Restorer struct {
	plan   []plannedField
	enums  EnumerationProvider
	logger Logger
}

// NewRestorer validates q. Inclusion rules are not compiled; restoring
// applies whatever the payload carries.
func NewRestorer(q Questionnaire, opts ...Option) (*Restorer, error) {
	cfg := applyOptions(opts)
	plan, err := planFields(q, cfg, false)
	if err != nil {
		return nil, err
	}
	return &Restorer{plan: plan, enums: cfg.enums, logger: cfg.logger}, nil
}

// Restore decodes payload into updates. The root and each section may be a
// map[string]any, a Payload or a map[string]string. Only a root that is not a
// mapping is an error; every other anomaly is reported as a warning and the
// affected section or field is skipped. Fields absent from the payload yield
// no updates.
func (r *Restorer) Restore(payload any) (Result, error) {
	start := time.Now()
	root, ok := asRecord(payload)
	if !ok || root == nil {
		err := &ShapeError{Got: describeType(payload)}
		r.logger.Log(LogEvent{Level: LogLevelError, Operation: "restore", Message: "payload rejected", Err: err})
		return Result{Updates: []Update{}}, err
	}

	result := Result{Updates: []Update{}}
	if warning, ok := checkVersion(root); !ok {
		result.Warnings = append(result.Warnings, warning)
	}

	ctx := DecodeContext{Enumerations: r.enums}
	malformedSections := map[string]bool{}
	for _, planned := range r.plan {
		if malformedSections[planned.section] {
			continue
		}
		raw, present := root[planned.section]
		if !present || raw == nil {
			continue
		}
		section, ok := asRecord(raw)
		if !ok {
			malformedSections[planned.section] = true
			w := newWarning(WarningMalformedSection, "section is %s, not a mapping", describeType(raw))
			w.Section = planned.section
			result.Warnings = append(result.Warnings, w)
			continue
		}
		value, present := section[planned.field.Name]
		if !present || value == nil {
			continue
		}

		decoded, err := planned.codec.Decode(ctx, planned.field, value)
		if err != nil {
			fieldErr := &FieldError{Section: planned.section, Field: planned.field.Name, Kind: planned.field.Kind, Err: err}
			w := newWarning(WarningMalformedField, "%v", err)
			w.Section, w.Field = planned.section, planned.field.Name
			result.Warnings = append(result.Warnings, w)
			r.logger.Log(LogEvent{
				Level:     LogLevelWarn,
				Operation: "restore",
				Section:   planned.section,
				Field:     planned.field.Name,
				Message:   "field skipped",
				Err:       fieldErr,
			})
			continue
		}
		result.Updates = append(result.Updates, decoded.Updates...)
		for _, w := range decoded.Warnings {
			w.Section, w.Field = planned.section, planned.field.Name
			result.Warnings = append(result.Warnings, w)
		}
	}

	for _, w := range result.Warnings {
		if w.Code == WarningMalformedField {
			continue
		}
		r.logger.Log(LogEvent{
			Level:     LogLevelWarn,
			Operation: "restore",
			Section:   w.Section,
			Field:     w.Field,
			Message:   w.String(),
		})
	}
	r.logger.Log(LogEvent{
		Level:     LogLevelDebug,
		Operation: "restore",
		Message:   "payload restored",
		Duration:  time.Since(start),
		Count:     len(result.Updates),
	})
	return result, nil
}

func checkVersion(root map[string]any) (Warning, bool) {
	raw, present := root[VersionKey]
	if !present || raw == nil {
		return Warning{}, true
	}
	version, ok := intValue(raw)
	if !ok {
		w := newWarning(WarningVersionMismatch, "version is %s, not an integer", describeType(raw))
		w.Field = VersionKey
		return w, false
	}
	if version > PayloadVersion {
		w := newWarning(WarningVersionMismatch, "payload version %d is newer than supported version %d", version, PayloadVersion)
		w.Field = VersionKey
		return w, false
	}
	return Warning{}, true
}
