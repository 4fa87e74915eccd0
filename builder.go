package wizard

import (
	"fmt"
	"time"
)

// plannedField binds a descriptor to its codec and optional inclusion rule.
type plannedField struct {
	section string
	field   FieldDescriptor
	codec   Codec
	rule    *rule
}

func planFields(q Questionnaire, cfg config, withRules bool) ([]plannedField, error) {
	if err := q.validate(cfg.registry); err != nil {
		return nil, err
	}

	var declared []string
	var evaluator Evaluator
	plan := make([]plannedField, 0, len(q.Paths()))
	for _, section := range q.Sections {
		for _, field := range section.Fields {
			codec, _ := cfg.registry.Lookup(field.Kind)
			planned := plannedField{section: section.Name, field: field, codec: codec}
			if withRules && field.When != "" {
				if evaluator == nil {
					evaluator = cfg.evaluatorOrDefault()
					declared = q.declaredControls()
				}
				compiled, err := compileRule(evaluator, field.When, joinPath(section.Name, field.Name), declared)
				if err != nil {
					return nil, err
				}
				planned.rule = compiled
			}
			plan = append(plan, planned)
		}
	}
	return plan, nil
}

// Builder assembles payloads from control snapshots. It is immutable after
// construction and safe for concurrent use.
type Builder struct {
	questionnaire Questionnaire
	plan          []plannedField
	enums         EnumerationProvider
	gated         bool
	logger        Logger
}

// NewBuilder validates q and compiles its inclusion rules.
func NewBuilder(q Questionnaire, opts ...Option) (*Builder, error) {
	cfg := applyOptions(opts)
	plan, err := planFields(q, cfg, true)
	if err != nil {
		return nil, err
	}
	gated := false
	for _, planned := range plan {
		gated = gated || planned.rule != nil
	}
	return &Builder{questionnaire: q, plan: plan, enums: cfg.enums, gated: gated, logger: cfg.logger}, nil
}

// Questionnaire returns the questionnaire the builder was created with.
func (b *Builder) Questionnaire() Questionnaire {
	return b.questionnaire
}

// Build encodes every declared field of state. It never fails: absent or
// mistyped controls encode as the kind's empty value, as do fields whose
// inclusion rule is false or fails to evaluate.
func (b *Builder) Build(state ControlState) Payload {
	start := time.Now()
	payload := Payload{VersionKey: PayloadVersion}
	for _, name := range b.questionnaire.SectionNames() {
		payload[name] = map[string]any{}
	}

	var ruleState ControlState
	for _, planned := range b.plan {
		if planned.rule == nil {
			payload[planned.section].(map[string]any)[planned.field.Name] = planned.codec.Encode(planned.field, state)
		}
	}
	if b.gated {
		ruleState = b.ruleInputs(payload)
	}

	excluded := 0
	for _, planned := range b.plan {
		section := payload[planned.section].(map[string]any)
		if planned.rule != nil {
			allowed, err := planned.rule.allows(ruleState)
			if err != nil {
				b.logger.Log(LogEvent{
					Level:     LogLevelWarn,
					Operation: "build",
					Section:   planned.section,
					Field:     planned.field.Name,
					Message:   "inclusion rule failed; field excluded",
					Err:       err,
				})
			}
			if !allowed {
				excluded++
				section[planned.field.Name] = planned.codec.Empty(planned.field)
				continue
			}
			section[planned.field.Name] = planned.codec.Encode(planned.field, state)
		}
	}

	b.logger.Log(LogEvent{
		Level:     LogLevelDebug,
		Operation: "build",
		Message:   fmt.Sprintf("payload built (%d excluded by rules)", excluded),
		Duration:  time.Since(start),
		Count:     len(b.plan),
	})
	return payload
}

// ruleInputs decodes the encoded ungated fields back into controls. Rules run
// against this state so a payload rebuilt from its own restore gates the same
// fields.
func (b *Builder) ruleInputs(payload Payload) ControlState {
	ctx := DecodeContext{Enumerations: b.enums}
	var updates []Update
	for _, planned := range b.plan {
		if planned.rule != nil {
			continue
		}
		decoded, err := planned.codec.Decode(ctx, planned.field, payload[planned.section].(map[string]any)[planned.field.Name])
		if err != nil {
			continue
		}
		updates = append(updates, decoded.Updates...)
	}
	return ApplyUpdates(nil, updates)
}
