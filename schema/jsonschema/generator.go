// Package jsonschema renders a JSON Schema (draft 2020-12) describing the
// payloads a questionnaire builds.
package jsonschema

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	wizard "github.com/goliatone/go-wizard"
)

// Draft is the JSON Schema dialect emitted by the generator.
const Draft = "https://json-schema.org/draft/2020-12/schema"

const datePattern = `^(\d{4}-\d{2}-\d{2})?$`

type generatorConfig struct {
	id          string
	title       string
	description string
	enums       wizard.EnumerationProvider
	strict      bool
}

func defaultGeneratorConfig() generatorConfig {
	return generatorConfig{title: "Wizard Payload"}
}

// GeneratorOption configures the generator.
type GeneratorOption func(*generatorConfig)

// WithID sets the document $id.
func WithID(id string) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.id = strings.TrimSpace(id)
	}
}

// WithTitle overrides the document title (default: "Wizard Payload").
func WithTitle(title string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if title = strings.TrimSpace(title); title != "" {
			cfg.title = title
		}
	}
}

// WithDescription sets the document description.
func WithDescription(description string) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.description = strings.TrimSpace(description)
	}
}

// WithEnumerations lists known enum members as examples.
func WithEnumerations(provider wizard.EnumerationProvider) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.enums = provider
	}
}

// WithStrict forbids unknown keys in sections and at the root. Restore
// ignores such keys; strict schemas are meant for producers.
func WithStrict(strict bool) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.strict = strict
	}
}

// Generator renders schema documents for questionnaires.
type Generator struct {
	config generatorConfig
}

// NewGenerator constructs a Generator.
func NewGenerator(opts ...GeneratorOption) Generator {
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return Generator{config: cfg}
}

// Generate returns the schema document for q.
func (g Generator) Generate(q wizard.Questionnaire) (map[string]any, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("jsonschema: %w", err)
	}

	required := []string{wizard.VersionKey}
	properties := map[string]any{
		wizard.VersionKey: map[string]any{
			"type":    "integer",
			"minimum": 1,
			"default": wizard.PayloadVersion,
		},
	}
	for _, section := range q.Sections {
		fields := map[string]any{}
		names := make([]string, 0, len(section.Fields))
		for _, field := range section.Fields {
			schema, err := g.fieldSchema(field)
			if err != nil {
				return nil, fmt.Errorf("jsonschema: %s.%s: %w", section.Name, field.Name, err)
			}
			fields[field.Name] = schema
			names = append(names, field.Name)
		}
		properties[section.Name] = map[string]any{
			"type":                 "object",
			"properties":           fields,
			"required":             names,
			"additionalProperties": !g.config.strict,
		}
		required = append(required, section.Name)
	}

	doc := map[string]any{
		"$schema":              Draft,
		"title":                g.config.title,
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": !g.config.strict,
	}
	if g.config.id != "" {
		doc["$id"] = g.config.id
	}
	if g.config.description != "" {
		doc["description"] = g.config.description
	}
	return doc, nil
}

// Marshal renders the schema for q as indented JSON.
func (g Generator) Marshal(q wizard.Questionnaire) ([]byte, error) {
	doc, err := g.Generate(q)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

func (g Generator) fieldSchema(field wizard.FieldDescriptor) (map[string]any, error) {
	var schema map[string]any
	switch field.Kind {
	case wizard.KindCheckboxGroup:
		schema = map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string", "enum": slices.Clone(field.Options)},
			"uniqueItems": true,
		}
	case wizard.KindEnumWithCustom:
		schema = map[string]any{
			"type":        "string",
			"description": "A known member, custom text, or empty when nothing is chosen.",
		}
		if members := g.members(field); len(members) > 0 {
			schema["examples"] = members
		}
	case wizard.KindVerbatimString:
		if field.Prefix != "" {
			schema = map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "string"},
			}
		} else {
			schema = map[string]any{"type": "string"}
		}
	case wizard.KindFreeText:
		schema = map[string]any{"type": "string"}
	case wizard.KindDerivedTimeline:
		schema = timelineSchema()
	default:
		return nil, fmt.Errorf("kind %q has no schema", field.Kind)
	}
	schema["x-kind"] = string(field.Kind)
	if field.When != "" {
		schema["x-when"] = field.When
	}
	return schema, nil
}

func (g Generator) members(field wizard.FieldDescriptor) []string {
	if field.Enumeration != "" && g.config.enums != nil {
		if members, ok := g.config.enums.Members(field.Enumeration); ok {
			return slices.Clone(members)
		}
	}
	return slices.Clone(field.Options)
}

func timelineSchema() map[string]any {
	date := func() map[string]any {
		return map[string]any{"type": "string", "pattern": datePattern}
	}
	count := func() map[string]any {
		return map[string]any{"type": "integer", "minimum": 0}
	}
	item := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":        map[string]any{"type": "string"},
			"duration_bd": count(),
			"start":       date(),
			"end":         date(),
			"notes":       map[string]any{"type": "string"},
		},
		"required": []string{"name", "duration_bd", "start", "end", "notes"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"start_date":           date(),
			"total_business_days":  count(),
			"projected_completion": date(),
			"staff_count":          count(),
			"external_staff_count": count(),
			"items":                map[string]any{"type": "array", "items": item},
		},
		"required": []string{
			"start_date", "total_business_days", "projected_completion",
			"staff_count", "external_staff_count", "items",
		},
	}
}
