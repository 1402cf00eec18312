// Package schema builds, compiles and validates the JSON Schemas that describe tool
// parameters and structured model output.
//
// # Quick Start
//
//	params := schema.Object(map[string]*schema.Property{
//	    "query":       schema.String("Search query"),
//	    "max_results": schema.Integer("Number of results").Min(1).Max(10).Default(3),
//	}, "query") // "query" is required
//
//	s, err := schema.Compile(params)
//	if err != nil { ... }
//	err = s.Validate(args)
//
// The tool registry compiles every registered tool's schema once and validates arguments
// before each call. The structured adapter validates recovered JSON values the same way.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a JSON Schema definition together with its compiled validator.
type Schema struct {
	raw      map[string]any
	compiled *jsonschema.Schema
}

// Raw returns the map the schema was compiled from.
func (s *Schema) Raw() map[string]any {
	if s == nil {
		return nil
	}
	return s.raw
}

// String renders the schema as indented JSON for prompts.
func (s *Schema) String() string {
	if s == nil {
		return "{}"
	}
	data, err := json.MarshalIndent(s.raw, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Validate checks data against the schema. A nil schema accepts everything.
//
// data may be any value that marshals to JSON. It is normalized through its JSON form
// first, so Go integers, structs and decoded JSON all validate the same way.
func (s *Schema) Validate(data any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	normalized, err := normalize(data)
	if err != nil {
		return &ValidationError{Err: err}
	}
	if err := s.compiled.Validate(normalized); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

func normalize(data any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("value is not JSON encodable: %w", err)
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(raw))
}

// ValidationError wraps a JSON Schema validation error.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Compile compiles a raw schema map. A nil map compiles to a nil *Schema.
func Compile(raw map[string]any) (*Schema, error) {
	if raw == nil {
		return nil, nil
	}

	schemaJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	schemaData, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaData); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Schema{
		raw:      raw,
		compiled: compiled,
	}, nil
}

// MustCompile is like Compile but panics on error.
// Use this for schemas defined at init time.
func MustCompile(raw map[string]any) *Schema {
	s, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// -----------------------------------------------------------------------------
// Introspection
// -----------------------------------------------------------------------------

// Properties returns the property names of an object schema, sorted.
func Properties(raw map[string]any) []string {
	props, _ := raw["properties"].(map[string]any)
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Required returns the required property names of an object schema.
func Required(raw map[string]any) []string {
	switch r := raw["required"].(type) {
	case []string:
		return r
	case []any:
		names := make([]string, 0, len(r))
		for _, v := range r {
			if s, ok := v.(string); ok {
				names = append(names, s)
			}
		}
		return names
	default:
		return nil
	}
}

// SoleStringProperty returns the property that free text should bind to.
//
// When the schema has required properties, there must be exactly one and it must be a
// string. Otherwise the schema must have exactly one property and it must be a string.
func SoleStringProperty(raw map[string]any) (string, bool) {
	candidates := Required(raw)
	if len(candidates) == 0 {
		candidates = Properties(raw)
	}
	if len(candidates) != 1 {
		return "", false
	}
	props, _ := raw["properties"].(map[string]any)
	prop, _ := props[candidates[0]].(map[string]any)
	if prop["type"] != "string" {
		return "", false
	}
	return candidates[0], true
}

// ApplyDefaults returns a copy of args with the schema's property defaults filled in
// for missing keys.
func ApplyDefaults(raw map[string]any, args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = v
	}
	props, _ := raw["properties"].(map[string]any)
	for name, p := range props {
		prop, ok := p.(map[string]any)
		if !ok {
			continue
		}
		def, ok := prop["default"]
		if !ok {
			continue
		}
		if _, set := out[name]; !set {
			out[name] = def
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// Schema Builders
// -----------------------------------------------------------------------------

// Object creates an object schema with the given properties.
// Pass property names as variadic arguments to mark them as required.
func Object(properties map[string]*Property, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": buildAll(properties),
	}

	if len(required) > 0 {
		schema["required"] = required
	}

	return schema
}

func buildAll(properties map[string]*Property) map[string]any {
	props := make(map[string]any, len(properties))
	for name, prop := range properties {
		props[name] = prop.build()
	}
	return props
}

// Property represents a property in an object schema.
type Property struct {
	typ         string
	nullable    bool
	description string
	enum        []any
	format      string
	minimum     *float64
	maximum     *float64
	minLength   *int
	maxLength   *int
	pattern     string
	items       map[string]any
	properties  map[string]any
	required    []string
	def         any
}

func (p *Property) build() map[string]any {
	m := map[string]any{}

	if p.typ != "" {
		if p.nullable {
			m["type"] = []any{p.typ, "null"}
		} else {
			m["type"] = p.typ
		}
	}
	if p.description != "" {
		m["description"] = p.description
	}
	if len(p.enum) > 0 {
		m["enum"] = p.enum
	}
	if p.format != "" {
		m["format"] = p.format
	}
	if p.minimum != nil {
		m["minimum"] = *p.minimum
	}
	if p.maximum != nil {
		m["maximum"] = *p.maximum
	}
	if p.minLength != nil {
		m["minLength"] = *p.minLength
	}
	if p.maxLength != nil {
		m["maxLength"] = *p.maxLength
	}
	if p.pattern != "" {
		m["pattern"] = p.pattern
	}
	if p.items != nil {
		m["items"] = p.items
	}
	if p.properties != nil {
		m["properties"] = p.properties
	}
	if len(p.required) > 0 {
		m["required"] = p.required
	}
	if p.def != nil {
		m["default"] = p.def
	}

	return m
}

// String creates a string property.
//
//	schema.String("Status").Enum("active", "inactive")
func String(description string) *Property {
	return &Property{typ: "string", description: description}
}

// Integer creates an integer property.
//
//	schema.Integer("Count").Min(0).Max(100).Default(3)
func Integer(description string) *Property {
	return &Property{typ: "integer", description: description}
}

// Number creates a number property (floating point).
func Number(description string) *Property {
	return &Property{typ: "number", description: description}
}

// Boolean creates a boolean property.
func Boolean(description string) *Property {
	return &Property{typ: "boolean", description: description}
}

// Array creates an array property with the given item schema.
func Array(description string, items map[string]any) *Property {
	return &Property{typ: "array", description: description, items: items}
}

// Nested creates an object property with its own properties.
//
//	schema.Nested("Tool arguments", nil).Nullable()
func Nested(description string, properties map[string]*Property, required ...string) *Property {
	p := &Property{typ: "object", description: description, required: required}
	if properties != nil {
		p.properties = buildAll(properties)
	}
	return p
}

// Nullable additionally allows null for the property.
func (p *Property) Nullable() *Property {
	p.nullable = true
	return p
}

// Enum sets allowed values for the property.
func (p *Property) Enum(values ...any) *Property {
	p.enum = values
	return p
}

// Format sets the format for string validation, such as "date-time" or "uri".
func (p *Property) Format(format string) *Property {
	p.format = format
	return p
}

// Min sets the minimum value for number/integer properties.
func (p *Property) Min(min float64) *Property {
	p.minimum = &min
	return p
}

// Max sets the maximum value for number/integer properties.
func (p *Property) Max(max float64) *Property {
	p.maximum = &max
	return p
}

// MinLength sets the minimum length for string properties.
func (p *Property) MinLength(min int) *Property {
	p.minLength = &min
	return p
}

// MaxLength sets the maximum length for string properties.
func (p *Property) MaxLength(max int) *Property {
	p.maxLength = &max
	return p
}

// Pattern sets a regex pattern for string validation.
func (p *Property) Pattern(pattern string) *Property {
	p.pattern = pattern
	return p
}

// Default sets the default value for the property.
func (p *Property) Default(value any) *Property {
	p.def = value
	return p
}
