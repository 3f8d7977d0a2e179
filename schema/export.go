package schema

import (
	"github.com/goccy/go-json"
)

// JSONSchema is a minimal JSON Schema representation used for documentation
// export. Keep this struct small and extend incrementally.
type JSONSchema struct {
	// Core
	Type    string `json:"type,omitempty"`
	Format  string `json:"format,omitempty"`
	Default any    `json:"default,omitempty"`

	// String
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	Enum      []string `json:"enum,omitempty"`

	// Number
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`

	// Object
	Properties map[string]*JSONSchema `json:"properties,omitempty"`
	Required   []string               `json:"required,omitempty"`

	// Array
	Items    *JSONSchema `json:"items,omitempty"`
	MinItems *int        `json:"minItems,omitempty"`
	MaxItems *int        `json:"maxItems,omitempty"`
}

// Export projects the schema into a JSON Schema representation. The tagged
// rule list is fully introspectable, so nothing here depends on executing
// the schema. Custom rules have no JSON Schema counterpart and are skipped.
func (s *Schema) Export() *JSONSchema {
	return exportFields(s.Fields)
}

// ExportJSON renders the Export projection as JSON bytes for documentation
// generation.
func (s *Schema) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(s.Export(), "", "  ")
}

func exportFields(fields []Field) *JSONSchema {
	out := &JSONSchema{Type: "object", Properties: map[string]*JSONSchema{}}
	for _, f := range fields {
		out.Properties[f.Name] = exportField(f)
		if f.Required {
			out.Required = append(out.Required, f.Name)
		}
	}
	return out
}

func exportField(f Field) *JSONSchema {
	js := &JSONSchema{Default: f.Default}
	switch f.Type {
	case TypeString:
		js.Type = "string"
	case TypeBool:
		js.Type = "boolean"
	case TypeNumber:
		js.Type = "number"
	case TypeInteger:
		js.Type = "integer"
	case TypeObject:
		nested := exportFields(f.Fields)
		nested.Default = f.Default
		js = nested
	case TypeArray:
		js.Type = "array"
		if f.Elem != nil {
			js.Items = exportField(*f.Elem)
		}
	}
	for _, r := range f.Rules {
		switch r.Kind {
		case RuleMinLength:
			js.MinLength = intPtr(r.Len)
		case RuleMaxLength:
			js.MaxLength = intPtr(r.Len)
		case RulePattern:
			js.Pattern = r.Pattern
		case RuleMin:
			js.Minimum = floatPtr(r.Bound)
		case RuleMax:
			js.Maximum = floatPtr(r.Bound)
		case RuleEnum:
			js.Enum = r.Enum
		case RuleFormat:
			js.Format = r.Format
		case RuleMinItems:
			js.MinItems = intPtr(r.Len)
		case RuleMaxItems:
			js.MaxItems = intPtr(r.Len)
		}
	}
	return js
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
