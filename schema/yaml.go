package schema

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlDoc is the on-disk schema definition shape. Custom rules are code-only
// and cannot be expressed in YAML.
type yamlDoc struct {
	Name               string      `yaml:"name"`
	Version            string      `yaml:"version"`
	Deprecated         bool        `yaml:"deprecated"`
	DeprecationMessage string      `yaml:"deprecation_message"`
	SupportedUntil     string      `yaml:"supported_until"`
	Changelog          []string    `yaml:"changelog"`
	Fields             []yamlField `yaml:"fields"`
}

type yamlField struct {
	Name     string      `yaml:"name"`
	Type     string      `yaml:"type"`
	Required bool        `yaml:"required"`
	Nullable bool        `yaml:"nullable"`
	Default  any         `yaml:"default"`
	Rules    []yamlRule  `yaml:"rules"`
	Fields   []yamlField `yaml:"fields"`
	Elem     *yamlField  `yaml:"elem"`
}

type yamlRule struct {
	Kind    string   `yaml:"kind"`
	Len     int      `yaml:"len"`
	Bound   float64  `yaml:"bound"`
	Pattern string   `yaml:"pattern"`
	Enum    []string `yaml:"enum"`
	Format  string   `yaml:"format"`
	Message string   `yaml:"message"`
}

// LoadYAML parses a single schema definition document. Deployments use this
// to register entity schemas at startup without a code change.
func LoadYAML(data []byte) (*Schema, error) {
	var doc yamlDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schema: parsing yaml: %w", err)
	}
	b := New(doc.Name, doc.Version)
	if doc.Deprecated {
		b.Deprecated(doc.DeprecationMessage)
	}
	if doc.SupportedUntil != "" {
		t, err := time.Parse(time.RFC3339, doc.SupportedUntil)
		if err != nil {
			return nil, fmt.Errorf("schema %s@%s: bad supported_until: %w", doc.Name, doc.Version, err)
		}
		b.SupportedUntil(t)
	}
	b.Changelog(doc.Changelog...)
	for i := range doc.Fields {
		fb, err := fieldFromYAML(&doc.Fields[i])
		if err != nil {
			return nil, fmt.Errorf("schema %s@%s: %w", doc.Name, doc.Version, err)
		}
		b.Field(fb)
	}
	return b.Build()
}

func fieldFromYAML(yf *yamlField) (*FieldBuilder, error) {
	var fb *FieldBuilder
	switch Type(yf.Type) {
	case TypeString:
		fb = String(yf.Name)
	case TypeBool:
		fb = Bool(yf.Name)
	case TypeNumber:
		fb = Number(yf.Name)
	case TypeInteger:
		fb = Integer(yf.Name)
	case TypeObject:
		fb = Object(yf.Name)
		for i := range yf.Fields {
			sub, err := fieldFromYAML(&yf.Fields[i])
			if err != nil {
				return nil, err
			}
			fb.fields = append(fb.fields, sub)
		}
	case TypeArray:
		if yf.Elem == nil {
			return nil, fmt.Errorf("field %q: array without elem", yf.Name)
		}
		elem, err := fieldFromYAML(yf.Elem)
		if err != nil {
			return nil, err
		}
		fb = Array(yf.Name, elem)
	default:
		return nil, fmt.Errorf("field %q: unknown type %q", yf.Name, yf.Type)
	}

	if yf.Required {
		fb.Required()
	}
	if yf.Nullable {
		fb.Nullable()
	}
	if yf.Default != nil {
		fb.Default(yf.Default)
	}
	for _, yr := range yf.Rules {
		switch RuleKind(yr.Kind) {
		case RuleMinLength:
			fb.MinLength(yr.Len)
		case RuleMaxLength:
			fb.MaxLength(yr.Len)
		case RulePattern:
			fb.Pattern(yr.Pattern)
		case RuleMin:
			fb.Min(yr.Bound)
		case RuleMax:
			fb.Max(yr.Bound)
		case RuleEnum:
			fb.Enum(yr.Enum...)
		case RuleFormat:
			fb.Format(yr.Format)
		case RuleMinItems:
			fb.MinItems(yr.Len)
		case RuleMaxItems:
			fb.MaxItems(yr.Len)
		case RuleCustom:
			return nil, fmt.Errorf("field %q: custom rules cannot be defined in yaml", yf.Name)
		default:
			return nil, fmt.Errorf("field %q: unknown rule kind %q", yf.Name, yr.Kind)
		}
		if yr.Message != "" {
			fb.WithMessage(yr.Message)
		}
	}
	return fb, nil
}
