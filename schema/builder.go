package schema

import (
	"fmt"
	"regexp"
	"time"
)

// Builder assembles a Schema. Build validates the definition itself; a
// malformed definition is a programmer error and fails the build, it never
// degrades into runtime validation noise.
type Builder struct {
	name    string
	version string
	meta    Metadata
	fields  []*FieldBuilder
}

// New starts a schema definition for the given logical name and semantic
// version string.
func New(name, version string) *Builder {
	return &Builder{name: name, version: version}
}

// Deprecated marks the version deprecated with a human message.
func (b *Builder) Deprecated(msg string) *Builder {
	b.meta.Deprecated = true
	b.meta.DeprecationMessage = msg
	return b
}

// SupportedUntil records the retirement date of a deprecated version.
func (b *Builder) SupportedUntil(t time.Time) *Builder {
	b.meta.SupportedUntil = t
	return b
}

// Changelog appends free-text changelog entries.
func (b *Builder) Changelog(entries ...string) *Builder {
	b.meta.Changelog = append(b.meta.Changelog, entries...)
	return b
}

// Field adds a field definition.
func (b *Builder) Field(f *FieldBuilder) *Builder {
	b.fields = append(b.fields, f)
	return b
}

// Build compiles the definition into an immutable Schema.
func (b *Builder) Build() (*Schema, error) {
	if b.name == "" {
		return nil, fmt.Errorf("schema: name is required")
	}
	s := &Schema{
		Name:     b.name,
		Version:  b.version,
		Meta:     b.meta,
		patterns: map[string]*regexp.Regexp{},
	}
	seen := map[string]bool{}
	for _, fb := range b.fields {
		f, err := fb.build(s)
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", s.Identity(), err)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("schema %s: duplicate field %q", s.Identity(), f.Name)
		}
		seen[f.Name] = true
		s.Fields = append(s.Fields, f)
	}
	return s, nil
}

// MustBuild is Build for composition roots where a bad definition should
// stop the process.
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// FieldBuilder assembles one Field.
type FieldBuilder struct {
	f      Field
	fields []*FieldBuilder
	elem   *FieldBuilder
}

// String starts a string field.
func String(name string) *FieldBuilder {
	return &FieldBuilder{f: Field{Name: name, Type: TypeString}}
}

// Bool starts a bool field.
func Bool(name string) *FieldBuilder {
	return &FieldBuilder{f: Field{Name: name, Type: TypeBool}}
}

// Number starts a number field.
func Number(name string) *FieldBuilder {
	return &FieldBuilder{f: Field{Name: name, Type: TypeNumber}}
}

// Integer starts an integer field.
func Integer(name string) *FieldBuilder {
	return &FieldBuilder{f: Field{Name: name, Type: TypeInteger}}
}

// Object starts a nested object field.
func Object(name string, fields ...*FieldBuilder) *FieldBuilder {
	return &FieldBuilder{f: Field{Name: name, Type: TypeObject}, fields: fields}
}

// Array starts an array field whose elements conform to elem.
func Array(name string, elem *FieldBuilder) *FieldBuilder {
	return &FieldBuilder{f: Field{Name: name, Type: TypeArray}, elem: elem}
}

// Required marks the field required.
func (fb *FieldBuilder) Required() *FieldBuilder { fb.f.Required = true; return fb }

// Nullable allows explicit null for the field.
func (fb *FieldBuilder) Nullable() *FieldBuilder { fb.f.Nullable = true; return fb }

// Default sets the value applied when the field is absent. The value must be
// in normalized form already.
func (fb *FieldBuilder) Default(v any) *FieldBuilder { fb.f.Default = v; return fb }

// MinLength adds a minimum string length rule.
func (fb *FieldBuilder) MinLength(n int) *FieldBuilder {
	fb.f.Rules = append(fb.f.Rules, Rule{Kind: RuleMinLength, Len: n})
	return fb
}

// MaxLength adds a maximum string length rule.
func (fb *FieldBuilder) MaxLength(n int) *FieldBuilder {
	fb.f.Rules = append(fb.f.Rules, Rule{Kind: RuleMaxLength, Len: n})
	return fb
}

// Pattern adds a regexp rule. The pattern is compiled at Build.
func (fb *FieldBuilder) Pattern(p string) *FieldBuilder {
	fb.f.Rules = append(fb.f.Rules, Rule{Kind: RulePattern, Pattern: p})
	return fb
}

// Min adds an inclusive numeric lower bound.
func (fb *FieldBuilder) Min(v float64) *FieldBuilder {
	fb.f.Rules = append(fb.f.Rules, Rule{Kind: RuleMin, Bound: v})
	return fb
}

// Max adds an inclusive numeric upper bound.
func (fb *FieldBuilder) Max(v float64) *FieldBuilder {
	fb.f.Rules = append(fb.f.Rules, Rule{Kind: RuleMax, Bound: v})
	return fb
}

// Enum restricts a string field to the given values.
func (fb *FieldBuilder) Enum(values ...string) *FieldBuilder {
	fb.f.Rules = append(fb.f.Rules, Rule{Kind: RuleEnum, Enum: values})
	return fb
}

// Format adds a named format rule (FormatEmail, FormatUUID, ...).
func (fb *FieldBuilder) Format(name string) *FieldBuilder {
	fb.f.Rules = append(fb.f.Rules, Rule{Kind: RuleFormat, Format: name})
	return fb
}

// MinItems adds a minimum array length rule.
func (fb *FieldBuilder) MinItems(n int) *FieldBuilder {
	fb.f.Rules = append(fb.f.Rules, Rule{Kind: RuleMinItems, Len: n})
	return fb
}

// MaxItems adds a maximum array length rule.
func (fb *FieldBuilder) MaxItems(n int) *FieldBuilder {
	fb.f.Rules = append(fb.f.Rules, Rule{Kind: RuleMaxItems, Len: n})
	return fb
}

// Custom adds a named pure predicate. check receives the normalized value.
func (fb *FieldBuilder) Custom(name string, check func(v any) bool) *FieldBuilder {
	fb.f.Rules = append(fb.f.Rules, Rule{Kind: RuleCustom, Name: name, Check: check})
	return fb
}

// WithMessage overrides the translated message of the most recent rule.
func (fb *FieldBuilder) WithMessage(msg string) *FieldBuilder {
	if n := len(fb.f.Rules); n > 0 {
		fb.f.Rules[n-1].Message = msg
	}
	return fb
}

func (fb *FieldBuilder) build(s *Schema) (Field, error) {
	f := fb.f
	if f.Name == "" {
		return Field{}, fmt.Errorf("field name is required")
	}
	for i := range f.Rules {
		r := &f.Rules[i]
		switch r.Kind {
		case RulePattern:
			re, err := regexp.Compile(r.Pattern)
			if err != nil {
				return Field{}, fmt.Errorf("field %q: bad pattern: %w", f.Name, err)
			}
			s.patterns[r.Pattern] = re
		case RuleFormat:
			switch r.Format {
			case FormatEmail, FormatUUID, FormatRFC3339, FormatURL:
			default:
				return Field{}, fmt.Errorf("field %q: unknown format %q", f.Name, r.Format)
			}
		case RuleCustom:
			if r.Check == nil {
				return Field{}, fmt.Errorf("field %q: custom rule %q has no check", f.Name, r.Name)
			}
		}
	}
	if f.Type == TypeObject {
		seen := map[string]bool{}
		for _, sub := range fb.fields {
			sf, err := sub.build(s)
			if err != nil {
				return Field{}, err
			}
			if seen[sf.Name] {
				return Field{}, fmt.Errorf("field %q: duplicate nested field %q", f.Name, sf.Name)
			}
			seen[sf.Name] = true
			f.Fields = append(f.Fields, sf)
		}
	}
	if f.Type == TypeArray {
		if fb.elem == nil {
			return Field{}, fmt.Errorf("field %q: array without element schema", f.Name)
		}
		ef, err := fb.elem.build(s)
		if err != nil {
			return Field{}, err
		}
		f.Elem = &ef
	}
	return f, nil
}
