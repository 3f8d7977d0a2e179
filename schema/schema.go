// Package schema defines the named, versioned rule sets the validation engine
// executes. A Schema is a plain data structure: fields plus a tagged-variant
// rule list interpreted by a single evaluator. Keeping rules as data (not
// opaque closures) keeps schemas introspectable for the registry's
// deprecation metadata and serializable for documentation export.
package schema

import (
	"regexp"
	"time"
)

// Type is the wire-level type a field accepts.
type Type string

const (
	TypeString  Type = "string"
	TypeBool    Type = "bool"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeObject  Type = "object"
	TypeArray   Type = "array"
)

// Metadata carries the registry-facing lifecycle attributes of a schema
// version.
type Metadata struct {
	Deprecated         bool
	DeprecationMessage string
	// SupportedUntil is zero when the version has no retirement date.
	SupportedUntil time.Time
	Changelog      []string
}

// Field describes one named member of an object schema.
type Field struct {
	Name     string
	Type     Type
	Required bool
	Nullable bool
	// Default is applied when the field is absent from the input. It must
	// already be in normalized form.
	Default any
	Rules   []Rule
	// Fields is set for TypeObject.
	Fields []Field
	// Elem is set for TypeArray.
	Elem *Field
}

// Schema is a named, versioned rule set. Schemas are immutable once built;
// a new version is a new value, never an in-place edit.
type Schema struct {
	Name    string
	Version string
	Meta    Metadata
	Fields  []Field

	// patterns holds regexps compiled at Build time, keyed by source text.
	patterns map[string]*regexp.Regexp
}

// Identity returns the cache-key prefix form "name@version".
func (s *Schema) Identity() string { return s.Name + "@" + s.Version }
