package schema

// RuleKind tags a Rule variant. The evaluator owns the interpretation of
// every kind; there are no opaque rule closures apart from RuleCustom.
type RuleKind string

const (
	RuleMinLength RuleKind = "min_length"
	RuleMaxLength RuleKind = "max_length"
	RulePattern   RuleKind = "pattern"
	RuleMin       RuleKind = "min"
	RuleMax       RuleKind = "max"
	RuleEnum      RuleKind = "enum"
	RuleFormat    RuleKind = "format"
	RuleMinItems  RuleKind = "min_items"
	RuleMaxItems  RuleKind = "max_items"
	RuleCustom    RuleKind = "custom"
)

// Format names recognized by RuleFormat.
const (
	FormatEmail   = "email"
	FormatUUID    = "uuid"
	FormatRFC3339 = "rfc3339"
	FormatURL     = "url"
)

// Rule is one tagged validation variant. Only the parameters relevant to the
// Kind are set; the rest stay zero.
type Rule struct {
	Kind RuleKind

	// RuleMinLength/RuleMaxLength/RuleMinItems/RuleMaxItems
	Len int
	// RuleMin/RuleMax (numeric bound, inclusive)
	Bound float64
	// RulePattern (regexp source, compiled at Build)
	Pattern string
	// RuleEnum
	Enum []string
	// RuleFormat (one of the Format* names)
	Format string
	// RuleCustom: Name is recorded on issues; Check must be pure and I/O free.
	Name  string
	Check func(v any) bool
	// Message overrides the translated default when non-empty.
	Message string
}
