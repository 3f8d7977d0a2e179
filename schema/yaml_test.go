package schema_test

import (
	"strings"
	"testing"

	"github.com/chanuka/bound/schema"
)

const billYAML = `
name: Bill
version: 1.1.0
changelog:
  - add status enum
fields:
  - name: title
    type: string
    required: true
    rules:
      - kind: min_length
        len: 3
      - kind: max_length
        len: 200
  - name: status
    type: string
    default: introduced
    rules:
      - kind: enum
        enum: [introduced, committee, passed, vetoed]
  - name: sponsors
    type: array
    elem:
      name: id
      type: string
      rules:
        - kind: format
          format: uuid
    rules:
      - kind: min_items
        len: 1
`

func TestLoadYAML_BuildsWorkingSchema(t *testing.T) {
	s, err := schema.LoadYAML([]byte(billYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Identity() != "Bill@1.1.0" {
		t.Fatalf("unexpected identity %q", s.Identity())
	}
	out, iss := s.Eval(map[string]any{
		"title":    "Clean Air Act",
		"sponsors": []any{"6f1e0b38-0a90-4f4d-9af8-1a2b3c4d5e6f"},
	}, schema.EvalOpt{})
	if iss != nil {
		t.Fatalf("unexpected issues: %v", iss)
	}
	if out["status"] != "introduced" {
		t.Fatalf("default not applied: %v", out["status"])
	}

	_, iss = s.Eval(map[string]any{"title": "ab", "sponsors": []any{}}, schema.EvalOpt{})
	if len(iss) != 2 {
		t.Fatalf("expected 2 issues, got %v", iss)
	}
}

func TestLoadYAML_DeprecationMetadata(t *testing.T) {
	doc := `
name: Comment
version: 0.9.0
deprecated: true
deprecation_message: use 1.x
supported_until: "2026-12-31T00:00:00Z"
fields:
  - name: body
    type: string
`
	s, err := schema.LoadYAML([]byte(doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !s.Meta.Deprecated || s.Meta.DeprecationMessage != "use 1.x" {
		t.Fatalf("deprecation metadata lost: %+v", s.Meta)
	}
	if s.Meta.SupportedUntil.IsZero() {
		t.Fatalf("supported_until not parsed")
	}
}

func TestLoadYAML_RejectsCustomAndUnknownKinds(t *testing.T) {
	_, err := schema.LoadYAML([]byte(`
name: X
version: 1.0.0
fields:
  - name: a
    type: string
    rules:
      - kind: custom
`))
	if err == nil || !strings.Contains(err.Error(), "custom") {
		t.Fatalf("expected custom-rule rejection, got %v", err)
	}

	_, err = schema.LoadYAML([]byte(`
name: X
version: 1.0.0
fields:
  - name: a
    type: string
    rules:
      - kind: sparkles
`))
	if err == nil {
		t.Fatalf("expected unknown-kind rejection")
	}
}
