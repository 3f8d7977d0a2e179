package schema_test

import (
	"strings"
	"testing"

	"github.com/chanuka/bound/schema"
)

func TestBuilder_DuplicateFieldRejected(t *testing.T) {
	_, err := schema.New("Comment", "1.0.0").
		Field(schema.String("content")).
		Field(schema.String("content")).
		Build()
	if err == nil || !strings.Contains(err.Error(), "duplicate field") {
		t.Fatalf("expected duplicate-field error, got %v", err)
	}
}

func TestBuilder_BadPatternFailsBuild(t *testing.T) {
	_, err := schema.New("Comment", "1.0.0").
		Field(schema.String("content").Pattern("([")).
		Build()
	if err == nil {
		t.Fatalf("expected regexp compile error")
	}
}

func TestBuilder_UnknownFormatFailsBuild(t *testing.T) {
	_, err := schema.New("Comment", "1.0.0").
		Field(schema.String("content").Format("zipcode")).
		Build()
	if err == nil {
		t.Fatalf("expected unknown-format error")
	}
}

func TestBuilder_CustomRuleNeedsCheck(t *testing.T) {
	_, err := schema.New("Comment", "1.0.0").
		Field(schema.String("content").Custom("noop", nil)).
		Build()
	if err == nil {
		t.Fatalf("expected missing-check error")
	}
}

func TestBuilder_ArrayWithoutElemFailsBuild(t *testing.T) {
	_, err := schema.New("Bill", "1.0.0").
		Field(schema.Array("sponsors", nil)).
		Build()
	if err == nil {
		t.Fatalf("expected array-without-elem error")
	}
}

func TestBuilder_Identity(t *testing.T) {
	s := schema.New("Bill", "2.1.0").Field(schema.String("title")).MustBuild()
	if got := s.Identity(); got != "Bill@2.1.0" {
		t.Fatalf("unexpected identity %q", got)
	}
}
