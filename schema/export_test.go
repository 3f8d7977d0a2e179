package schema_test

import (
	"strings"
	"testing"

	"github.com/chanuka/bound/schema"
)

func TestExport_ProjectsRules(t *testing.T) {
	s := schema.New("Comment", "1.0.0").
		Field(schema.String("content").Required().MinLength(1).MaxLength(40)).
		Field(schema.String("email").Format(schema.FormatEmail)).
		Field(schema.Integer("score").Min(0).Max(100)).
		Field(schema.Array("tags", schema.String("tag")).MaxItems(5)).
		MustBuild()

	js := s.Export()
	if js.Type != "object" {
		t.Fatalf("root must export as object")
	}
	content := js.Properties["content"]
	if content == nil || content.Type != "string" || *content.MinLength != 1 || *content.MaxLength != 40 {
		t.Fatalf("content projection wrong: %+v", content)
	}
	if js.Properties["email"].Format != schema.FormatEmail {
		t.Fatalf("format lost")
	}
	score := js.Properties["score"]
	if score.Type != "integer" || *score.Minimum != 0 || *score.Maximum != 100 {
		t.Fatalf("score projection wrong: %+v", score)
	}
	tags := js.Properties["tags"]
	if tags.Type != "array" || tags.Items == nil || *tags.MaxItems != 5 {
		t.Fatalf("tags projection wrong: %+v", tags)
	}
	if len(js.Required) != 1 || js.Required[0] != "content" {
		t.Fatalf("required projection wrong: %v", js.Required)
	}
}

func TestExportJSON_Renders(t *testing.T) {
	s := schema.New("User", "1.0.0").
		Field(schema.String("email").Required().Format(schema.FormatEmail)).
		MustBuild()
	b, err := s.ExportJSON()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(string(b), `"format": "email"`) {
		t.Fatalf("rendered json missing format: %s", b)
	}
}
