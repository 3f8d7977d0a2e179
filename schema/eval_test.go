package schema_test

import (
	"testing"

	bound "github.com/chanuka/bound"
	"github.com/chanuka/bound/schema"
)

func commentSchema(t *testing.T) *schema.Schema {
	t.Helper()
	return schema.New("Comment", "1.0.0").
		Field(schema.String("content").Required().MinLength(1).MaxLength(40)).
		Field(schema.String("email").Required().Format(schema.FormatEmail)).
		Field(schema.Bool("anonymous").Default(false)).
		Field(schema.Integer("score").Min(0).Max(100)).
		Field(schema.String("status").Enum("visible", "hidden")).
		MustBuild()
}

func TestEval_SuccessNormalizesEmail(t *testing.T) {
	s := commentSchema(t)
	out, iss := s.Eval(map[string]any{
		"content": "hello",
		"email":   "FOO@Bar.com",
	}, schema.EvalOpt{})
	if iss != nil {
		t.Fatalf("unexpected issues: %v", iss)
	}
	if out["email"] != "foo@bar.com" {
		t.Fatalf("email not lowercased: %v", out["email"])
	}
	if out["anonymous"] != false {
		t.Fatalf("default not applied: %v", out["anonymous"])
	}
}

func TestEval_RequiredMissing(t *testing.T) {
	s := commentSchema(t)
	_, iss := s.Eval(map[string]any{"email": "a@b.co"}, schema.EvalOpt{})
	if len(iss) != 1 || iss[0].Code != bound.CodeRequired || iss[0].Path != "/content" {
		t.Fatalf("unexpected issues: %+v", iss)
	}
}

func TestEval_CollectsAllIssuesByDefault(t *testing.T) {
	s := commentSchema(t)
	_, iss := s.Eval(map[string]any{
		"content": "",
		"email":   "not-an-email",
		"score":   int64(400),
	}, schema.EvalOpt{})
	if len(iss) != 3 {
		t.Fatalf("expected 3 issues, got %d: %v", len(iss), iss)
	}
}

func TestEval_FailFastStopsEarly(t *testing.T) {
	s := commentSchema(t)
	_, iss := s.Eval(map[string]any{
		"content": "",
		"email":   "not-an-email",
	}, schema.EvalOpt{FailFast: true})
	if len(iss) != 1 {
		t.Fatalf("expected 1 issue under fail-fast, got %d", len(iss))
	}
}

func TestEval_UnknownKeys(t *testing.T) {
	s := commentSchema(t)
	in := map[string]any{"content": "x", "email": "a@b.co", "extra": 1}

	out, iss := s.Eval(in, schema.EvalOpt{})
	if iss != nil {
		t.Fatalf("pass-through mode must not fail: %v", iss)
	}
	if _, ok := out["extra"]; !ok {
		t.Fatalf("unknown key dropped without strip option")
	}

	out, iss = s.Eval(in, schema.EvalOpt{StripUnknown: true})
	if iss != nil {
		t.Fatalf("strip mode must not fail: %v", iss)
	}
	if _, ok := out["extra"]; ok {
		t.Fatalf("unknown key survived strip")
	}

	_, iss = s.Eval(in, schema.EvalOpt{DenyUnknown: true})
	if len(iss) != 1 || iss[0].Code != bound.CodeUnknownKey {
		t.Fatalf("deny mode must report unknown key, got %v", iss)
	}
}

func TestEval_NullHandling(t *testing.T) {
	s := schema.New("Bill", "1.0.0").
		Field(schema.String("summary").Nullable()).
		Field(schema.String("title").Required()).
		MustBuild()

	out, iss := s.Eval(map[string]any{"title": "T", "summary": nil}, schema.EvalOpt{})
	if iss != nil {
		t.Fatalf("nullable null must pass: %v", iss)
	}
	if v, ok := out["summary"]; !ok || v != nil {
		t.Fatalf("null must survive normalization: %v", out)
	}

	_, iss = s.Eval(map[string]any{"title": nil}, schema.EvalOpt{})
	if len(iss) != 1 || iss[0].Code != bound.CodeInvalidType {
		t.Fatalf("non-nullable null must fail with invalid_type: %v", iss)
	}
}

func TestEval_NestedPathsInIssues(t *testing.T) {
	s2 := schema.New("Bill", "1.0.0").
		Field(schema.Array("sponsors", schema.String("id").Format(schema.FormatUUID)).MinItems(1)).
		MustBuild()

	_, iss := s2.Eval(map[string]any{"sponsors": []any{"6f1e0b38-0a90-4f4d-9af8-1a2b3c4d5e6f", "nope"}}, schema.EvalOpt{})
	if len(iss) != 1 || iss[0].Path != "/sponsors/1" {
		t.Fatalf("expected issue at /sponsors/1, got %+v", iss)
	}

	_, iss = s2.Eval(map[string]any{"sponsors": []any{}}, schema.EvalOpt{})
	if len(iss) != 1 || iss[0].Code != bound.CodeTooShort {
		t.Fatalf("expected minItems violation, got %+v", iss)
	}
}

func TestEval_IntegerRejectsFraction(t *testing.T) {
	s := commentSchema(t)
	_, iss := s.Eval(map[string]any{"content": "x", "email": "a@b.co", "score": 3.5}, schema.EvalOpt{})
	if len(iss) != 1 || iss[0].Code != bound.CodeInvalidType {
		t.Fatalf("fractional integer must fail: %v", iss)
	}
}

func TestEval_Idempotent(t *testing.T) {
	s := commentSchema(t)
	in := map[string]any{"content": "hello", "email": "FOO@Bar.com", "score": 10}
	first, iss := s.Eval(in, schema.EvalOpt{})
	if iss != nil {
		t.Fatalf("unexpected issues: %v", iss)
	}
	second, iss := s.Eval(first, schema.EvalOpt{})
	if iss != nil {
		t.Fatalf("re-validating normalized output must succeed: %v", iss)
	}
	if second["email"] != first["email"] || second["score"] != first["score"] {
		t.Fatalf("normalization not idempotent: %v vs %v", first, second)
	}
}

func TestEval_CustomRule(t *testing.T) {
	s := schema.New("User", "1.0.0").
		Field(schema.String("handle").Custom("no_admin", func(v any) bool {
			sv, _ := v.(string)
			return sv != "admin"
		})).
		MustBuild()
	_, iss := s.Eval(map[string]any{"handle": "admin"}, schema.EvalOpt{})
	if len(iss) != 1 || iss[0].Code != bound.CodeCustomRule || iss[0].Rule != "no_admin" {
		t.Fatalf("unexpected issues: %+v", iss)
	}
}
