package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("invalid_type", nil); msg == "invalid_type" || msg == "" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("invalid_type", nil); msg == "invalid type" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_UnknownCodeFallsBackToCode(t *testing.T) {
	if msg := T("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("unknown code must echo back, got %q", msg)
	}
}

func TestTranslator_CustomImplementation(t *testing.T) {
	SetTranslator(stubTranslator{})
	defer SetTranslator(nil)
	if msg := T("required", nil); msg != "stub" {
		t.Fatalf("custom translator not consulted, got %q", msg)
	}
}

type stubTranslator struct{}

func (stubTranslator) Message(code string, data map[string]string) string { return "stub" }
