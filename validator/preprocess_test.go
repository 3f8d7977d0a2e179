package validator_test

import (
	"reflect"
	"testing"

	"github.com/chanuka/bound/validator"
)

func TestPreprocess_TrimThenBoolThenNumber(t *testing.T) {
	cases := []struct {
		in   any
		want any
	}{
		{"  hello  ", "hello"},
		{"true", true},
		{"TRUE", true},
		{" yes ", true},
		{"no", false},
		// "1"/"0" are ambiguous; the bool pass runs first by policy.
		{"1", true},
		{"0", false},
		{"42", 42.0},
		{"-3.5", -3.5},
		{"+7", 7.0},
		{"3.5.1", "3.5.1"},
		{"", ""},
		{42, 42},
		{true, true},
		{nil, nil},
	}
	for _, c := range cases {
		if got := validator.Preprocess(c.in); got != c.want {
			t.Errorf("Preprocess(%#v) = %#v, want %#v", c.in, got, c.want)
		}
	}
}

func TestPreprocess_RecursesIntoContainers(t *testing.T) {
	in := map[string]any{
		"flag":  " true ",
		"count": "10",
		"tags":  []any{" a ", "false"},
		"nested": map[string]any{
			"score": "2.5",
		},
	}
	want := map[string]any{
		"flag":  true,
		"count": 10.0,
		"tags":  []any{"a", false},
		"nested": map[string]any{
			"score": 2.5,
		},
	}
	if got := validator.Preprocess(in); !reflect.DeepEqual(got, want) {
		t.Fatalf("Preprocess = %#v, want %#v", got, want)
	}
}
