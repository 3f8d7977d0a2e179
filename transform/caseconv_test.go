package transform_test

import (
	"testing"

	"github.com/chanuka/bound/transform"
)

func TestSnakeToCamel(t *testing.T) {
	cases := map[string]string{
		"user_id":      "userId",
		"created_at":   "createdAt",
		"content":      "content",
		"bill_number":  "billNumber",
		"_meta":        "_meta",
		"trailing_":    "trailing_",
		"a_b_c":        "aBC",
		"already_done": "alreadyDone",
	}
	for in, want := range cases {
		if got := transform.SnakeToCamel(in); got != want {
			t.Errorf("SnakeToCamel(%q) = %q, want %q", in, got, want)
		}
	}
}
