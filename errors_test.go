package bound_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	bound "github.com/chanuka/bound"
)

func TestIssues_ErrorSummary(t *testing.T) {
	iss := bound.Issues{
		{Path: "/a", Code: bound.CodeInvalidType},
		{Path: "/b", Code: bound.CodeUnknownKey},
		{Path: "/c", Code: bound.CodeTooShort},
		{Path: "/d", Code: bound.CodeTooLong},
	}
	s := iss.Error()
	if s == "" {
		t.Fatalf("expected non-empty error summary")
	}
	if !strings.Contains(s, "total 4") {
		t.Fatalf("expected truncation note, got %q", s)
	}
}

func TestAsIssues_Wrapped(t *testing.T) {
	iss := bound.SingleIssue(bound.CodeRequired, "missing")
	wrapped := fmt.Errorf("outer: %w", error(iss))
	got, ok := bound.AsIssues(wrapped)
	if !ok {
		t.Fatalf("expected AsIssues to unwrap")
	}
	if len(got) != 1 || got[0].Code != bound.CodeRequired {
		t.Fatalf("unexpected issues: %+v", got)
	}
}

func TestAsIssues_Nil(t *testing.T) {
	if _, ok := bound.AsIssues(nil); ok {
		t.Fatalf("nil error must not yield issues")
	}
}

func TestKindPredicates(t *testing.T) {
	var err error = &bound.SchemaNotFoundError{Name: "Comment", Version: "9.9.9"}
	if !bound.IsSchemaNotFound(err) {
		t.Fatalf("expected schema-not-found kind")
	}
	if bound.IsTimeout(err) {
		t.Fatalf("kinds must not overlap")
	}

	err = fmt.Errorf("wrap: %w", &bound.TimeoutError{Stage: "Persist", Deadline: time.Second})
	if !bound.IsTimeout(err) {
		t.Fatalf("expected timeout kind through wrapping")
	}

	err = &bound.TransformContractError{Entity: "Bill", Field: "/status", Reason: "nil column"}
	if !bound.IsTransformContract(err) {
		t.Fatalf("expected transform-contract kind")
	}

	err = &bound.ModerationServiceError{Status: "maybe", Confidence: 3.2}
	if !bound.IsModerationFailure(err) {
		t.Fatalf("expected moderation kind")
	}
	if bound.IsModerationFailure(errors.New("plain")) {
		t.Fatalf("plain error must not match")
	}
}
