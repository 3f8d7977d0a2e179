// Package storage defines the persistence contract the pipeline writes
// through. Implementations report expected rejections as ConstraintError so
// callers can tell "the database said no" apart from validation failures and
// from infrastructure faults.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound reports a read or write against an identifier that has no row.
var ErrNotFound = errors.New("storage: record not found")

// ConstraintKind classifies which database rule rejected a write.
type ConstraintKind string

const (
	// ConstraintUnique means a uniqueness rule rejected the write.
	ConstraintUnique ConstraintKind = "unique"
	// ConstraintForeignKey means a referenced row does not exist.
	ConstraintForeignKey ConstraintKind = "foreign_key"
	// ConstraintCheck means a CHECK rule rejected the value.
	ConstraintCheck ConstraintKind = "check"
	// ConstraintStaleVersion means the optimistic concurrency token did not
	// match the current row version.
	ConstraintStaleVersion ConstraintKind = "stale_version"
)

// ConstraintError reports a write the database rejected. This is an expected
// outcome of concurrent use, not an infrastructure fault; pipelines surface
// it as a persistence rejection rather than an error.
type ConstraintError struct {
	Kind   ConstraintKind
	Table  string
	Column string // empty when the driver does not name one
	Cause  error
}

func (e *ConstraintError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("storage: %s constraint on %s.%s", e.Kind, e.Table, e.Column)
	}
	return fmt.Sprintf("storage: %s constraint on %s", e.Kind, e.Table)
}

func (e *ConstraintError) Unwrap() error { return e.Cause }

// AsConstraint extracts a ConstraintError from err, if any.
func AsConstraint(err error) (*ConstraintError, bool) {
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsStaleVersion reports whether err is a stale optimistic concurrency token.
func IsStaleVersion(err error) bool {
	ce, ok := AsConstraint(err)
	return ok && ce.Kind == ConstraintStaleVersion
}

// RecordStore persists storage records of one entity. Update takes the
// record's version as the optimistic concurrency token: the write applies
// only if the stored version still matches, and the returned record carries
// the incremented version. A mismatch is a ConstraintStaleVersion error.
type RecordStore[R any] interface {
	Create(ctx context.Context, rec R) error
	Get(ctx context.Context, id string) (R, error)
	Update(ctx context.Context, rec R) (R, error)
	Delete(ctx context.Context, id string) error
}
