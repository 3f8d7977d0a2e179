package bound

import (
	"errors"
	"fmt"
	"time"
)

// SchemaNotFoundError reports a resolve against a name/version the registry
// does not hold. This is a configuration or programmer error, never a user
// input error; callers must not conflate it with a validation failure.
type SchemaNotFoundError struct {
	Name    string
	Version string // empty when resolving latest
}

func (e *SchemaNotFoundError) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("bound: schema %q not found (no non-deprecated version)", e.Name)
	}
	return fmt.Sprintf("bound: schema %q version %s not found", e.Name, e.Version)
}

// IsSchemaNotFound reports whether err carries a SchemaNotFoundError.
func IsSchemaNotFound(err error) bool {
	var e *SchemaNotFoundError
	return errors.As(err, &e)
}

// TransformContractError reports that a transformer received data its paired
// schema should have made impossible. It signals schema/transformer drift.
type TransformContractError struct {
	Entity string
	Field  string
	Reason string
}

func (e *TransformContractError) Error() string {
	return fmt.Sprintf("bound: transform contract violated for %s at %s: %s", e.Entity, e.Field, e.Reason)
}

// IsTransformContract reports whether err carries a TransformContractError.
func IsTransformContract(err error) bool {
	var e *TransformContractError
	return errors.As(err, &e)
}

// TimeoutError reports a pipeline stage exceeding its deadline. The
// invocation's transaction, if any, has been rolled back in full.
type TimeoutError struct {
	Stage    string
	Deadline time.Duration
	Cause    error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("bound: stage %s exceeded deadline %s", e.Stage, e.Deadline)
}

func (e *TimeoutError) Unwrap() error { return e.Cause }

// IsTimeout reports whether err carries a TimeoutError.
func IsTimeout(err error) bool {
	var e *TimeoutError
	return errors.As(err, &e)
}

// ModerationServiceError reports that the external moderation collaborator
// failed or returned an out-of-contract value. The pipeline always treats
// this as "flagged", never as "approved".
type ModerationServiceError struct {
	Status     string  // status string as received, may be empty
	Confidence float64 // confidence as received, may be out of [0,1]
	Cause      error
}

func (e *ModerationServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("bound: moderation service failed: %v", e.Cause)
	}
	return fmt.Sprintf("bound: moderation response out of contract (status=%q confidence=%g)", e.Status, e.Confidence)
}

func (e *ModerationServiceError) Unwrap() error { return e.Cause }

// IsModerationFailure reports whether err carries a ModerationServiceError.
func IsModerationFailure(err error) bool {
	var e *ModerationServiceError
	return errors.As(err, &e)
}
