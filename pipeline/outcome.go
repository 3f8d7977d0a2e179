// Package pipeline sequences validation and transformation for one logical
// operation on one entity type. No unvalidated data reaches storage, and no
// untransformed storage data reaches the wire; the stages run strictly in
// order within one invocation.
package pipeline

import (
	"github.com/chanuka/bound"
	"github.com/chanuka/bound/storage"
	"github.com/chanuka/bound/transform"
)

// State names the stage a pipeline invocation reached. Terminal states are
// Sent, ValidationFailed, and PersistenceRejected; everything else is a
// waypoint recorded for logging.
type State string

const (
	StateReceived            State = "received"
	StateClientValidated     State = "client_validated"
	StateDeserialized        State = "deserialized"
	StateServerValidated     State = "server_validated"
	StateDomainTransformed   State = "domain_transformed"
	StateModerated           State = "moderated"
	StatePersistenceOk       State = "persistence_ok"
	StateReverseTransformed  State = "reverse_transformed"
	StateSerialized          State = "serialized"
	StateSent                State = "sent"
	StateValidationFailed    State = "validation_failed"
	StatePersistenceRejected State = "persistence_rejected"
)

// Outcome is the result of one pipeline invocation. Validation failures and
// persistence rejections are expected outcomes carried here as values, never
// as errors; callers must branch on State.
type Outcome[E any] struct {
	State State
	// Entity is the domain value served back, set only when State is Sent.
	Entity E
	// Payload is the serialized wire response, set only when State is Sent.
	Payload []byte
	// Errors carries the field-addressable issues when State is
	// ValidationFailed, or the translated conflict when State is
	// PersistenceRejected.
	Errors bound.Issues
	// Conflict names the storage rule behind a PersistenceRejected outcome.
	Conflict *storage.ConstraintError
}

// OK reports whether the invocation reached Sent.
func (o Outcome[E]) OK() bool { return o.State == StateSent }

// validationFailed builds the terminal outcome for an authoritative
// validation failure.
func validationFailed[E any](issues bound.Issues) Outcome[E] {
	return Outcome[E]{State: StateValidationFailed, Errors: issues}
}

// persistenceRejected translates a constraint rejection into the terminal
// conflict outcome. Where the driver names a column, the issue path bridges
// its snake_case name into the wire convention so the response stays
// field-addressable for clients.
func persistenceRejected[E any](ce *storage.ConstraintError) Outcome[E] {
	code := bound.CodeConflict
	switch ce.Kind {
	case storage.ConstraintUnique:
		code = bound.CodeUniqueness
	case storage.ConstraintForeignKey:
		code = bound.CodeForeignKey
	case storage.ConstraintStaleVersion:
		code = bound.CodeStaleVersion
	}
	path := "/"
	if ce.Column != "" {
		path = "/" + transform.SnakeToCamel(ce.Column)
	}
	return Outcome[E]{
		State:    StatePersistenceRejected,
		Conflict: ce,
		Errors: bound.Issues{{
			Path:    path,
			Code:    code,
			Message: ce.Error(),
		}},
	}
}
