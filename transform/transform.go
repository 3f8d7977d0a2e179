package transform

import (
	"github.com/rs/zerolog"

	"github.com/chanuka/bound"
)

// Transformer converts between a storage record R and a domain entity E.
// Implementations must satisfy the round-trip law: transforming to the other
// layer and back yields a semantically equal value. CheckRoundTrip exercises
// the law in tests.
type Transformer[R, E any] interface {
	// ToDomain lifts a storage record into the domain. The record is assumed
	// to have passed validation; data the schema should have made impossible
	// is a contract violation, not a validation failure.
	ToDomain(rec R) (E, error)
	// ToStorage lowers a domain entity into its storage record.
	ToStorage(ent E) (R, error)
}

// Strictness selects how a transformer reacts to out-of-contract data.
type Strictness int

const (
	// Strict surfaces a TransformContractError and aborts the conversion.
	Strict Strictness = iota
	// Lenient substitutes the zero value for the offending field, logs the
	// drift, and continues. Reads of legacy rows use this to keep serving.
	Lenient
)

// Policy carries the strictness mode and the logger lenient conversions
// report through. The zero value is Strict with no logging.
type Policy struct {
	Mode   Strictness
	Logger zerolog.Logger
}

// Violation resolves a contract violation under the policy. Strict returns
// the error for the caller to propagate; Lenient logs it and returns nil so
// the caller falls back to the zero value for the field.
func (p Policy) Violation(entity, field, reason string) error {
	err := &bound.TransformContractError{Entity: entity, Field: field, Reason: reason}
	if p.Mode == Strict {
		return err
	}
	p.Logger.Error().
		Str("entity", entity).
		Str("field", field).
		Str("reason", reason).
		Msg("transform contract drift, substituting zero value")
	return nil
}

// CheckRoundTrip verifies the round-trip law for one entity through its
// transformer using eq as the semantic equality on E. It reports the first
// direction that fails.
func CheckRoundTrip[R, E any](tr Transformer[R, E], ent E, eq func(a, b E) bool) error {
	rec, err := tr.ToStorage(ent)
	if err != nil {
		return err
	}
	back, err := tr.ToDomain(rec)
	if err != nil {
		return err
	}
	if !eq(ent, back) {
		return &bound.TransformContractError{Entity: "", Field: "", Reason: "round trip changed the entity"}
	}
	return nil
}

// CheckRecordRoundTrip verifies the record-direction round-trip law: lifting
// a legal storage record into the domain and lowering it again must yield a
// storage-equivalent record. eq is the storage equivalence on R, which may be
// looser than byte equality where storage admits more than one spelling of
// the same value.
func CheckRecordRoundTrip[R, E any](tr Transformer[R, E], rec R, eq func(a, b R) bool) error {
	ent, err := tr.ToDomain(rec)
	if err != nil {
		return err
	}
	back, err := tr.ToStorage(ent)
	if err != nil {
		return err
	}
	if !eq(rec, back) {
		return &bound.TransformContractError{Entity: "", Field: "", Reason: "round trip changed the record"}
	}
	return nil
}
