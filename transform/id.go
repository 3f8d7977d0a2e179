// Package transform defines the contract between storage records and domain
// entities: typed identifiers, paired ToDomain/ToStorage conversions, and the
// snake_case/camelCase bridge between the two layers.
package transform

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/chanuka/bound"
)

// Kind is a marker carried by ID so identifiers of different entities are
// distinct types. Implementations are empty structs; Entity returns the
// entity name used in error reporting.
type Kind interface {
	Entity() string
}

// ID is an identifier branded with the entity it belongs to. An ID[UserKind]
// and an ID[BillKind] never compare or assign to each other even though both
// wrap the same string representation.
type ID[K Kind] struct {
	raw string
}

// NewID mints a fresh random identifier.
func NewID[K Kind]() ID[K] {
	return ID[K]{raw: uuid.NewString()}
}

// ParseID brands an existing raw identifier. It rejects the empty string and
// anything uuid cannot parse; storage rows carry raw strings and this is the
// only way they re-enter the domain layer.
func ParseID[K Kind](raw string) (ID[K], error) {
	var k K
	if raw == "" {
		return ID[K]{}, &bound.TransformContractError{Entity: k.Entity(), Field: "id", Reason: "empty identifier"}
	}
	if _, err := uuid.Parse(raw); err != nil {
		return ID[K]{}, &bound.TransformContractError{Entity: k.Entity(), Field: "id", Reason: fmt.Sprintf("malformed identifier %q", raw)}
	}
	return ID[K]{raw: raw}, nil
}

// String returns the raw representation for the storage layer.
func (id ID[K]) String() string { return id.raw }

// MarshalText serializes the identifier as its raw string.
func (id ID[K]) MarshalText() ([]byte, error) { return []byte(id.raw), nil }

// UnmarshalText parses a wire identifier. Empty text yields the zero
// identifier; anything else goes through ParseID.
func (id *ID[K]) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*id = ID[K]{}
		return nil
	}
	parsed, err := ParseID[K](string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// IsZero reports whether the identifier was never set.
func (id ID[K]) IsZero() bool { return id.raw == "" }
