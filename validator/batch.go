package validator

import (
	"context"

	bound "github.com/chanuka/bound"
)

// BatchFailure records one rejected input with its original position.
type BatchFailure struct {
	Index  int
	Input  any
	Errors bound.Issues
}

// BatchResult partitions a batch into normalized values (order-preserving)
// and failures carrying their original index.
type BatchResult struct {
	Valid   []map[string]any
	Invalid []BatchFailure
}

// ValidateBatch validates each input independently. A batch never fails
// wholesale; one bad record never blocks the rest. The returned error is
// reserved for programmer errors (unknown schema name, cancelled context).
func (v *Validator) ValidateBatch(ctx context.Context, name string, inputs []any, opt Options) (BatchResult, error) {
	s, err := v.reg.ResolveLatest(name)
	if err != nil {
		return BatchResult{}, err
	}
	var out BatchResult
	for i, in := range inputs {
		res, err := v.run(ctx, s, in, opt)
		if err != nil {
			return BatchResult{}, err
		}
		if res.OK {
			out.Valid = append(out.Valid, res.Value)
			continue
		}
		out.Invalid = append(out.Invalid, BatchFailure{Index: i, Input: in, Errors: res.Errors})
	}
	return out, nil
}
