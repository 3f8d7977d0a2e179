// Package bound provides the cross-layer validation and transformation core
// of the Chanuka civic-engagement platform:
//
//   - A stable error model via Issues (JSON Pointer, code, message)
//   - Typed failure kinds for the boundary taxonomy (schema-not-found,
//     transform-contract, persistence-constraint, timeout, moderation)
//   - PathRef helpers for building field-addressable issue paths
//
// Design policy:
//   - Keep only public APIs in the root package; put the engine under
//     schema/, registry/, validator/, transform/, pipeline/ and storage/.
//   - Expected outcomes (validation failure, constraint rejection) travel as
//     values; programmer errors (unknown schema, contract drift) are returned
//     as errors callers treat as fatal.
//   - Prefer black-box testing against public APIs.
package bound
