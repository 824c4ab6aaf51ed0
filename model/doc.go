// Package model contains the in-memory representation of the claims domain:
// the claim aggregate with its status machine, the policy and user entities
// it references, and the lifecycle notification payloads emitted by the
// external orchestration engine. The root model package simply aggregates
// those building blocks so that they can be referenced from other parts of
// the code base with a single import.
package model
