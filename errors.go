package edm

import "errors"

// Derivation failures fall into two categories, both fatal at construction:
// configuration errors (empty input set, unsupported field types,
// contradictory metadata) and referential-integrity errors (an association
// end or type reference that resolves to nothing at finishing time).
// Lookup misses on the provider are not errors; they return absent results.
var (
	// ErrConfiguration wraps errors caused by the annotated input itself.
	ErrConfiguration = errors.New("configuration error")

	// ErrIntegrity wraps errors found by the finishing pass's referential
	// checks.
	ErrIntegrity = errors.New("referential integrity error")
)
