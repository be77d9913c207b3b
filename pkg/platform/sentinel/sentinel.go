package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// They describe the state of a record, not a business rule:
// - ErrNotFound: no record exists at the key
// - ErrConflict: the key (or a uniqueness index entry) is already taken
// - ErrInvalidState: record is in the wrong state for the requested write
//
// Business-rule failures use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
)
