package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	dErrors "claimledger/pkg/domain-errors"
)

// maxPrincipalLength bounds identities accepted at trust boundaries.
const maxPrincipalLength = 128

// Principal identifies a caller or a collaborator service. The zero value
// means "unset".
type Principal string

// ParsePrincipal validates an identity received from outside the process.
// Leading and trailing whitespace is trimmed; the remainder must be non-empty,
// printable and free of interior whitespace.
func ParsePrincipal(s string) (Principal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "principal must not be empty")
	}
	if len(s) > maxPrincipalLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "principal exceeds maximum length")
	}
	if !utf8.ValidString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "principal contains invalid characters")
	}
	for _, r := range s {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "principal contains invalid characters")
		}
	}
	return Principal(s), nil
}

func (p Principal) String() string { return string(p) }

// IsZero reports whether the principal is unset.
func (p Principal) IsZero() bool { return p == "" }

type (
	PolicyID   uint64
	IncidentID uint64
	ClaimID    uint64
	DisputeID  uint64
	// Amount is a payout amount in the ledger's smallest unit.
	Amount uint64
	// Height is logical time, e.g. a block height.
	Height uint64
)

// ClaimKey addresses a claim slot. It is comparable and used directly as a
// map key.
type ClaimKey struct {
	PolicyID   PolicyID
	IncidentID IncidentID
}

func (k ClaimKey) String() string {
	return fmt.Sprintf("policy=%d/incident=%d", k.PolicyID, k.IncidentID)
}

// SubmissionKey identifies one caller's submission against a claim slot.
// Entries keyed by it are permanent.
type SubmissionKey struct {
	Submitter  Principal
	PolicyID   PolicyID
	IncidentID IncidentID
}

// ClaimKey projects the submission onto its claim slot.
func (k SubmissionKey) ClaimKey() ClaimKey {
	return ClaimKey{PolicyID: k.PolicyID, IncidentID: k.IncidentID}
}

func (k SubmissionKey) String() string {
	return fmt.Sprintf("submitter=%s/%s", k.Submitter, k.ClaimKey())
}
