// Package domainerrors carries the coded errors returned by services.
//
// Stores return sentinel errors (pkg/platform/sentinel); services translate
// them into an *Error carrying one Code. Callers branch on the code with
// HasCode rather than matching messages.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a failure kind. Codes are stable and safe to log.
type Code string

// Generic codes.
const (
	CodeInternal     Code = "internal_error"
	CodeInvalidInput Code = "invalid_input"
	CodeTimeout      Code = "timeout"
)

// Claim lifecycle codes.
const (
	// Authorization
	CodeUnauthorized         Code = "unauthorized"
	CodeUnauthorizedVerifier Code = "unauthorized_verifier"
	CodeNotPolicyholder      Code = "not_policyholder"

	// Configuration
	CodeSystemNotConfigured Code = "system_not_configured"

	// Duplicate / state conflict
	CodeClaimAlreadyProcessed Code = "claim_already_processed"
	CodeDisputeInProgress     Code = "dispute_in_progress"

	// Not found / mismatch
	CodeClaimDenied         Code = "claim_denied"
	CodeIncidentNotFound    Code = "incident_not_found"
	CodeIncidentNotMatching Code = "incident_not_matching"
	CodePolicyInvalid       Code = "policy_invalid"

	// Business rule
	CodeInvalidCoverage Code = "invalid_coverage"

	// Downstream
	CodeVerificationFailed    Code = "verification_failed"
	CodePayoutFailed          Code = "payout_failed"
	CodeBatchProcessingFailed Code = "batch_processing_failed"
)

// ledgerCodes are the numeric result codes the claim ledger has always
// reported. Ledger-facing collaborators still key on them.
var ledgerCodes = map[Code]uint32{
	CodePolicyInvalid:         100,
	CodeIncidentNotFound:      101,
	CodeClaimDenied:           102,
	CodeNotPolicyholder:       103,
	CodeClaimAlreadyProcessed: 104,
	CodeVerificationFailed:    105,
	CodePayoutFailed:          106,
	CodeDisputeInProgress:     107,
	CodeInvalidCoverage:       108,
	CodeIncidentNotMatching:   109,
	CodeUnauthorizedVerifier:  110,
	CodeUnauthorized:          500,
	CodeSystemNotConfigured:   600,
	CodeBatchProcessingFailed: 700,
}

// LedgerCode returns the numeric ledger result code for c, or 0 when the code
// has no ledger equivalent.
func LedgerCode(c Code) uint32 {
	return ledgerCodes[c]
}

// Error is a coded domain error. Err holds the underlying cause, if any.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to err. The cause stays reachable through
// errors.Is and errors.As.
func Wrap(err error, code Code, msg string) error {
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the code of the outermost *Error in err's chain, or
// CodeInternal when there is none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the outermost *Error in err's chain has code.
func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	var de *Error
	if !errors.As(err, &de) {
		return false
	}
	return de.Code == code
}

// Is is shorthand for HasCode.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}
