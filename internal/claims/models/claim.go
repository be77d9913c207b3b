package models

import (
	id "claimledger/pkg/domain"
	dErrors "claimledger/pkg/domain-errors"
)

// ClaimStatus is the lifecycle state of a claim.
type ClaimStatus string

const (
	StatusPending    ClaimStatus = "pending"
	StatusProcessing ClaimStatus = "processing"
	StatusVerified   ClaimStatus = "verified"
	StatusDenied     ClaimStatus = "denied"
	StatusDisputed   ClaimStatus = "disputed"
	StatusCanceled   ClaimStatus = "canceled"
)

func (s ClaimStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusVerified, StatusDenied, StatusDisputed, StatusCanceled:
		return true
	}
	return false
}

func (s ClaimStatus) String() string { return string(s) }

// Claim is the aggregate root of the registry.
//
// Invariants:
//   - ID, Policyholder, PolicyID, IncidentID, Amount and Timestamp are fixed
//     at submission
//   - Verified changes only through verification or cancellation
//   - Disputed becomes true only through a dispute and returns to false only
//     through cancellation
//   - claims are never deleted; canceled and denied claims stay queryable
type Claim struct {
	ID           id.ClaimID    `json:"claim_id"`
	Policyholder id.Principal  `json:"policyholder"`
	PolicyID     id.PolicyID   `json:"policy_id"`
	IncidentID   id.IncidentID `json:"incident_id"`
	Amount       id.Amount     `json:"amount"`
	Status       ClaimStatus   `json:"status"`
	Verified     bool          `json:"verified"`
	Disputed     bool          `json:"disputed"`
	// Timestamp is the logical time of submission.
	Timestamp id.Height `json:"timestamp"`
}

// NewClaim builds a freshly submitted claim.
func NewClaim(claimID id.ClaimID, sub id.SubmissionKey, amount id.Amount, at id.Height) *Claim {
	return &Claim{
		ID:           claimID,
		Policyholder: sub.Submitter,
		PolicyID:     sub.PolicyID,
		IncidentID:   sub.IncidentID,
		Amount:       amount,
		Status:       StatusPending,
		Timestamp:    at,
	}
}

func (c *Claim) Key() id.ClaimKey {
	return id.ClaimKey{PolicyID: c.PolicyID, IncidentID: c.IncidentID}
}

// Clone returns a copy that shares nothing with c.
func (c *Claim) Clone() *Claim {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// CanProcess enforces the claim-side half of the coverage rule: a disputed
// claim cannot be processed.
func (c *Claim) CanProcess() error {
	if c.Disputed {
		return dErrors.New(dErrors.CodeInvalidCoverage, "claim is disputed")
	}
	return nil
}

// ApplyProcessing moves the claim into processing. Other fields are kept.
func (c *Claim) ApplyProcessing() {
	c.Status = StatusProcessing
}

// ApplyVerification records the verifier's outcome.
func (c *Claim) ApplyVerification(isVerified bool) {
	if isVerified {
		c.Status = StatusVerified
	} else {
		c.Status = StatusDenied
	}
	c.Verified = isVerified
}

// CanDispute rejects a second dispute while one is recorded.
func (c *Claim) CanDispute() error {
	if c.Disputed {
		return dErrors.New(dErrors.CodeDisputeInProgress, "claim already disputed")
	}
	return nil
}

func (c *Claim) ApplyDispute() {
	c.Status = StatusDisputed
	c.Disputed = true
}

// ApplyCancel cancels the claim and clears both flags whatever their prior
// values.
func (c *Claim) ApplyCancel() {
	c.Status = StatusCanceled
	c.Verified = false
	c.Disputed = false
}
