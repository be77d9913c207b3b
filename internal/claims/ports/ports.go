// Package ports defines the collaborator interfaces the claim registry calls.
//
// The registry trusts collaborator responses and calls them synchronously.
// Implementations live outside this repository; tests use the generated mocks
// in ports/mocks or the scripted fakes in pkg/testutil.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"claimledger/internal/claims/models"
	id "claimledger/pkg/domain"
	"claimledger/pkg/platform/audit"
)

// PolicyDetails is the policy registry's view of a policy (port model).
type PolicyDetails struct {
	Holder        id.Principal
	CoverageLimit uint64
	Active        bool
}

// IncidentDetails is the incident registry's view of an incident (port model).
type IncidentDetails struct {
	Reporter     id.Principal
	Severity     uint64
	LocationHash string
	ReportedAt   id.Height
}

// Payout instructs the distributor to pay a verified claim.
type Payout struct {
	Recipient id.Principal
	Amount    id.Amount
}

// Dispute asks the resolver to open a dispute for a claim.
type Dispute struct {
	ClaimID id.ClaimID
	Reason  string
}

// PolicyRegistry looks up policies.
type PolicyRegistry interface {
	// PolicyDetails returns the policy held by holder under policyID.
	// Returns nil, nil when the registry has no such policy.
	PolicyDetails(ctx context.Context, holder id.Principal, policyID id.PolicyID) (*PolicyDetails, error)
}

// IncidentRegistry looks up reported incidents.
type IncidentRegistry interface {
	// IncidentDetails returns the incident, or nil, nil when it does not exist.
	IncidentDetails(ctx context.Context, incidentID id.IncidentID) (*IncidentDetails, error)
}

// VerificationHook is notified once a claim has entered processing.
type VerificationHook interface {
	InitiateVerification(ctx context.Context, claim models.Claim) error
}

// PayoutDistributor pays verified claims.
type PayoutDistributor interface {
	ExecutePayout(ctx context.Context, payout Payout) error
}

// DisputeResolver opens disputes and returns the resolver's dispute id.
type DisputeResolver interface {
	InitiateDispute(ctx context.Context, dispute Dispute) (id.DisputeID, error)
}

// Clock supplies logical time for submission timestamps.
type Clock interface {
	Height(ctx context.Context) id.Height
}

// AuditPublisher emits audit events for claim transitions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
