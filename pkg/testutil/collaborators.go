package testutil

import (
	"context"
	"sync"

	"claimledger/internal/claims/models"
	"claimledger/internal/claims/ports"
	id "claimledger/pkg/domain"
)

// Defaults returned by Collaborators until a test scripts otherwise.
const (
	DefaultCoverage = 1000000
	DefaultSeverity = 500000
	DefaultReporter = id.Principal("ST1REPORTER")
)

// Collaborators is a scripted stand-in for every external service the claim
// registry calls. By default every caller holds an active policy with
// DefaultCoverage, every incident exists with DefaultSeverity, and every hook
// succeeds. Calls are recorded for assertions.
type Collaborators struct {
	mu sync.Mutex

	policyFn   func(holder id.Principal, policyID id.PolicyID) (*ports.PolicyDetails, error)
	incidentFn func(incidentID id.IncidentID) (*ports.IncidentDetails, error)

	verifyErr  error
	payoutErr  error
	disputeErr error

	nextDisputeID id.DisputeID
	verifications []models.Claim
	payouts       []ports.Payout
	disputes      []ports.Dispute
}

func NewCollaborators() *Collaborators {
	return &Collaborators{
		policyFn: func(holder id.Principal, _ id.PolicyID) (*ports.PolicyDetails, error) {
			return &ports.PolicyDetails{Holder: holder, CoverageLimit: DefaultCoverage, Active: true}, nil
		},
		incidentFn: func(id.IncidentID) (*ports.IncidentDetails, error) {
			return &ports.IncidentDetails{Reporter: DefaultReporter, Severity: DefaultSeverity, LocationHash: "hash"}, nil
		},
		nextDisputeID: 1,
	}
}

// SetPolicies replaces the policy registry's answers.
func (c *Collaborators) SetPolicies(fn func(holder id.Principal, policyID id.PolicyID) (*ports.PolicyDetails, error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.policyFn = fn
}

// SetIncidents replaces the incident registry's answers.
func (c *Collaborators) SetIncidents(fn func(incidentID id.IncidentID) (*ports.IncidentDetails, error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.incidentFn = fn
}

// SetSeverity makes every incident exist with severity.
func (c *Collaborators) SetSeverity(severity uint64) {
	c.SetIncidents(func(id.IncidentID) (*ports.IncidentDetails, error) {
		return &ports.IncidentDetails{Reporter: DefaultReporter, Severity: severity, LocationHash: "hash"}, nil
	})
}

func (c *Collaborators) FailVerification(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verifyErr = err
}

func (c *Collaborators) FailPayout(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payoutErr = err
}

func (c *Collaborators) FailDispute(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disputeErr = err
}

func (c *Collaborators) PolicyDetails(_ context.Context, holder id.Principal, policyID id.PolicyID) (*ports.PolicyDetails, error) {
	c.mu.Lock()
	fn := c.policyFn
	c.mu.Unlock()
	return fn(holder, policyID)
}

func (c *Collaborators) IncidentDetails(_ context.Context, incidentID id.IncidentID) (*ports.IncidentDetails, error) {
	c.mu.Lock()
	fn := c.incidentFn
	c.mu.Unlock()
	return fn(incidentID)
}

func (c *Collaborators) InitiateVerification(_ context.Context, claim models.Claim) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.verifyErr != nil {
		return c.verifyErr
	}
	c.verifications = append(c.verifications, claim)
	return nil
}

func (c *Collaborators) ExecutePayout(_ context.Context, payout ports.Payout) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.payoutErr != nil {
		return c.payoutErr
	}
	c.payouts = append(c.payouts, payout)
	return nil
}

func (c *Collaborators) InitiateDispute(_ context.Context, dispute ports.Dispute) (id.DisputeID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disputeErr != nil {
		return 0, c.disputeErr
	}
	c.disputes = append(c.disputes, dispute)
	disputeID := c.nextDisputeID
	c.nextDisputeID++
	return disputeID, nil
}

// Verifications returns the claims handed to the verification hook.
func (c *Collaborators) Verifications() []models.Claim {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Claim(nil), c.verifications...)
}

// Payouts returns the payouts the distributor accepted.
func (c *Collaborators) Payouts() []ports.Payout {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ports.Payout(nil), c.payouts...)
}

// Disputes returns the disputes the resolver opened.
func (c *Collaborators) Disputes() []ports.Dispute {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ports.Dispute(nil), c.disputes...)
}

// Identities are the principals tests configure as collaborators.
var Identities = models.Collaborators{
	PolicyManager:     "PM",
	IncidentReporter:  "IR",
	VerifierOracle:    "VO",
	PayoutDistributor: "PD",
	DisputeResolver:   "DR",
}
