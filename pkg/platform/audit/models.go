package audit

import (
	"time"

	"github.com/google/uuid"

	id "claimledger/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance: claim
	// creation and every state change that can move money.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers authorization failures and role changes.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity useful for debugging.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Category  EventCategory
	Timestamp time.Time
	// Height is the logical time at which the action was applied.
	Height id.Height
	Action string
	// Actor is the principal that invoked the operation, when known.
	Actor id.Principal
	// Subject is the claim key the event concerns, empty for registry-wide
	// events such as role changes.
	Subject   string
	ClaimID   id.ClaimID
	Decision  string
	Reason    string
	RequestID string
}

type AuditEvent string

const (
	// Claim lifecycle
	EventClaimSubmitted  AuditEvent = "claim_submitted"
	EventClaimProcessing AuditEvent = "claim_processing"
	EventClaimVerified   AuditEvent = "claim_verified"
	EventClaimDenied     AuditEvent = "claim_denied"
	EventClaimDisputed   AuditEvent = "claim_disputed"
	EventClaimCanceled   AuditEvent = "claim_canceled"
	EventPayoutExecuted  AuditEvent = "payout_executed"
	EventBatchProcessed  AuditEvent = "batch_processed"

	// Administration
	EventAdminChanged          AuditEvent = "admin_changed"
	EventContractsConfigured   AuditEvent = "contracts_configured"
	EventThresholdChanged      AuditEvent = "verification_threshold_changed"
	EventUnauthorizedOperation AuditEvent = "unauthorized_operation"

	// Failures worth tracing
	EventTransitionFailed AuditEvent = "transition_failed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventClaimSubmitted: CategoryCompliance,
	EventClaimVerified:  CategoryCompliance,
	EventClaimDenied:    CategoryCompliance,
	EventClaimDisputed:  CategoryCompliance,
	EventClaimCanceled:  CategoryCompliance,
	EventPayoutExecuted: CategoryCompliance,

	EventAdminChanged:          CategorySecurity,
	EventContractsConfigured:   CategorySecurity,
	EventThresholdChanged:      CategorySecurity,
	EventUnauthorizedOperation: CategorySecurity,

	EventClaimProcessing:  CategoryOperations,
	EventBatchProcessed:   CategoryOperations,
	EventTransitionFailed: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
