package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"claimledger/internal/claims/models"
	"claimledger/internal/claims/ports"
	"claimledger/internal/platform/metrics"
	"claimledger/internal/platform/tracing"
	id "claimledger/pkg/domain"
	dErrors "claimledger/pkg/domain-errors"
	"claimledger/pkg/platform/audit"
	"claimledger/pkg/platform/logicaltime"
	"claimledger/pkg/platform/sentinel"
	"claimledger/pkg/requestcontext"
)

// Store persists claims, the submission index and the registry configuration.
type Store interface {
	CreateClaim(ctx context.Context, sub id.SubmissionKey, build func(id.ClaimID) *models.Claim) (*models.Claim, error)
	HasSubmission(ctx context.Context, sub id.SubmissionKey) (bool, error)
	FindByKey(ctx context.Context, key id.ClaimKey) (*models.Claim, error)
	Update(ctx context.Context, claim *models.Claim) error
	ListByStatus(ctx context.Context, status models.ClaimStatus) ([]*models.Claim, error)
	Count(ctx context.Context) (int, error)
	Config(ctx context.Context) (models.RegistryConfig, error)
	UpdateConfig(ctx context.Context, fn func(cfg *models.RegistryConfig) error) error
}

// Operation names used for spans, metrics and log lines.
const (
	opSetAdmin        = "set_admin"
	opSetContracts    = "set_contracts"
	opSetThreshold    = "set_verification_threshold"
	opSubmitClaim     = "submit_claim"
	opProcessClaim    = "process_claim"
	opVerifyClaim     = "verify_claim"
	opDisputeClaim    = "dispute_claim"
	opCancelClaim     = "cancel_claim"
	opBatchProcess    = "batch_process_claims"
	opGetClaimDetails = "get_claim_details"
	opListClaims      = "list_claims"
	opClaimCount      = "claim_count"
	opRoles           = "roles"

	opVerificationThreshold = "verification_threshold"
)

// Collaborator names used for latency metrics.
const (
	collabPolicyRegistry   = "policy_registry"
	collabIncidentRegistry = "incident_registry"
	collabVerifier         = "verification_hook"
	collabPayout           = "payout_distributor"
	collabDisputeResolver  = "dispute_resolver"
)

// Service is the claim registry. It owns claim state through its Store and
// calls the injected collaborators synchronously.
type Service struct {
	store     Store
	tx        ClaimTx
	policies  ports.PolicyRegistry
	incidents ports.IncidentRegistry
	verifier  ports.VerificationHook
	payouts   ports.PayoutDistributor
	disputes  ports.DisputeResolver

	clock          ports.Clock
	logger         *slog.Logger
	auditPublisher ports.AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer

	txTimeout      time.Duration
	deferredCommit bool
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock sets the logical clock used for submission timestamps.
func WithClock(clock ports.Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func WithTxTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.txTimeout = d
	}
}

// WithDeferredCommit makes process, verify and dispute call their collaborator
// before committing, so a collaborator failure leaves the claim untouched.
// Without it the new state is committed first and kept on failure.
func WithDeferredCommit(enabled bool) Option {
	return func(s *Service) {
		s.deferredCommit = enabled
	}
}

// WithClaimTx replaces the in-memory per-key lock.
func WithClaimTx(tx ClaimTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func New(
	store Store,
	policies ports.PolicyRegistry,
	incidents ports.IncidentRegistry,
	verifier ports.VerificationHook,
	payouts ports.PayoutDistributor,
	disputes ports.DisputeResolver,
	opts ...Option,
) (*Service, error) {
	if store == nil {
		return nil, errors.New("claim store is required")
	}
	if policies == nil {
		return nil, errors.New("policy registry is required")
	}
	if incidents == nil {
		return nil, errors.New("incident registry is required")
	}
	if verifier == nil {
		return nil, errors.New("verification hook is required")
	}
	if payouts == nil {
		return nil, errors.New("payout distributor is required")
	}
	if disputes == nil {
		return nil, errors.New("dispute resolver is required")
	}

	svc := &Service{
		store:     store,
		policies:  policies,
		incidents: incidents,
		verifier:  verifier,
		payouts:   payouts,
		disputes:  disputes,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.clock == nil {
		svc.clock = logicaltime.NewCounter(0)
	}
	if svc.tx == nil {
		svc.tx = newShardedClaimTx(svc.txTimeout)
	}
	return svc, nil
}

// track starts the span for op and returns the function that closes it and
// records the operation metric.
func (s *Service) track(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(err error)) {
	start := time.Now()
	ctx = requestcontext.EnsureRequestID(ctx)
	ctx, end := tracing.TrackOperation(ctx, s.tracer, "claims."+op, attrs...)
	return ctx, func(err error) {
		result := resultLabel(err)
		end(err, result)
		s.metrics.ObserveOperation(op, result, start)
	}
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return string(dErrors.CodeOf(err))
}

func keyAttrs(key id.ClaimKey) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64("claims.policy_id", int64(key.PolicyID)),
		attribute.Int64("claims.incident_id", int64(key.IncidentID)),
	}
}

// call runs one collaborator request and records its latency.
func (s *Service) call(ctx context.Context, collaborator string, fn func() error) error {
	start := time.Now()
	err := fn()
	s.metrics.ObserveCollaborator(collaborator, err, time.Since(start))
	if err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "collaborator call failed",
			"collaborator", collaborator,
			"error", err,
		)
	}
	return err
}

// logAudit writes the audit log line and forwards the event to the publisher.
// Publisher failures are logged and never fail the operation.
func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, ev audit.Event) {
	ev.Action = string(event)
	ev.RequestID = requestcontext.RequestID(ctx)
	ev.Height = s.clock.Height(ctx)

	args := []any{"event", ev.Action, "log_type", "audit"}
	if ev.RequestID != "" {
		args = append(args, "request_id", ev.RequestID)
	}
	if !ev.Actor.IsZero() {
		args = append(args, "actor", ev.Actor.String())
	}
	if ev.Subject != "" {
		args = append(args, "claim_key", ev.Subject, "claim_id", uint64(ev.ClaimID))
	}
	if ev.Decision != "" {
		args = append(args, "decision", ev.Decision)
	}
	if ev.Reason != "" {
		args = append(args, "reason", ev.Reason)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, ev.Action, args...)
	}

	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, ev); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", ev.Action, "error", err)
	}
}

func claimEvent(claim *models.Claim) audit.Event {
	return audit.Event{
		Subject: claim.Key().String(),
		ClaimID: claim.ID,
		Actor:   claim.Policyholder,
	}
}

// loadClaim translates a missing claim into ClaimDenied.
func (s *Service) loadClaim(ctx context.Context, key id.ClaimKey) (*models.Claim, error) {
	claim, err := s.store.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeClaimDenied, "no claim at "+key.String())
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load claim")
	}
	return claim, nil
}

func (s *Service) loadConfig(ctx context.Context) (models.RegistryConfig, error) {
	cfg, err := s.store.Config(ctx)
	if err != nil {
		return models.RegistryConfig{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registry config")
	}
	return cfg, nil
}

func (s *Service) saveClaim(ctx context.Context, claim *models.Claim) error {
	if err := s.store.Update(ctx, claim); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save claim")
	}
	return nil
}
