package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"claimledger/internal/claims/models"
	"claimledger/internal/claims/ports"
	id "claimledger/pkg/domain"
	dErrors "claimledger/pkg/domain-errors"
	"claimledger/pkg/platform/audit"
	"claimledger/pkg/platform/sentinel"
)

// SubmitClaim files a claim by caller against (policyID, incidentID).
//
// Guards, first failure wins:
//  1. policy manager and incident reporter configured, else SystemNotConfigured
//  2. caller has not submitted this pair before, else ClaimAlreadyProcessed
//  3. the policy registry reports caller as holder of an active policy, else NotPolicyholder
//  4. the incident exists, else IncidentNotFound
//
// A slot already holding another submitter's claim is also rejected with
// ClaimAlreadyProcessed.
func (s *Service) SubmitClaim(ctx context.Context, policyID id.PolicyID, incidentID id.IncidentID, amount id.Amount, caller id.Principal) (claimID id.ClaimID, err error) {
	sub := id.SubmissionKey{Submitter: caller, PolicyID: policyID, IncidentID: incidentID}
	ctx, done := s.track(ctx, opSubmitClaim, keyAttrs(sub.ClaimKey())...)
	defer func() { done(err) }()

	var created *models.Claim
	err = s.tx.RunInTx(ctx, sub.ClaimKey(), func(ctx context.Context) error {
		cfg, err := s.loadConfig(ctx)
		if err != nil {
			return err
		}
		if !cfg.Roles.RegistriesConfigured() {
			return dErrors.New(dErrors.CodeSystemNotConfigured, "policy manager and incident reporter must be configured")
		}

		seen, err := s.store.HasSubmission(ctx, sub)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check submission index")
		}
		if seen {
			return dErrors.New(dErrors.CodeClaimAlreadyProcessed, "claim already submitted for "+sub.String())
		}

		var policy *ports.PolicyDetails
		lookupErr := s.call(ctx, collabPolicyRegistry, func() error {
			var err error
			policy, err = s.policies.PolicyDetails(ctx, caller, policyID)
			return err
		})
		if lookupErr != nil {
			return dErrors.Wrap(lookupErr, dErrors.CodeNotPolicyholder, "policy lookup failed")
		}
		if policy == nil || policy.Holder != caller || !policy.Active {
			return dErrors.New(dErrors.CodeNotPolicyholder, "caller does not hold an active policy")
		}

		var incident *ports.IncidentDetails
		lookupErr = s.call(ctx, collabIncidentRegistry, func() error {
			var err error
			incident, err = s.incidents.IncidentDetails(ctx, incidentID)
			return err
		})
		if lookupErr != nil {
			return dErrors.Wrap(lookupErr, dErrors.CodeIncidentNotFound, "incident lookup failed")
		}
		if incident == nil {
			return dErrors.New(dErrors.CodeIncidentNotFound, "incident not found")
		}

		at := s.clock.Height(ctx)
		created, err = s.store.CreateClaim(ctx, sub, func(next id.ClaimID) *models.Claim {
			return models.NewClaim(next, sub, amount, at)
		})
		if err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.Wrap(err, dErrors.CodeClaimAlreadyProcessed, "claim slot already taken")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create claim")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.metrics.IncrementClaimsSubmitted()
	ev := claimEvent(created)
	ev.Decision = fmt.Sprintf("amount=%d", created.Amount)
	s.logAudit(ctx, audit.EventClaimSubmitted, ev)
	return created.ID, nil
}

// eligibility is what ProcessClaim learns from the two registries.
type eligibility struct {
	policy      *ports.PolicyDetails
	policyErr   error
	incident    *ports.IncidentDetails
	incidentErr error
}

// fetchEligibility queries both registries concurrently. Registry failures
// are kept on the result so the guards can be evaluated in order afterwards;
// only cancellation of ctx aborts the lookup.
func (s *Service) fetchEligibility(ctx context.Context, claim *models.Claim) (*eligibility, error) {
	g, gctx := errgroup.WithContext(ctx)
	e := &eligibility{}

	g.Go(func() error {
		e.policyErr = s.call(gctx, collabPolicyRegistry, func() error {
			var err error
			e.policy, err = s.policies.PolicyDetails(gctx, claim.Policyholder, claim.PolicyID)
			return err
		})
		return ctx.Err()
	})
	g.Go(func() error {
		e.incidentErr = s.call(gctx, collabIncidentRegistry, func() error {
			var err error
			e.incident, err = s.incidents.IncidentDetails(gctx, claim.IncidentID)
			return err
		})
		return ctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "eligibility lookup aborted")
	}
	return e, nil
}

// check applies the policy, incident and coverage guards in that order.
func (e *eligibility) check(claim *models.Claim) error {
	if e.policyErr != nil {
		return dErrors.Wrap(e.policyErr, dErrors.CodePolicyInvalid, "policy lookup failed")
	}
	if e.policy == nil {
		return dErrors.New(dErrors.CodePolicyInvalid, "policy not found")
	}
	if e.incidentErr != nil {
		return dErrors.Wrap(e.incidentErr, dErrors.CodeIncidentNotMatching, "incident lookup failed")
	}
	if e.incident == nil {
		return dErrors.New(dErrors.CodeIncidentNotMatching, "incident not found")
	}
	if e.incident.Severity > e.policy.CoverageLimit {
		return dErrors.New(dErrors.CodeInvalidCoverage,
			fmt.Sprintf("incident severity %d exceeds coverage %d", e.incident.Severity, e.policy.CoverageLimit))
	}
	return claim.CanProcess()
}

// ProcessClaim moves the claim at key into processing after re-checking it
// against live registry data, then notifies the verification hook.
//
// Guards, first failure wins: claim exists (ClaimDenied), registries configured
// (SystemNotConfigured), policy found (PolicyInvalid), incident found
// (IncidentNotMatching), severity within coverage and claim not disputed
// (InvalidCoverage). A hook failure returns VerificationFailed.
func (s *Service) ProcessClaim(ctx context.Context, key id.ClaimKey) (err error) {
	ctx, done := s.track(ctx, opProcessClaim, keyAttrs(key)...)
	defer func() { done(err) }()

	var processed *models.Claim
	err = s.tx.RunInTx(ctx, key, func(ctx context.Context) error {
		claim, err := s.loadClaim(ctx, key)
		if err != nil {
			return err
		}
		cfg, err := s.loadConfig(ctx)
		if err != nil {
			return err
		}
		if !cfg.Roles.RegistriesConfigured() {
			return dErrors.New(dErrors.CodeSystemNotConfigured, "policy manager and incident reporter must be configured")
		}
		e, err := s.fetchEligibility(ctx, claim)
		if err != nil {
			return err
		}
		if err := e.check(claim); err != nil {
			return err
		}

		next := claim.Clone()
		next.ApplyProcessing()
		processed = next
		return s.commitAround(ctx, next, func() error {
			hookErr := s.call(ctx, collabVerifier, func() error {
				return s.verifier.InitiateVerification(ctx, *next)
			})
			if hookErr != nil {
				return dErrors.Wrap(hookErr, dErrors.CodeVerificationFailed, "verification could not be initiated")
			}
			return nil
		})
	})
	if err != nil {
		s.logTransitionFailure(ctx, opProcessClaim, processed, err)
		return err
	}

	s.logAudit(ctx, audit.EventClaimProcessing, claimEvent(processed))
	return nil
}

// VerifyClaim records the verifier oracle's outcome for the claim at key and,
// when accepted, pays the policyholder the claimed amount.
func (s *Service) VerifyClaim(ctx context.Context, key id.ClaimKey, isVerified bool, caller id.Principal) (verified bool, err error) {
	attrs := append(keyAttrs(key), attribute.Bool("claims.verified", isVerified))
	ctx, done := s.track(ctx, opVerifyClaim, attrs...)
	defer func() { done(err) }()

	var decided *models.Claim
	paid := false
	err = s.tx.RunInTx(ctx, key, func(ctx context.Context) error {
		cfg, err := s.loadConfig(ctx)
		if err != nil {
			return err
		}
		if !cfg.Roles.IsVerifier(caller) {
			s.logAudit(ctx, audit.EventUnauthorizedOperation, audit.Event{
				Actor:   caller,
				Subject: key.String(),
				Reason:  opVerifyClaim,
			})
			return dErrors.New(dErrors.CodeUnauthorizedVerifier, "caller is not the verifier oracle")
		}

		claim, err := s.loadClaim(ctx, key)
		if err != nil {
			return err
		}

		next := claim.Clone()
		next.ApplyVerification(isVerified)
		decided = next
		if !isVerified {
			return s.saveClaim(ctx, next)
		}
		return s.commitAround(ctx, next, func() error {
			payErr := s.call(ctx, collabPayout, func() error {
				return s.payouts.ExecutePayout(ctx, ports.Payout{Recipient: next.Policyholder, Amount: next.Amount})
			})
			if payErr != nil {
				return dErrors.Wrap(payErr, dErrors.CodePayoutFailed, "payout failed")
			}
			paid = true
			return nil
		})
	})
	if err != nil {
		s.logTransitionFailure(ctx, opVerifyClaim, decided, err)
		return false, err
	}

	ev := claimEvent(decided)
	ev.Actor = caller
	if !isVerified {
		s.logAudit(ctx, audit.EventClaimDenied, ev)
		return false, nil
	}
	s.logAudit(ctx, audit.EventClaimVerified, ev)
	if paid {
		s.metrics.IncrementPayoutsExecuted()
		payout := claimEvent(decided)
		payout.Decision = fmt.Sprintf("amount=%d", decided.Amount)
		s.logAudit(ctx, audit.EventPayoutExecuted, payout)
	}
	return true, nil
}

// DisputeClaim marks the claim at key disputed and opens a dispute with the
// resolver. A resolver failure is returned exactly as the resolver reported it.
func (s *Service) DisputeClaim(ctx context.Context, key id.ClaimKey, reason string) (disputeID id.DisputeID, err error) {
	ctx, done := s.track(ctx, opDisputeClaim, keyAttrs(key)...)
	defer func() { done(err) }()

	var disputed *models.Claim
	err = s.tx.RunInTx(ctx, key, func(ctx context.Context) error {
		claim, err := s.loadClaim(ctx, key)
		if err != nil {
			return err
		}
		if err := claim.CanDispute(); err != nil {
			return err
		}

		next := claim.Clone()
		next.ApplyDispute()
		disputed = next
		return s.commitAround(ctx, next, func() error {
			return s.call(ctx, collabDisputeResolver, func() error {
				var err error
				disputeID, err = s.disputes.InitiateDispute(ctx, ports.Dispute{ClaimID: next.ID, Reason: reason})
				return err
			})
		})
	})
	if err != nil {
		s.logTransitionFailure(ctx, opDisputeClaim, disputed, err)
		return 0, err
	}

	ev := claimEvent(disputed)
	ev.Reason = reason
	ev.Decision = fmt.Sprintf("dispute_id=%d", disputeID)
	s.logAudit(ctx, audit.EventClaimDisputed, ev)
	return disputeID, nil
}

// CancelClaim cancels the claim at key and clears its verified and disputed
// flags. Admin only.
func (s *Service) CancelClaim(ctx context.Context, key id.ClaimKey, caller id.Principal) (err error) {
	ctx, done := s.track(ctx, opCancelClaim, keyAttrs(key)...)
	defer func() { done(err) }()

	var canceled *models.Claim
	err = s.tx.RunInTx(ctx, key, func(ctx context.Context) error {
		cfg, err := s.loadConfig(ctx)
		if err != nil {
			return err
		}
		if !cfg.Roles.IsAdmin(caller) {
			s.logAudit(ctx, audit.EventUnauthorizedOperation, audit.Event{
				Actor:   caller,
				Subject: key.String(),
				Reason:  opCancelClaim,
			})
			return dErrors.New(dErrors.CodeUnauthorized, "caller is not the admin")
		}

		claim, err := s.loadClaim(ctx, key)
		if err != nil {
			return err
		}
		claim.ApplyCancel()
		canceled = claim
		return s.saveClaim(ctx, claim)
	})
	if err != nil {
		return err
	}

	ev := claimEvent(canceled)
	ev.Actor = caller
	s.logAudit(ctx, audit.EventClaimCanceled, ev)
	return nil
}

// BatchProcessClaims processes keys in order and stops at the first failure.
// Claims processed before the failure keep their new status. The failure is
// reported only as BatchProcessingFailed; the underlying error is logged.
func (s *Service) BatchProcessClaims(ctx context.Context, keys []id.ClaimKey) (processed int, err error) {
	ctx, done := s.track(ctx, opBatchProcess, attribute.Int("claims.batch_size", len(keys)))
	defer func() { done(err) }()

	for i, key := range keys {
		if perr := s.ProcessClaim(ctx, key); perr != nil {
			if s.logger != nil {
				s.logger.WarnContext(ctx, "batch processing stopped",
					"index", i,
					"claim_key", key.String(),
					"processed", processed,
					"error", perr,
				)
			}
			return 0, dErrors.New(dErrors.CodeBatchProcessingFailed, "batch processing failed")
		}
		processed++
	}

	s.logAudit(ctx, audit.EventBatchProcessed, audit.Event{
		Decision: fmt.Sprintf("processed=%d", processed),
	})
	return processed, nil
}

// GetClaimDetails returns the claim at key, or ClaimDenied when the slot is
// empty.
func (s *Service) GetClaimDetails(ctx context.Context, key id.ClaimKey) (claim *models.Claim, err error) {
	ctx, done := s.track(ctx, opGetClaimDetails, keyAttrs(key)...)
	defer func() { done(err) }()

	return s.loadClaim(ctx, key)
}

// ListClaims returns the claims in status, ordered by claim id.
func (s *Service) ListClaims(ctx context.Context, status models.ClaimStatus) (claims []*models.Claim, err error) {
	ctx, done := s.track(ctx, opListClaims, attribute.String("claims.status", status.String()))
	defer func() { done(err) }()

	if !status.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown claim status: "+status.String())
	}
	claims, err = s.store.ListByStatus(ctx, status)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list claims")
	}
	return claims, nil
}

// ClaimCount returns the number of claims ever submitted.
func (s *Service) ClaimCount(ctx context.Context) (n int, err error) {
	ctx, done := s.track(ctx, opClaimCount)
	defer func() { done(err) }()

	n, err = s.store.Count(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count claims")
	}
	return n, nil
}

// commitAround orders the commit of next relative to the collaborator call.
// Immediate mode commits first and keeps the commit when call fails; deferred
// mode commits only after call succeeds.
func (s *Service) commitAround(ctx context.Context, next *models.Claim, call func() error) error {
	if s.deferredCommit {
		if err := call(); err != nil {
			return err
		}
		return s.saveClaim(ctx, next)
	}
	if err := s.saveClaim(ctx, next); err != nil {
		return err
	}
	return call()
}

// logTransitionFailure records downstream failures that happened after the
// guards passed. Guard rejections are not audited.
func (s *Service) logTransitionFailure(ctx context.Context, op string, next *models.Claim, err error) {
	if next == nil {
		return
	}
	ev := claimEvent(next)
	ev.Reason = op
	ev.Decision = resultLabel(err)
	if !s.deferredCommit {
		ev.Decision += " committed=" + next.Status.String()
	}
	s.logAudit(ctx, audit.EventTransitionFailed, ev)
}
