package service_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"claimledger/internal/claims/models"
	"claimledger/internal/claims/ports"
	"claimledger/internal/claims/service"
	"claimledger/internal/claims/store"
	"claimledger/internal/platform/metrics"
	id "claimledger/pkg/domain"
	dErrors "claimledger/pkg/domain-errors"
	"claimledger/pkg/platform/audit"
	"claimledger/pkg/platform/audit/publisher"
	auditmemory "claimledger/pkg/platform/audit/store/memory"
	"claimledger/pkg/requestcontext"
	"claimledger/pkg/testutil"
)

var (
	key11 = id.ClaimKey{PolicyID: 1, IncidentID: 1}
	key22 = id.ClaimKey{PolicyID: 2, IncidentID: 2}
)

func TestClaimLifecycle(t *testing.T) {
	ctx := context.Background()

	testutil.Given(t, "a fully configured registry", func(t *testing.T) {
		svc, fakes := newRegistry(t)

		testutil.When(t, "STX-ADDR submits, the claim is processed and the oracle accepts it", func(t *testing.T) {
			claimID, err := svc.SubmitClaim(ctx, 1, 1, 500000, "STX-ADDR")
			require.NoError(t, err)

			testutil.Then(t, "the first claim gets id 0 and is pending", func(t *testing.T) {
				assert.Equal(t, id.ClaimID(0), claimID)
				claim, err := svc.GetClaimDetails(ctx, key11)
				require.NoError(t, err)
				assert.Equal(t, models.StatusPending, claim.Status)
				assert.False(t, claim.Verified)
				assert.False(t, claim.Disputed)
			})

			require.NoError(t, svc.ProcessClaim(ctx, key11))

			testutil.Then(t, "processing hands the claim to the verification hook", func(t *testing.T) {
				claim, err := svc.GetClaimDetails(ctx, key11)
				require.NoError(t, err)
				assert.Equal(t, models.StatusProcessing, claim.Status)
				require.Len(t, fakes.Verifications(), 1)
				assert.Equal(t, id.ClaimID(0), fakes.Verifications()[0].ID)
			})

			ok, err := svc.VerifyClaim(ctx, key11, true, testutil.Identities.VerifierOracle)
			require.NoError(t, err)

			testutil.Then(t, "the claim is verified and paid", func(t *testing.T) {
				assert.True(t, ok)
				claim, err := svc.GetClaimDetails(ctx, key11)
				require.NoError(t, err)
				assert.Equal(t, models.StatusVerified, claim.Status)
				assert.True(t, claim.Verified)
				assert.Equal(t, []ports.Payout{{Recipient: "STX-ADDR", Amount: 500000}}, fakes.Payouts())
			})
		})
	})

	testutil.Given(t, "an incident more severe than the policy covers", func(t *testing.T) {
		svc, fakes := newRegistry(t)
		_, err := svc.SubmitClaim(ctx, 1, 1, 1500000, "STX-ADDR")
		require.NoError(t, err)
		fakes.SetSeverity(1500000)

		testutil.Then(t, "processing is rejected with InvalidCoverage", func(t *testing.T) {
			err := svc.ProcessClaim(ctx, key11)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidCoverage), err)
			assert.Empty(t, fakes.Verifications())
		})
	})

	testutil.Given(t, "a batch whose second claim was never submitted", func(t *testing.T) {
		svc, _ := newRegistry(t)
		_, err := svc.SubmitClaim(ctx, 1, 1, 500000, "STX-ADDR")
		require.NoError(t, err)

		n, err := svc.BatchProcessClaims(ctx, []id.ClaimKey{key11, key22})

		testutil.Then(t, "the batch fails generically and the first claim stays processing", func(t *testing.T) {
			assert.Zero(t, n)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeBatchProcessingFailed), err)
			claim, err := svc.GetClaimDetails(ctx, key11)
			require.NoError(t, err)
			assert.Equal(t, models.StatusProcessing, claim.Status)
		})
	})

	testutil.Given(t, "two claims the registries accept", func(t *testing.T) {
		svc, _ := newRegistry(t)
		_, err := svc.SubmitClaim(ctx, 1, 1, 500000, "STX-ADDR")
		require.NoError(t, err)
		_, err = svc.SubmitClaim(ctx, 2, 2, 500000, "STX-ADDR")
		require.NoError(t, err)

		testutil.Then(t, "the batch processes both", func(t *testing.T) {
			n, err := svc.BatchProcessClaims(ctx, []id.ClaimKey{key11, key22})
			require.NoError(t, err)
			assert.Equal(t, 2, n)
		})
	})
}

func TestDeferredCommit(t *testing.T) {
	ctx := context.Background()
	collabErr := errors.New("collaborator unavailable")

	t.Run("verification hook failure leaves the claim pending", func(t *testing.T) {
		svc, fakes := newRegistry(t, service.WithDeferredCommit(true))
		_, err := svc.SubmitClaim(ctx, 1, 1, 500000, "STX-ADDR")
		require.NoError(t, err)
		fakes.FailVerification(collabErr)

		err = svc.ProcessClaim(ctx, key11)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeVerificationFailed))
		assert.ErrorIs(t, err, collabErr)

		claim, err := svc.GetClaimDetails(ctx, key11)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, claim.Status)
	})

	t.Run("payout failure leaves the claim unverified", func(t *testing.T) {
		svc, fakes := newRegistry(t, service.WithDeferredCommit(true))
		_, err := svc.SubmitClaim(ctx, 1, 1, 500000, "STX-ADDR")
		require.NoError(t, err)
		fakes.FailPayout(collabErr)

		_, err = svc.VerifyClaim(ctx, key11, true, testutil.Identities.VerifierOracle)
		assert.True(t, dErrors.HasCode(err, dErrors.CodePayoutFailed))

		claim, err := svc.GetClaimDetails(ctx, key11)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, claim.Status)
		assert.False(t, claim.Verified)
	})

	t.Run("resolver failure leaves the claim undisputed", func(t *testing.T) {
		svc, fakes := newRegistry(t, service.WithDeferredCommit(true))
		_, err := svc.SubmitClaim(ctx, 1, 1, 500000, "STX-ADDR")
		require.NoError(t, err)
		fakes.FailDispute(collabErr)

		_, err = svc.DisputeClaim(ctx, key11, "Reason")
		assert.Same(t, collabErr, err)

		claim, err := svc.GetClaimDetails(ctx, key11)
		require.NoError(t, err)
		assert.False(t, claim.Disputed)

		fakes.FailDispute(nil)
		disputeID, err := svc.DisputeClaim(ctx, key11, "Reason")
		require.NoError(t, err, "a failed dispute can be retried")
		assert.Equal(t, id.DisputeID(1), disputeID)
	})

	t.Run("successful transitions commit as usual", func(t *testing.T) {
		svc, fakes := newRegistry(t, service.WithDeferredCommit(true))
		_, err := svc.SubmitClaim(ctx, 1, 1, 500000, "STX-ADDR")
		require.NoError(t, err)

		require.NoError(t, svc.ProcessClaim(ctx, key11))
		ok, err := svc.VerifyClaim(ctx, key11, true, testutil.Identities.VerifierOracle)
		require.NoError(t, err)
		assert.True(t, ok)

		claim, err := svc.GetClaimDetails(ctx, key11)
		require.NoError(t, err)
		assert.Equal(t, models.StatusVerified, claim.Status)
		assert.Len(t, fakes.Payouts(), 1)
	})
}

// slowCollaborators delays the hook and payout calls, returning early only
// when the caller's context is done.
type slowCollaborators struct {
	*testutil.Collaborators
	delay time.Duration
}

func (c slowCollaborators) wait(ctx context.Context) error {
	select {
	case <-time.After(c.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c slowCollaborators) InitiateVerification(ctx context.Context, claim models.Claim) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	return c.Collaborators.InitiateVerification(ctx, claim)
}

func (c slowCollaborators) ExecutePayout(ctx context.Context, payout ports.Payout) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	return c.Collaborators.ExecutePayout(ctx, payout)
}

func TestSlowCollaborators(t *testing.T) {
	ctx := context.Background()
	fakes := testutil.NewCollaborators()
	slow := slowCollaborators{Collaborators: fakes, delay: 100 * time.Millisecond}

	svc, err := service.New(store.New(models.NewRegistryConfig(propAdmin)),
		fakes, fakes, slow, slow, fakes,
		service.WithTxTimeout(20*time.Millisecond),
	)
	require.NoError(t, err)
	require.NoError(t, svc.SetContracts(ctx, testutil.Identities, propAdmin))
	_, err = svc.SubmitClaim(ctx, 1, 1, 500000, "STX-ADDR")
	require.NoError(t, err)

	testutil.When(t, "the hook and payout take longer than the lock timeout", func(t *testing.T) {
		require.NoError(t, svc.ProcessClaim(ctx, key11))
		ok, err := svc.VerifyClaim(ctx, key11, true, testutil.Identities.VerifierOracle)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	testutil.Then(t, "both calls complete and the claim is paid", func(t *testing.T) {
		claim, err := svc.GetClaimDetails(ctx, key11)
		require.NoError(t, err)
		assert.Equal(t, models.StatusVerified, claim.Status)
		assert.Len(t, fakes.Verifications(), 1)
		assert.Len(t, fakes.Payouts(), 1)
	})

	t.Run("a caller deadline still reaches the collaborator", func(t *testing.T) {
		_, err := svc.SubmitClaim(ctx, 2, 2, 500000, "STX-ADDR")
		require.NoError(t, err)
		dctx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
		defer cancel()

		err = svc.ProcessClaim(dctx, key22)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeVerificationFailed), err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

// recordingTx runs work inline and records the keys it was asked to lock.
type recordingTx struct {
	mu   sync.Mutex
	keys []id.ClaimKey
	err  error
}

func (r *recordingTx) RunInTx(ctx context.Context, key id.ClaimKey, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
	if r.err != nil {
		return r.err
	}
	return fn(ctx)
}

func TestInjectedClaimTx(t *testing.T) {
	ctx := context.Background()

	t.Run("every claim mutation runs inside the transaction", func(t *testing.T) {
		tx := &recordingTx{}
		svc, _ := newRegistry(t, service.WithClaimTx(tx))

		_, err := svc.SubmitClaim(ctx, 1, 1, 500000, "STX-ADDR")
		require.NoError(t, err)
		require.NoError(t, svc.ProcessClaim(ctx, key11))
		_, err = svc.VerifyClaim(ctx, key11, true, testutil.Identities.VerifierOracle)
		require.NoError(t, err)
		_, err = svc.DisputeClaim(ctx, key11, "Reason")
		require.NoError(t, err)
		require.NoError(t, svc.CancelClaim(ctx, key11, propAdmin))

		_, err = svc.GetClaimDetails(ctx, key11)
		require.NoError(t, err)
		_, err = svc.ClaimCount(ctx)
		require.NoError(t, err)

		assert.Equal(t, []id.ClaimKey{key11, key11, key11, key11, key11}, tx.keys)
	})

	t.Run("a transaction failure is returned and nothing is stored", func(t *testing.T) {
		txErr := dErrors.New(dErrors.CodeTimeout, "lock unavailable")
		svc, _ := newRegistry(t, service.WithClaimTx(&recordingTx{err: txErr}))

		_, err := svc.SubmitClaim(ctx, 1, 1, 500000, "STX-ADDR")
		assert.Same(t, txErr, err)

		n, err := svc.ClaimCount(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestConcurrentSubmissions(t *testing.T) {
	ctx := context.Background()

	t.Run("one triple yields exactly one claim", func(t *testing.T) {
		svc, _ := newRegistry(t)

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			dupes     int
		)
		for range 32 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.SubmitClaim(ctx, 1, 1, 500000, "STX-ADDR")
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successes++
				case dErrors.HasCode(err, dErrors.CodeClaimAlreadyProcessed):
					dupes++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, successes)
		assert.Equal(t, 31, dupes)
	})

	t.Run("distinct slots get distinct sequential ids", func(t *testing.T) {
		svc, _ := newRegistry(t)

		const n = 40
		ids := make(chan id.ClaimID, n)
		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				claimID, err := svc.SubmitClaim(ctx, 1, id.IncidentID(i), 1, "STX-ADDR")
				assert.NoError(t, err)
				ids <- claimID
			}()
		}
		wg.Wait()
		close(ids)

		seen := make(map[id.ClaimID]bool)
		for claimID := range ids {
			assert.False(t, seen[claimID], "claim id %d reused", claimID)
			assert.Less(t, uint64(claimID), uint64(n))
			seen[claimID] = true
		}
		assert.Len(t, seen, n)
	})

	t.Run("a cancelled context aborts before touching state", func(t *testing.T) {
		svc, _ := newRegistry(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := svc.SubmitClaim(cctx, 1, 1, 500000, "STX-ADDR")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout), err)

		n, err := svc.ClaimCount(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestObservability(t *testing.T) {
	ctx := requestcontext.WithRequestID(context.Background(), "req-123")

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	recorder := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")
	auditStore := auditmemory.NewInMemoryStore()
	pub := publisher.NewPublisher(auditStore)
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	svc, fakes := newRegistry(t,
		service.WithMetrics(m),
		service.WithTracer(tracer),
		service.WithAuditPublisher(pub),
		service.WithLogger(logger),
		service.WithTxTimeout(time.Second),
	)

	_, err := svc.SubmitClaim(ctx, 1, 1, 500000, "STX-ADDR")
	require.NoError(t, err)
	fakes.SetSeverity(2000000)
	require.Error(t, svc.ProcessClaim(ctx, key11))
	fakes.SetSeverity(1)
	require.NoError(t, svc.ProcessClaim(ctx, key11))
	_, err = svc.VerifyClaim(ctx, key11, true, testutil.Identities.VerifierOracle)
	require.NoError(t, err)
	_, err = svc.VerifyClaim(ctx, key11, true, "STX-UNAUTH")
	require.Error(t, err)
	_, err = svc.ClaimCount(ctx)
	require.NoError(t, err)
	_, err = svc.VerificationThreshold(ctx)
	require.NoError(t, err)
	_, err = svc.Roles(ctx)
	require.NoError(t, err)

	t.Run("metrics count operations by result", func(t *testing.T) {
		assert.Equal(t, 1.0, promtest.ToFloat64(m.ClaimsSubmitted))
		assert.Equal(t, 1.0, promtest.ToFloat64(m.PayoutsExecuted))
		assert.Equal(t, 1.0, promtest.ToFloat64(m.Operations.WithLabelValues("process_claim", "ok")))
		assert.Equal(t, 1.0, promtest.ToFloat64(m.Operations.WithLabelValues("process_claim", "invalid_coverage")))
		assert.Equal(t, 1.0, promtest.ToFloat64(m.Operations.WithLabelValues("verify_claim", "unauthorized_verifier")))
		assert.Positive(t, promtest.CollectAndCount(m.CollaboratorDuration))
		for _, op := range []string{"claim_count", "verification_threshold", "roles"} {
			assert.Equal(t, 1.0, promtest.ToFloat64(m.Operations.WithLabelValues(op, "ok")), op)
		}
	})

	t.Run("each operation gets a span", func(t *testing.T) {
		var failed, succeeded int
		for _, span := range recorder.Ended() {
			if span.Name() != "claims.process_claim" {
				continue
			}
			switch span.Status().Code {
			case codes.Error:
				failed++
				assert.Equal(t, "invalid_coverage", span.Status().Description)
			case codes.Ok:
				succeeded++
			}
		}
		assert.Equal(t, 1, failed)
		assert.Equal(t, 1, succeeded)

		names := make(map[string]bool)
		for _, span := range recorder.Ended() {
			names[span.Name()] = true
		}
		for _, name := range []string{"claims.claim_count", "claims.verification_threshold", "claims.roles"} {
			assert.True(t, names[name], name)
		}
	})

	t.Run("audit trail for the claim", func(t *testing.T) {
		events, err := pub.List(ctx, key11.String())
		require.NoError(t, err)

		var actions []string
		for _, ev := range events {
			actions = append(actions, ev.Action)
			assert.Equal(t, "req-123", ev.RequestID)
		}
		assert.Equal(t, []string{
			string(audit.EventClaimSubmitted),
			string(audit.EventClaimProcessing),
			string(audit.EventClaimVerified),
			string(audit.EventPayoutExecuted),
			string(audit.EventUnauthorizedOperation),
		}, actions)
		assert.Equal(t, audit.CategoryCompliance, events[0].Category)
		assert.Equal(t, audit.CategorySecurity, events[4].Category)
	})

	t.Run("audit log lines carry the request id", func(t *testing.T) {
		assert.Contains(t, logs.String(), `"log_type":"audit"`)
		assert.Contains(t, logs.String(), `"request_id":"req-123"`)
		assert.Contains(t, logs.String(), `"event":"claim_submitted"`)
	})
}
