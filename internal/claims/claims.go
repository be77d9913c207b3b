// Package claims assembles the claim registry from process configuration.
// Hosts embed the registry in-process and supply the five collaborators.
package claims

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"claimledger/internal/claims/models"
	"claimledger/internal/claims/ports"
	"claimledger/internal/claims/service"
	"claimledger/internal/claims/store"
	"claimledger/internal/platform/config"
	"claimledger/internal/platform/logger"
	"claimledger/internal/platform/metrics"
	id "claimledger/pkg/domain"
	"claimledger/pkg/platform/audit/publisher"
	auditmemory "claimledger/pkg/platform/audit/store/memory"
)

// Service is the claim registry.
type Service = service.Service

// Claim is the registry's claim record.
type Claim = models.Claim

// auditBufferSize bounds audit events waiting to be persisted.
const auditBufferSize = 256

// Dependencies are the collaborators and optional instrumentation a host
// provides. Clock, Registerer, Tracer and Logger may be nil.
type Dependencies struct {
	Policies  ports.PolicyRegistry
	Incidents ports.IncidentRegistry
	Verifier  ports.VerificationHook
	Payouts   ports.PayoutDistributor
	Disputes  ports.DisputeResolver

	Clock ports.Clock
	// Registerer receives the registry metrics. Nil disables metrics.
	Registerer prometheus.Registerer
	Tracer     trace.Tracer
	// Logger overrides the logger built from the config.
	Logger *slog.Logger
}

// Registry is a running claim registry plus the resources it owns.
type Registry struct {
	*Service
	Audit  *publisher.Publisher
	Logger *slog.Logger
}

// Bootstrap builds a registry administered by cfg.Admin with the configured
// verification threshold.
func Bootstrap(cfg config.Config, deps Dependencies) (*Registry, error) {
	adminID, err := id.ParsePrincipal(cfg.Admin)
	if err != nil {
		return nil, fmt.Errorf("invalid admin: %w", err)
	}
	if deps.Policies == nil || deps.Incidents == nil || deps.Verifier == nil || deps.Payouts == nil || deps.Disputes == nil {
		return nil, errors.New("all five collaborators are required")
	}

	log := deps.Logger
	if log == nil {
		log = logger.New(cfg.LogLevel, cfg.LogFormat)
	}
	for _, w := range cfg.Warnings {
		log.Warn("config value ignored", "warning", w)
	}

	bootstrap := models.NewRegistryConfig(adminID)
	bootstrap.Settings.VerificationThreshold = cfg.VerificationThreshold

	auditPublisher := publisher.NewPublisher(auditmemory.NewInMemoryStore(),
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(log),
	)

	opts := []service.Option{
		service.WithLogger(log),
		service.WithAuditPublisher(auditPublisher),
		service.WithTxTimeout(cfg.TxTimeout),
		service.WithDeferredCommit(cfg.DeferredCommit),
	}
	if deps.Clock != nil {
		opts = append(opts, service.WithClock(deps.Clock))
	}
	if deps.Registerer != nil {
		opts = append(opts, service.WithMetrics(metrics.New(deps.Registerer)))
	}
	if deps.Tracer != nil {
		opts = append(opts, service.WithTracer(deps.Tracer))
	}

	svc, err := service.New(store.New(bootstrap),
		deps.Policies, deps.Incidents, deps.Verifier, deps.Payouts, deps.Disputes,
		opts...,
	)
	if err != nil {
		auditPublisher.Close()
		return nil, err
	}

	log.Info("claim registry started",
		"admin", adminID.String(),
		"verification_threshold", cfg.VerificationThreshold,
		"deferred_commit", cfg.DeferredCommit,
	)
	return &Registry{Service: svc, Audit: auditPublisher, Logger: log}, nil
}

// FromEnv is Bootstrap with configuration read from CLAIMS_* variables.
func FromEnv(deps Dependencies) (*Registry, error) {
	return Bootstrap(config.FromEnv(), deps)
}

// Close flushes pending audit events.
func (r *Registry) Close() {
	r.Audit.Close()
}
