package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"claimledger/internal/claims/models"
	id "claimledger/pkg/domain"
	dErrors "claimledger/pkg/domain-errors"
	"claimledger/pkg/platform/audit"
)

// SetAdmin hands administration to newAdmin. Only the current admin may call
// it; later admin checks authorize against newAdmin only.
func (s *Service) SetAdmin(ctx context.Context, newAdmin, caller id.Principal) (err error) {
	ctx, done := s.track(ctx, opSetAdmin)
	defer func() { done(err) }()

	if newAdmin.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "new admin is required")
	}
	err = s.updateAsAdmin(ctx, opSetAdmin, caller, func(cfg *models.RegistryConfig) {
		cfg.Roles.Admin = newAdmin
	})
	if err != nil {
		return err
	}
	s.logAudit(ctx, audit.EventAdminChanged, audit.Event{
		Actor:    caller,
		Decision: newAdmin.String(),
	})
	return nil
}

// SetContracts replaces all five collaborator identities at once.
func (s *Service) SetContracts(ctx context.Context, c models.Collaborators, caller id.Principal) (err error) {
	ctx, done := s.track(ctx, opSetContracts)
	defer func() { done(err) }()

	err = s.updateAsAdmin(ctx, opSetContracts, caller, func(cfg *models.RegistryConfig) {
		cfg.Roles.Collaborators = c
	})
	if err != nil {
		return err
	}
	s.logAudit(ctx, audit.EventContractsConfigured, audit.Event{Actor: caller})
	return nil
}

// SetVerificationThreshold stores the threshold collaborators read through
// VerificationThreshold. No transition enforces it.
func (s *Service) SetVerificationThreshold(ctx context.Context, threshold uint32, caller id.Principal) (err error) {
	ctx, done := s.track(ctx, opSetThreshold, attribute.Int64("claims.threshold", int64(threshold)))
	defer func() { done(err) }()

	err = s.updateAsAdmin(ctx, opSetThreshold, caller, func(cfg *models.RegistryConfig) {
		cfg.Settings.VerificationThreshold = threshold
	})
	if err != nil {
		return err
	}
	s.logAudit(ctx, audit.EventThresholdChanged, audit.Event{
		Actor:    caller,
		Decision: fmt.Sprintf("%d", threshold),
	})
	return nil
}

func (s *Service) VerificationThreshold(ctx context.Context) (threshold uint32, err error) {
	ctx, done := s.track(ctx, opVerificationThreshold)
	defer func() { done(err) }()

	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return 0, err
	}
	return cfg.Settings.VerificationThreshold, nil
}

// Roles returns a snapshot of the role configuration.
func (s *Service) Roles(ctx context.Context) (roles models.Roles, err error) {
	ctx, done := s.track(ctx, opRoles)
	defer func() { done(err) }()

	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return models.Roles{}, err
	}
	return cfg.Roles, nil
}

// updateAsAdmin checks caller against the admin and applies mutate within one
// config update.
func (s *Service) updateAsAdmin(ctx context.Context, op string, caller id.Principal, mutate func(cfg *models.RegistryConfig)) error {
	err := s.store.UpdateConfig(ctx, func(cfg *models.RegistryConfig) error {
		if !cfg.Roles.IsAdmin(caller) {
			return dErrors.New(dErrors.CodeUnauthorized, "caller is not the admin")
		}
		mutate(cfg)
		return nil
	})
	if err == nil {
		return nil
	}
	if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
		s.logAudit(ctx, audit.EventUnauthorizedOperation, audit.Event{
			Actor:  caller,
			Reason: op,
		})
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update registry config")
}
