package models

import id "claimledger/pkg/domain"

// DefaultVerificationThreshold is the threshold in force until an admin
// changes it.
const DefaultVerificationThreshold uint32 = 2

// Collaborators names the five external services the registry trusts. They
// are always replaced together.
type Collaborators struct {
	PolicyManager     id.Principal `json:"policy_manager"`
	IncidentReporter  id.Principal `json:"incident_reporter"`
	VerifierOracle    id.Principal `json:"verifier_oracle"`
	PayoutDistributor id.Principal `json:"payout_distributor"`
	DisputeResolver   id.Principal `json:"dispute_resolver"`
}

// Roles is the registry's authorization configuration.
type Roles struct {
	Admin id.Principal `json:"admin"`
	Collaborators
}

// RegistriesConfigured reports whether both registries that submission and
// processing depend on are set.
func (r Roles) RegistriesConfigured() bool {
	return !r.PolicyManager.IsZero() && !r.IncidentReporter.IsZero()
}

func (r Roles) IsAdmin(caller id.Principal) bool {
	return !r.Admin.IsZero() && caller == r.Admin
}

// IsVerifier reports whether caller is the configured verifier oracle. An
// unset oracle matches nobody.
func (r Roles) IsVerifier(caller id.Principal) bool {
	return !r.VerifierOracle.IsZero() && caller == r.VerifierOracle
}

// Settings holds tunables consumed by collaborators rather than by the
// transitions themselves.
type Settings struct {
	VerificationThreshold uint32 `json:"verification_threshold"`
}

func DefaultSettings() Settings {
	return Settings{VerificationThreshold: DefaultVerificationThreshold}
}

// RegistryConfig is everything an admin can change, updated as one unit.
type RegistryConfig struct {
	Roles    Roles    `json:"roles"`
	Settings Settings `json:"settings"`
}

// NewRegistryConfig bootstraps a registry administered by admin with no
// collaborators configured.
func NewRegistryConfig(admin id.Principal) RegistryConfig {
	return RegistryConfig{
		Roles:    Roles{Admin: admin},
		Settings: DefaultSettings(),
	}
}
