package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"claimledger/internal/claims/models"
	id "claimledger/pkg/domain"
	"claimledger/pkg/platform/sentinel"
)

// InMemoryStore owns every claim, the permanent submission index, the claim id
// sequence and the registry configuration. Reads and writes exchange copies so
// callers never alias stored state.
type InMemoryStore struct {
	mu          sync.RWMutex
	claims      map[id.ClaimKey]*models.Claim
	submissions map[id.SubmissionKey]id.ClaimKey
	nextClaimID id.ClaimID

	cfgMu sync.RWMutex
	cfg   models.RegistryConfig
}

func New(cfg models.RegistryConfig) *InMemoryStore {
	return &InMemoryStore{
		claims:      make(map[id.ClaimKey]*models.Claim),
		submissions: make(map[id.SubmissionKey]id.ClaimKey),
		cfg:         cfg,
	}
}

// CreateClaim records sub in the submission index, allocates the next claim id
// and stores the claim built for it, all under one lock. It fails with
// sentinel.ErrConflict when sub was already recorded or the claim slot is
// taken; nothing is written in that case.
func (s *InMemoryStore) CreateClaim(_ context.Context, sub id.SubmissionKey, build func(id.ClaimID) *models.Claim) (*models.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.submissions[sub]; ok {
		return nil, fmt.Errorf("submission %s: %w", sub, sentinel.ErrConflict)
	}
	key := sub.ClaimKey()
	if _, ok := s.claims[key]; ok {
		return nil, fmt.Errorf("claim slot %s: %w", key, sentinel.ErrConflict)
	}

	claim := build(s.nextClaimID)
	if claim == nil || claim.Key() != key {
		return nil, fmt.Errorf("claim for %s does not match its slot: %w", sub, sentinel.ErrInvalidState)
	}
	s.submissions[sub] = key
	s.claims[key] = claim.Clone()
	s.nextClaimID++
	return claim.Clone(), nil
}

// HasSubmission reports whether sub is in the submission index.
func (s *InMemoryStore) HasSubmission(_ context.Context, sub id.SubmissionKey) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.submissions[sub]
	return ok, nil
}

func (s *InMemoryStore) FindByKey(_ context.Context, key id.ClaimKey) (*models.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if claim, ok := s.claims[key]; ok {
		return claim.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

// Update replaces an existing claim. Claims are never created through Update.
func (s *InMemoryStore) Update(_ context.Context, claim *models.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.claims[claim.Key()]
	if !ok {
		return sentinel.ErrNotFound
	}
	if existing.ID != claim.ID {
		return fmt.Errorf("claim %d does not own slot %s: %w", claim.ID, claim.Key(), sentinel.ErrInvalidState)
	}
	s.claims[claim.Key()] = claim.Clone()
	return nil
}

// ListByStatus returns claims in the given status ordered by claim id.
func (s *InMemoryStore) ListByStatus(_ context.Context, status models.ClaimStatus) ([]*models.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Claim
	for _, claim := range s.claims {
		if claim.Status == status {
			out = append(out, claim.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.claims), nil
}

func (s *InMemoryStore) Config(_ context.Context) (models.RegistryConfig, error) {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg, nil
}

// UpdateConfig applies fn to a copy of the configuration and stores the copy
// only when fn succeeds. Concurrent updates are serialized.
func (s *InMemoryStore) UpdateConfig(_ context.Context, fn func(cfg *models.RegistryConfig) error) error {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	next := s.cfg
	if err := fn(&next); err != nil {
		return err
	}
	s.cfg = next
	return nil
}
