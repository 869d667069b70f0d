package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"insurance-service/internal/apperrors"
	"insurance-service/internal/models"
	"insurance-service/internal/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const agentPoliciesCacheTTL = 5 * time.Minute

// PolicyCatalogService manages agent-authored policy templates. The catalog
// is read-mostly, so per-agent listings are cached in Redis and invalidated
// on any mutation. Policies are immutable once subscribed against:
// subscriptions snapshot rate and coverage, so catalog edits never change
// existing subscriptions.
type PolicyCatalogService struct {
	uow   store.UnitOfWork
	cache *redis.Client
}

func NewPolicyCatalogService(uow store.UnitOfWork, cache *redis.Client) *PolicyCatalogService {
	return &PolicyCatalogService{uow: uow, cache: cache}
}

func (s *PolicyCatalogService) CreatePolicy(ctx context.Context, agentID string, req models.CreatePolicyRequest) (*models.Policy, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation("%s", err.Error())
	}

	policy := &models.Policy{
		AgentID:           agentID,
		Name:              req.Name,
		Type:              req.Type,
		NormalDailyRate:   req.NormalDailyRate,
		NormalCoverage:    req.NormalCoverage,
		PremiumDailyRate:  req.PremiumDailyRate,
		PremiumCoverage:   req.PremiumCoverage,
		MinDurationDays:   req.MinDurationDays,
		MaxDurationMonths: req.MaxDurationMonths,
		Status:            models.PolicyActive,
	}

	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		return r.Policies.Create(ctx, policy)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create policy: %w", err)
	}

	s.invalidateAgentCache(ctx, agentID)
	return policy, nil
}

func (s *PolicyCatalogService) GetPolicy(ctx context.Context, policyID uuid.UUID) (*models.Policy, error) {
	var policy *models.Policy
	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		var err error
		policy, err = r.Policies.GetByID(ctx, policyID)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound("policy")
	}
	if err != nil {
		return nil, err
	}
	return policy, nil
}

// DeletePolicy removes a catalog entry. A policy with active subscriptions
// cannot be deleted; discontinue it instead and let the subscriptions run
// out.
func (s *PolicyCatalogService) DeletePolicy(ctx context.Context, policyID uuid.UUID, agentID string) error {
	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		policy, err := r.Policies.GetByID(ctx, policyID)
		if err != nil {
			return err
		}
		if policy.AgentID != agentID {
			return apperrors.Forbidden("policy does not belong to this agent")
		}

		count, err := r.Subscriptions.CountActiveByPolicy(ctx, policyID)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.HasActiveSubscriptions(count)
		}

		return r.Policies.Delete(ctx, policyID)
	})
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NotFound("policy")
	}
	if err != nil {
		return err
	}

	s.invalidateAgentCache(ctx, agentID)
	return nil
}

func (s *PolicyCatalogService) ListPoliciesByAgent(ctx context.Context, agentID string) ([]models.Policy, error) {
	if cached, ok := s.cachedAgentPolicies(ctx, agentID); ok {
		return cached, nil
	}

	var policies []models.Policy
	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		var err error
		policies, err = r.Policies.ListByAgent(ctx, agentID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}

	s.cacheAgentPolicies(ctx, agentID, policies)
	return policies, nil
}

func (s *PolicyCatalogService) UpdatePolicyStatus(ctx context.Context, policyID uuid.UUID, agentID string, status models.PolicyStatus) error {
	switch status {
	case models.PolicyActive, models.PolicyInactive, models.PolicyDiscontinued:
	default:
		return apperrors.Validation("invalid policy status %q", status)
	}

	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		policy, err := r.Policies.GetByID(ctx, policyID)
		if err != nil {
			return err
		}
		if policy.AgentID != agentID {
			return apperrors.Forbidden("policy does not belong to this agent")
		}
		return r.Policies.UpdateStatus(ctx, policyID, status)
	})
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NotFound("policy")
	}
	if err != nil {
		return err
	}

	s.invalidateAgentCache(ctx, agentID)
	return nil
}

// ============================================================================
// REDIS READ-CACHE
// ============================================================================

func agentPoliciesCacheKey(agentID string) string {
	return fmt.Sprintf("insurance--agent_policies--%s", agentID)
}

func (s *PolicyCatalogService) cachedAgentPolicies(ctx context.Context, agentID string) ([]models.Policy, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, agentPoliciesCacheKey(agentID)).Bytes()
	if err != nil {
		return nil, false
	}

	var policies []models.Policy
	if err := json.Unmarshal(raw, &policies); err != nil {
		slog.Error("Failed to decode cached policies", "agent_id", agentID, "error", err)
		return nil, false
	}
	return policies, true
}

func (s *PolicyCatalogService) cacheAgentPolicies(ctx context.Context, agentID string, policies []models.Policy) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(policies)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, agentPoliciesCacheKey(agentID), raw, agentPoliciesCacheTTL).Err(); err != nil {
		slog.Error("Failed to cache agent policies", "agent_id", agentID, "error", err)
	}
}

func (s *PolicyCatalogService) invalidateAgentCache(ctx context.Context, agentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, agentPoliciesCacheKey(agentID)).Err(); err != nil {
		slog.Error("Failed to invalidate policy cache", "agent_id", agentID, "error", err)
	}
}
