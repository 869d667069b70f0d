package services

import (
	"context"
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

// subscribeGraceSeconds is the window a start date may lie in the past.
const subscribeGraceSeconds = secondsPerDay

// EventPublisher pushes lifecycle events to the notification queue.
// Publishing is best-effort: delivery is the notification service's
// concern and never fails the operation that triggered it.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any)
}

// Lifecycle event types.
const (
	EventSubscriptionCreated   = "subscription.created"
	EventSubscriptionCancelled = "subscription.cancelled"
	EventSubscriptionExpired   = "subscription.expired"
	EventClaimFiled            = "claim.filed"
	EventClaimSettled          = "claim.settled"
)

// SubscriptionService drives the subscribe/cancel/expire lifecycle.
// Subscribe and Cancel for the same subscriber serialize on a keyed mutex,
// and every money movement runs inside the same store transaction as the
// state transition it belongs to.
type SubscriptionService struct {
	uow       store.UnitOfWork
	redis     *redis.Client
	publisher EventPublisher
	locks     *keyedMutex
	now       func() int64
}

func NewSubscriptionService(uow store.UnitOfWork, redisClient *redis.Client, publisher EventPublisher) *SubscriptionService {
	return &SubscriptionService{
		uow:       uow,
		redis:     redisClient,
		publisher: publisher,
		locks:     newKeyedMutex(),
		now:       func() int64 { return time.Now().Unix() },
	}
}

// WithClock overrides the service clock; tests use it to simulate elapsed
// time deterministically.
func (s *SubscriptionService) WithClock(now func() int64) *SubscriptionService {
	s.now = now
	return s
}

// Subscribe validates the coverage window, charges the premium from the
// subscriber to the agent, and creates the active subscription — all
// validation before any ledger mutation, and the transfer plus the insert
// in one transaction.
func (s *SubscriptionService) Subscribe(ctx context.Context, subscriberID string, req models.SubscribeRequest) (*models.Subscription, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation("%s", err.Error())
	}

	unlock := s.locks.Lock(subscriberID)
	defer unlock()

	now := s.now()
	if req.EndDate <= req.StartDate {
		return nil, apperrors.Validation("end_date must be after start_date")
	}
	if req.StartDate < now-subscribeGraceSeconds {
		return nil, apperrors.Validation("start_date may be at most 1 day in the past")
	}
	if req.EndDate < now+secondsPerDay {
		return nil, apperrors.Validation("end_date must be at least 1 day from now")
	}

	var sub, lapsed *models.Subscription
	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		policy, err := r.Policies.GetByID(ctx, req.PolicyID)
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("policy")
		}
		if err != nil {
			return err
		}
		if policy.AgentID != req.AgentID {
			return apperrors.Validation("policy does not belong to agent %s", req.AgentID)
		}
		if policy.Status != models.PolicyActive {
			return apperrors.InvalidStatus("policy is %s and not open for subscription", policy.Status)
		}

		totalDays := ceilDays(req.EndDate - req.StartDate)
		if totalDays < policy.MinDurationDays {
			return apperrors.Validation("coverage of %d day(s) is below the policy minimum of %d", totalDays, policy.MinDurationDays)
		}
		maxEnd := time.Unix(req.StartDate, 0).UTC().AddDate(0, policy.MaxDurationMonths, 0).Unix()
		if req.EndDate > maxEnd {
			return apperrors.Validation("coverage exceeds the policy maximum of %d month(s)", policy.MaxDurationMonths)
		}

		existing, err := r.Subscriptions.GetActiveBySubscriber(ctx, subscriberID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if existing != nil {
			// An overdue subscription no longer blocks a new one; expire
			// it here rather than waiting for the sweep.
			if existing.EndDate < now {
				existing.Status = models.SubscriptionExpired
				if err := r.Subscriptions.Update(ctx, existing); err != nil {
					return err
				}
				lapsed = existing
			} else {
				return apperrors.DuplicateActiveSubscription(subscriberID)
			}
		}

		_, premium, err := ComputePremium(req.StartDate, req.EndDate, now, policy.DailyRate(req.Tier))
		if err != nil {
			return err
		}

		if _, _, err := applyTransfer(ctx, r, subscriberID, req.AgentID, premium, models.ReasonPremiumPayment); err != nil {
			return err
		}

		sub = &models.Subscription{
			PolicyID:       policy.ID,
			AgentID:        policy.AgentID,
			SubscriberID:   subscriberID,
			Tier:           req.Tier,
			PremiumPaid:    premium,
			DailyRate:      policy.DailyRate(req.Tier),
			CoverageAmount: policy.Coverage(req.Tier),
			StartDate:      req.StartDate,
			EndDate:        req.EndDate,
			Status:         models.SubscriptionActive,
		}
		return r.Subscriptions.Create(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	s.registerCoverageTTL(ctx, sub)
	if s.publisher != nil {
		if lapsed != nil {
			s.publisher.Publish(ctx, EventSubscriptionExpired, lapsed)
		}
		s.publisher.Publish(ctx, EventSubscriptionCreated, sub)
	}
	return sub, nil
}

// Cancel prorates the unused days of the subscriber's active subscription,
// refunds them from the agent, and marks the subscription cancelled.
// Cancelling after the full term has elapsed succeeds with a zero refund.
func (s *SubscriptionService) Cancel(ctx context.Context, subscriberID string) (*models.RefundResult, error) {
	unlock := s.locks.Lock(subscriberID)
	defer unlock()

	now := s.now()
	var result *models.RefundResult
	var sub *models.Subscription
	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		var err error
		sub, err = r.Subscriptions.GetActiveBySubscriber(ctx, subscriberID)
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NoActivePolicy(subscriberID)
		}
		if err != nil {
			return err
		}

		openClaims, err := r.Claims.CountOpenBySubscription(ctx, sub.ID)
		if err != nil {
			return err
		}
		if openClaims > 0 {
			return apperrors.HasPendingClaims(openClaims)
		}

		refund := ProrateRefund(sub.StartDate, sub.EndDate, now, sub.PremiumPaid)
		refund.SubscriptionID = sub.ID
		if refund.RefundAmount > 0 {
			if _, _, err := applyTransfer(ctx, r, sub.AgentID, subscriberID, refund.RefundAmount, models.ReasonPolicyRefund); err != nil {
				return err
			}
		}

		sub.Status = models.SubscriptionCancelled
		sub.CancellationDate = &now
		sub.RefundAmount = &refund.RefundAmount
		if err := r.Subscriptions.Update(ctx, sub); err != nil {
			return err
		}

		result = &refund
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dropCoverageTTL(ctx, sub.ID)
	if s.publisher != nil {
		s.publisher.Publish(ctx, EventSubscriptionCancelled, result)
	}
	return result, nil
}

// GetActiveSubscription returns the subscriber's active subscription,
// lazily expiring it first when its end date has passed. The expiry write
// commits on its own; the NO_ACTIVE_POLICY answer is produced outside the
// transaction so it cannot roll the status flip back.
func (s *SubscriptionService) GetActiveSubscription(ctx context.Context, subscriberID string) (*models.Subscription, error) {
	now := s.now()
	var sub, lapsed *models.Subscription
	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		got, err := r.Subscriptions.GetActiveBySubscriber(ctx, subscriberID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if got.EndDate < now {
			got.Status = models.SubscriptionExpired
			if err := r.Subscriptions.Update(ctx, got); err != nil {
				return err
			}
			lapsed = got
			return nil
		}
		sub = got
		return nil
	})
	if err != nil {
		return nil, err
	}

	if lapsed != nil && s.publisher != nil {
		s.publisher.Publish(ctx, EventSubscriptionExpired, lapsed)
	}
	if sub == nil {
		return nil, apperrors.NoActivePolicy(subscriberID)
	}
	return sub, nil
}

// ExpireDue transitions every overdue active subscription to expired, with
// no refund. Safe to re-run: already-expired subscriptions are never
// selected, so a second sweep is a no-op.
func (s *SubscriptionService) ExpireDue(ctx context.Context, limit int) (int, error) {
	now := s.now()
	var expired []models.Subscription
	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		due, err := r.Subscriptions.ListDueForExpiry(ctx, now, limit)
		if err != nil {
			return err
		}
		for i := range due {
			due[i].Status = models.SubscriptionExpired
			if err := r.Subscriptions.Update(ctx, &due[i]); err != nil {
				return err
			}
		}
		expired = due
		return nil
	})
	if err != nil {
		return 0, err
	}

	for i := range expired {
		if s.publisher != nil {
			s.publisher.Publish(ctx, EventSubscriptionExpired, &expired[i])
		}
	}
	if len(expired) > 0 {
		slog.Info("Expired overdue subscriptions", "count", len(expired))
	}
	return len(expired), nil
}

// ExpireSubscription expires one subscription by ID if it is overdue; the
// Redis TTL listener calls this the moment a coverage key fires.
func (s *SubscriptionService) ExpireSubscription(ctx context.Context, id uuid.UUID) error {
	now := s.now()
	var expired *models.Subscription
	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		sub, err := r.Subscriptions.GetByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("subscription")
		}
		if err != nil {
			return err
		}
		if sub.Status != models.SubscriptionActive || sub.EndDate >= now {
			return nil
		}
		sub.Status = models.SubscriptionExpired
		if err := r.Subscriptions.Update(ctx, sub); err != nil {
			return err
		}
		expired = sub
		return nil
	})
	if err != nil {
		return err
	}

	if expired != nil && s.publisher != nil {
		s.publisher.Publish(ctx, EventSubscriptionExpired, expired)
	}
	return nil
}

// ============================================================================
// COVERAGE TTL KEYS
//
// Each active subscription keeps a Redis key that expires at its end date;
// the expiration listener turns the keyspace event into an ExpireSubscription
// call so coverage lapses without waiting for the sweep interval.
// ============================================================================

func coverageTTLKey(id uuid.UUID) string {
	return fmt.Sprintf("subscription--%s--coverage", id)
}

func (s *SubscriptionService) registerCoverageTTL(ctx context.Context, sub *models.Subscription) {
	if s.redis == nil || sub == nil {
		return
	}
	ttl := time.Duration(sub.EndDate-s.now()) * time.Second
	if ttl <= 0 {
		return
	}
	if err := s.redis.Set(ctx, coverageTTLKey(sub.ID), sub.SubscriberID, ttl).Err(); err != nil {
		slog.Error("Failed to register coverage TTL key", "subscription_id", sub.ID, "error", err)
	}
}

func (s *SubscriptionService) dropCoverageTTL(ctx context.Context, id uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, coverageTTLKey(id)).Err(); err != nil {
		slog.Error("Failed to drop coverage TTL key", "subscription_id", id, "error", err)
	}
}
