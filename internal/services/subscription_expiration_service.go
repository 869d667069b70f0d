package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SubscriptionExpirationService flips subscriptions to expired when their
// Redis coverage key hits its TTL. It is a fast path on top of the periodic
// sweep: if Redis drops an event the sweep still catches the subscription.
type SubscriptionExpirationService struct {
	redisClient         *redis.Client
	subscriptionService *SubscriptionService
	stopChannel         chan struct{}
	stats               *ExpirationStats
}

// ExpirationStats tracks processing statistics
type ExpirationStats struct {
	TotalExpired      int64
	SuccessfulExpires int64
	FailedExpires     int64
	LastProcessed     time.Time
	mu                sync.RWMutex
}

func NewSubscriptionExpirationService(redisClient *redis.Client, subscriptionService *SubscriptionService) *SubscriptionExpirationService {
	return &SubscriptionExpirationService{
		redisClient:         redisClient,
		subscriptionService: subscriptionService,
		stopChannel:         make(chan struct{}),
		stats: &ExpirationStats{
			LastProcessed: time.Now(),
		},
	}
}

// StartListener begins listening for Redis expiration events. Requires
// notify-keyspace-events to include "Ex" on the Redis server.
func (s *SubscriptionExpirationService) StartListener(ctx context.Context) error {
	slog.Info("Starting subscription expiration listener")

	pubsub := s.redisClient.PSubscribe(ctx, "__keyevent@*__:expired")
	defer pubsub.Close()

	for {
		select {
		case msg := <-pubsub.Channel():
			if s.isCoverageKey(msg.Payload) {
				go s.processExpiredCoverage(context.Background(), msg.Payload)
			}
		case <-ctx.Done():
			slog.Info("Subscription expiration listener stopped")
			return ctx.Err()
		case <-s.stopChannel:
			slog.Info("Subscription expiration listener stopped gracefully")
			return nil
		}
	}
}

// Stop gracefully stops the expiration listener
func (s *SubscriptionExpirationService) Stop() {
	close(s.stopChannel)
}

// isCoverageKey checks if the expired key is a subscription coverage marker.
// Pattern: subscription--{subscriptionID}--coverage
func (s *SubscriptionExpirationService) isCoverageKey(expiredKey string) bool {
	return strings.HasPrefix(expiredKey, "subscription--") && strings.HasSuffix(expiredKey, "--coverage")
}

// processExpiredCoverage handles a single expired coverage key
func (s *SubscriptionExpirationService) processExpiredCoverage(ctx context.Context, expiredKey string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic recovery", "panic", r)
		}
	}()

	slog.Info("Processing expired subscription coverage", "expired_key", expiredKey)
	s.updateStats(true, false)

	subscriptionID, err := s.extractSubscriptionID(expiredKey)
	if err != nil {
		slog.Error("Failed to extract subscription ID", "expired_key", expiredKey, "error", err)
		s.updateStats(false, true)
		return
	}

	if err := s.subscriptionService.ExpireSubscription(ctx, subscriptionID); err != nil {
		slog.Error("Auto-expire failed",
			"expired_key", expiredKey,
			"subscription_id", subscriptionID,
			"error", err)
		s.updateStats(false, true)
		return
	}

	slog.Info("Auto-expire completed successfully",
		"expired_key", expiredKey,
		"subscription_id", subscriptionID)
	s.updateStats(false, false)
}

// extractSubscriptionID parses the subscription ID out of an expired key
func (s *SubscriptionExpirationService) extractSubscriptionID(expiredKey string) (uuid.UUID, error) {
	parts := strings.Split(expiredKey, "--")
	if len(parts) != 3 {
		return uuid.Nil, fmt.Errorf("invalid key format: %s", expiredKey)
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid subscription ID in key %s: %w", expiredKey, err)
	}
	return id, nil
}

// updateStats updates processing statistics
func (s *SubscriptionExpirationService) updateStats(processed bool, failed bool) {
	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()

	if processed {
		s.stats.TotalExpired++
		s.stats.LastProcessed = time.Now()
	}

	if failed {
		s.stats.FailedExpires++
	} else if processed {
		s.stats.SuccessfulExpires++
	}
}

// GetStats returns current processing statistics
func (s *SubscriptionExpirationService) GetStats() ExpirationStats {
	s.stats.mu.RLock()
	defer s.stats.mu.RUnlock()
	return ExpirationStats{
		TotalExpired:      s.stats.TotalExpired,
		SuccessfulExpires: s.stats.SuccessfulExpires,
		FailedExpires:     s.stats.FailedExpires,
		LastProcessed:     s.stats.LastProcessed,
	}
}

// HealthCheck reports whether the listener is keeping up
func (s *SubscriptionExpirationService) HealthCheck() error {
	stats := s.GetStats()

	if stats.TotalExpired > 0 {
		failureRate := float64(stats.FailedExpires) / float64(stats.TotalExpired)
		if failureRate > 0.5 {
			return fmt.Errorf("high failure rate: %.1f%%", failureRate*100)
		}
	}

	return nil
}
