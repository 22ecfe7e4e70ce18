// Package cache provides the explicit invalidate-on-write query cache used by
// the service layer. Views read through it; every write path invalidates the
// keys it made stale so dependent views refetch.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// DefaultTTL bounds staleness for entries whose writes bypass this process
// (e.g. a second dashboard session against the same store).
const DefaultTTL = 5 * time.Minute

// Cache is a key-addressed byte cache with prefix invalidation.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// Key builders. Every caller composes keys through these so invalidation and
// population can never drift apart on spelling.

// BudgetKey caches a single budget document.
func BudgetKey(budgetID string) string {
	return "budget:" + budgetID
}

// BudgetsKey caches a coach's budget collection view.
func BudgetsKey(coachID string) string {
	return "budgets:" + coachID
}

// PlansKey caches one plan type's history for a client, clientKey being
// domain.ClientRef.Key() ("customer:<hex>" or "lead:<hex>").
func PlansKey(planType, clientKey string) string {
	return "plans:" + planType + ":" + clientKey
}

// ClientPlansKeys returns the per-type plan keys for a single client. The
// plan key layout puts the type before the client, so a single-prefix sweep
// would clear other clients too; invalidation walks these instead.
func ClientPlansKeys(planTypes []string, clientKey string) []string {
	keys := make([]string, 0, len(planTypes))
	for _, t := range planTypes {
		keys = append(keys, PlansKey(t, clientKey))
	}
	return keys
}
