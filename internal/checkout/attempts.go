package checkout

import (
	"context"
	"encoding/json"
	"time"

	"github.com/maisonvelaire/storefront-backend/pkg/config"
	pkgerrors "github.com/maisonvelaire/storefront-backend/pkg/errors"
	"github.com/maisonvelaire/storefront-backend/pkg/redis"
)

// Attempt is the durable record of one checkout run. It lives in redis for
// the attempt TTL so the completion callback can be correlated with the order
// it pays for; abandoned attempts simply expire.
type Attempt struct {
	ID             string    `json:"id"`
	State          State     `json:"state"`
	OrderID        string    `json:"order_id,omitempty"`
	GatewayOrderID string    `json:"gateway_order_id,omitempty"`
	AmountMinor    int64     `json:"amount_minor,omitempty"`
	Currency       string    `json:"currency,omitempty"`
	Email          string    `json:"email"`
	CreatedAt      time.Time `json:"created_at"`
	FailureCode    string    `json:"failure_code,omitempty"`
	FailureMessage string    `json:"failure_message,omitempty"`
}

// AttemptStore persists attempts as JSON blobs keyed by attempt id.
type AttemptStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewAttemptStore(client *redis.Client, cfg config.CheckoutConfig) *AttemptStore {
	ttl := cfg.AttemptTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &AttemptStore{redis: client, ttl: ttl}
}

// Save writes the attempt, refreshing its TTL. Every transition rewrites the
// whole record; attempts are small and contention-free per id.
func (s *AttemptStore) Save(ctx context.Context, attempt *Attempt) error {
	payload, err := json.Marshal(attempt)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to encode checkout attempt")
	}
	if err := s.redis.Set(ctx, s.redis.AttemptKey(attempt.ID), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to store checkout attempt")
	}
	return nil
}

// Find loads an attempt by id. Unknown or expired ids map to not-found.
func (s *AttemptStore) Find(ctx context.Context, attemptID string) (*Attempt, error) {
	raw, err := s.redis.Get(ctx, s.redis.AttemptKey(attemptID))
	if err != nil {
		if redis.IsNil(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout attempt not found or expired")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load checkout attempt")
	}
	var attempt Attempt
	if err := json.Unmarshal([]byte(raw), &attempt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to decode checkout attempt")
	}
	return &attempt, nil
}
