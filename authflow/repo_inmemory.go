package authflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"

	apperrors "github.com/jrsteele09/go-analytics-embed/internal/errors"
)

// InMemoryRepo is a thread-safe in-memory implementation of Repo backed by
// a TTL cache, so abandoned login attempts are reclaimed automatically.
type InMemoryRepo struct {
	cache      *ttlcache.Cache[string, Request]
	defaultTTL time.Duration
}

var _ Repo = (*InMemoryRepo)(nil)

// NewInMemoryRepo creates a new in-memory authorization request repository.
func NewInMemoryRepo(ttl time.Duration) *InMemoryRepo {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, Request](ttl),
		ttlcache.WithDisableTouchOnHit[string, Request](),
	)

	// Start the background eviction process. Correctness does not depend on
	// it; Consume checks expiry at lookup time.
	go cache.Start()

	return &InMemoryRepo{
		cache:      cache,
		defaultTTL: ttl,
	}
}

// Put stores a pending request keyed by its state value.
func (r *InMemoryRepo) Put(state string, req Request) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if req.CodeVerifier == "" {
		return errors.New("code verifier cannot be empty")
	}

	ttl := r.defaultTTL
	if !req.ExpiresAt.IsZero() {
		ttl = time.Until(req.ExpiresAt)
	}
	if ttl <= 0 {
		return fmt.Errorf("request for state %q is already expired", state)
	}

	r.cache.Set(state, req, ttl)
	return nil
}

// Consume looks up a pending request and removes it in one atomic step,
// guaranteeing exactly-once redemption under concurrent duplicate
// callbacks; the losing caller observes ErrInvalidState.
func (r *InMemoryRepo) Consume(state string) (Request, error) {
	if state == "" {
		return Request{}, apperrors.ErrInvalidState
	}

	item, ok := r.cache.GetAndDelete(state)
	if !ok || item == nil {
		return Request{}, apperrors.ErrInvalidState
	}

	req := item.Value()
	if !req.ExpiresAt.IsZero() && time.Now().After(req.ExpiresAt) {
		return Request{}, apperrors.ErrInvalidState
	}

	return req, nil
}

// Close stops the background eviction goroutine.
func (r *InMemoryRepo) Close() {
	r.cache.Stop()
}
