// Package optimistic implements the optimistic-concurrency core for basket
// mutations: every write carries the last observed etag, and a stale-token
// rejection is recovered exactly once by refetching and re-issuing.
package optimistic

import (
	"context"
	"log/slog"
	"sync"

	"pos-basket/internal/gateway"
	"pos-basket/internal/model"
)

// Operation is one mutating gateway call, parameterized by the basket id and
// the etag the syncer wants attached. It must be safe to issue twice: the
// syncer re-invokes it after a conflict with a refreshed etag.
type Operation func(ctx context.Context, basketID, etag string) (*model.Basket, error)

// Syncer owns the session's basket and serializes mutations against it.
// The etag is an advisory lock against the server's copy, not a local mutex;
// the embedded mutex is what enforces "one logical mutation in flight" for
// local callers.
type Syncer struct {
	mu     sync.Mutex
	gw     gateway.Interface
	basket *model.Basket
	logger *slog.Logger
}

// New creates a syncer seeded with an already-fetched basket.
func New(gw gateway.Interface, initial *model.Basket, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{gw: gw, basket: initial, logger: logger}
}

// Basket returns a snapshot of the current aggregate.
func (s *Syncer) Basket() *model.Basket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.basket.Clone()
}

// Do runs one mutating operation under the sync contract:
//
//  1. Attach the current etag and issue the call.
//  2. On success, adopt the response body and its etag.
//  3. On a conflict fault, refetch the authoritative basket once, then
//     re-issue the operation with the refreshed etag. A second failure is
//     surfaced as-is, with no further retries, so genuinely conflicting
//     intents cannot loop.
//  4. Any other fault is surfaced immediately with local state untouched.
//
// The remote basket can be touched by another channel (a storefront session,
// another register) between client reads; the single bounded retry resolves
// the common stale-while-editing race without masking real conflicts.
func (s *Syncer) Do(ctx context.Context, op Operation) (*model.Basket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := op(ctx, s.basket.ID, s.basket.Etag)
	if err == nil {
		s.adopt(b)
		return b.Clone(), nil
	}
	if !model.IsConflict(err) {
		return nil, err
	}

	s.logger.Debug("etag conflict, refreshing basket",
		slog.String("basket_id", s.basket.ID),
		slog.String("stale_etag", s.basket.Etag),
	)

	fresh, ferr := s.gw.GetBasket(ctx)
	if ferr != nil {
		return nil, ferr
	}
	s.adopt(fresh)

	b, err = op(ctx, fresh.ID, fresh.Etag)
	if err != nil {
		return nil, err
	}
	s.adopt(b)
	return b.Clone(), nil
}

// Refresh refetches the authoritative basket unconditionally.
func (s *Syncer) Refresh(ctx context.Context) (*model.Basket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fresh, err := s.gw.GetBasket(ctx)
	if err != nil {
		return nil, err
	}
	s.adopt(fresh)
	return fresh.Clone(), nil
}

// Replace adopts an externally produced basket, e.g. after a delete creates
// a fresh one.
func (s *Syncer) Replace(b *model.Basket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adopt(b)
}

// adopt replaces local state with a server representation. The response
// etag always supersedes the previous one, even when the server returns an
// unchanged token.
func (s *Syncer) adopt(b *model.Basket) {
	// Preserve client-only state the wire document does not carry.
	if b.Status == "" && s.basket != nil {
		b.Status = s.basket.Status
	}
	s.basket = b
}
