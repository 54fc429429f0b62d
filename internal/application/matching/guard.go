package matching

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/josa-ai/verve-noir-app/internal/domain/matching"
	"github.com/josa-ai/verve-noir-app/internal/domain/shared"
	"go.uber.org/zap"
)

const itemLockPrefix = "match:item:"

// itemGuard serializes match operations on the same order item.
// A nil store disables guarding; an unreachable store is logged and ignored.
type itemGuard struct {
	store  shared.LockStore
	ttl    time.Duration
	logger *zap.Logger
}

func (g itemGuard) run(ctx context.Context, itemID uuid.UUID, fn func(ctx context.Context) error) error {
	if g.store == nil {
		return fn(ctx)
	}

	key := itemLockPrefix + itemID.String()
	token, ok, err := g.store.Acquire(ctx, key, g.ttl)
	if err != nil {
		g.logger.Warn("item lock unavailable, continuing unguarded",
			zap.String("item_id", itemID.String()), zap.Error(err))
		return fn(ctx)
	}
	if !ok {
		return matching.ErrMatchInProgress
	}
	defer func() {
		// release even if the caller's context was cancelled
		if err := g.store.Release(context.WithoutCancel(ctx), key, token); err != nil {
			g.logger.Warn("failed to release item lock",
				zap.String("item_id", itemID.String()), zap.Error(err))
		}
	}()
	return fn(ctx)
}
