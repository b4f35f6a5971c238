package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/redis/go-redis/v9"

	"github.com/olegsm/billgate/internal/entity"
)

const keyPrefix = "billgate:bill:"

// Redis is a shared Ledger for multi-instance deployments. SETNX gives the
// same set-if-absent semantics the in-memory implementation has under its
// lock. Entries carry a TTL so abandoned bills do not accumulate forever.
type Redis struct {
	c   *redis.Client
	ttl time.Duration
}

func NewRedis(addr string, ttl time.Duration) *Redis {
	return &Redis{
		c:   redis.NewClient(&redis.Options{Addr: addr}),
		ttl: ttl,
	}
}

func (r *Redis) Get(ctx context.Context, billID uuid.UUID) (entity.BillStatus, error) {
	v, err := r.c.Get(ctx, keyPrefix+billID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return entity.BillStatusWaiting, nil
	}

	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}

	status, err := entity.ParseBillStatus(v)
	if err != nil {
		return "", fmt.Errorf("stored status %q: %w", v, err)
	}

	return status, nil
}

func (r *Redis) SetIfUnset(ctx context.Context, billID uuid.UUID, status entity.BillStatus) (bool, error) {
	if !status.IsTerminal() {
		return false, nil
	}

	set, err := r.c.SetNX(ctx, keyPrefix+billID.String(), status.String(), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}

	return set, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.c.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.c.Close()
}
