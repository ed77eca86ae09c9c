package api

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type rateWindowClient interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	ExpireNX(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// bumpRateWindow increments the counter for one sliding rate window and
// returns the new count. ExpireNX stamps the window TTL on whichever call
// finds the key without one, so a counter orphaned by a crashed Expire
// still decays.
func bumpRateWindow(ctx context.Context, client rateWindowClient, key string, window time.Duration) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	_ = client.ExpireNX(ctx, key, window).Err()
	return count, nil
}
