package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	providerBalanceKey = "provider:balance"
	providerBalanceTTL = time.Minute
)

// ProviderBalanceCache holds the upstream provider balance for a short TTL
// so the admin dashboard does not hit the provider on every load.
type ProviderBalanceCache struct {
	client *redis.Client
}

func NewProviderBalanceCache(client *redis.Client) *ProviderBalanceCache {
	return &ProviderBalanceCache{client: client}
}

type cachedBalance struct {
	Balance   float64   `json:"balance"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Get returns the cached balance and when it was fetched. A miss, an expired
// entry, or any Redis error all report ok=false; the caller falls through to
// the provider.
func (c *ProviderBalanceCache) Get(ctx context.Context) (float64, time.Time, bool) {
	raw, err := c.client.Get(ctx, providerBalanceKey).Bytes()
	if err != nil {
		return 0, time.Time{}, false
	}
	var entry cachedBalance
	if err := json.Unmarshal(raw, &entry); err != nil {
		return 0, time.Time{}, false
	}
	return entry.Balance, entry.FetchedAt, true
}

// Set stores the balance with the cache TTL.
func (c *ProviderBalanceCache) Set(ctx context.Context, balance float64, fetchedAt time.Time) error {
	payload, err := json.Marshal(cachedBalance{Balance: balance, FetchedAt: fetchedAt})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, providerBalanceKey, payload, providerBalanceTTL).Err()
}
