package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	pkgredis "github.com/lparedes/storefront-pricing/pkg/redis"
)

// generationScope is the counter every rule mutation bumps. A bump orphans all
// previously written resolution entries at once.
const generationScope = "rules"

type CacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Generation(ctx context.Context, scope string) (int64, error)
	CacheKey(parts ...string) string
}

type cacheOutcome string

const (
	cacheHit   cacheOutcome = "hit"
	cacheMiss  cacheOutcome = "miss"
	cacheError cacheOutcome = "error"
)

// resolutionCache memoizes resolution results keyed by the full query context
// and the current rule generation. It is best effort: any store failure reads
// as a miss and writes are fire and forget.
type resolutionCache struct {
	store CacheStore
	ttl   time.Duration
}

func newResolutionCache(store CacheStore, ttl time.Duration) *resolutionCache {
	if store == nil {
		return nil
	}
	return &resolutionCache{store: store, ttl: ttl}
}

func (c *resolutionCache) key(generation int64, req ResolveRequest) string {
	variant := "-"
	if req.VariantID != nil {
		variant = req.VariantID.String()
	}
	customer := "-"
	if req.CustomerID != nil {
		customer = req.CustomerID.String()
	}
	return c.store.CacheKey(
		"resolution",
		fmt.Sprintf("g%d", generation),
		req.MarketID.String(),
		req.ProductID.String(),
		variant,
		customer,
		strconv.Itoa(req.Quantity),
	)
}

func (c *resolutionCache) get(ctx context.Context, req ResolveRequest) (*Resolution, cacheOutcome) {
	if c == nil {
		return nil, cacheMiss
	}
	generation, err := c.store.Generation(ctx, generationScope)
	if err != nil {
		return nil, cacheError
	}
	raw, err := c.store.Get(ctx, c.key(generation, req))
	if err != nil {
		if errors.Is(err, pkgredis.Nil) {
			return nil, cacheMiss
		}
		return nil, cacheError
	}
	var resolution Resolution
	if err := json.Unmarshal([]byte(raw), &resolution); err != nil {
		return nil, cacheError
	}
	return &resolution, cacheHit
}

func (c *resolutionCache) put(ctx context.Context, req ResolveRequest, resolution *Resolution) {
	if c == nil || resolution == nil {
		return
	}
	generation, err := c.store.Generation(ctx, generationScope)
	if err != nil {
		return
	}
	raw, err := json.Marshal(resolution)
	if err != nil {
		return
	}
	_ = c.store.Set(ctx, c.key(generation, req), string(raw), c.ttl)
}
