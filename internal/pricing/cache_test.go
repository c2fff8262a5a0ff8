package pricing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func cacheRequest(productID uuid.UUID) ResolveRequest {
	return ResolveRequest{
		ProductID: productID,
		MarketID:  uuid.New(),
		Quantity:  3,
	}
}

func TestCacheKeyCoversFullContext(t *testing.T) {
	store := newFakeCacheStore()
	cache := newResolutionCache(store, time.Minute)

	productID := uuid.New()
	variantID := uuid.New()
	customerID := uuid.New()

	req := cacheRequest(productID)
	req.VariantID = &variantID
	req.CustomerID = &customerID

	key := cache.key(4, req)
	for _, part := range []string{"g4", req.MarketID.String(), productID.String(), variantID.String(), customerID.String(), "3"} {
		if !strings.Contains(key, part) {
			t.Fatalf("key %q missing %q", key, part)
		}
	}

	anon := cacheRequest(productID)
	anonKey := cache.key(4, anon)
	if anonKey == key {
		t.Fatal("anonymous and customer-scoped requests must not share a key")
	}
	if !strings.Contains(anonKey, ":-:") {
		t.Fatalf("absent dimensions should appear as placeholders, got %q", anonKey)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	store := newFakeCacheStore()
	cache := newResolutionCache(store, time.Minute)
	ctx := context.Background()

	req := cacheRequest(uuid.New())
	resolution := &Resolution{
		Result: Result{
			BasePrice:  decimal.NewFromInt(100),
			FinalPrice: decimal.NewFromInt(85),
		},
		ProductID: req.ProductID,
	}

	if got, outcome := cache.get(ctx, req); got != nil || outcome != cacheMiss {
		t.Fatalf("expected a miss on empty cache, got %v/%s", got, outcome)
	}

	cache.put(ctx, req, resolution)

	got, outcome := cache.get(ctx, req)
	if outcome != cacheHit {
		t.Fatalf("expected a hit after put, got %s", outcome)
	}
	if !got.FinalPrice.Equal(resolution.FinalPrice) {
		t.Fatalf("cached final price = %s, want %s", got.FinalPrice, resolution.FinalPrice)
	}
}

func TestCacheGenerationBumpOrphansEntries(t *testing.T) {
	store := newFakeCacheStore()
	cache := newResolutionCache(store, time.Minute)
	ctx := context.Background()

	req := cacheRequest(uuid.New())
	cache.put(ctx, req, &Resolution{ProductID: req.ProductID})

	store.generation++

	if got, outcome := cache.get(ctx, req); got != nil || outcome != cacheMiss {
		t.Fatalf("entries from an old generation must read as misses, got %v/%s", got, outcome)
	}
}

func TestCacheStoreErrorReadsAsError(t *testing.T) {
	store := newFakeCacheStore()
	store.getErr = errors.New("connection refused")
	cache := newResolutionCache(store, time.Minute)

	if got, outcome := cache.get(context.Background(), cacheRequest(uuid.New())); got != nil || outcome != cacheError {
		t.Fatalf("store failures must surface as cacheError, got %v/%s", got, outcome)
	}
}

func TestCacheNilSafety(t *testing.T) {
	var cache *resolutionCache
	if got, outcome := cache.get(context.Background(), cacheRequest(uuid.New())); got != nil || outcome != cacheMiss {
		t.Fatalf("nil cache must behave as a permanent miss, got %v/%s", got, outcome)
	}
	cache.put(context.Background(), cacheRequest(uuid.New()), &Resolution{})

	if newResolutionCache(nil, time.Minute) != nil {
		t.Fatal("a nil store must yield a nil cache")
	}
}
