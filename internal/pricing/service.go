package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/lparedes/storefront-pricing/pkg/errors"
	"github.com/lparedes/storefront-pricing/pkg/logger"
	"github.com/lparedes/storefront-pricing/pkg/metrics"
)

type snapshotLoader interface {
	LoadSnapshot(ctx context.Context) (Snapshot, error)
}

type basePriceLoader interface {
	BasePrice(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (decimal.Decimal, error)
}

// ResolveRequest is one price query. At is optional and defaults to the
// current time; requests pinned to an explicit time bypass the cache.
type ResolveRequest struct {
	ProductID  uuid.UUID
	VariantID  *uuid.UUID
	CustomerID *uuid.UUID
	MarketID   uuid.UUID
	Quantity   int
	At         *time.Time
}

// Resolution is the outward-facing resolution payload. Unavailable marks a
// degraded answer where the rule set could not be loaded and the base price
// was served untouched.
type Resolution struct {
	Result
	ProductID   uuid.UUID  `json:"product_id"`
	VariantID   *uuid.UUID `json:"variant_id,omitempty"`
	Unavailable bool       `json:"pricing_unavailable,omitempty"`
}

// Service exposes price resolution backed by the rule store, the catalog, and
// an optional result cache.
type Service interface {
	Resolve(ctx context.Context, req ResolveRequest) (*Resolution, error)
	ResolveMany(ctx context.Context, reqs []ResolveRequest) ([]Resolution, error)
}

type service struct {
	rules   snapshotLoader
	catalog basePriceLoader
	cache   *resolutionCache
	logg    *logger.Logger
	metrics *metrics.PricingMetrics
	now     func() time.Time
}

// NewService builds the resolution service. The cache store and metrics are
// optional; the rule and catalog loaders are not.
func NewService(rules snapshotLoader, catalog basePriceLoader, cache CacheStore, cacheTTL time.Duration, logg *logger.Logger, pm *metrics.PricingMetrics) (Service, error) {
	if rules == nil {
		return nil, fmt.Errorf("rule snapshot loader required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog price loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		rules:   rules,
		catalog: catalog,
		cache:   newResolutionCache(cache, cacheTTL),
		logg:    logg,
		metrics: pm,
		now:     time.Now,
	}, nil
}

func (s *service) Resolve(ctx context.Context, req ResolveRequest) (*Resolution, error) {
	started := s.now()
	defer func() {
		s.metrics.ObserveDuration("single", s.now().Sub(started))
	}()

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if req.At == nil && s.cache != nil {
		cached, outcome := s.cache.get(ctx, req)
		s.metrics.IncCache(string(outcome))
		if cached != nil {
			s.metrics.IncResolution(appliedLabel(cached.Applied))
			return cached, nil
		}
	}

	basePrice, err := s.catalog.BasePrice(ctx, req.ProductID, req.VariantID)
	if err != nil {
		s.metrics.IncFailure()
		return nil, err
	}

	snapshot, err := s.rules.LoadSnapshot(ctx)
	if err != nil {
		// degrade to the untouched base price rather than failing the
		// storefront read path
		s.metrics.IncFailure()
		s.logg.Error(ctx, "rule snapshot unavailable, serving base price", err)
		return s.degraded(req, basePrice), nil
	}

	resolution := s.resolveOne(ctx, snapshot, basePrice, req)
	if req.At == nil {
		s.cache.put(ctx, req, resolution)
	}
	s.metrics.IncResolution(appliedLabel(resolution.Applied))
	return resolution, nil
}

func (s *service) ResolveMany(ctx context.Context, reqs []ResolveRequest) ([]Resolution, error) {
	started := s.now()
	defer func() {
		s.metrics.ObserveDuration("batch", s.now().Sub(started))
	}()

	for i, req := range reqs {
		if err := validateRequest(req); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("item %d", i))
		}
	}

	snapshot, snapErr := s.rules.LoadSnapshot(ctx)
	if snapErr != nil {
		s.metrics.IncFailure()
		s.logg.Error(ctx, "rule snapshot unavailable, serving base prices", snapErr)
	}

	resolutions := make([]Resolution, 0, len(reqs))
	for _, req := range reqs {
		basePrice, err := s.catalog.BasePrice(ctx, req.ProductID, req.VariantID)
		if err != nil {
			s.metrics.IncFailure()
			return nil, err
		}
		if snapErr != nil {
			resolutions = append(resolutions, *s.degraded(req, basePrice))
			continue
		}
		resolution := s.resolveOne(ctx, snapshot, basePrice, req)
		s.metrics.IncResolution(appliedLabel(resolution.Applied))
		resolutions = append(resolutions, *resolution)
	}
	return resolutions, nil
}

func (s *service) resolveOne(ctx context.Context, snapshot Snapshot, basePrice decimal.Decimal, req ResolveRequest) *Resolution {
	engineCtx := Context{
		ProductID:  req.ProductID,
		VariantID:  req.VariantID,
		CustomerID: req.CustomerID,
		MarketID:   req.MarketID,
		Quantity:   req.Quantity,
		Now:        s.at(req),
	}
	result := Resolve(snapshot, basePrice, engineCtx)
	if result.Ambiguous {
		logCtx := s.logg.WithProductID(ctx, req.ProductID.String())
		if result.Applied != nil {
			logCtx = s.logg.WithRuleID(logCtx, result.Applied.ID.String())
		}
		s.logg.Warn(logCtx, "rule tie broken by id fallback, review rule priorities")
	}
	return &Resolution{
		Result:    result,
		ProductID: req.ProductID,
		VariantID: req.VariantID,
	}
}

func (s *service) degraded(req ResolveRequest, basePrice decimal.Decimal) *Resolution {
	return &Resolution{
		Result: Result{
			BasePrice:      basePrice,
			FinalPrice:     basePrice,
			DiscountAmount: decimal.Zero,
		},
		ProductID:   req.ProductID,
		VariantID:   req.VariantID,
		Unavailable: true,
	}
}

func (s *service) at(req ResolveRequest) time.Time {
	if req.At != nil {
		return *req.At
	}
	return s.now()
}

func validateRequest(req ResolveRequest) error {
	if req.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	if req.MarketID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "market_id is required")
	}
	if req.Quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	return nil
}

func appliedLabel(applied *AppliedRule) string {
	if applied == nil {
		return "none"
	}
	return string(applied.Type)
}
