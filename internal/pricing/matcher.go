package pricing

import (
	"time"

	"github.com/google/uuid"
)

// withinWindow reports whether now falls inside [start, end]. Both bounds are
// inclusive; a nil end leaves the window open.
func withinWindow(now, start time.Time, end *time.Time) bool {
	if now.Before(start) {
		return false
	}
	if end != nil && now.After(*end) {
		return false
	}
	return true
}

func containsID(set []uuid.UUID, id uuid.UUID) bool {
	for _, entry := range set {
		if entry == id {
			return true
		}
	}
	return false
}

// Matches reports whether the scope covers the context. Every non-empty
// dimension must contain the corresponding context id; a context without a
// variant or customer can only satisfy a wildcard on that dimension.
func (s Scope) Matches(ctx Context) bool {
	if len(s.MarketIDs) > 0 && !containsID(s.MarketIDs, ctx.MarketID) {
		return false
	}
	if len(s.CustomerIDs) > 0 {
		if ctx.CustomerID == nil || !containsID(s.CustomerIDs, *ctx.CustomerID) {
			return false
		}
	}
	if len(s.ProductIDs) > 0 && !containsID(s.ProductIDs, ctx.ProductID) {
		return false
	}
	if len(s.VariantIDs) > 0 {
		if ctx.VariantID == nil || !containsID(s.VariantIDs, *ctx.VariantID) {
			return false
		}
	}
	return true
}

// matchDiscountRules returns the discount-family candidates for the context.
// The priceList flag splits the shared rule table into its two families; a
// variant-scoped and a product-scoped rule covering the same variant are both
// returned, the resolver decides between them.
func matchDiscountRules(rules []DiscountRule, ctx Context, priceList bool) []DiscountRule {
	var candidates []DiscountRule
	for _, rule := range rules {
		if rule.PriceList != priceList {
			continue
		}
		if !rule.Active {
			continue
		}
		if !withinWindow(ctx.Now, rule.StartDate, rule.EndDate) {
			continue
		}
		if !rule.Scope.Matches(ctx) {
			continue
		}
		candidates = append(candidates, rule)
	}
	return candidates
}

// matchQuantityBreaks returns the quantity-break candidates for the context.
func matchQuantityBreaks(rules []QuantityBreakRule, ctx Context) []QuantityBreakRule {
	var candidates []QuantityBreakRule
	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		if !withinWindow(ctx.Now, rule.StartDate, rule.EndDate) {
			continue
		}
		if !rule.Scope.Matches(ctx) {
			continue
		}
		candidates = append(candidates, rule)
	}
	return candidates
}
