package pricing

import (
	"github.com/shopspring/decimal"
)

// Resolve computes the effective unit price for one (product, variant) pair
// against an immutable rule snapshot. It is a pure function: identical inputs
// always produce identical results, and no input is mutated.
func Resolve(snapshot Snapshot, basePrice decimal.Decimal, ctx Context) Result {
	priceListWinner, plAmbiguous := resolveDiscount(matchDiscountRules(snapshot.Discounts, ctx, true))
	discountWinner, dAmbiguous := resolveDiscount(matchDiscountRules(snapshot.Discounts, ctx, false))
	breakWinner, qbAmbiguous := resolveQuantityBreak(matchQuantityBreaks(snapshot.QuantityBreaks, ctx))
	tier := selectTier(breakWinner, ctx.Quantity)

	result := compute(basePrice, priceListWinner, discountWinner, breakWinner, tier)
	result.Ambiguous = plAmbiguous || dAmbiguous || qbAmbiguous
	return result
}

// Item pairs a base price with the variant dimension it belongs to, for batch
// resolution.
type Item struct {
	BasePrice decimal.Decimal
	Context   Context
}

// ResolveMany resolves every item against the same snapshot. Results are
// positionally aligned with the input and identical to calling Resolve once
// per item.
func ResolveMany(snapshot Snapshot, items []Item) []Result {
	results := make([]Result, 0, len(items))
	for _, item := range items {
		results = append(results, Resolve(snapshot, item.BasePrice, item.Context))
	}
	return results
}
