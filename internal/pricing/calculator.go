package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/lparedes/storefront-pricing/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// reductionAmount computes how much a percentage or fixed-amount adjustment
// takes off the working price. Fixed amounts are clamped so a reduction can
// never push the price below zero.
func reductionAmount(working decimal.Decimal, discountType enums.DiscountType, value decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch discountType {
	case enums.DiscountTypePercentage:
		amount = working.Mul(value).Div(hundred).Round(2)
	case enums.DiscountTypeFixedAmount:
		amount = value
	default:
		return decimal.Zero
	}
	if amount.GreaterThan(working) {
		return working
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// compute combines the per-family winners into one result. The price list
// replaces the base price outright; between the discount winner and the
// selected quantity tier only the single reduction that leaves the customer
// with the lowest price is applied, never both.
func compute(basePrice decimal.Decimal, priceList, discount *DiscountRule, quantityBreak *QuantityBreakRule, tier *QuantityTier) Result {
	working := basePrice
	if priceList != nil {
		working = priceList.Value
	}

	discountReduction := decimal.Zero
	if discount != nil {
		discountReduction = reductionAmount(working, discount.Type, discount.Value)
	}
	tierReduction := decimal.Zero
	if tier != nil {
		tierReduction = reductionAmount(working, tier.Type, tier.Value)
	}

	chosen := decimal.Zero
	var applied *AppliedRule
	switch {
	case discount != nil && discountReduction.GreaterThanOrEqual(tierReduction) && discountReduction.IsPositive():
		chosen = discountReduction
		applied = &AppliedRule{ID: discount.ID, Title: discount.Title, Type: enums.AppliedRuleTypeDiscount}
	case tier != nil && tierReduction.IsPositive():
		chosen = tierReduction
		applied = &AppliedRule{ID: quantityBreak.ID, Title: quantityBreak.Title, Type: enums.AppliedRuleTypeQuantityBreak}
	case priceList != nil:
		applied = &AppliedRule{ID: priceList.ID, Title: priceList.Title, Type: enums.AppliedRuleTypePriceList}
	}

	final := working.Sub(chosen)
	if final.IsNegative() {
		final = decimal.Zero
	}

	return Result{
		BasePrice:      basePrice,
		FinalPrice:     final,
		DiscountAmount: basePrice.Sub(final),
		Applied:        applied,
	}
}
