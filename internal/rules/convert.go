package rules

import (
	"sort"

	"github.com/lparedes/storefront-pricing/internal/pricing"
	"github.com/lparedes/storefront-pricing/pkg/db/models"
)

func toEngineDiscount(m models.DiscountRule) pricing.DiscountRule {
	return pricing.DiscountRule{
		ID:        m.ID,
		Title:     m.Title,
		Type:      m.DiscountType,
		Value:     m.DiscountValue,
		Priority:  m.Priority,
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
		Active:    m.IsActive,
		PriceList: m.IsPriceList,
		Scope: pricing.Scope{
			MarketIDs:   m.MarketIDs,
			CustomerIDs: m.CustomerIDs,
			ProductIDs:  m.ProductIDs,
			VariantIDs:  m.VariantIDs,
		},
		CreatedAt: m.CreatedAt,
	}
}

func toEngineQuantityBreak(m models.QuantityBreakRule) pricing.QuantityBreakRule {
	tiers := make([]pricing.QuantityTier, 0, len(m.Tiers))
	for _, tier := range m.Tiers {
		tiers = append(tiers, pricing.QuantityTier{
			MinQty: tier.MinQty,
			Type:   tier.DiscountType,
			Value:  tier.DiscountValue,
		})
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinQty < tiers[j].MinQty })
	return pricing.QuantityBreakRule{
		ID:        m.ID,
		Title:     m.Title,
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
		Active:    m.IsActive,
		Scope: pricing.Scope{
			MarketIDs:   m.MarketIDs,
			CustomerIDs: m.CustomerIDs,
			ProductIDs:  m.ProductIDs,
			VariantIDs:  m.VariantIDs,
		},
		Tiers:     tiers,
		CreatedAt: m.CreatedAt,
	}
}

func toSnapshot(discounts []models.DiscountRule, breaks []models.QuantityBreakRule) pricing.Snapshot {
	snapshot := pricing.Snapshot{
		Discounts:      make([]pricing.DiscountRule, 0, len(discounts)),
		QuantityBreaks: make([]pricing.QuantityBreakRule, 0, len(breaks)),
	}
	for _, rule := range discounts {
		snapshot.Discounts = append(snapshot.Discounts, toEngineDiscount(rule))
	}
	for _, rule := range breaks {
		snapshot.QuantityBreaks = append(snapshot.QuantityBreaks, toEngineQuantityBreak(rule))
	}
	return snapshot
}
