package pricing

// selectTier picks the tier with the greatest threshold not exceeding the
// requested quantity. A quantity below the lowest threshold selects nothing.
func selectTier(rule *QuantityBreakRule, quantity int) *QuantityTier {
	if rule == nil {
		return nil
	}
	var selected *QuantityTier
	for i := range rule.Tiers {
		tier := rule.Tiers[i]
		if tier.MinQty > quantity {
			continue
		}
		if selected == nil || tier.MinQty > selected.MinQty {
			chosen := tier
			selected = &chosen
		}
	}
	return selected
}
