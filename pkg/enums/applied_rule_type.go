package enums

// AppliedRuleType identifies which rule family produced an effective price.
type AppliedRuleType string

const (
	AppliedRuleTypeDiscount      AppliedRuleType = "discount"
	AppliedRuleTypePriceList     AppliedRuleType = "price_list"
	AppliedRuleTypeQuantityBreak AppliedRuleType = "quantity_break"
)

// String implements fmt.Stringer.
func (a AppliedRuleType) String() string {
	return string(a)
}
