package enums

import "fmt"

// DiscountType classifies how a rule's value is applied to a price.
type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "percentage"
	DiscountTypeFixedAmount DiscountType = "fixed_amount"
	DiscountTypeFixedPrice  DiscountType = "fixed_price"
)

var validDiscountTypes = []DiscountType{
	DiscountTypePercentage,
	DiscountTypeFixedAmount,
	DiscountTypeFixedPrice,
}

// String implements fmt.Stringer.
func (d DiscountType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known discount type.
func (d DiscountType) IsValid() bool {
	for _, v := range validDiscountTypes {
		if d == v {
			return true
		}
	}
	return false
}

// IsReduction reports whether the type reduces a price rather than replacing it.
func (d DiscountType) IsReduction() bool {
	return d == DiscountTypePercentage || d == DiscountTypeFixedAmount
}

// ParseDiscountType validates and converts a raw string.
func ParseDiscountType(raw string) (DiscountType, error) {
	d := DiscountType(raw)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid discount type %q", raw)
	}
	return d, nil
}
