package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lparedes/storefront-pricing/pkg/enums"
)

// QuantityBreakTier is a single threshold within a quantity break rule.
// Thresholds are unique per rule; the tier with the greatest MinQty not
// exceeding the ordered quantity wins.
type QuantityBreakTier struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RuleID        uuid.UUID          `gorm:"column:rule_id;type:uuid;not null"`
	MinQty        int                `gorm:"column:min_qty;not null"`
	DiscountType  enums.DiscountType `gorm:"column:discount_type;not null"`
	DiscountValue decimal.Decimal    `gorm:"column:discount_value;type:numeric(12,2);not null"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
}
