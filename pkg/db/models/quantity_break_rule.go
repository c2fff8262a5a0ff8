package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lparedes/storefront-pricing/pkg/types"
)

// QuantityBreakRule groups ordered tiers of quantity-triggered discounts under
// one applicability scope and validity window.
type QuantityBreakRule struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string             `gorm:"column:title;not null"`
	Description *string            `gorm:"column:description"`
	StartDate   time.Time          `gorm:"column:start_date;not null"`
	EndDate     *time.Time         `gorm:"column:end_date"`
	IsActive    bool               `gorm:"column:is_active;not null;default:true"`
	MarketIDs   types.UUIDArray    `gorm:"column:market_ids;type:uuid[];not null;default:'{}'"`
	CustomerIDs types.UUIDArray    `gorm:"column:customer_ids;type:uuid[];not null;default:'{}'"`
	ProductIDs  types.UUIDArray    `gorm:"column:product_ids;type:uuid[];not null;default:'{}'"`
	VariantIDs  types.UUIDArray    `gorm:"column:variant_ids;type:uuid[];not null;default:'{}'"`
	Tiers       []QuantityBreakTier `gorm:"foreignKey:RuleID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
