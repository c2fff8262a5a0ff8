package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lparedes/storefront-pricing/pkg/enums"
	"github.com/lparedes/storefront-pricing/pkg/types"
)

// DiscountRule is a scoped, time-boxed price adjustment. Price-list overrides
// share this table and are distinguished by the IsPriceList flag; the write
// path guarantees a price-list row always carries the fixed_price type.
type DiscountRule struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title         string             `gorm:"column:title;not null"`
	Description   *string            `gorm:"column:description"`
	DiscountType  enums.DiscountType `gorm:"column:discount_type;not null"`
	DiscountValue decimal.Decimal    `gorm:"column:discount_value;type:numeric(12,2);not null"`
	Priority      int                `gorm:"column:priority;not null;default:0"`
	StartDate     time.Time          `gorm:"column:start_date;not null"`
	EndDate       *time.Time         `gorm:"column:end_date"`
	IsActive      bool               `gorm:"column:is_active;not null;default:true"`
	IsPriceList   bool               `gorm:"column:is_price_list;not null;default:false"`
	MarketIDs     types.UUIDArray    `gorm:"column:market_ids;type:uuid[];not null;default:'{}'"`
	CustomerIDs   types.UUIDArray    `gorm:"column:customer_ids;type:uuid[];not null;default:'{}'"`
	ProductIDs    types.UUIDArray    `gorm:"column:product_ids;type:uuid[];not null;default:'{}'"`
	VariantIDs    types.UUIDArray    `gorm:"column:variant_ids;type:uuid[];not null;default:'{}'"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
