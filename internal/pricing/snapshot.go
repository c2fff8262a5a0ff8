package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lparedes/storefront-pricing/pkg/enums"
)

// Scope is the applicability of a rule across the four targeting dimensions.
// An empty dimension is a wildcard and matches every context.
type Scope struct {
	MarketIDs   []uuid.UUID
	CustomerIDs []uuid.UUID
	ProductIDs  []uuid.UUID
	VariantIDs  []uuid.UUID
}

// DiscountRule is the engine-side view of a discount or price-list rule.
type DiscountRule struct {
	ID          uuid.UUID
	Title       string
	Type        enums.DiscountType
	Value       decimal.Decimal
	Priority    int
	StartDate   time.Time
	EndDate     *time.Time
	Active      bool
	PriceList   bool
	Scope       Scope
	CreatedAt   time.Time
}

// QuantityTier is one threshold of a quantity break rule. Type is restricted
// to percentage or fixed_amount at the write boundary.
type QuantityTier struct {
	MinQty int
	Type   enums.DiscountType
	Value  decimal.Decimal
}

// QuantityBreakRule is the engine-side view of a tiered quantity discount.
// Tiers are sorted by ascending MinQty when the snapshot is built.
type QuantityBreakRule struct {
	ID        uuid.UUID
	Title     string
	StartDate time.Time
	EndDate   *time.Time
	Active    bool
	Scope     Scope
	Tiers     []QuantityTier
	CreatedAt time.Time
}

// Snapshot is an immutable view of every rule considered during a resolution.
// The store layer fetches both families under one read so concurrent rule
// mutations never produce a torn snapshot.
type Snapshot struct {
	Discounts      []DiscountRule
	QuantityBreaks []QuantityBreakRule
}

// Context carries the dimensions of a single price query.
type Context struct {
	ProductID  uuid.UUID
	VariantID  *uuid.UUID
	CustomerID *uuid.UUID
	MarketID   uuid.UUID
	Quantity   int
	Now        time.Time
}

// AppliedRule describes the rule that produced the effective price.
type AppliedRule struct {
	ID    uuid.UUID             `json:"id"`
	Title string                `json:"title"`
	Type  enums.AppliedRuleType `json:"type"`
}

// Result is the outcome of resolving one (product, variant) against a context.
type Result struct {
	BasePrice      decimal.Decimal `json:"base_price"`
	FinalPrice     decimal.Decimal `json:"final_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Applied        *AppliedRule    `json:"applied_rule"`

	// Ambiguous flags that some family tie could only be broken by the
	// rule-id fallback. The outcome is still deterministic; callers log it
	// because it points at a data-quality problem upstream.
	Ambiguous bool `json:"-"`
}
