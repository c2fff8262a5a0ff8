package pricing

import (
	"time"

	"github.com/google/uuid"
)

// specificity ranks how narrowly a scope targets a context. The primary rank
// comes from the product axis (variant beats product beats neither); customer
// and market scoping only break ties between rules of equal primary rank.
func (s Scope) specificity() (primary, secondary int) {
	if len(s.VariantIDs) > 0 {
		primary += 2
	}
	if len(s.ProductIDs) > 0 {
		primary++
	}
	if len(s.CustomerIDs) > 0 {
		secondary++
	}
	if len(s.MarketIDs) > 0 {
		secondary++
	}
	return primary, secondary
}

// ruleKey is the total ordering applied within one rule family.
type ruleKey struct {
	priority  int
	primary   int
	secondary int
	createdAt time.Time
	id        uuid.UUID
}

// beats reports whether a wins over b. Higher priority first, then narrower
// scope, then most recent creation. The direction of the priority comparison
// lives only here.
func (a ruleKey) beats(b ruleKey) bool {
	if a.priority != b.priority {
		return a.priority > b.priority
	}
	if a.primary != b.primary {
		return a.primary > b.primary
	}
	if a.secondary != b.secondary {
		return a.secondary > b.secondary
	}
	if !a.createdAt.Equal(b.createdAt) {
		return a.createdAt.After(b.createdAt)
	}
	return a.id.String() > b.id.String()
}

// tiedWith reports whether the ordering could only separate a and b by id.
func (a ruleKey) tiedWith(b ruleKey) bool {
	return a.priority == b.priority &&
		a.primary == b.primary &&
		a.secondary == b.secondary &&
		a.createdAt.Equal(b.createdAt)
}

func discountKey(rule DiscountRule) ruleKey {
	primary, secondary := rule.Scope.specificity()
	return ruleKey{
		priority:  rule.Priority,
		primary:   primary,
		secondary: secondary,
		createdAt: rule.CreatedAt,
		id:        rule.ID,
	}
}

func quantityBreakKey(rule QuantityBreakRule) ruleKey {
	// quantity break rules carry no operator-facing priority; they order on
	// specificity and recency alone
	primary, secondary := rule.Scope.specificity()
	return ruleKey{
		primary:   primary,
		secondary: secondary,
		createdAt: rule.CreatedAt,
		id:        rule.ID,
	}
}

// resolveDiscount picks the single winner among discount-family candidates.
// The ambiguous flag is set when some rival could only be separated from the
// winner by the id fallback.
func resolveDiscount(candidates []DiscountRule) (winner *DiscountRule, ambiguous bool) {
	for i := range candidates {
		rule := candidates[i]
		if winner == nil || discountKey(rule).beats(discountKey(*winner)) {
			winner = &rule
		}
	}
	if winner == nil {
		return nil, false
	}
	for i := range candidates {
		if candidates[i].ID == winner.ID {
			continue
		}
		if discountKey(candidates[i]).tiedWith(discountKey(*winner)) {
			return winner, true
		}
	}
	return winner, false
}

// resolveQuantityBreak picks the single winner among quantity-break candidates.
func resolveQuantityBreak(candidates []QuantityBreakRule) (winner *QuantityBreakRule, ambiguous bool) {
	for i := range candidates {
		rule := candidates[i]
		if winner == nil || quantityBreakKey(rule).beats(quantityBreakKey(*winner)) {
			winner = &rule
		}
	}
	if winner == nil {
		return nil, false
	}
	for i := range candidates {
		if candidates[i].ID == winner.ID {
			continue
		}
		if quantityBreakKey(candidates[i]).tiedWith(quantityBreakKey(*winner)) {
			return winner, true
		}
	}
	return winner, false
}
