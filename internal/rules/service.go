package rules

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/lparedes/storefront-pricing/pkg/db/models"
	"github.com/lparedes/storefront-pricing/pkg/enums"
	pkgerrors "github.com/lparedes/storefront-pricing/pkg/errors"
	"github.com/lparedes/storefront-pricing/pkg/logger"
	"github.com/lparedes/storefront-pricing/pkg/pagination"
	"github.com/lparedes/storefront-pricing/pkg/types"
)

// ruleGenerationScope names the cache generation counter shared with the
// resolution service. Any rule mutation bumps it.
const ruleGenerationScope = "rules"

var maxPercentage = decimal.NewFromInt(100)

type cacheInvalidator interface {
	BumpGeneration(ctx context.Context, scope string) (int64, error)
}

// ScopeInput carries the four applicability dimensions of a rule. An empty
// dimension means the rule applies to every value of that dimension.
type ScopeInput struct {
	MarketIDs   []uuid.UUID
	CustomerIDs []uuid.UUID
	ProductIDs  []uuid.UUID
	VariantIDs  []uuid.UUID
}

// DiscountRuleInput is the write payload for discount rules and price lists.
type DiscountRuleInput struct {
	Title         string
	Description   *string
	DiscountType  enums.DiscountType
	DiscountValue decimal.Decimal
	Priority      int
	StartDate     time.Time
	EndDate       *time.Time
	IsActive      *bool
	IsPriceList   bool
	Scope         ScopeInput
}

// TierInput is one quantity threshold in a quantity break payload.
type TierInput struct {
	MinQty        int
	DiscountType  enums.DiscountType
	DiscountValue decimal.Decimal
}

// QuantityBreakInput is the write payload for quantity break rules.
type QuantityBreakInput struct {
	Title       string
	Description *string
	StartDate   time.Time
	EndDate     *time.Time
	IsActive    *bool
	Scope       ScopeInput
	Tiers       []TierInput
}

// Service exposes rule administration. Every successful mutation invalidates
// the resolution cache.
type Service interface {
	CreateDiscountRule(ctx context.Context, input DiscountRuleInput) (*models.DiscountRule, error)
	UpdateDiscountRule(ctx context.Context, id uuid.UUID, input DiscountRuleInput) (*models.DiscountRule, error)
	SetDiscountRuleActive(ctx context.Context, id uuid.UUID, active bool) (*models.DiscountRule, error)
	DeleteDiscountRule(ctx context.Context, id uuid.UUID) error
	GetDiscountRule(ctx context.Context, id uuid.UUID) (*models.DiscountRule, error)
	ListDiscountRules(ctx context.Context, params pagination.Params) ([]models.DiscountRule, string, error)

	CreateQuantityBreak(ctx context.Context, input QuantityBreakInput) (*models.QuantityBreakRule, error)
	UpdateQuantityBreak(ctx context.Context, id uuid.UUID, input QuantityBreakInput) (*models.QuantityBreakRule, error)
	SetQuantityBreakActive(ctx context.Context, id uuid.UUID, active bool) (*models.QuantityBreakRule, error)
	DeleteQuantityBreak(ctx context.Context, id uuid.UUID) error
	GetQuantityBreak(ctx context.Context, id uuid.UUID) (*models.QuantityBreakRule, error)
	ListQuantityBreaks(ctx context.Context, params pagination.Params) ([]models.QuantityBreakRule, string, error)
}

type ruleRepository interface {
	DiscountRuleRepository
	QuantityBreakRepository
}

type service struct {
	repo        ruleRepository
	invalidator cacheInvalidator
	logg        *logger.Logger
}

// NewService builds the rule administration service. The invalidator is
// optional; without one the resolution cache ages out on TTL alone.
func NewService(repository ruleRepository, invalidator cacheInvalidator, logg *logger.Logger) (Service, error) {
	if repository == nil {
		return nil, fmt.Errorf("rule repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repository, invalidator: invalidator, logg: logg}, nil
}

func (s *service) CreateDiscountRule(ctx context.Context, input DiscountRuleInput) (*models.DiscountRule, error) {
	if err := validateDiscountRule(input); err != nil {
		return nil, err
	}
	created, err := s.repo.CreateDiscountRule(ctx, discountModel(uuid.Nil, input))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *service) UpdateDiscountRule(ctx context.Context, id uuid.UUID, input DiscountRuleInput) (*models.DiscountRule, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rule id is required")
	}
	if err := validateDiscountRule(input); err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateDiscountRule(ctx, discountModel(id, input))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *service) SetDiscountRuleActive(ctx context.Context, id uuid.UUID, active bool) (*models.DiscountRule, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rule id is required")
	}
	updated, err := s.repo.SetDiscountRuleActive(ctx, id, active)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *service) DeleteDiscountRule(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteDiscountRule(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) GetDiscountRule(ctx context.Context, id uuid.UUID) (*models.DiscountRule, error) {
	return s.repo.GetDiscountRule(ctx, id)
}

func (s *service) ListDiscountRules(ctx context.Context, params pagination.Params) ([]models.DiscountRule, string, error) {
	return s.repo.ListDiscountRules(ctx, params)
}

func (s *service) CreateQuantityBreak(ctx context.Context, input QuantityBreakInput) (*models.QuantityBreakRule, error) {
	if err := validateQuantityBreak(input); err != nil {
		return nil, err
	}
	created, err := s.repo.CreateQuantityBreak(ctx, quantityBreakModel(uuid.Nil, input))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *service) UpdateQuantityBreak(ctx context.Context, id uuid.UUID, input QuantityBreakInput) (*models.QuantityBreakRule, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rule id is required")
	}
	if err := validateQuantityBreak(input); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateQuantityBreak(ctx, quantityBreakModel(id, input))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *service) SetQuantityBreakActive(ctx context.Context, id uuid.UUID, active bool) (*models.QuantityBreakRule, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rule id is required")
	}
	updated, err := s.repo.SetQuantityBreakActive(ctx, id, active)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *service) DeleteQuantityBreak(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteQuantityBreak(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) GetQuantityBreak(ctx context.Context, id uuid.UUID) (*models.QuantityBreakRule, error) {
	return s.repo.GetQuantityBreak(ctx, id)
}

func (s *service) ListQuantityBreaks(ctx context.Context, params pagination.Params) ([]models.QuantityBreakRule, string, error) {
	return s.repo.ListQuantityBreaks(ctx, params)
}

// invalidate bumps the cache generation. A failed bump is logged and
// swallowed: serving a stale price until the TTL expires beats failing the
// admin write after it already committed.
func (s *service) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if _, err := s.invalidator.BumpGeneration(ctx, ruleGenerationScope); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("cache invalidation failed, stale prices until TTL: %v", err))
	}
}

func validateDiscountRule(input DiscountRuleInput) error {
	var errs error
	if input.Title == "" {
		errs = multierr.Append(errs, fmt.Errorf("title is required"))
	}
	if !input.DiscountType.IsValid() {
		errs = multierr.Append(errs, fmt.Errorf("unknown discount_type %q", input.DiscountType))
	}
	if input.DiscountValue.IsNegative() {
		errs = multierr.Append(errs, fmt.Errorf("discount_value must not be negative"))
	}
	if input.DiscountType == enums.DiscountTypePercentage && input.DiscountValue.GreaterThan(maxPercentage) {
		errs = multierr.Append(errs, fmt.Errorf("percentage discount_value must not exceed 100"))
	}
	if input.IsPriceList && input.DiscountType != enums.DiscountTypeFixedPrice {
		errs = multierr.Append(errs, fmt.Errorf("price list rules require the fixed_price type"))
	}
	if !input.IsPriceList && input.DiscountType == enums.DiscountTypeFixedPrice {
		errs = multierr.Append(errs, fmt.Errorf("fixed_price is reserved for price list rules"))
	}
	if input.StartDate.IsZero() {
		errs = multierr.Append(errs, fmt.Errorf("start_date is required"))
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		errs = multierr.Append(errs, fmt.Errorf("end_date must not precede start_date"))
	}
	if errs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, errs, "invalid discount rule").
			WithDetails(violationMessages(errs))
	}
	return nil
}

func validateQuantityBreak(input QuantityBreakInput) error {
	var errs error
	if input.Title == "" {
		errs = multierr.Append(errs, fmt.Errorf("title is required"))
	}
	if input.StartDate.IsZero() {
		errs = multierr.Append(errs, fmt.Errorf("start_date is required"))
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		errs = multierr.Append(errs, fmt.Errorf("end_date must not precede start_date"))
	}
	if len(input.Tiers) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("at least one tier is required"))
	}
	lastMin := 0
	for i, tier := range input.Tiers {
		if tier.MinQty < 1 {
			errs = multierr.Append(errs, fmt.Errorf("tier %d: min_qty must be at least 1", i))
		}
		if i > 0 && tier.MinQty <= lastMin {
			errs = multierr.Append(errs, fmt.Errorf("tier %d: thresholds must be strictly increasing", i))
		}
		lastMin = tier.MinQty
		if !tier.DiscountType.IsReduction() {
			errs = multierr.Append(errs, fmt.Errorf("tier %d: discount_type must be percentage or fixed_amount", i))
		}
		if tier.DiscountValue.IsNegative() {
			errs = multierr.Append(errs, fmt.Errorf("tier %d: discount_value must not be negative", i))
		}
		if tier.DiscountType == enums.DiscountTypePercentage && tier.DiscountValue.GreaterThan(maxPercentage) {
			errs = multierr.Append(errs, fmt.Errorf("tier %d: percentage must not exceed 100", i))
		}
	}
	if errs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, errs, "invalid quantity break rule").
			WithDetails(violationMessages(errs))
	}
	return nil
}

func violationMessages(errs error) []string {
	violations := multierr.Errors(errs)
	messages := make([]string, 0, len(violations))
	for _, violation := range violations {
		messages = append(messages, violation.Error())
	}
	return messages
}

func discountModel(id uuid.UUID, input DiscountRuleInput) *models.DiscountRule {
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	return &models.DiscountRule{
		ID:            id,
		Title:         input.Title,
		Description:   input.Description,
		DiscountType:  input.DiscountType,
		DiscountValue: input.DiscountValue,
		Priority:      input.Priority,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
		IsActive:      active,
		IsPriceList:   input.IsPriceList,
		MarketIDs:     scopeColumn(input.Scope.MarketIDs),
		CustomerIDs:   scopeColumn(input.Scope.CustomerIDs),
		ProductIDs:    scopeColumn(input.Scope.ProductIDs),
		VariantIDs:    scopeColumn(input.Scope.VariantIDs),
	}
}

func quantityBreakModel(id uuid.UUID, input QuantityBreakInput) *models.QuantityBreakRule {
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	tiers := make([]models.QuantityBreakTier, 0, len(input.Tiers))
	for _, tier := range input.Tiers {
		tiers = append(tiers, models.QuantityBreakTier{
			MinQty:        tier.MinQty,
			DiscountType:  tier.DiscountType,
			DiscountValue: tier.DiscountValue,
		})
	}
	return &models.QuantityBreakRule{
		ID:          id,
		Title:       input.Title,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		IsActive:    active,
		MarketIDs:   scopeColumn(input.Scope.MarketIDs),
		CustomerIDs: scopeColumn(input.Scope.CustomerIDs),
		ProductIDs:  scopeColumn(input.Scope.ProductIDs),
		VariantIDs:  scopeColumn(input.Scope.VariantIDs),
		Tiers:       tiers,
	}
}

func scopeColumn(ids []uuid.UUID) types.UUIDArray {
	if len(ids) == 0 {
		return types.UUIDArray{}
	}
	return types.UUIDArray(ids)
}
