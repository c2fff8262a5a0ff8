package rules

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lparedes/storefront-pricing/internal/pricing"
	"github.com/lparedes/storefront-pricing/internal/repo"
	pkgdb "github.com/lparedes/storefront-pricing/pkg/db"
	"github.com/lparedes/storefront-pricing/pkg/db/models"
	pkgerrors "github.com/lparedes/storefront-pricing/pkg/errors"
	"github.com/lparedes/storefront-pricing/pkg/pagination"
)

// Postgres names the (rule_id, min_qty) unique index on quantity_break_tiers.
const tierThresholdConstraint = "quantity_break_tiers_rule_id_min_qty_key"

// DiscountRuleRepository exposes persistence for the discount rule family,
// price lists included.
type DiscountRuleRepository interface {
	CreateDiscountRule(ctx context.Context, rule *models.DiscountRule) (*models.DiscountRule, error)
	UpdateDiscountRule(ctx context.Context, rule *models.DiscountRule) (*models.DiscountRule, error)
	SetDiscountRuleActive(ctx context.Context, id uuid.UUID, active bool) (*models.DiscountRule, error)
	DeleteDiscountRule(ctx context.Context, id uuid.UUID) error
	GetDiscountRule(ctx context.Context, id uuid.UUID) (*models.DiscountRule, error)
	ListDiscountRules(ctx context.Context, params pagination.Params) ([]models.DiscountRule, string, error)
}

// QuantityBreakRepository exposes persistence for quantity break rules and
// their tiers.
type QuantityBreakRepository interface {
	CreateQuantityBreak(ctx context.Context, rule *models.QuantityBreakRule) (*models.QuantityBreakRule, error)
	UpdateQuantityBreak(ctx context.Context, rule *models.QuantityBreakRule) (*models.QuantityBreakRule, error)
	SetQuantityBreakActive(ctx context.Context, id uuid.UUID, active bool) (*models.QuantityBreakRule, error)
	DeleteQuantityBreak(ctx context.Context, id uuid.UUID) error
	GetQuantityBreak(ctx context.Context, id uuid.UUID) (*models.QuantityBreakRule, error)
	ListQuantityBreaks(ctx context.Context, params pagination.Params) ([]models.QuantityBreakRule, string, error)
}

type readTxRunner interface {
	ReadTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Repository wires together rule persistence and snapshot assembly.
type Repository struct {
	base   repo.Base
	reader readTxRunner
}

// NewRepository builds a repository on the provided GORM DB. The reader runs
// snapshot loads inside a single transaction so both rule families come from
// one consistent view; it may be nil when snapshots are not needed.
func NewRepository(db *gorm.DB, reader readTxRunner) *Repository {
	return &Repository{base: repo.NewBase(db), reader: reader}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(tx), reader: r.reader}
}

func (r *Repository) CreateDiscountRule(ctx context.Context, rule *models.DiscountRule) (*models.DiscountRule, error) {
	if err := r.base.DB(ctx).Create(rule).Error; err != nil {
		if pkgdb.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "discount rule already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating discount rule")
	}
	return rule, nil
}

func (r *Repository) UpdateDiscountRule(ctx context.Context, rule *models.DiscountRule) (*models.DiscountRule, error) {
	result := r.base.DB(ctx).Model(&models.DiscountRule{}).
		Where("id = ?", rule.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(rule)
	if result.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "updating discount rule")
	}
	if result.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount rule not found")
	}
	return r.GetDiscountRule(ctx, rule.ID)
}

// SetDiscountRuleActive flips the active flag without touching the rest of
// the rule row.
func (r *Repository) SetDiscountRuleActive(ctx context.Context, id uuid.UUID, active bool) (*models.DiscountRule, error) {
	result := r.base.DB(ctx).Model(&models.DiscountRule{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "toggling discount rule")
	}
	if result.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount rule not found")
	}
	return r.GetDiscountRule(ctx, id)
}

func (r *Repository) DeleteDiscountRule(ctx context.Context, id uuid.UUID) error {
	result := r.base.DB(ctx).Where("id = ?", id).Delete(&models.DiscountRule{})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "deleting discount rule")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "discount rule not found")
	}
	return nil
}

func (r *Repository) GetDiscountRule(ctx context.Context, id uuid.UUID) (*models.DiscountRule, error) {
	var rule models.DiscountRule
	if err := r.base.DB(ctx).First(&rule, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount rule not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading discount rule")
	}
	return &rule, nil
}

func (r *Repository) ListDiscountRules(ctx context.Context, params pagination.Params) ([]models.DiscountRule, string, error) {
	query := r.base.DB(ctx).Model(&models.DiscountRule{}).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))
	query, err := applyCursor(query, params.Cursor)
	if err != nil {
		return nil, "", err
	}

	var rows []models.DiscountRule
	if err := query.Find(&rows).Error; err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing discount rules")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}

func (r *Repository) CreateQuantityBreak(ctx context.Context, rule *models.QuantityBreakRule) (*models.QuantityBreakRule, error) {
	if err := r.base.DB(ctx).Create(rule).Error; err != nil {
		if pkgdb.IsUniqueViolation(err, tierThresholdConstraint) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "duplicate quantity break threshold")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating quantity break rule")
	}
	return r.GetQuantityBreak(ctx, rule.ID)
}

// UpdateQuantityBreak rewrites the rule row and replaces its tier set inside
// one transaction, so readers never observe a rule with half its tiers.
func (r *Repository) UpdateQuantityBreak(ctx context.Context, rule *models.QuantityBreakRule) (*models.QuantityBreakRule, error) {
	err := r.base.DB(ctx).Transaction(func(tx *gorm.DB) error {
		return r.WithTx(tx).replaceQuantityBreak(ctx, rule)
	})
	if err != nil {
		return nil, err
	}
	return r.GetQuantityBreak(ctx, rule.ID)
}

func (r *Repository) replaceQuantityBreak(ctx context.Context, rule *models.QuantityBreakRule) error {
	db := r.base.DB(ctx)

	result := db.Model(&models.QuantityBreakRule{}).
		Where("id = ?", rule.ID).
		Select("*").
		Omit("id", "created_at", "Tiers").
		Updates(rule)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "updating quantity break rule")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "quantity break rule not found")
	}

	if err := db.Where("rule_id = ?", rule.ID).Delete(&models.QuantityBreakTier{}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing quantity break tiers")
	}
	if len(rule.Tiers) == 0 {
		return nil
	}
	tiers := make([]models.QuantityBreakTier, len(rule.Tiers))
	copy(tiers, rule.Tiers)
	for i := range tiers {
		tiers[i].ID = uuid.Nil
		tiers[i].RuleID = rule.ID
	}
	if err := db.Create(&tiers).Error; err != nil {
		if pkgdb.IsUniqueViolation(err, tierThresholdConstraint) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "duplicate quantity break threshold")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replacing quantity break tiers")
	}
	return nil
}

// SetQuantityBreakActive flips the active flag without rewriting the tier
// set.
func (r *Repository) SetQuantityBreakActive(ctx context.Context, id uuid.UUID, active bool) (*models.QuantityBreakRule, error) {
	result := r.base.DB(ctx).Model(&models.QuantityBreakRule{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "toggling quantity break rule")
	}
	if result.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quantity break rule not found")
	}
	return r.GetQuantityBreak(ctx, id)
}

func (r *Repository) DeleteQuantityBreak(ctx context.Context, id uuid.UUID) error {
	return r.base.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("rule_id = ?", id).Delete(&models.QuantityBreakTier{}).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting quantity break tiers")
		}
		result := tx.Where("id = ?", id).Delete(&models.QuantityBreakRule{})
		if result.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "deleting quantity break rule")
		}
		if result.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "quantity break rule not found")
		}
		return nil
	})
}

func (r *Repository) GetQuantityBreak(ctx context.Context, id uuid.UUID) (*models.QuantityBreakRule, error) {
	var rule models.QuantityBreakRule
	err := r.base.DB(ctx).
		Preload("Tiers", func(db *gorm.DB) *gorm.DB { return db.Order("min_qty ASC") }).
		First(&rule, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quantity break rule not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading quantity break rule")
	}
	return &rule, nil
}

func (r *Repository) ListQuantityBreaks(ctx context.Context, params pagination.Params) ([]models.QuantityBreakRule, string, error) {
	query := r.base.DB(ctx).Model(&models.QuantityBreakRule{}).
		Preload("Tiers", func(db *gorm.DB) *gorm.DB { return db.Order("min_qty ASC") }).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))
	query, err := applyCursor(query, params.Cursor)
	if err != nil {
		return nil, "", err
	}

	var rows []models.QuantityBreakRule
	if err := query.Find(&rows).Error; err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing quantity break rules")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}

// LoadSnapshot reads every active rule of both families inside one
// transaction, so a concurrent rule mutation can never surface in only half of
// the snapshot.
func (r *Repository) LoadSnapshot(ctx context.Context) (pricing.Snapshot, error) {
	var (
		discounts []models.DiscountRule
		breaks    []models.QuantityBreakRule
	)
	load := func(tx *gorm.DB) error {
		if err := tx.Where("is_active = ?", true).Find(&discounts).Error; err != nil {
			return err
		}
		return tx.
			Preload("Tiers", func(db *gorm.DB) *gorm.DB { return db.Order("min_qty ASC") }).
			Where("is_active = ?", true).
			Find(&breaks).Error
	}

	var err error
	if r.reader != nil {
		err = r.reader.ReadTx(ctx, load)
	} else {
		err = load(r.base.DB(ctx))
	}
	if err != nil {
		return pricing.Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading rule snapshot")
	}
	return toSnapshot(discounts, breaks), nil
}

func applyCursor(query *gorm.DB, raw string) (*gorm.DB, error) {
	cursor, err := pagination.ParseCursor(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor == nil {
		return query, nil
	}
	return query.Where(
		"created_at < ? OR (created_at = ? AND id < ?)",
		cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
	), nil
}
