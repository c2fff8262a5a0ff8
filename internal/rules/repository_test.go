//go:build db
// +build db

package rules

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lparedes/storefront-pricing/pkg/db/models"
	"github.com/lparedes/storefront-pricing/pkg/enums"
	pkgerrors "github.com/lparedes/storefront-pricing/pkg/errors"
	"github.com/lparedes/storefront-pricing/pkg/pagination"
	"github.com/lparedes/storefront-pricing/pkg/types"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("PRICING_DB_DSN")
	if dsn == "" {
		t.Skip("PRICING_DB_DSN is not set")
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return conn
}

func testDiscountRule(title string) *models.DiscountRule {
	return &models.DiscountRule{
		Title:         title,
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
		StartDate:     time.Now().Add(-time.Hour),
		IsActive:      true,
		MarketIDs:     types.UUIDArray{},
		CustomerIDs:   types.UUIDArray{},
		ProductIDs:    types.UUIDArray{},
		VariantIDs:    types.UUIDArray{},
	}
}

func TestRepositoryDiscountRuleFlow(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	repository := NewRepository(tx, nil)
	ctx := context.Background()

	created, err := repository.CreateDiscountRule(ctx, testDiscountRule("spring sale"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected a generated id")
	}

	created.Priority = 7
	updated, err := repository.UpdateDiscountRule(ctx, created)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Priority != 7 {
		t.Fatalf("priority = %d, want 7", updated.Priority)
	}

	loaded, err := repository.GetDiscountRule(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Title != "spring sale" {
		t.Fatalf("title = %q", loaded.Title)
	}

	rows, _, err := repository.ListDiscountRules(ctx, pagination.Params{Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) == 0 {
		t.Fatal("expected at least the created rule")
	}

	toggled, err := repository.SetDiscountRuleActive(ctx, created.ID, false)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if toggled.IsActive {
		t.Fatal("expected rule to be inactive after toggle")
	}
	if toggled.Priority != 7 {
		t.Fatalf("toggle must leave other columns alone, priority = %d", toggled.Priority)
	}
	if _, err := repository.SetDiscountRuleActive(ctx, uuid.New(), true); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for unknown id, got %v", err)
	}

	if err := repository.DeleteDiscountRule(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repository.GetDiscountRule(ctx, created.ID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestRepositoryQuantityBreakFlow(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	repository := NewRepository(tx, nil)
	ctx := context.Background()

	rule := &models.QuantityBreakRule{
		Title:       "case pricing",
		StartDate:   time.Now().Add(-time.Hour),
		IsActive:    true,
		MarketIDs:   types.UUIDArray{},
		CustomerIDs: types.UUIDArray{},
		ProductIDs:  types.UUIDArray{},
		VariantIDs:  types.UUIDArray{},
		Tiers: []models.QuantityBreakTier{
			{MinQty: 10, DiscountType: enums.DiscountTypePercentage, DiscountValue: decimal.NewFromInt(20)},
			{MinQty: 5, DiscountType: enums.DiscountTypePercentage, DiscountValue: decimal.NewFromInt(10)},
		},
	}

	created, err := repository.CreateQuantityBreak(ctx, rule)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created.Tiers) != 2 {
		t.Fatalf("tiers = %d, want 2", len(created.Tiers))
	}
	if created.Tiers[0].MinQty != 5 {
		t.Fatalf("tiers must come back ordered ascending, got first min_qty %d", created.Tiers[0].MinQty)
	}

	created.Tiers = []models.QuantityBreakTier{
		{MinQty: 3, DiscountType: enums.DiscountTypeFixedAmount, DiscountValue: decimal.NewFromInt(2)},
	}
	updated, err := repository.UpdateQuantityBreak(ctx, created)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Tiers) != 1 || updated.Tiers[0].MinQty != 3 {
		t.Fatalf("tier replacement failed: %+v", updated.Tiers)
	}

	if err := repository.DeleteQuantityBreak(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestRepositoryLoadSnapshotSkipsInactive(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	repository := NewRepository(tx, nil)
	ctx := context.Background()

	active := testDiscountRule("active")
	if _, err := repository.CreateDiscountRule(ctx, active); err != nil {
		t.Fatalf("create active: %v", err)
	}
	inactive := testDiscountRule("inactive")
	inactive.IsActive = false
	if _, err := repository.CreateDiscountRule(ctx, inactive); err != nil {
		t.Fatalf("create inactive: %v", err)
	}

	snapshot, err := repository.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	for _, rule := range snapshot.Discounts {
		if rule.ID == inactive.ID {
			t.Fatal("inactive rules must not enter the snapshot")
		}
	}
}
