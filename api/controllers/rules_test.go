package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lparedes/storefront-pricing/internal/rules"
	"github.com/lparedes/storefront-pricing/pkg/db/models"
	"github.com/lparedes/storefront-pricing/pkg/enums"
	pkgerrors "github.com/lparedes/storefront-pricing/pkg/errors"
	"github.com/lparedes/storefront-pricing/pkg/pagination"
)

type stubRulesService struct {
	rule       *models.DiscountRule
	err        error
	lastInput  rules.DiscountRuleInput
	deletedID  uuid.UUID
	lastActive *bool
}

func (s *stubRulesService) CreateDiscountRule(ctx context.Context, input rules.DiscountRuleInput) (*models.DiscountRule, error) {
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return s.rule, nil
}

func (s *stubRulesService) UpdateDiscountRule(ctx context.Context, id uuid.UUID, input rules.DiscountRuleInput) (*models.DiscountRule, error) {
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return s.rule, nil
}

func (s *stubRulesService) SetDiscountRuleActive(ctx context.Context, id uuid.UUID, active bool) (*models.DiscountRule, error) {
	s.lastActive = &active
	if s.err != nil {
		return nil, s.err
	}
	s.rule.IsActive = active
	return s.rule, nil
}

func (s *stubRulesService) DeleteDiscountRule(ctx context.Context, id uuid.UUID) error {
	s.deletedID = id
	return s.err
}

func (s *stubRulesService) GetDiscountRule(ctx context.Context, id uuid.UUID) (*models.DiscountRule, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rule, nil
}

func (s *stubRulesService) ListDiscountRules(ctx context.Context, params pagination.Params) ([]models.DiscountRule, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return []models.DiscountRule{*s.rule}, "", nil
}

func (s *stubRulesService) CreateQuantityBreak(ctx context.Context, input rules.QuantityBreakInput) (*models.QuantityBreakRule, error) {
	panic("unimplemented")
}

func (s *stubRulesService) UpdateQuantityBreak(ctx context.Context, id uuid.UUID, input rules.QuantityBreakInput) (*models.QuantityBreakRule, error) {
	panic("unimplemented")
}

func (s *stubRulesService) SetQuantityBreakActive(ctx context.Context, id uuid.UUID, active bool) (*models.QuantityBreakRule, error) {
	panic("unimplemented")
}

func (s *stubRulesService) DeleteQuantityBreak(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

func (s *stubRulesService) GetQuantityBreak(ctx context.Context, id uuid.UUID) (*models.QuantityBreakRule, error) {
	panic("unimplemented")
}

func (s *stubRulesService) ListQuantityBreaks(ctx context.Context, params pagination.Params) ([]models.QuantityBreakRule, string, error) {
	panic("unimplemented")
}

func sampleDiscountRule() *models.DiscountRule {
	return &models.DiscountRule{
		ID:            uuid.New(),
		Title:         "Summer sale",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
		StartDate:     time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		IsActive:      true,
	}
}

func TestCreateDiscountRuleHandler(t *testing.T) {
	logg := testLogger()
	marketID := uuid.New()

	post := func(stub *stubRulesService, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/discount-rules", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		CreateDiscountRule(stub, logg).ServeHTTP(rec, req)
		return rec
	}

	t.Run("success", func(t *testing.T) {
		stub := &stubRulesService{rule: sampleDiscountRule()}
		body := fmt.Sprintf(`{
			"title": "Summer sale",
			"discount_type": "percentage",
			"discount_value": "10",
			"start_date": "2026-06-01T00:00:00Z",
			"scope": {"market_ids": [%q]}
		}`, marketID)
		rec := post(stub, body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.lastInput.Title != "Summer sale" {
			t.Fatalf("expected input title to pass through, got %q", stub.lastInput.Title)
		}
		if len(stub.lastInput.Scope.MarketIDs) != 1 || stub.lastInput.Scope.MarketIDs[0] != marketID {
			t.Fatalf("expected market scope to pass through, got %+v", stub.lastInput.Scope.MarketIDs)
		}

		var envelope struct {
			Data discountRuleResponse `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if envelope.Data.DiscountType != "percentage" {
			t.Fatalf("expected percentage type in response, got %q", envelope.Data.DiscountType)
		}
	})

	t.Run("title is trimmed", func(t *testing.T) {
		stub := &stubRulesService{rule: sampleDiscountRule()}
		rec := post(stub, `{
			"title": "  Summer sale  ",
			"discount_type": "percentage",
			"discount_value": "10",
			"start_date": "2026-06-01T00:00:00Z",
			"scope": {}
		}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.lastInput.Title != "Summer sale" {
			t.Fatalf("expected trimmed title, got %q", stub.lastInput.Title)
		}
	})

	t.Run("unknown discount type", func(t *testing.T) {
		stub := &stubRulesService{rule: sampleDiscountRule()}
		rec := post(stub, `{
			"title": "Bad",
			"discount_type": "lottery",
			"start_date": "2026-06-01T00:00:00Z",
			"scope": {}
		}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for unknown type, got %d", rec.Code)
		}
	})

	t.Run("missing title", func(t *testing.T) {
		stub := &stubRulesService{rule: sampleDiscountRule()}
		rec := post(stub, `{
			"discount_type": "percentage",
			"start_date": "2026-06-01T00:00:00Z",
			"scope": {}
		}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for missing title, got %d", rec.Code)
		}
	})

	t.Run("service validation error", func(t *testing.T) {
		stub := &stubRulesService{err: pkgerrors.New(pkgerrors.CodeValidation, "invalid rule")}
		body := fmt.Sprintf(`{
			"title": "Summer sale",
			"discount_type": "percentage",
			"discount_value": "10",
			"start_date": "2026-06-01T00:00:00Z",
			"scope": {"market_ids": [%q]}
		}`, marketID)
		rec := post(stub, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 from service error, got %d", rec.Code)
		}
	})
}

func TestToggleDiscountRuleActiveHandler(t *testing.T) {
	logg := testLogger()
	ruleID := uuid.New()

	patch := func(stub *stubRulesService, rawID, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch, "/api/admin/v1/discount-rules/"+rawID+"/active", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("id", rawID)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
		rec := httptest.NewRecorder()
		ToggleDiscountRuleActive(stub, logg).ServeHTTP(rec, req)
		return rec
	}

	t.Run("deactivates", func(t *testing.T) {
		stub := &stubRulesService{rule: sampleDiscountRule()}
		rec := patch(stub, ruleID.String(), `{"is_active": false}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.lastActive == nil || *stub.lastActive {
			t.Fatalf("expected service call with active=false, got %v", stub.lastActive)
		}

		var envelope struct {
			Data discountRuleResponse `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if envelope.Data.IsActive {
			t.Fatal("expected inactive rule in response")
		}
	})

	t.Run("missing flag", func(t *testing.T) {
		stub := &stubRulesService{rule: sampleDiscountRule()}
		rec := patch(stub, ruleID.String(), `{}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for missing is_active, got %d", rec.Code)
		}
		if stub.lastActive != nil {
			t.Fatal("service should not be called without the flag")
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		stub := &stubRulesService{rule: sampleDiscountRule()}
		rec := patch(stub, "not-a-uuid", `{"is_active": true}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid id, got %d", rec.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		stub := &stubRulesService{err: pkgerrors.New(pkgerrors.CodeNotFound, "discount rule not found")}
		rec := patch(stub, ruleID.String(), `{"is_active": true}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestDeleteDiscountRuleHandler(t *testing.T) {
	logg := testLogger()
	ruleID := uuid.New()

	del := func(stub *stubRulesService, rawID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/api/admin/v1/discount-rules/"+rawID, nil)
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("id", rawID)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
		rec := httptest.NewRecorder()
		DeleteDiscountRule(stub, logg).ServeHTTP(rec, req)
		return rec
	}

	t.Run("success", func(t *testing.T) {
		stub := &stubRulesService{}
		rec := del(stub, ruleID.String())
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if stub.deletedID != ruleID {
			t.Fatalf("expected delete with id %s, got %s", ruleID, stub.deletedID)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		stub := &stubRulesService{}
		rec := del(stub, "not-a-uuid")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid id, got %d", rec.Code)
		}
		if stub.deletedID != uuid.Nil {
			t.Fatalf("service should not be called for invalid id")
		}
	})

	t.Run("not found", func(t *testing.T) {
		stub := &stubRulesService{err: pkgerrors.New(pkgerrors.CodeNotFound, "discount rule not found")}
		rec := del(stub, ruleID.String())
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
