package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lparedes/storefront-pricing/api/responses"
	"github.com/lparedes/storefront-pricing/api/validators"
	"github.com/lparedes/storefront-pricing/internal/rules"
	"github.com/lparedes/storefront-pricing/pkg/db/models"
	"github.com/lparedes/storefront-pricing/pkg/enums"
	pkgerrors "github.com/lparedes/storefront-pricing/pkg/errors"
	"github.com/lparedes/storefront-pricing/pkg/logger"
	"github.com/lparedes/storefront-pricing/pkg/pagination"
)

// maxTitleLen bounds operator-supplied titles before they reach storage.
const maxTitleLen = 255

type scopeRequest struct {
	MarketIDs   []string `json:"market_ids,omitempty" validate:"omitempty,dive,uuid"`
	CustomerIDs []string `json:"customer_ids,omitempty" validate:"omitempty,dive,uuid"`
	ProductIDs  []string `json:"product_ids,omitempty" validate:"omitempty,dive,uuid"`
	VariantIDs  []string `json:"variant_ids,omitempty" validate:"omitempty,dive,uuid"`
}

func (s scopeRequest) toInput() (rules.ScopeInput, error) {
	parse := func(raw []string, field string) ([]uuid.UUID, error) {
		ids := make([]uuid.UUID, 0, len(raw))
		for _, value := range raw {
			id, err := uuid.Parse(value)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
			}
			ids = append(ids, id)
		}
		return ids, nil
	}
	markets, err := parse(s.MarketIDs, "market id")
	if err != nil {
		return rules.ScopeInput{}, err
	}
	customers, err := parse(s.CustomerIDs, "customer id")
	if err != nil {
		return rules.ScopeInput{}, err
	}
	products, err := parse(s.ProductIDs, "product id")
	if err != nil {
		return rules.ScopeInput{}, err
	}
	variants, err := parse(s.VariantIDs, "variant id")
	if err != nil {
		return rules.ScopeInput{}, err
	}
	return rules.ScopeInput{
		MarketIDs:   markets,
		CustomerIDs: customers,
		ProductIDs:  products,
		VariantIDs:  variants,
	}, nil
}

type discountRuleRequest struct {
	Title         string          `json:"title" validate:"required"`
	Description   *string         `json:"description,omitempty"`
	DiscountType  string          `json:"discount_type" validate:"required"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	Priority      int             `json:"priority"`
	StartDate     time.Time       `json:"start_date" validate:"required"`
	EndDate       *time.Time      `json:"end_date,omitempty"`
	IsActive      *bool           `json:"is_active,omitempty"`
	IsPriceList   bool            `json:"is_price_list"`
	Scope         scopeRequest    `json:"scope"`
}

func (r discountRuleRequest) toInput() (rules.DiscountRuleInput, error) {
	discountType, err := enums.ParseDiscountType(r.DiscountType)
	if err != nil {
		return rules.DiscountRuleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount_type")
	}
	scope, err := r.Scope.toInput()
	if err != nil {
		return rules.DiscountRuleInput{}, err
	}
	return rules.DiscountRuleInput{
		Title:         validators.SanitizeString(r.Title, maxTitleLen),
		Description:   r.Description,
		DiscountType:  discountType,
		DiscountValue: r.DiscountValue,
		Priority:      r.Priority,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		IsActive:      r.IsActive,
		IsPriceList:   r.IsPriceList,
		Scope:         scope,
	}, nil
}

type scopeResponse struct {
	MarketIDs   []uuid.UUID `json:"market_ids"`
	CustomerIDs []uuid.UUID `json:"customer_ids"`
	ProductIDs  []uuid.UUID `json:"product_ids"`
	VariantIDs  []uuid.UUID `json:"variant_ids"`
}

type discountRuleResponse struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	Description   *string         `json:"description,omitempty"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	Priority      int             `json:"priority"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       *time.Time      `json:"end_date,omitempty"`
	IsActive      bool            `json:"is_active"`
	IsPriceList   bool            `json:"is_price_list"`
	Scope         scopeResponse   `json:"scope"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func toDiscountRuleResponse(rule *models.DiscountRule) discountRuleResponse {
	return discountRuleResponse{
		ID:            rule.ID,
		Title:         rule.Title,
		Description:   rule.Description,
		DiscountType:  string(rule.DiscountType),
		DiscountValue: rule.DiscountValue,
		Priority:      rule.Priority,
		StartDate:     rule.StartDate,
		EndDate:       rule.EndDate,
		IsActive:      rule.IsActive,
		IsPriceList:   rule.IsPriceList,
		Scope: scopeResponse{
			MarketIDs:   rule.MarketIDs,
			CustomerIDs: rule.CustomerIDs,
			ProductIDs:  rule.ProductIDs,
			VariantIDs:  rule.VariantIDs,
		},
		CreatedAt: rule.CreatedAt,
		UpdatedAt: rule.UpdatedAt,
	}
}

type listResponse[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

func CreateDiscountRule(svc rules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload discountRuleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.CreateDiscountRule(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toDiscountRuleResponse(created))
	}
}

func UpdateDiscountRule(svc rules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := ruleIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload discountRuleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.UpdateDiscountRule(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toDiscountRuleResponse(updated))
	}
}

// activeToggleRequest flips a rule's active flag without resending the rule
// body. The field is a pointer so an explicit false is distinguishable from
// an absent one.
type activeToggleRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

func ToggleDiscountRuleActive(svc rules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := ruleIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload activeToggleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.SetDiscountRuleActive(r.Context(), id, *payload.IsActive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toDiscountRuleResponse(updated))
	}
}

func DeleteDiscountRule(svc rules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := ruleIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteDiscountRule(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func GetDiscountRule(svc rules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := ruleIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rule, err := svc.GetDiscountRule(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toDiscountRuleResponse(rule))
	}
}

func ListDiscountRules(svc rules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, next, err := svc.ListDiscountRules(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload := listResponse[discountRuleResponse]{
			Items:      make([]discountRuleResponse, 0, len(items)),
			NextCursor: next,
		}
		for i := range items {
			payload.Items = append(payload.Items, toDiscountRuleResponse(&items[i]))
		}
		responses.WriteSuccess(w, payload)
	}
}

func ruleIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rule id")
	}
	return id, nil
}

func paginationParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	}, nil
}
