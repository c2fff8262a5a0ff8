package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lparedes/storefront-pricing/api/responses"
	"github.com/lparedes/storefront-pricing/api/validators"
	"github.com/lparedes/storefront-pricing/internal/rules"
	"github.com/lparedes/storefront-pricing/pkg/db/models"
	"github.com/lparedes/storefront-pricing/pkg/enums"
	pkgerrors "github.com/lparedes/storefront-pricing/pkg/errors"
	"github.com/lparedes/storefront-pricing/pkg/logger"
)

type tierRequest struct {
	MinQty        int             `json:"min_qty" validate:"required,min=1"`
	DiscountType  string          `json:"discount_type" validate:"required"`
	DiscountValue decimal.Decimal `json:"discount_value"`
}

type quantityBreakRequest struct {
	Title       string        `json:"title" validate:"required"`
	Description *string       `json:"description,omitempty"`
	StartDate   time.Time     `json:"start_date" validate:"required"`
	EndDate     *time.Time    `json:"end_date,omitempty"`
	IsActive    *bool         `json:"is_active,omitempty"`
	Scope       scopeRequest  `json:"scope"`
	Tiers       []tierRequest `json:"tiers" validate:"required,min=1,dive"`
}

func (r quantityBreakRequest) toInput() (rules.QuantityBreakInput, error) {
	scope, err := r.Scope.toInput()
	if err != nil {
		return rules.QuantityBreakInput{}, err
	}
	tiers := make([]rules.TierInput, 0, len(r.Tiers))
	for _, tier := range r.Tiers {
		discountType, err := enums.ParseDiscountType(tier.DiscountType)
		if err != nil {
			return rules.QuantityBreakInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tier discount_type")
		}
		tiers = append(tiers, rules.TierInput{
			MinQty:        tier.MinQty,
			DiscountType:  discountType,
			DiscountValue: tier.DiscountValue,
		})
	}
	return rules.QuantityBreakInput{
		Title:       validators.SanitizeString(r.Title, maxTitleLen),
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		IsActive:    r.IsActive,
		Scope:       scope,
		Tiers:       tiers,
	}, nil
}

type tierResponse struct {
	MinQty        int             `json:"min_qty"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
}

type quantityBreakResponse struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Description *string        `json:"description,omitempty"`
	StartDate   time.Time      `json:"start_date"`
	EndDate     *time.Time     `json:"end_date,omitempty"`
	IsActive    bool           `json:"is_active"`
	Scope       scopeResponse  `json:"scope"`
	Tiers       []tierResponse `json:"tiers"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func toQuantityBreakResponse(rule *models.QuantityBreakRule) quantityBreakResponse {
	tiers := make([]tierResponse, 0, len(rule.Tiers))
	for _, tier := range rule.Tiers {
		tiers = append(tiers, tierResponse{
			MinQty:        tier.MinQty,
			DiscountType:  string(tier.DiscountType),
			DiscountValue: tier.DiscountValue,
		})
	}
	return quantityBreakResponse{
		ID:          rule.ID,
		Title:       rule.Title,
		Description: rule.Description,
		StartDate:   rule.StartDate,
		EndDate:     rule.EndDate,
		IsActive:    rule.IsActive,
		Scope: scopeResponse{
			MarketIDs:   rule.MarketIDs,
			CustomerIDs: rule.CustomerIDs,
			ProductIDs:  rule.ProductIDs,
			VariantIDs:  rule.VariantIDs,
		},
		Tiers:     tiers,
		CreatedAt: rule.CreatedAt,
		UpdatedAt: rule.UpdatedAt,
	}
}

func CreateQuantityBreak(svc rules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload quantityBreakRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.CreateQuantityBreak(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toQuantityBreakResponse(created))
	}
}

func UpdateQuantityBreak(svc rules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := ruleIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload quantityBreakRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.UpdateQuantityBreak(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toQuantityBreakResponse(updated))
	}
}

func ToggleQuantityBreakActive(svc rules.Service, logg *logger.Logger) http.HandlerFunc {
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
		updated, err := svc.SetQuantityBreakActive(r.Context(), id, *payload.IsActive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toQuantityBreakResponse(updated))
	}
}

func DeleteQuantityBreak(svc rules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := ruleIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteQuantityBreak(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func GetQuantityBreak(svc rules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := ruleIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rule, err := svc.GetQuantityBreak(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toQuantityBreakResponse(rule))
	}
}

func ListQuantityBreaks(svc rules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, next, err := svc.ListQuantityBreaks(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload := listResponse[quantityBreakResponse]{
			Items:      make([]quantityBreakResponse, 0, len(items)),
			NextCursor: next,
		}
		for i := range items {
			payload.Items = append(payload.Items, toQuantityBreakResponse(&items[i]))
		}
		responses.WriteSuccess(w, payload)
	}
}
