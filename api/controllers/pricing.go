package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lparedes/storefront-pricing/api/responses"
	"github.com/lparedes/storefront-pricing/api/validators"
	"github.com/lparedes/storefront-pricing/internal/pricing"
	pkgerrors "github.com/lparedes/storefront-pricing/pkg/errors"
	"github.com/lparedes/storefront-pricing/pkg/logger"
)

// maxBatchItems caps resolve-batch payloads. A storefront page rarely needs
// more than a page of products priced at once.
const maxBatchItems = 100

type resolveRequest struct {
	ProductID  string     `json:"product_id" validate:"required,uuid"`
	VariantID  *string    `json:"variant_id,omitempty" validate:"omitempty,uuid"`
	CustomerID *string    `json:"customer_id,omitempty" validate:"omitempty,uuid"`
	MarketID   string     `json:"market_id" validate:"required,uuid"`
	Quantity   int        `json:"quantity" validate:"required,min=1"`
	At         *time.Time `json:"at,omitempty"`
}

func (r resolveRequest) toServiceRequest() (pricing.ResolveRequest, error) {
	productID, err := uuid.Parse(r.ProductID)
	if err != nil {
		return pricing.ResolveRequest{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product_id")
	}
	marketID, err := uuid.Parse(r.MarketID)
	if err != nil {
		return pricing.ResolveRequest{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid market_id")
	}
	req := pricing.ResolveRequest{
		ProductID: productID,
		MarketID:  marketID,
		Quantity:  r.Quantity,
		At:        r.At,
	}
	if r.VariantID != nil {
		variantID, err := uuid.Parse(*r.VariantID)
		if err != nil {
			return pricing.ResolveRequest{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant_id")
		}
		req.VariantID = &variantID
	}
	if r.CustomerID != nil {
		customerID, err := uuid.Parse(*r.CustomerID)
		if err != nil {
			return pricing.ResolveRequest{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer_id")
		}
		req.CustomerID = &customerID
	}
	return req, nil
}

type resolveBatchRequest struct {
	Items []resolveRequest `json:"items" validate:"required,min=1,dive"`
}

type appliedRuleResponse struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Type  string    `json:"type"`
}

type resolutionResponse struct {
	ProductID      uuid.UUID            `json:"product_id"`
	VariantID      *uuid.UUID           `json:"variant_id,omitempty"`
	BasePrice      decimal.Decimal      `json:"base_price"`
	FinalPrice     decimal.Decimal      `json:"final_price"`
	DiscountAmount decimal.Decimal      `json:"discount_amount"`
	AppliedRule    *appliedRuleResponse `json:"applied_rule"`
	Unavailable    bool                 `json:"pricing_unavailable,omitempty"`
}

func toResolutionResponse(resolution *pricing.Resolution) resolutionResponse {
	payload := resolutionResponse{
		ProductID:      resolution.ProductID,
		VariantID:      resolution.VariantID,
		BasePrice:      resolution.BasePrice,
		FinalPrice:     resolution.FinalPrice,
		DiscountAmount: resolution.DiscountAmount,
		Unavailable:    resolution.Unavailable,
	}
	if resolution.Applied != nil {
		payload.AppliedRule = &appliedRuleResponse{
			ID:    resolution.Applied.ID,
			Title: resolution.Applied.Title,
			Type:  string(resolution.Applied.Type),
		}
	}
	return payload
}

func ResolvePrice(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload resolveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		req, err := payload.toServiceRequest()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resolution, err := svc.Resolve(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toResolutionResponse(resolution))
	}
}

func ResolvePriceBatch(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload resolveBatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(payload.Items) > maxBatchItems {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "too many items in one batch"))
			return
		}

		reqs := make([]pricing.ResolveRequest, 0, len(payload.Items))
		for _, item := range payload.Items {
			req, err := item.toServiceRequest()
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			reqs = append(reqs, req)
		}

		resolutions, err := svc.ResolveMany(r.Context(), reqs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]resolutionResponse, 0, len(resolutions))
		for i := range resolutions {
			items = append(items, toResolutionResponse(&resolutions[i]))
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}
