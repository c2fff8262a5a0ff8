package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lparedes/storefront-pricing/api/responses"
	"github.com/lparedes/storefront-pricing/api/validators"
	"github.com/lparedes/storefront-pricing/internal/catalog"
	"github.com/lparedes/storefront-pricing/pkg/db/models"
	pkgerrors "github.com/lparedes/storefront-pricing/pkg/errors"
	"github.com/lparedes/storefront-pricing/pkg/logger"
)

type variantRequest struct {
	SKU   string           `json:"sku" validate:"required"`
	Title *string          `json:"title,omitempty"`
	Price *decimal.Decimal `json:"price,omitempty"`
}

type productRequest struct {
	SKU      string           `json:"sku" validate:"required"`
	Title    string           `json:"title" validate:"required"`
	Price    decimal.Decimal  `json:"price"`
	IsActive *bool            `json:"is_active,omitempty"`
	Variants []variantRequest `json:"variants,omitempty" validate:"omitempty,dive"`
}

func (r productRequest) toModel() (*models.Product, error) {
	if r.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	product := &models.Product{
		SKU:      validators.SanitizeString(r.SKU, 0),
		Title:    validators.SanitizeString(r.Title, maxTitleLen),
		Price:    r.Price,
		IsActive: active,
	}
	for _, variant := range r.Variants {
		if variant.Price != nil && variant.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant price must not be negative")
		}
		product.Variants = append(product.Variants, models.ProductVariant{
			SKU:   variant.SKU,
			Title: variant.Title,
			Price: variant.Price,
		})
	}
	return product, nil
}

type variantResponse struct {
	ID    uuid.UUID        `json:"id"`
	SKU   string           `json:"sku"`
	Title *string          `json:"title,omitempty"`
	Price *decimal.Decimal `json:"price,omitempty"`
}

type productResponse struct {
	ID        uuid.UUID         `json:"id"`
	SKU       string            `json:"sku"`
	Title     string            `json:"title"`
	Price     decimal.Decimal   `json:"price"`
	IsActive  bool              `json:"is_active"`
	Variants  []variantResponse `json:"variants"`
	CreatedAt time.Time         `json:"created_at"`
}

func toProductResponse(product *models.Product) productResponse {
	variants := make([]variantResponse, 0, len(product.Variants))
	for _, variant := range product.Variants {
		variants = append(variants, variantResponse{
			ID:    variant.ID,
			SKU:   variant.SKU,
			Title: variant.Title,
			Price: variant.Price,
		})
	}
	return productResponse{
		ID:        product.ID,
		SKU:       product.SKU,
		Title:     product.Title,
		Price:     product.Price,
		IsActive:  product.IsActive,
		Variants:  variants,
		CreatedAt: product.CreatedAt,
	}
}

func CreateProduct(repository *catalog.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := payload.toModel()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := repository.CreateProduct(r.Context(), product)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toProductResponse(created))
	}
}

func GetProduct(repository *catalog.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "id")
		id, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}
		product, err := repository.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toProductResponse(product))
	}
}

func ListProducts(repository *catalog.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, next, err := repository.ListProducts(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload := listResponse[productResponse]{
			Items:      make([]productResponse, 0, len(items)),
			NextCursor: next,
		}
		for i := range items {
			payload.Items = append(payload.Items, toProductResponse(&items[i]))
		}
		responses.WriteSuccess(w, payload)
	}
}
