package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lparedes/storefront-pricing/api/controllers"
	"github.com/lparedes/storefront-pricing/api/middleware"
	"github.com/lparedes/storefront-pricing/internal/catalog"
	"github.com/lparedes/storefront-pricing/internal/pricing"
	"github.com/lparedes/storefront-pricing/internal/rules"
	"github.com/lparedes/storefront-pricing/pkg/config"
	"github.com/lparedes/storefront-pricing/pkg/logger"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Config         *config.Config
	Logger         *logger.Logger
	PricingService pricing.Service
	RulesService   rules.Service
	CatalogRepo    *catalog.Repository
	MetricsHandler http.Handler
	HealthDeps     map[string]controllers.Pinger
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.HealthDeps))
	})

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Route("/api/v1/pricing", func(r chi.Router) {
		r.Post("/resolve", controllers.ResolvePrice(deps.PricingService, logg))
		r.Post("/resolve-batch", controllers.ResolvePriceBatch(deps.PricingService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Route("/discount-rules", func(r chi.Router) {
			r.Post("/", controllers.CreateDiscountRule(deps.RulesService, logg))
			r.Get("/", controllers.ListDiscountRules(deps.RulesService, logg))
			r.Get("/{id}", controllers.GetDiscountRule(deps.RulesService, logg))
			r.Put("/{id}", controllers.UpdateDiscountRule(deps.RulesService, logg))
			r.Patch("/{id}/active", controllers.ToggleDiscountRuleActive(deps.RulesService, logg))
			r.Delete("/{id}", controllers.DeleteDiscountRule(deps.RulesService, logg))
		})
		r.Route("/quantity-breaks", func(r chi.Router) {
			r.Post("/", controllers.CreateQuantityBreak(deps.RulesService, logg))
			r.Get("/", controllers.ListQuantityBreaks(deps.RulesService, logg))
			r.Get("/{id}", controllers.GetQuantityBreak(deps.RulesService, logg))
			r.Put("/{id}", controllers.UpdateQuantityBreak(deps.RulesService, logg))
			r.Patch("/{id}/active", controllers.ToggleQuantityBreakActive(deps.RulesService, logg))
			r.Delete("/{id}", controllers.DeleteQuantityBreak(deps.RulesService, logg))
		})
		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.CreateProduct(deps.CatalogRepo, logg))
			r.Get("/", controllers.ListProducts(deps.CatalogRepo, logg))
			r.Get("/{id}", controllers.GetProduct(deps.CatalogRepo, logg))
		})
	})

	return r
}
