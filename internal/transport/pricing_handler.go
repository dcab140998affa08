package transport

import (
	"errors"
	"fmt"
	"net/http"

	"ticket-office/internal/middleware"
	"ticket-office/internal/repository"
	"ticket-office/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TierForm represents the submitted fields of a price tier form
type TierForm struct {
	Name string `validate:"required"`
}

// PricingHandler handles HTTP requests for price tiers
type PricingHandler struct {
	pricingService service.PricingService
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewPricingHandler creates a new PricingHandler
func NewPricingHandler(pricingService service.PricingService, catalogService service.CatalogService, logger *zap.Logger) *PricingHandler {
	return &PricingHandler{
		pricingService: pricingService,
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers the price tier routes
func (h *PricingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products/{productID}/new-tier", h.NewTierForm)
	r.Post("/products/{productID}/new-tier", h.CreateTier)
	r.Get("/products/price-tiers/{tierID}", h.TierDetails)
	r.Post("/products/price-tiers/{tierID}", h.ModifyTier)
}

// NewTierForm renders the tier creation form for a product
func (h *PricingHandler) NewTierForm(w http.ResponseWriter, r *http.Request) {
	productID, ok := urlID(r, "productID")
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		return
	}

	details, err := h.catalogService.GetProduct(r.Context(), productID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"product":    details.Product,
		"currencies": []string{service.CurrencyGBP, service.CurrencyEUR},
	})
}

// CreateTier handles the tier creation form submission. The first
// tier a product receives comes back active.
func (h *PricingHandler) CreateTier(w http.ResponseWriter, r *http.Request) {
	productID, ok := urlID(r, "productID")
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		return
	}

	if err := r.ParseForm(); err != nil {
		respondFormErrors(w, fieldError("form", "Malformed form body"))
		return
	}

	form := TierForm{Name: r.PostFormValue("name")}
	if err := middleware.ValidateStruct(form); err != nil {
		respondFormErrors(w, middleware.FormatValidationErrors(err))
		return
	}

	priceGBP, err := formDecimal(r, "price_gbp")
	if err != nil {
		respondFormErrors(w, fieldError("price_gbp", "Must be a decimal amount"))
		return
	}

	priceEUR, err := formDecimal(r, "price_eur")
	if err != nil {
		respondFormErrors(w, fieldError("price_eur", "Must be a decimal amount"))
		return
	}

	tier, err := h.pricingService.CreateTier(r.Context(), productID, form.Name, priceGBP, priceEUR)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	admin, _ := middleware.GetUserName(r.Context())
	h.logger.Info("Adding new PriceTier",
		zap.String("admin", admin),
		zap.Int64("tier_id", tier.ID),
		zap.Int64("product_id", productID),
		zap.Bool("active", tier.Active),
	)

	http.Redirect(w, r, fmt.Sprintf("/products/price-tiers/%d", tier.ID), http.StatusFound)
}

// TierDetails handles the tier detail page
func (h *PricingHandler) TierDetails(w http.ResponseWriter, r *http.Request) {
	tierID, ok := urlID(r, "tierID")
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, "price tier not found")
		return
	}

	tier, err := h.pricingService.GetTier(r.Context(), tierID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, tier)
}

// ModifyTier dispatches on which form field was submitted: delete,
// activate or deactivate. A request carrying none of the three is
// rejected with 401, as is deleting a tier that has purchases.
func (h *PricingHandler) ModifyTier(w http.ResponseWriter, r *http.Request) {
	tierID, ok := urlID(r, "tierID")
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, "price tier not found")
		return
	}

	if err := r.ParseForm(); err != nil {
		respondFormErrors(w, fieldError("form", "Malformed form body"))
		return
	}

	tier, err := h.pricingService.GetTier(r.Context(), tierID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	admin, _ := middleware.GetUserName(r.Context())

	switch {
	case r.PostFormValue("delete") != "":
		if err := h.pricingService.DeleteTier(r.Context(), tierID); err != nil {
			if errors.Is(err, repository.ErrPriceTierInUse) {
				middleware.RespondWithError(w, http.StatusUnauthorized, "price tier has purchases against it")
				return
			}
			respondStoreError(w, err)
			return
		}

		h.logger.Info("Price tier deleted",
			zap.String("admin", admin),
			zap.Int64("tier_id", tierID),
		)
		// Back to the owning product; the tier's own page is gone
		http.Redirect(w, r, fmt.Sprintf("/products/%d", tier.ProductID), http.StatusFound)

	case r.PostFormValue("activate") != "":
		if err := h.pricingService.ActivateTier(r.Context(), tierID); err != nil {
			respondStoreError(w, err)
			return
		}

		h.logger.Info("Price tier activated",
			zap.String("admin", admin),
			zap.Int64("tier_id", tierID),
		)
		http.Redirect(w, r, fmt.Sprintf("/products/price-tiers/%d", tierID), http.StatusFound)

	case r.PostFormValue("deactivate") != "":
		if err := h.pricingService.DeactivateTier(r.Context(), tierID); err != nil {
			respondStoreError(w, err)
			return
		}

		h.logger.Info("Price tier deactivated",
			zap.String("admin", admin),
			zap.Int64("tier_id", tierID),
		)
		http.Redirect(w, r, fmt.Sprintf("/products/price-tiers/%d", tierID), http.StatusFound)

	default:
		middleware.RespondWithError(w, http.StatusUnauthorized, "unrecognized tier action")
	}
}
