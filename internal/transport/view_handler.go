package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"ticket-office/internal/middleware"
	"ticket-office/internal/repository"
	"ticket-office/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ViewForm represents the submitted fields of the view edit form.
// A blank token asks for a fresh opaque one.
type ViewForm struct {
	Name  string `validate:"required"`
	Type  string `validate:"required"`
	Token string
}

// ViewHandler handles HTTP requests for product view editing
type ViewHandler struct {
	viewService service.ViewService
	logger      *zap.Logger
}

// NewViewHandler creates a new ViewHandler
func NewViewHandler(viewService service.ViewService, logger *zap.Logger) *ViewHandler {
	return &ViewHandler{
		viewService: viewService,
		logger:      logger,
	}
}

// RegisterRoutes registers the product view routes
func (h *ViewHandler) RegisterRoutes(r chi.Router) {
	r.Get("/product_view/{viewID}", h.ViewForm)
	r.Post("/product_view/{viewID}", h.SubmitView)
}

// ViewForm renders the view edit form: one row per linked product,
// carrying its product id and order
func (h *ViewHandler) ViewForm(w http.ResponseWriter, r *http.Request) {
	viewID, ok := urlID(r, "viewID")
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, "product view not found")
		return
	}

	details, err := h.viewService.GetView(r.Context(), viewID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, details)
}

// SubmitView handles the view edit form. An "update" submission
// overwrites the view's fields and reorders its rows; otherwise the
// submission adds a new product to the view.
func (h *ViewHandler) SubmitView(w http.ResponseWriter, r *http.Request) {
	viewID, ok := urlID(r, "viewID")
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, "product view not found")
		return
	}

	if err := r.ParseForm(); err != nil {
		respondFormErrors(w, fieldError("form", "Malformed form body"))
		return
	}

	if r.PostFormValue("update") != "" {
		h.updateView(w, r, viewID)
		return
	}

	h.addViewEntry(w, r, viewID)
}

func (h *ViewHandler) updateView(w http.ResponseWriter, r *http.Request, viewID int64) {
	form := ViewForm{
		Name:  r.PostFormValue("name"),
		Type:  r.PostFormValue("type"),
		Token: r.PostFormValue("token"),
	}
	if err := middleware.ValidateStruct(form); err != nil {
		respondFormErrors(w, middleware.FormatValidationErrors(err))
		return
	}

	if form.Token == "" {
		form.Token = uuid.NewString()
	}

	entries, formErrs := parseViewEntries(r)
	if len(formErrs) > 0 {
		respondFormErrors(w, formErrs)
		return
	}

	input := service.ViewInput{
		Name:    form.Name,
		Type:    form.Type,
		Token:   form.Token,
		Entries: entries,
	}

	details, err := h.viewService.UpdateView(r.Context(), viewID, input)
	if err != nil {
		if errors.Is(err, repository.ErrViewProductNotFound) {
			respondFormErrors(w, fieldError("pvps", err.Error()))
			return
		}
		respondStoreError(w, err)
		return
	}

	admin, _ := middleware.GetUserName(r.Context())
	h.logger.Info("Product view updated",
		zap.String("admin", admin),
		zap.Int64("view_id", viewID),
	)

	middleware.RespondWithJSON(w, http.StatusOK, details)
}

func (h *ViewHandler) addViewEntry(w http.ResponseWriter, r *http.Request, viewID int64) {
	rawProductID := r.PostFormValue("add_product_id")
	if rawProductID == "" {
		respondFormErrors(w, fieldError("add_product_id", "This field is required"))
		return
	}

	productID, err := strconv.ParseInt(rawProductID, 10, 64)
	if err != nil {
		respondFormErrors(w, fieldError("add_product_id", "Must be a product id"))
		return
	}

	order, err := formOptionalInt(r, "add_order")
	if err != nil {
		respondFormErrors(w, fieldError("add_order", "Must be a whole number"))
		return
	}

	entry, err := h.viewService.AddViewEntry(r.Context(), viewID, productID, order)
	if err != nil {
		if errors.Is(err, repository.ErrViewProductExists) {
			respondFormErrors(w, fieldError("add_product_id", "Product is already part of this view"))
			return
		}
		respondStoreError(w, err)
		return
	}

	admin, _ := middleware.GetUserName(r.Context())
	h.logger.Info("Product added to view",
		zap.String("admin", admin),
		zap.Int64("view_id", viewID),
		zap.Int64("product_id", entry.ProductID),
		zap.Int("order", entry.Order),
	)

	http.Redirect(w, r, fmt.Sprintf("/product_view/%d", viewID), http.StatusFound)
}

// parseViewEntries reads the indexed row fields of the view edit form:
// pvps-0-product_id, pvps-0-order, pvps-1-product_id, ...
func parseViewEntries(r *http.Request) ([]service.ViewEntryInput, []middleware.ValidationError) {
	entries := []service.ViewEntryInput{}

	for i := 0; ; i++ {
		rawProductID := r.PostFormValue(fmt.Sprintf("pvps-%d-product_id", i))
		if rawProductID == "" {
			break
		}

		productID, err := strconv.ParseInt(rawProductID, 10, 64)
		if err != nil {
			return nil, fieldError(fmt.Sprintf("pvps-%d-product_id", i), "Must be a product id")
		}

		order, err := strconv.Atoi(r.PostFormValue(fmt.Sprintf("pvps-%d-order", i)))
		if err != nil {
			return nil, fieldError(fmt.Sprintf("pvps-%d-order", i), "Must be a whole number")
		}

		entries = append(entries, service.ViewEntryInput{
			ProductID: productID,
			Order:     order,
		})
	}

	return entries, nil
}
