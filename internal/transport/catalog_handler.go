package transport

import (
	"fmt"
	"net/http"
	"strconv"

	"ticket-office/internal/middleware"
	"ticket-office/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// GroupForm represents the submitted fields of a product group form
type GroupForm struct {
	Type string `validate:"required"`
	Name string `validate:"required"`
}

// ProductForm represents the submitted fields of a product form
type ProductForm struct {
	Name        string `validate:"required"`
	DisplayName string `validate:"required"`
}

// CatalogHandler handles HTTP requests for product groups and products
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers the group and product routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.ListRootGroups)

	r.Get("/products/group/new", h.NewGroupForm)
	r.Post("/products/group/new", h.CreateGroup)
	r.Get("/products/group/{groupID}", h.GroupDetails)
	r.Get("/products/group/{groupID}/edit", h.EditGroupForm)
	r.Post("/products/group/{groupID}/edit", h.UpdateGroup)
	r.Get("/products/group/{groupID}/new", h.NewProductForm)
	r.Post("/products/group/{groupID}/new", h.CreateProduct)

	r.Get("/products/{productID}", h.ProductDetails)
	r.Get("/products/{productID}/edit", h.EditProductForm)
	r.Post("/products/{productID}/edit", h.UpdateProduct)
	r.Get("/products/{productID}/clone", h.CloneProductForm)
	r.Post("/products/{productID}/clone", h.CloneProduct)
}

// ListRootGroups handles the catalog overview: all root groups in ID order
func (h *CatalogHandler) ListRootGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.catalogService.ListRootGroups(r.Context())
	if err != nil {
		h.logger.Error("Failed to list root groups", zap.Error(err))
		respondStoreError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"root_groups": groups})
}

// GroupDetails handles the group detail page
func (h *CatalogHandler) GroupDetails(w http.ResponseWriter, r *http.Request) {
	groupID, ok := urlID(r, "groupID")
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, "product group not found")
		return
	}

	details, err := h.catalogService.GetGroup(r.Context(), groupID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, details)
}

// NewGroupForm renders the group creation form, resolving the
// optional ?parent=id query argument
func (h *CatalogHandler) NewGroupForm(w http.ResponseWriter, r *http.Request) {
	parentID, errs := h.parentFromQuery(r)
	if errs != nil {
		middleware.RespondWithError(w, http.StatusNotFound, "product group not found")
		return
	}

	var parent interface{}
	if parentID != nil {
		details, err := h.catalogService.GetGroup(r.Context(), *parentID)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		parent = details.Group
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"parent": parent})
}

// CreateGroup handles the group creation form submission
func (h *CatalogHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	parentID, errs := h.parentFromQuery(r)
	if errs != nil {
		middleware.RespondWithError(w, http.StatusNotFound, "product group not found")
		return
	}

	input, formErrs := parseGroupForm(r)
	if len(formErrs) > 0 {
		respondFormErrors(w, formErrs)
		return
	}

	group, err := h.catalogService.CreateGroup(r.Context(), parentID, input)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	admin, _ := middleware.GetUserName(r.Context())
	h.logger.Info("Adding new ProductGroup",
		zap.String("admin", admin),
		zap.String("group", group.String()),
	)

	http.Redirect(w, r, fmt.Sprintf("/products/group/%d", group.ID), http.StatusFound)
}

// EditGroupForm renders the group edit form pre-filled with the group
func (h *CatalogHandler) EditGroupForm(w http.ResponseWriter, r *http.Request) {
	groupID, ok := urlID(r, "groupID")
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, "product group not found")
		return
	}

	details, err := h.catalogService.GetGroup(r.Context(), groupID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"group": details.Group})
}

// UpdateGroup handles the group edit form submission
func (h *CatalogHandler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	groupID, ok := urlID(r, "groupID")
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, "product group not found")
		return
	}

	input, formErrs := parseGroupForm(r)
	if len(formErrs) > 0 {
		respondFormErrors(w, formErrs)
		return
	}

	group, err := h.catalogService.UpdateGroup(r.Context(), groupID, input)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	admin, _ := middleware.GetUserName(r.Context())
	h.logger.Info("ProductGroup updated",
		zap.String("admin", admin),
		zap.String("group", group.String()),
	)

	http.Redirect(w, r, fmt.Sprintf("/products/group/%d", group.ID), http.StatusFound)
}

// ProductDetails handles the product detail page
func (h *CatalogHandler) ProductDetails(w http.ResponseWriter, r *http.Request) {
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

	middleware.RespondWithJSON(w, http.StatusOK, details)
}

// EditProductForm renders the product edit form pre-filled with the product
func (h *CatalogHandler) EditProductForm(w http.ResponseWriter, r *http.Request) {
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

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"product": details.Product})
}

// UpdateProduct handles the product edit form submission
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := urlID(r, "productID")
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		return
	}

	input, formErrs := parseProductForm(r)
	if len(formErrs) > 0 {
		respondFormErrors(w, formErrs)
		return
	}

	admin, _ := middleware.GetUserName(r.Context())
	h.logger.Info("Editing product",
		zap.String("admin", admin),
		zap.Int64("product_id", productID),
	)

	product, err := h.catalogService.UpdateProduct(r.Context(), productID, input)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/products/%d", product.ID), http.StatusFound)
}

// NewProductForm renders the product creation form under a group
func (h *CatalogHandler) NewProductForm(w http.ResponseWriter, r *http.Request) {
	groupID, ok := urlID(r, "groupID")
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, "product group not found")
		return
	}

	details, err := h.catalogService.GetGroup(r.Context(), groupID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"parent": details.Group})
}

// CreateProduct handles the product creation form submission
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	groupID, ok := urlID(r, "groupID")
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, "product group not found")
		return
	}

	h.createProductUnder(w, r, groupID)
}

// CloneProductForm renders the product creation form pre-filled from
// an existing product. The copied fields seed the form; nothing is
// persisted until the admin submits.
func (h *CatalogHandler) CloneProductForm(w http.ResponseWriter, r *http.Request) {
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
		"copy_from": details.Product,
	})
}

// CloneProduct handles the clone form submission: the new product is
// created under the source product's own group
func (h *CatalogHandler) CloneProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := urlID(r, "productID")
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		return
	}

	source, err := h.catalogService.GetProduct(r.Context(), productID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	h.createProductUnder(w, r, source.Product.GroupID)
}

func (h *CatalogHandler) createProductUnder(w http.ResponseWriter, r *http.Request, groupID int64) {
	input, formErrs := parseProductForm(r)
	if len(formErrs) > 0 {
		respondFormErrors(w, formErrs)
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), groupID, input)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	admin, _ := middleware.GetUserName(r.Context())
	h.logger.Info("Adding new Product",
		zap.String("admin", admin),
		zap.String("product", product.String()),
	)

	http.Redirect(w, r, fmt.Sprintf("/products/%d", product.ID), http.StatusFound)
}

// parentFromQuery resolves the optional ?parent=id query argument.
// A malformed id is reported the same way as a missing group.
func (h *CatalogHandler) parentFromQuery(r *http.Request) (*int64, []middleware.ValidationError) {
	raw := r.URL.Query().Get("parent")
	if raw == "" {
		return nil, nil
	}

	parentID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fieldError("parent", "Must be a group id")
	}

	return &parentID, nil
}

func parseGroupForm(r *http.Request) (service.GroupInput, []middleware.ValidationError) {
	if err := r.ParseForm(); err != nil {
		return service.GroupInput{}, fieldError("form", "Malformed form body")
	}

	form := GroupForm{
		Type: r.PostFormValue("type"),
		Name: r.PostFormValue("name"),
	}
	if err := middleware.ValidateStruct(form); err != nil {
		return service.GroupInput{}, middleware.FormatValidationErrors(err)
	}

	var errs []middleware.ValidationError

	capacityMax, err := formOptionalInt(r, "capacity_max")
	if err != nil {
		errs = append(errs, middleware.ValidationError{Field: "capacity_max", Message: "Must be a whole number"})
	}

	expires, err := formOptionalTime(r, "expires")
	if err != nil {
		errs = append(errs, middleware.ValidationError{Field: "expires", Message: "Unrecognized timestamp"})
	}

	if len(errs) > 0 {
		return service.GroupInput{}, errs
	}

	return service.GroupInput{
		Type:        form.Type,
		Name:        form.Name,
		CapacityMax: capacityMax,
		Expires:     expires,
	}, nil
}

func parseProductForm(r *http.Request) (service.ProductInput, []middleware.ValidationError) {
	if err := r.ParseForm(); err != nil {
		return service.ProductInput{}, fieldError("form", "Malformed form body")
	}

	form := ProductForm{
		Name:        r.PostFormValue("name"),
		DisplayName: r.PostFormValue("display_name"),
	}
	if err := middleware.ValidateStruct(form); err != nil {
		return service.ProductInput{}, middleware.FormatValidationErrors(err)
	}

	var errs []middleware.ValidationError

	capacityMax, err := formOptionalInt(r, "capacity_max")
	if err != nil {
		errs = append(errs, middleware.ValidationError{Field: "capacity_max", Message: "Must be a whole number"})
	}

	expires, err := formOptionalTime(r, "expires")
	if err != nil {
		errs = append(errs, middleware.ValidationError{Field: "expires", Message: "Unrecognized timestamp"})
	}

	if len(errs) > 0 {
		return service.ProductInput{}, errs
	}

	return service.ProductInput{
		Name:        form.Name,
		DisplayName: form.DisplayName,
		Description: formOptionalString(r, "description"),
		CapacityMax: capacityMax,
		Expires:     expires,
	}, nil
}
