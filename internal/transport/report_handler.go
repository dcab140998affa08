package transport

import (
	"net/http"

	"ticket-office/internal/middleware"
	"ticket-office/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReportHandler handles the read-only reporting pages
type ReportHandler struct {
	reportService service.ReportService
	logger        *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// RegisterRoutes registers the reporting routes
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/transfers", h.PurchaseTransfers)
	r.Get("/furniture", h.FurnitureReport)
	r.Get("/tees", h.TeesReport)
	r.Get("/product_views", h.ViewCounts)
}

// PurchaseTransfers lists the full purchase transfer log
func (h *ReportHandler) PurchaseTransfers(w http.ResponseWriter, r *http.Request) {
	transfers, err := h.reportService.PurchaseTransfers(r.Context())
	if err != nil {
		h.logger.Error("Failed to list purchase transfers", zap.Error(err))
		respondStoreError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"transfers": transfers})
}

// FurnitureReport reports furniture purchases per (user, product)
func (h *ReportHandler) FurnitureReport(w http.ResponseWriter, r *http.Request) {
	counts, err := h.reportService.FurnitureReport(r.Context())
	if err != nil {
		h.logger.Error("Failed to build furniture report", zap.Error(err))
		respondStoreError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"purchases": counts})
}

// TeesReport reports tee purchases per (user, product)
func (h *ReportHandler) TeesReport(w http.ResponseWriter, r *http.Request) {
	counts, err := h.reportService.TeesReport(r.Context())
	if err != nil {
		h.logger.Error("Failed to build tees report", zap.Error(err))
		respondStoreError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"purchases": counts})
}

// ViewCounts reports how many products are linked into each view
func (h *ReportHandler) ViewCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.reportService.ViewCounts(r.Context())
	if err != nil {
		h.logger.Error("Failed to count view products", zap.Error(err))
		respondStoreError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"view_counts": counts})
}
