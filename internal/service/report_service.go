package service

import (
	"context"

	"ticket-office/internal/domain"
	"ticket-office/internal/repository"
)

// The two catalog sections with dedicated purchase reports.
const (
	GroupNameFurniture = "furniture"
	GroupNameTees      = "tees"
)

// ReportService implements the read-only aggregate reports
type ReportService interface {
	FurnitureReport(ctx context.Context) ([]*repository.PurchaseCount, error)
	TeesReport(ctx context.Context) ([]*repository.PurchaseCount, error)
	ViewCounts(ctx context.Context) ([]*repository.ViewCount, error)
	PurchaseTransfers(ctx context.Context) ([]*domain.PurchaseTransfer, error)
}

type reportService struct {
	reportRepo repository.ReportRepository
	viewRepo   repository.ProductViewRepository
}

// NewReportService creates a new ReportService
func NewReportService(reportRepo repository.ReportRepository, viewRepo repository.ProductViewRepository) ReportService {
	return &reportService{
		reportRepo: reportRepo,
		viewRepo:   viewRepo,
	}
}

// FurnitureReport aggregates furniture purchases per (user, product)
func (s *reportService) FurnitureReport(ctx context.Context) ([]*repository.PurchaseCount, error) {
	return s.reportRepo.GroupPurchaseCounts(ctx, GroupNameFurniture)
}

// TeesReport aggregates tee purchases per (user, product)
func (s *reportService) TeesReport(ctx context.Context) ([]*repository.PurchaseCount, error) {
	return s.reportRepo.GroupPurchaseCounts(ctx, GroupNameTees)
}

// ViewCounts reports the number of products linked into each view
func (s *reportService) ViewCounts(ctx context.Context) ([]*repository.ViewCount, error) {
	return s.viewRepo.ViewCounts(ctx)
}

// PurchaseTransfers returns the full transfer log
func (s *reportService) PurchaseTransfers(ctx context.Context) ([]*domain.PurchaseTransfer, error) {
	return s.reportRepo.ListTransfers(ctx)
}
