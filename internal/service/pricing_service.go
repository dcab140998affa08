package service

import (
	"context"

	"ticket-office/internal/domain"
	"ticket-office/internal/repository"

	"github.com/shopspring/decimal"
)

// Every tier carries exactly these two currencies.
const (
	CurrencyGBP = "GBP"
	CurrencyEUR = "EUR"
)

// PricingService implements the price tier lifecycle
type PricingService interface {
	CreateTier(ctx context.Context, productID int64, name string, priceGBP, priceEUR decimal.Decimal) (*domain.PriceTier, error)
	GetTier(ctx context.Context, id int64) (*domain.PriceTier, error)
	DeleteTier(ctx context.Context, id int64) error
	ActivateTier(ctx context.Context, id int64) error
	DeactivateTier(ctx context.Context, id int64) error
}

type pricingService struct {
	tierRepo    repository.PriceTierRepository
	productRepo repository.ProductRepository
}

// NewPricingService creates a new PricingService
func NewPricingService(tierRepo repository.PriceTierRepository, productRepo repository.ProductRepository) PricingService {
	return &pricingService{
		tierRepo:    tierRepo,
		productRepo: productRepo,
	}
}

// CreateTier attaches a new tier with GBP and EUR prices to a product.
// The first tier a product receives is activated automatically; any
// later tier starts inactive.
func (s *pricingService) CreateTier(ctx context.Context, productID int64, name string, priceGBP, priceEUR decimal.Decimal) (*domain.PriceTier, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	existing, err := s.tierRepo.CountByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	tier := &domain.PriceTier{
		ProductID: productID,
		Name:      name,
		Active:    existing == 0,
		Prices: []*domain.Price{
			{Currency: CurrencyGBP, Amount: priceGBP},
			{Currency: CurrencyEUR, Amount: priceEUR},
		},
	}

	if err := s.tierRepo.CreateWithPrices(ctx, tier); err != nil {
		return nil, err
	}

	return tier, nil
}

// GetTier loads a tier with its prices and derived unused flag
func (s *pricingService) GetTier(ctx context.Context, id int64) (*domain.PriceTier, error) {
	return s.tierRepo.FindByID(ctx, id)
}

// DeleteTier removes a tier. Tiers with purchases against them are
// protected; the repository reports ErrPriceTierInUse for those.
func (s *pricingService) DeleteTier(ctx context.Context, id int64) error {
	return s.tierRepo.Delete(ctx, id)
}

// ActivateTier makes the tier the single active one for its product
func (s *pricingService) ActivateTier(ctx context.Context, id int64) error {
	return s.tierRepo.Activate(ctx, id)
}

// DeactivateTier clears the tier's active flag without touching its
// siblings; the product may be left with no active tier.
func (s *pricingService) DeactivateTier(ctx context.Context, id int64) error {
	return s.tierRepo.Deactivate(ctx, id)
}
