package service

import (
	"context"
	"time"

	"ticket-office/internal/domain"
	"ticket-office/internal/repository"
)

// GroupInput carries the submitted fields of a product group form
type GroupInput struct {
	Type        string
	Name        string
	CapacityMax *int
	Expires     *time.Time
}

// ProductInput carries the submitted fields of a product form
type ProductInput struct {
	Name        string
	DisplayName string
	Description *string
	CapacityMax *int
	Expires     *time.Time
}

// GroupDetails is a group together with its direct children and products
type GroupDetails struct {
	Group    *domain.ProductGroup   `json:"group"`
	Children []*domain.ProductGroup `json:"children"`
	Products []*domain.Product      `json:"products"`
}

// ProductDetails is a product together with its price tiers
type ProductDetails struct {
	Product *domain.Product     `json:"product"`
	Tiers   []*domain.PriceTier `json:"price_tiers"`
}

// CatalogService implements product group and product administration
type CatalogService interface {
	ListRootGroups(ctx context.Context) ([]*domain.ProductGroup, error)
	GetGroup(ctx context.Context, id int64) (*GroupDetails, error)
	CreateGroup(ctx context.Context, parentID *int64, input GroupInput) (*domain.ProductGroup, error)
	UpdateGroup(ctx context.Context, id int64, input GroupInput) (*domain.ProductGroup, error)
	GetProduct(ctx context.Context, id int64) (*ProductDetails, error)
	CreateProduct(ctx context.Context, groupID int64, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, input ProductInput) (*domain.Product, error)
}

type catalogService struct {
	groupRepo   repository.ProductGroupRepository
	productRepo repository.ProductRepository
	tierRepo    repository.PriceTierRepository
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	groupRepo repository.ProductGroupRepository,
	productRepo repository.ProductRepository,
	tierRepo repository.PriceTierRepository,
) CatalogService {
	return &catalogService{
		groupRepo:   groupRepo,
		productRepo: productRepo,
		tierRepo:    tierRepo,
	}
}

// ListRootGroups returns the top of the catalog forest in ID order
func (s *catalogService) ListRootGroups(ctx context.Context) ([]*domain.ProductGroup, error) {
	return s.groupRepo.ListRoots(ctx)
}

// GetGroup loads a group with its children and products
func (s *catalogService) GetGroup(ctx context.Context, id int64) (*GroupDetails, error) {
	group, err := s.groupRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	children, err := s.groupRepo.ListChildren(ctx, id)
	if err != nil {
		return nil, err
	}

	products, err := s.productRepo.ListByGroup(ctx, id)
	if err != nil {
		return nil, err
	}

	return &GroupDetails{
		Group:    group,
		Children: children,
		Products: products,
	}, nil
}

// CreateGroup inserts a new group, optionally under a parent. A
// missing parent is the caller's error, not a silent root insert.
func (s *catalogService) CreateGroup(ctx context.Context, parentID *int64, input GroupInput) (*domain.ProductGroup, error) {
	if parentID != nil {
		if _, err := s.groupRepo.FindByID(ctx, *parentID); err != nil {
			return nil, err
		}
	}

	group := &domain.ProductGroup{
		Type:        input.Type,
		Name:        input.Name,
		CapacityMax: input.CapacityMax,
		Expires:     input.Expires,
		ParentID:    parentID,
	}

	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}

	return group, nil
}

// UpdateGroup overwrites the mutable fields of an existing group
func (s *catalogService) UpdateGroup(ctx context.Context, id int64, input GroupInput) (*domain.ProductGroup, error) {
	group, err := s.groupRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	group.Type = input.Type
	group.Name = input.Name
	group.CapacityMax = input.CapacityMax
	group.Expires = input.Expires

	if err := s.groupRepo.Update(ctx, group); err != nil {
		return nil, err
	}

	return group, nil
}

// GetProduct loads a product with its price tiers
func (s *catalogService) GetProduct(ctx context.Context, id int64) (*ProductDetails, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tiers, err := s.tierRepo.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ProductDetails{
		Product: product,
		Tiers:   tiers,
	}, nil
}

// CreateProduct inserts a new product under an existing group
func (s *catalogService) CreateProduct(ctx context.Context, groupID int64, input ProductInput) (*domain.Product, error) {
	if _, err := s.groupRepo.FindByID(ctx, groupID); err != nil {
		return nil, err
	}

	product := &domain.Product{
		GroupID:     groupID,
		Name:        input.Name,
		DisplayName: input.DisplayName,
		Description: input.Description,
		CapacityMax: input.CapacityMax,
		Expires:     input.Expires,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// UpdateProduct overwrites the mutable fields of an existing product
func (s *catalogService) UpdateProduct(ctx context.Context, id int64, input ProductInput) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.DisplayName = input.DisplayName
	product.Description = input.Description
	product.CapacityMax = input.CapacityMax
	product.Expires = input.Expires

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}
