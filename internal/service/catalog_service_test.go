package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ticket-office/internal/domain"
	"ticket-office/internal/repository"
)

type mockProductGroupRepository struct {
	nextID int64
	groups map[int64]*domain.ProductGroup
}

func newMockProductGroupRepository() *mockProductGroupRepository {
	return &mockProductGroupRepository{groups: make(map[int64]*domain.ProductGroup)}
}

func (m *mockProductGroupRepository) Create(ctx context.Context, group *domain.ProductGroup) error {
	m.nextID++
	group.ID = m.nextID
	m.groups[group.ID] = group
	return nil
}

func (m *mockProductGroupRepository) Update(ctx context.Context, group *domain.ProductGroup) error {
	if _, exists := m.groups[group.ID]; !exists {
		return repository.ErrProductGroupNotFound
	}
	m.groups[group.ID] = group
	return nil
}

func (m *mockProductGroupRepository) FindByID(ctx context.Context, id int64) (*domain.ProductGroup, error) {
	group, exists := m.groups[id]
	if !exists {
		return nil, repository.ErrProductGroupNotFound
	}
	return group, nil
}

func (m *mockProductGroupRepository) ListRoots(ctx context.Context) ([]*domain.ProductGroup, error) {
	roots := []*domain.ProductGroup{}
	for id := int64(1); id <= m.nextID; id++ {
		group, exists := m.groups[id]
		if exists && group.ParentID == nil {
			roots = append(roots, group)
		}
	}
	return roots, nil
}

func (m *mockProductGroupRepository) ListChildren(ctx context.Context, parentID int64) ([]*domain.ProductGroup, error) {
	children := []*domain.ProductGroup{}
	for id := int64(1); id <= m.nextID; id++ {
		group, exists := m.groups[id]
		if exists && group.ParentID != nil && *group.ParentID == parentID {
			children = append(children, group)
		}
	}
	return children, nil
}

func newCatalogFixture() (CatalogService, *mockProductGroupRepository, *mockProductRepository, *mockPriceTierRepository) {
	groupRepo := newMockProductGroupRepository()
	productRepo := newMockProductRepository()
	tierRepo := newMockPriceTierRepository()
	return NewCatalogService(groupRepo, productRepo, tierRepo), groupRepo, productRepo, tierRepo
}

func TestCreateGroupAsRoot(t *testing.T) {
	svc, _, _, _ := newCatalogFixture()
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, nil, GroupInput{Type: "furniture", Name: "Chairs"})
	if err != nil {
		t.Fatalf("CreateGroup returned error: %v", err)
	}

	if group.ID == 0 {
		t.Errorf("Group was not assigned an ID")
	}
	if group.ParentID != nil {
		t.Errorf("Root group should have no parent, got %v", *group.ParentID)
	}

	roots, err := svc.ListRootGroups(ctx)
	if err != nil {
		t.Fatalf("ListRootGroups returned error: %v", err)
	}
	if len(roots) != 1 || roots[0].ID != group.ID {
		t.Errorf("New root group missing from root listing")
	}
}

func TestCreateGroupUnderParent(t *testing.T) {
	svc, _, _, _ := newCatalogFixture()
	ctx := context.Background()

	parent, err := svc.CreateGroup(ctx, nil, GroupInput{Type: "furniture", Name: "Seating"})
	if err != nil {
		t.Fatalf("CreateGroup returned error: %v", err)
	}

	child, err := svc.CreateGroup(ctx, &parent.ID, GroupInput{Type: "furniture", Name: "Chairs"})
	if err != nil {
		t.Fatalf("CreateGroup returned error: %v", err)
	}
	if child.ParentID == nil || *child.ParentID != parent.ID {
		t.Errorf("Child group not linked to parent")
	}

	// Children appear only under their parent, never as roots
	roots, _ := svc.ListRootGroups(ctx)
	if len(roots) != 1 {
		t.Errorf("Expected 1 root group, got %d", len(roots))
	}

	details, err := svc.GetGroup(ctx, parent.ID)
	if err != nil {
		t.Fatalf("GetGroup returned error: %v", err)
	}
	if len(details.Children) != 1 || details.Children[0].ID != child.ID {
		t.Errorf("Child group missing from parent details")
	}
}

func TestCreateGroupUnderMissingParent(t *testing.T) {
	svc, _, _, _ := newCatalogFixture()

	missing := int64(99)
	_, err := svc.CreateGroup(context.Background(), &missing, GroupInput{Type: "tees", Name: "Shirts"})
	if !errors.Is(err, repository.ErrProductGroupNotFound) {
		t.Errorf("Expected ErrProductGroupNotFound, got %v", err)
	}
}

func TestUpdateGroupOverwritesFields(t *testing.T) {
	svc, _, _, _ := newCatalogFixture()
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, nil, GroupInput{Type: "furniture", Name: "Chairs"})
	if err != nil {
		t.Fatalf("CreateGroup returned error: %v", err)
	}

	capacity := 40
	expires := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	updated, err := svc.UpdateGroup(ctx, group.ID, GroupInput{
		Type:        "tees",
		Name:        "Shirts",
		CapacityMax: &capacity,
		Expires:     &expires,
	})
	if err != nil {
		t.Fatalf("UpdateGroup returned error: %v", err)
	}

	if updated.Type != "tees" || updated.Name != "Shirts" {
		t.Errorf("Group fields not overwritten: %+v", updated)
	}
	if updated.CapacityMax == nil || *updated.CapacityMax != 40 {
		t.Errorf("Capacity not overwritten")
	}
	if updated.Expires == nil || !updated.Expires.Equal(expires) {
		t.Errorf("Expiry not overwritten")
	}
}

func TestCreateProductUnderMissingGroup(t *testing.T) {
	svc, _, _, _ := newCatalogFixture()

	_, err := svc.CreateProduct(context.Background(), 99, ProductInput{Name: "chair", DisplayName: "Chair"})
	if !errors.Is(err, repository.ErrProductGroupNotFound) {
		t.Errorf("Expected ErrProductGroupNotFound, got %v", err)
	}
}

func TestGetProductIncludesTiers(t *testing.T) {
	svc, _, _, tierRepo := newCatalogFixture()
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, nil, GroupInput{Type: "furniture", Name: "Chairs"})
	if err != nil {
		t.Fatalf("CreateGroup returned error: %v", err)
	}
	product, err := svc.CreateProduct(ctx, group.ID, ProductInput{Name: "stool", DisplayName: "Bar Stool"})
	if err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}

	tier := &domain.PriceTier{ProductID: product.ID, Name: "standard", Active: true}
	if err := tierRepo.CreateWithPrices(ctx, tier); err != nil {
		t.Fatalf("CreateWithPrices returned error: %v", err)
	}

	details, err := svc.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProduct returned error: %v", err)
	}
	if details.Product.ID != product.ID {
		t.Errorf("Wrong product loaded")
	}
	if len(details.Tiers) != 1 || details.Tiers[0].ID != tier.ID {
		t.Errorf("Price tiers missing from product details")
	}
}

func TestUpdateProductOverwritesFields(t *testing.T) {
	svc, _, _, _ := newCatalogFixture()
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, nil, GroupInput{Type: "furniture", Name: "Chairs"})
	if err != nil {
		t.Fatalf("CreateGroup returned error: %v", err)
	}
	product, err := svc.CreateProduct(ctx, group.ID, ProductInput{Name: "stool", DisplayName: "Bar Stool"})
	if err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}

	description := "Four legs, no back"
	updated, err := svc.UpdateProduct(ctx, product.ID, ProductInput{
		Name:        "stool-v2",
		DisplayName: "Workshop Stool",
		Description: &description,
	})
	if err != nil {
		t.Fatalf("UpdateProduct returned error: %v", err)
	}

	if updated.Name != "stool-v2" || updated.DisplayName != "Workshop Stool" {
		t.Errorf("Product fields not overwritten: %+v", updated)
	}
	if updated.Description == nil || *updated.Description != description {
		t.Errorf("Description not overwritten")
	}
}

func TestUpdateProductOnMissingProduct(t *testing.T) {
	svc, _, _, _ := newCatalogFixture()

	_, err := svc.UpdateProduct(context.Background(), 99, ProductInput{Name: "x", DisplayName: "X"})
	if !errors.Is(err, repository.ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound, got %v", err)
	}
}
