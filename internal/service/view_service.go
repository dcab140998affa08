package service

import (
	"context"
	"fmt"

	"ticket-office/internal/domain"
	"ticket-office/internal/repository"
)

// ViewEntryInput is one submitted row of the view edit form
type ViewEntryInput struct {
	ProductID int64
	Order     int
}

// ViewInput carries the submitted fields of the view edit form
type ViewInput struct {
	Name    string
	Type    string
	Token   string
	Entries []ViewEntryInput
}

// ViewDetails is a view together with its ordered product entries
type ViewDetails struct {
	View    *domain.ProductView          `json:"view"`
	Entries []*domain.ProductViewProduct `json:"entries"`
}

// ViewService implements product view editing
type ViewService interface {
	GetView(ctx context.Context, id int64) (*ViewDetails, error)
	UpdateView(ctx context.Context, id int64, input ViewInput) (*ViewDetails, error)
	AddViewEntry(ctx context.Context, viewID, productID int64, order *int) (*domain.ProductViewProduct, error)
}

type viewService struct {
	viewRepo    repository.ProductViewRepository
	productRepo repository.ProductRepository
}

// NewViewService creates a new ViewService
func NewViewService(viewRepo repository.ProductViewRepository, productRepo repository.ProductRepository) ViewService {
	return &viewService{
		viewRepo:    viewRepo,
		productRepo: productRepo,
	}
}

// GetView loads a view with its entries in display order
func (s *viewService) GetView(ctx context.Context, id int64) (*ViewDetails, error) {
	view, err := s.viewRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	entries, err := s.viewRepo.ListEntries(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ViewDetails{
		View:    view,
		Entries: entries,
	}, nil
}

// UpdateView overwrites the view's fields and reorders its entries.
// Every submitted row must reference a product already in the view;
// an unknown product ID rejects the whole submission and nothing is
// written.
func (s *viewService) UpdateView(ctx context.Context, id int64, input ViewInput) (*ViewDetails, error) {
	view, err := s.viewRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	entries, err := s.viewRepo.ListEntries(ctx, id)
	if err != nil {
		return nil, err
	}

	known := make(map[int64]bool, len(entries))
	for _, entry := range entries {
		known[entry.ProductID] = true
	}

	orders := make(map[int64]int, len(input.Entries))
	for _, row := range input.Entries {
		if !known[row.ProductID] {
			return nil, fmt.Errorf("product %d: %w", row.ProductID, repository.ErrViewProductNotFound)
		}
		orders[row.ProductID] = row.Order
	}

	view.Name = input.Name
	view.Type = input.Type
	view.Token = input.Token

	if err := s.viewRepo.Update(ctx, view, orders); err != nil {
		return nil, err
	}

	updated, err := s.viewRepo.ListEntries(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ViewDetails{
		View:    view,
		Entries: updated,
	}, nil
}

// AddViewEntry links a product into a view. A nil order places the
// product after the view's current last entry. Products already in
// the view are rejected with ErrViewProductExists.
func (s *viewService) AddViewEntry(ctx context.Context, viewID, productID int64, order *int) (*domain.ProductViewProduct, error) {
	if _, err := s.viewRepo.FindByID(ctx, viewID); err != nil {
		return nil, err
	}

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	position := 0
	if order != nil {
		position = *order
	} else {
		next, err := s.viewRepo.NextOrder(ctx, viewID)
		if err != nil {
			return nil, err
		}
		position = next
	}

	entry := &domain.ProductViewProduct{
		ViewID:    viewID,
		ProductID: productID,
		Order:     position,
	}

	if err := s.viewRepo.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}
