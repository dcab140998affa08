package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"

	"ticket-office/internal/domain"
	"ticket-office/internal/repository"
	"ticket-office/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// In-memory repositories backing the handler tests.

type mockGroupRepo struct {
	nextID int64
	groups map[int64]*domain.ProductGroup
}

func newMockGroupRepo() *mockGroupRepo {
	return &mockGroupRepo{groups: make(map[int64]*domain.ProductGroup)}
}

func (m *mockGroupRepo) Create(ctx context.Context, group *domain.ProductGroup) error {
	m.nextID++
	group.ID = m.nextID
	m.groups[group.ID] = group
	return nil
}

func (m *mockGroupRepo) Update(ctx context.Context, group *domain.ProductGroup) error {
	if _, exists := m.groups[group.ID]; !exists {
		return repository.ErrProductGroupNotFound
	}
	m.groups[group.ID] = group
	return nil
}

func (m *mockGroupRepo) FindByID(ctx context.Context, id int64) (*domain.ProductGroup, error) {
	group, exists := m.groups[id]
	if !exists {
		return nil, repository.ErrProductGroupNotFound
	}
	return group, nil
}

func (m *mockGroupRepo) ListRoots(ctx context.Context) ([]*domain.ProductGroup, error) {
	roots := []*domain.ProductGroup{}
	for id := int64(1); id <= m.nextID; id++ {
		group, exists := m.groups[id]
		if exists && group.ParentID == nil {
			roots = append(roots, group)
		}
	}
	return roots, nil
}

func (m *mockGroupRepo) ListChildren(ctx context.Context, parentID int64) ([]*domain.ProductGroup, error) {
	children := []*domain.ProductGroup{}
	for id := int64(1); id <= m.nextID; id++ {
		group, exists := m.groups[id]
		if exists && group.ParentID != nil && *group.ParentID == parentID {
			children = append(children, group)
		}
	}
	return children, nil
}

type mockProductRepo struct {
	nextID   int64
	products map[int64]*domain.Product
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: make(map[int64]*domain.Product)}
}

func (m *mockProductRepo) Create(ctx context.Context, product *domain.Product) error {
	m.nextID++
	product.ID = m.nextID
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) Update(ctx context.Context, product *domain.Product) error {
	if _, exists := m.products[product.ID]; !exists {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *mockProductRepo) ListByGroup(ctx context.Context, groupID int64) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for id := int64(1); id <= m.nextID; id++ {
		product, exists := m.products[id]
		if exists && product.GroupID == groupID {
			products = append(products, product)
		}
	}
	return products, nil
}

type mockTierRepo struct {
	nextID int64
	tiers  map[int64]*domain.PriceTier
	used   map[int64]bool
}

func newMockTierRepo() *mockTierRepo {
	return &mockTierRepo{
		tiers: make(map[int64]*domain.PriceTier),
		used:  make(map[int64]bool),
	}
}

func (m *mockTierRepo) CreateWithPrices(ctx context.Context, tier *domain.PriceTier) error {
	m.nextID++
	tier.ID = m.nextID
	tier.Unused = true
	for _, price := range tier.Prices {
		price.PriceTierID = tier.ID
	}
	m.tiers[tier.ID] = tier
	return nil
}

func (m *mockTierRepo) FindByID(ctx context.Context, id int64) (*domain.PriceTier, error) {
	tier, exists := m.tiers[id]
	if !exists {
		return nil, repository.ErrPriceTierNotFound
	}
	tier.Unused = !m.used[id]
	return tier, nil
}

func (m *mockTierRepo) ListByProduct(ctx context.Context, productID int64) ([]*domain.PriceTier, error) {
	tiers := []*domain.PriceTier{}
	for id := int64(1); id <= m.nextID; id++ {
		tier, exists := m.tiers[id]
		if exists && tier.ProductID == productID {
			tiers = append(tiers, tier)
		}
	}
	return tiers, nil
}

func (m *mockTierRepo) CountByProduct(ctx context.Context, productID int64) (int, error) {
	count := 0
	for _, tier := range m.tiers {
		if tier.ProductID == productID {
			count++
		}
	}
	return count, nil
}

func (m *mockTierRepo) Activate(ctx context.Context, id int64) error {
	tier, exists := m.tiers[id]
	if !exists {
		return repository.ErrPriceTierNotFound
	}
	for _, sibling := range m.tiers {
		if sibling.ProductID == tier.ProductID {
			sibling.Active = false
		}
	}
	tier.Active = true
	return nil
}

func (m *mockTierRepo) Deactivate(ctx context.Context, id int64) error {
	tier, exists := m.tiers[id]
	if !exists {
		return repository.ErrPriceTierNotFound
	}
	tier.Active = false
	return nil
}

func (m *mockTierRepo) Delete(ctx context.Context, id int64) error {
	if _, exists := m.tiers[id]; !exists {
		return repository.ErrPriceTierNotFound
	}
	if m.used[id] {
		return repository.ErrPriceTierInUse
	}
	delete(m.tiers, id)
	return nil
}

type mockViewRepo struct {
	nextEntryID int64
	views       map[int64]*domain.ProductView
	entries     map[int64][]*domain.ProductViewProduct
}

func newMockViewRepo() *mockViewRepo {
	return &mockViewRepo{
		views:   make(map[int64]*domain.ProductView),
		entries: make(map[int64][]*domain.ProductViewProduct),
	}
}

func (m *mockViewRepo) addView(id int64, name, viewType, token string) {
	m.views[id] = &domain.ProductView{ID: id, Name: name, Type: viewType, Token: token}
}

func (m *mockViewRepo) addEntry(viewID, productID int64, order int) {
	m.nextEntryID++
	m.entries[viewID] = append(m.entries[viewID], &domain.ProductViewProduct{
		ID:        m.nextEntryID,
		ViewID:    viewID,
		ProductID: productID,
		Order:     order,
	})
}

func (m *mockViewRepo) FindByID(ctx context.Context, id int64) (*domain.ProductView, error) {
	view, exists := m.views[id]
	if !exists {
		return nil, repository.ErrProductViewNotFound
	}
	copied := *view
	return &copied, nil
}

func (m *mockViewRepo) ListEntries(ctx context.Context, viewID int64) ([]*domain.ProductViewProduct, error) {
	entries := append([]*domain.ProductViewProduct{}, m.entries[viewID]...)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Order != entries[j].Order {
			return entries[i].Order < entries[j].Order
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

func (m *mockViewRepo) Update(ctx context.Context, view *domain.ProductView, orders map[int64]int) error {
	stored, exists := m.views[view.ID]
	if !exists {
		return repository.ErrProductViewNotFound
	}

	for productID := range orders {
		found := false
		for _, entry := range m.entries[view.ID] {
			if entry.ProductID == productID {
				found = true
				break
			}
		}
		if !found {
			return repository.ErrViewProductNotFound
		}
	}

	stored.Name = view.Name
	stored.Type = view.Type
	stored.Token = view.Token
	for _, entry := range m.entries[view.ID] {
		if order, ok := orders[entry.ProductID]; ok {
			entry.Order = order
		}
	}
	return nil
}

func (m *mockViewRepo) CreateEntry(ctx context.Context, entry *domain.ProductViewProduct) error {
	for _, existing := range m.entries[entry.ViewID] {
		if existing.ProductID == entry.ProductID {
			return repository.ErrViewProductExists
		}
	}
	m.nextEntryID++
	entry.ID = m.nextEntryID
	m.entries[entry.ViewID] = append(m.entries[entry.ViewID], entry)
	return nil
}

func (m *mockViewRepo) NextOrder(ctx context.Context, viewID int64) (int, error) {
	max := 0
	for _, entry := range m.entries[viewID] {
		if entry.Order > max {
			max = entry.Order
		}
	}
	return max + 1, nil
}

func (m *mockViewRepo) ViewCounts(ctx context.Context) ([]*repository.ViewCount, error) {
	ids := []int64{}
	for id := range m.views {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	counts := []*repository.ViewCount{}
	for _, id := range ids {
		counts = append(counts, &repository.ViewCount{
			View:         *m.views[id],
			ProductCount: len(m.entries[id]),
		})
	}
	return counts, nil
}

// testBackend bundles the mocks behind a wired router
type testBackend struct {
	router      chi.Router
	groupRepo   *mockGroupRepo
	productRepo *mockProductRepo
	tierRepo    *mockTierRepo
	viewRepo    *mockViewRepo
}

func newTestBackend() *testBackend {
	backend := &testBackend{
		groupRepo:   newMockGroupRepo(),
		productRepo: newMockProductRepo(),
		tierRepo:    newMockTierRepo(),
		viewRepo:    newMockViewRepo(),
	}

	logger := zap.NewNop()
	catalogService := service.NewCatalogService(backend.groupRepo, backend.productRepo, backend.tierRepo)
	pricingService := service.NewPricingService(backend.tierRepo, backend.productRepo)
	viewService := service.NewViewService(backend.viewRepo, backend.productRepo)

	router := chi.NewRouter()
	NewCatalogHandler(catalogService, logger).RegisterRoutes(router)
	NewPricingHandler(pricingService, catalogService, logger).RegisterRoutes(router)
	NewViewHandler(viewService, logger).RegisterRoutes(router)

	backend.router = router
	return backend
}

func (b *testBackend) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	b.router.ServeHTTP(rec, req)
	return rec
}

func (b *testBackend) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	b.router.ServeHTTP(rec, req)
	return rec
}

func (b *testBackend) addGroup(parentID *int64, groupType, name string) *domain.ProductGroup {
	group := &domain.ProductGroup{Type: groupType, Name: name, ParentID: parentID}
	b.groupRepo.Create(context.Background(), group)
	return group
}

func (b *testBackend) addProduct(groupID int64, name, displayName string) *domain.Product {
	product := &domain.Product{GroupID: groupID, Name: name, DisplayName: displayName}
	b.productRepo.Create(context.Background(), product)
	return product
}

func (b *testBackend) addTier(productID int64, name string, active bool) *domain.PriceTier {
	tier := &domain.PriceTier{ProductID: productID, Name: name}
	b.tierRepo.CreateWithPrices(context.Background(), tier)
	tier.Active = active
	return tier
}
