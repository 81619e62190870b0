package service

import (
	"context"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/gateway"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// Mock repositories for testing

type mockUserRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	copied := *user
	m.users[user.Email] = &copied
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type mockCategoryRepository struct {
	categories map[uuid.UUID]*domain.Category
	products   *mockProductRepository
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{categories: make(map[uuid.UUID]*domain.Category)}
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	for _, c := range m.categories {
		if c.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	copied := *category
	m.categories[category.ID] = &copied
	return nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	existing, ok := m.categories[category.ID]
	if !ok {
		return repository.ErrCategoryNotFound
	}
	for id, c := range m.categories {
		if id != category.ID && c.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	*existing = *category
	return nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	out := []*domain.Category{}
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	return c, nil
}

func (m *mockCategoryRepository) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	for _, c := range m.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (m *mockCategoryRepository) CountProducts(ctx context.Context, id uuid.UUID) (int, error) {
	if m.products == nil {
		return 0, nil
	}
	count := 0
	for _, p := range m.products.products {
		if p.CategoryID == id {
			count++
		}
	}
	return count, nil
}

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	for _, p := range m.products {
		if p.Name == product.Name {
			return repository.ErrProductAlreadyExists
		}
	}
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	existing, ok := m.products[product.ID]
	if !ok {
		return repository.ErrProductNotFound
	}
	for id, p := range m.products {
		if id != product.ID && p.Name == product.Name {
			return repository.ErrProductAlreadyExists
		}
	}
	*existing = *product
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *mockProductRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	for _, p := range m.products {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, int, error) {
	matching := []*domain.Product{}
	for _, p := range m.products {
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		matching = append(matching, p)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 10
	}

	start := (page - 1) * pageSize
	if start >= len(matching) {
		return []*domain.Product{}, len(matching), nil
	}
	end := start + pageSize
	if end > len(matching) {
		end = len(matching)
	}
	return matching[start:end], len(matching), nil
}

type mockOrderRepository struct {
	orders           map[uuid.UUID]*domain.Order
	completeAttempts int
	completeApplied  int
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{orders: make(map[uuid.UUID]*domain.Order)}
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return o, nil
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	out := []*domain.Order{}
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderRepository) CompletePayment(ctx context.Context, orderID uuid.UUID, paymentID string) (bool, error) {
	m.completeAttempts++
	o, ok := m.orders[orderID]
	if !ok {
		return false, repository.ErrOrderNotFound
	}
	if o.PaymentStatus != domain.PaymentStatusPending {
		return false, nil
	}
	o.PaymentID = paymentID
	o.PaymentStatus = domain.PaymentStatusCompleted
	o.Status = domain.OrderStatusProcessing
	m.completeApplied++
	return true, nil
}

// mockGateway verifies signatures for real (using the gateway HMAC) but
// fakes the remote order call.
type mockGateway struct {
	secret       string
	createdCalls int
	lastRequest  gateway.OrderRequest
	failCreate   bool
}

func (m *mockGateway) CreateOrder(ctx context.Context, req gateway.OrderRequest) (*gateway.Order, error) {
	m.createdCalls++
	m.lastRequest = req
	if m.failCreate {
		return nil, context.DeadlineExceeded
	}
	return &gateway.Order{
		ID:       "order_" + uuid.NewString()[:8],
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

func (m *mockGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return gateway.Signature(m.secret, orderID, paymentID) == signature
}

func (m *mockGateway) KeyID() string {
	return "rzp_test_key"
}
