package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/gateway"
	custommiddleware "storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testJWTSecret     = "test-secret"
	testGatewaySecret = "gateway-secret"
)

// Mock repositories for testing

type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
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
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	if _, ok := m.categories[category.ID]; !ok {
		return repository.ErrCategoryNotFound
	}
	for id, c := range m.categories {
		if id != category.ID && c.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	m.categories[category.ID] = category
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
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = product
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
	orders map[uuid.UUID]*domain.Order
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{orders: make(map[uuid.UUID]*domain.Order)}
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	m.orders[order.ID] = order
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
	return true, nil
}

type mockGateway struct {
	lastRequest gateway.OrderRequest
}

func (m *mockGateway) CreateOrder(ctx context.Context, req gateway.OrderRequest) (*gateway.Order, error) {
	m.lastRequest = req
	return &gateway.Order{
		ID:       "order_remote",
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

func (m *mockGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return gateway.Signature(testGatewaySecret, orderID, paymentID) == signature
}

func (m *mockGateway) KeyID() string {
	return "rzp_test_key"
}

// testEnv assembles the full router over mock repositories, mirroring
// the production wiring with miniredis standing in for redis.
type testEnv struct {
	router       chi.Router
	userRepo     *mockUserRepository
	categoryRepo *mockCategoryRepository
	productRepo  *mockProductRepository
	orderRepo    *mockOrderRepository
	gateway      *mockGateway
	userService  service.UserService
	redis        *miniredis.Miniredis
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	userRepo := newMockUserRepository()
	categoryRepo := newMockCategoryRepository()
	productRepo := newMockProductRepository()
	categoryRepo.products = productRepo
	orderRepo := newMockOrderRepository()
	gw := &mockGateway{}

	logger := zap.NewNop()

	userService := service.NewUserService(userRepo, testJWTSecret, 7)
	catalogService := service.NewCatalogService(categoryRepo, productRepo)
	orderService := service.NewOrderService(orderRepo, productRepo)
	paymentService := service.NewPaymentService(gw, orderRepo)

	authMiddleware := custommiddleware.AuthMiddleware(testJWTSecret, logger)
	adminMiddleware := custommiddleware.RequireAdmin(logger)

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })
	paymentRateLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 1000,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit:payment",
	}, logger)

	router := chi.NewRouter()
	NewUserHandler(userService, false, logger).RegisterRoutes(router, authMiddleware)
	NewCategoryHandler(catalogService, logger).RegisterRoutes(router, authMiddleware, adminMiddleware)
	NewProductHandler(catalogService, logger).RegisterRoutes(router, authMiddleware, adminMiddleware)
	NewOrderHandler(orderService, logger).RegisterRoutes(router, authMiddleware)
	NewPaymentHandler(paymentService, orderService, logger).RegisterRoutes(router, authMiddleware, paymentRateLimit)

	return &testEnv{
		router:       router,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		gateway:      gw,
		userService:  userService,
		redis:        mr,
	}
}

// loginAs registers (if needed) and logs in a user with the given role,
// returning the auth cookie.
func (e *testEnv) loginAs(t *testing.T, email string, role domain.Role) *http.Cookie {
	t.Helper()
	ctx := context.Background()

	if _, err := e.userRepo.FindByEmail(ctx, email); err != nil {
		user, err := e.userService.Register(ctx, "Test User", email, "password123")
		require.NoError(t, err)
		user.Role = role
	}

	token, _, err := e.userService.Login(ctx, email, "password123")
	require.NoError(t, err)

	return &http.Cookie{Name: custommiddleware.AuthCookieName, Value: token}
}

func (e *testEnv) seedCategory(t *testing.T, name string) *domain.Category {
	t.Helper()
	category := &domain.Category{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, e.categoryRepo.Create(context.Background(), category))
	return category
}

func (e *testEnv) seedProduct(t *testing.T, name, price string, stock int, categoryID uuid.UUID) *domain.Product {
	t.Helper()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        name,
		Description: "A seeded product",
		Price:       mustDecimal(price),
		ImageURL:    "https://example.com/p.png",
		Stock:       stock,
		CategoryID:  categoryID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, e.productRepo.Create(context.Background(), product))
	return product
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
