package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPrice = errors.New("price must be a positive amount")
	ErrInvalidStock = errors.New("stock must be a non-negative integer")
)

// CategoryInUseError rejects deleting a category that products still
// reference; Count is the number of referencing products.
type CategoryInUseError struct {
	Count int
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("cannot delete category with %d product(s); reassign or delete the products first", e.Count)
}

// ProductInput carries the validated fields of a product create/update.
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Stock       int
	CategoryID  uuid.UUID
}

// CatalogService defines the interface for catalog business logic
type CatalogService interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, name string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, int, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository) CatalogService {
	return &catalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

// ListCategories returns all categories with product counts
func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

// GetCategory returns a single category with its product count
func (s *catalogService) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return s.categoryRepo.FindByID(ctx, id)
}

// CreateCategory creates a category, rejecting duplicate names. The
// unique constraint backstops the read-then-write race.
func (s *catalogService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	existing, err := s.categoryRepo.FindByName(ctx, name)
	if err != nil && !errors.Is(err, repository.ErrCategoryNotFound) {
		return nil, fmt.Errorf("failed to check existing category: %w", err)
	}
	if existing != nil {
		return nil, repository.ErrCategoryAlreadyExists
	}

	category := &domain.Category{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// UpdateCategory renames a category. Keeping the current name is
// allowed; taking another category's name is not.
func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, name string) (*domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != category.Name {
		existing, err := s.categoryRepo.FindByName(ctx, name)
		if err != nil && !errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, fmt.Errorf("failed to check existing category: %w", err)
		}
		if existing != nil {
			return nil, repository.ErrCategoryAlreadyExists
		}
	}

	category.Name = name
	category.UpdatedAt = time.Now()

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// DeleteCategory removes a category unless products still reference it
func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		return err
	}

	count, err := s.categoryRepo.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return &CategoryInUseError{Count: count}
	}

	return s.categoryRepo.Delete(ctx, id)
}

// ListProducts returns a filtered, paginated catalog page plus the
// total matching count
func (s *catalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, int, error) {
	return s.productRepo.List(ctx, filter)
}

// GetProduct returns a single product with its category
func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// CreateProduct creates a product after checking price, stock, category
// existence and name uniqueness
func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}

	existing, err := s.productRepo.FindByName(ctx, input.Name)
	if err != nil && !errors.Is(err, repository.ErrProductNotFound) {
		return nil, fmt.Errorf("failed to check existing product: %w", err)
	}
	if existing != nil {
		return nil, repository.ErrProductAlreadyExists
	}

	product := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		ImageURL:    input.ImageURL,
		Stock:       input.Stock,
		CategoryID:  input.CategoryID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return s.productRepo.FindByID(ctx, product.ID)
}

// UpdateProduct applies the same validation shape as create
func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}

	if input.Name != product.Name {
		existing, err := s.productRepo.FindByName(ctx, input.Name)
		if err != nil && !errors.Is(err, repository.ErrProductNotFound) {
			return nil, fmt.Errorf("failed to check existing product: %w", err)
		}
		if existing != nil {
			return nil, repository.ErrProductAlreadyExists
		}
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.ImageURL = input.ImageURL
	product.Stock = input.Stock
	product.CategoryID = input.CategoryID
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return s.productRepo.FindByID(ctx, id)
}

// DeleteProduct removes a product from the catalog
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

func (s *catalogService) validateInput(ctx context.Context, input ProductInput) error {
	if !input.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if input.Stock < 0 {
		return ErrInvalidStock
	}
	if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
		return err
	}
	return nil
}
