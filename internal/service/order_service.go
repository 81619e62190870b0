package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

var ErrEmptyOrder = errors.New("order must contain at least one item")

// CheckoutItem is one requested line of a checkout submission.
type CheckoutItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// OrderService defines the interface for order business logic
type OrderService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, items []CheckoutItem, address domain.ShippingAddress) (*domain.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	GetOrder(ctx context.Context, orderID, userID uuid.UUID, role domain.Role) (*domain.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// CreateOrder prices the requested items from the catalog, snapshotting
// name and unit price, computes the checkout totals and persists the
// order as PENDING/PENDING. Stock is not decremented.
func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, items []CheckoutItem, address domain.ShippingAddress) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	basket := cart.New()
	orderItems := make([]domain.OrderItem, 0, len(items))
	orderID := uuid.New()

	for _, item := range items {
		if item.Quantity < 1 {
			item.Quantity = 1
		}

		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to price order item: %w", err)
		}

		basket = basket.Add(cart.Item{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			ImageURL:  product.ImageURL,
			Quantity:  item.Quantity,
		})

		orderItems = append(orderItems, domain.OrderItem{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  item.Quantity,
		})
	}

	totals := basket.Totals()

	order := &domain.Order{
		ID:              orderID,
		UserID:          userID,
		Items:           orderItems,
		ShippingAddress: address,
		Subtotal:        totals.Subtotal,
		ShippingFee:     totals.Shipping,
		Tax:             totals.Tax,
		Total:           totals.Total,
		PaymentStatus:   domain.PaymentStatusPending,
		Status:          domain.OrderStatusPending,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// ListOrders returns the caller's orders, newest first
func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

// GetOrder returns an order if the caller owns it; admins may read any.
// A foreign order surfaces as not-found rather than confirming it exists.
func (s *orderService) GetOrder(ctx context.Context, orderID, userID uuid.UUID, role domain.Role) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != userID && !role.Allows(domain.RoleAdmin) {
		return nil, repository.ErrOrderNotFound
	}

	return order, nil
}
