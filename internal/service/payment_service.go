package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/gateway"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount    = errors.New("amount must be a positive amount")
	ErrInvalidSignature = errors.New("invalid payment signature")
)

// PaymentGateway is the slice of the gateway client the service needs.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req gateway.OrderRequest) (*gateway.Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
	KeyID() string
}

// PaymentOrder is returned to the client so it can open the provider's
// checkout: the remote order handle plus the publishable key.
type PaymentOrder struct {
	Order *gateway.Order `json:"order"`
	Key   string         `json:"key"`
}

// VerificationRequest carries the provider callback fields plus the
// merchant correlation id.
type VerificationRequest struct {
	PaymentID string
	OrderID   string // gateway order id, first half of the signed payload
	Signature string
	LocalID   uuid.UUID // merchant order correlation id
}

// PaymentService defines the interface for payment business logic
type PaymentService interface {
	CreatePaymentOrder(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, localOrderID uuid.UUID) (*PaymentOrder, error)
	VerifyPayment(ctx context.Context, req VerificationRequest) (*domain.Order, error)
}

type paymentService struct {
	gateway   PaymentGateway
	orderRepo repository.OrderRepository
}

// NewPaymentService creates a new instance of PaymentService
func NewPaymentService(gw PaymentGateway, orderRepo repository.OrderRepository) PaymentService {
	return &paymentService{
		gateway:   gw,
		orderRepo: orderRepo,
	}
}

// CreatePaymentOrder asks the gateway for a remote order keyed by the
// merchant correlation id. The amount is converted to paise.
func (s *paymentService) CreatePaymentOrder(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, localOrderID uuid.UUID) (*PaymentOrder, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	paise := amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	remote, err := s.gateway.CreateOrder(ctx, gateway.OrderRequest{
		Amount:   paise,
		Currency: "INR",
		Receipt:  localOrderID.String(),
		Notes: map[string]string{
			"orderId": localOrderID.String(),
			"userId":  userID.String(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}

	return &PaymentOrder{
		Order: remote,
		Key:   s.gateway.KeyID(),
	}, nil
}

// VerifyPayment checks the callback signature and, on a match, applies
// the single PENDING -> COMPLETED payment transition to the local order.
// A mismatch or a missing order leaves all state untouched.
func (s *paymentService) VerifyPayment(ctx context.Context, req VerificationRequest) (*domain.Order, error) {
	if !s.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		return nil, ErrInvalidSignature
	}

	// The guard in CompletePayment makes a replayed valid callback a
	// no-op; applied=false with no error means it already completed.
	if _, err := s.orderRepo.CompletePayment(ctx, req.LocalID, req.PaymentID); err != nil {
		return nil, err
	}

	return s.orderRepo.FindByID(ctx, req.LocalID)
}
