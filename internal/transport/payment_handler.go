package transport

import (
	"errors"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreatePaymentRequest asks the gateway for a remote order covering a
// local order's total. Amount is a decimal string in rupees.
type CreatePaymentRequest struct {
	Amount  string `json:"amount" validate:"required"`
	OrderID string `json:"order_id" validate:"required,uuid"`
}

// VerifyPaymentRequest carries the provider's callback fields. The
// field names follow the provider's checkout response.
type VerifyPaymentRequest struct {
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
	OrderID           string `json:"order_id" validate:"required,uuid"`
}

// PaymentHandler handles HTTP requests for payment operations
type PaymentHandler struct {
	paymentService service.PaymentService
	orderService   service.OrderService
	logger         *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService service.PaymentService, orderService service.OrderService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		orderService:   orderService,
		logger:         logger,
	}
}

// RegisterRoutes registers all payment routes. Every route requires
// auth; the rate limit sits inside the auth middleware so it keys by
// the authenticated user.
func (h *PaymentHandler) RegisterRoutes(r chi.Router, authMiddleware, rateLimit func(http.Handler) http.Handler) {
	r.Route("/api/payment", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(rateLimit)
		r.Post("/create-order", h.CreateOrder)
		r.Post("/verify", h.Verify)
	})
}

// CreateOrder creates a gateway order for a local order the caller
// owns. The server recomputes nothing here; the amount must match the
// stored order total.
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	role, _ := middleware.GetUserRole(r.Context())

	var req CreatePaymentRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	localID, err := uuid.Parse(req.OrderID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	// Ownership check; foreign orders read as not found
	order, err := h.orderService.GetOrder(r.Context(), localID, userID, role)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to load order for payment", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create payment order")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "amount must be a decimal number")
		return
	}
	if !amount.Equal(order.Total) {
		middleware.RespondWithError(w, http.StatusBadRequest, "amount does not match the order total")
		return
	}

	result, err := h.paymentService.CreatePaymentOrder(r.Context(), userID, amount, localID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			middleware.RespondWithError(w, http.StatusBadRequest, "amount must be a positive amount")
			return
		}

		h.logger.Error("Failed to create payment order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "payment provider is unavailable")
		return
	}

	h.logger.Info("Payment order created",
		zap.String("order_id", localID.String()),
		zap.String("gateway_order_id", result.Order.ID),
	)
	middleware.RespondWithData(w, http.StatusOK, result)
}

// Verify checks the provider callback signature and marks the order
// paid. A valid replay returns the already-completed order unchanged.
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	role, _ := middleware.GetUserRole(r.Context())

	var req VerifyPaymentRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	localID, err := uuid.Parse(req.OrderID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	// Ownership check before any state change
	if _, err := h.orderService.GetOrder(r.Context(), localID, userID, role); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to load order for verification", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to verify payment")
		return
	}

	order, err := h.paymentService.VerifyPayment(r.Context(), service.VerificationRequest{
		PaymentID: req.RazorpayPaymentID,
		OrderID:   req.RazorpayOrderID,
		Signature: req.RazorpaySignature,
		LocalID:   localID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSignature):
			h.logger.Warn("Payment signature mismatch",
				zap.String("order_id", localID.String()),
				zap.String("gateway_order_id", req.RazorpayOrderID),
			)
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid payment signature")
		case errors.Is(err, repository.ErrOrderNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
		default:
			h.logger.Error("Failed to verify payment", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to verify payment")
		}
		return
	}

	h.logger.Info("Payment verified",
		zap.String("order_id", order.ID.String()),
		zap.String("payment_id", order.PaymentID),
	)
	middleware.RespondWithData(w, http.StatusOK, order)
}
