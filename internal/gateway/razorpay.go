// Package gateway talks to the Razorpay-style payment provider: creating
// gateway orders ahead of card collection and verifying callback
// signatures afterwards.
package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://api.razorpay.com"

// Order is the provider-side record created before collecting payment
// details. Amount is in the currency's minor unit (paise).
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// OrderRequest describes the gateway order to create. Receipt carries
// the merchant's correlation id; it is echoed back at verification time.
type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// Client is a thin REST client for the provider's orders API.
type Client struct {
	keyID     string
	keySecret string
	http      *resty.Client
}

// NewClient builds a gateway client authenticated with the key pair.
func NewClient(keyID, keySecret string) *Client {
	httpClient := resty.New().
		SetBaseURL(defaultBaseURL).
		SetTimeout(15 * time.Second).
		SetBasicAuth(keyID, keySecret)

	return &Client{
		keyID:     keyID,
		keySecret: keySecret,
		http:      httpClient,
	}
}

// SetBaseURL points the client at a different API host.
func (c *Client) SetBaseURL(baseURL string) *Client {
	c.http.SetBaseURL(baseURL)
	return c
}

// KeyID returns the publishable key id handed to browser clients.
func (c *Client) KeyID() string {
	return c.keyID
}

// CreateOrder creates a gateway order and returns its handle.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if req.Currency == "" {
		req.Currency = "INR"
	}

	var order Order
	var apiErr apiError

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&order).
		SetError(&apiErr).
		Post("/v1/orders")

	if err != nil {
		return nil, fmt.Errorf("gateway order creation failed: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("gateway order creation rejected (%d): %s",
			resp.StatusCode(), apiErr.Error.Description)
	}

	return &order, nil
}

// Signature computes the hex HMAC-SHA256 over "orderID|paymentID" with
// the key secret. This is the value the provider sends back alongside a
// completed payment.
func Signature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature recomputes the expected signature and compares it in
// constant time.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	expected := Signature(c.keySecret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
