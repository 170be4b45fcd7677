// Package gateway talks to the payment gateway's REST API and verifies its
// callback signatures.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"mixhouse_backend/platform/config"
)

// Order is a gateway checkout order for an embedded payment.
type Order struct {
	ID          string
	AmountPaise int64
	Currency    string
}

// PaymentLink is a hosted payment page for add-on purchases.
type PaymentLink struct {
	ID          string
	ShortURL    string
	ReferenceID string
}

// Gateway creates payable artifacts at the payment provider.
type Gateway interface {
	CreateOrder(ctx context.Context, amountPaise int64, receipt string) (Order, error)
	CreatePaymentLink(ctx context.Context, amountPaise int64, referenceID, description, callbackURL string) (PaymentLink, error)
}

// Client is the HTTP implementation of Gateway using the provider's
// basic-auth REST API. Amounts are in paise throughout.
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	client    *http.Client
}

// NewClient creates a gateway client from configuration.
func NewClient(cfg config.GatewayConfig) *Client {
	return &Client{
		baseURL:   cfg.GetGatewayBaseURL(),
		keyID:     cfg.GetGatewayKeyID(),
		keySecret: cfg.GetGatewayKeySecret(),
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

var _ Gateway = (*Client)(nil)

type orderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreateOrder opens a checkout order for the given amount. The receipt ties
// the order back to the purchased service.
func (c *Client) CreateOrder(ctx context.Context, amountPaise int64, receipt string) (Order, error) {
	var resp orderResponse
	err := c.post(ctx, "/v1/orders", orderRequest{
		Amount:   amountPaise,
		Currency: "INR",
		Receipt:  receipt,
	}, &resp)
	if err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	return Order{ID: resp.ID, AmountPaise: resp.Amount, Currency: resp.Currency}, nil
}

type paymentLinkRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	ReferenceID    string `json:"reference_id"`
	Description    string `json:"description"`
	CallbackURL    string `json:"callback_url"`
	CallbackMethod string `json:"callback_method"`
}

type paymentLinkResponse struct {
	ID          string `json:"id"`
	ShortURL    string `json:"short_url"`
	ReferenceID string `json:"reference_id"`
}

// CreatePaymentLink opens a hosted payment page. The gateway redirects the
// payer to callbackURL with the signed result in the query string.
func (c *Client) CreatePaymentLink(ctx context.Context, amountPaise int64, referenceID, description, callbackURL string) (PaymentLink, error) {
	var resp paymentLinkResponse
	err := c.post(ctx, "/v1/payment_links", paymentLinkRequest{
		Amount:         amountPaise,
		Currency:       "INR",
		ReferenceID:    referenceID,
		Description:    description,
		CallbackURL:    callbackURL,
		CallbackMethod: "get",
	}, &resp)
	if err != nil {
		return PaymentLink{}, fmt.Errorf("create payment link: %w", err)
	}
	return PaymentLink{ID: resp.ID, ShortURL: resp.ShortURL, ReferenceID: resp.ReferenceID}, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(data))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
