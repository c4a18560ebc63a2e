// Package gateway talks to the hosted payment gateway: order creation over its REST API and
// verification of the signature the checkout widget hands back to the browser.
package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"event-ticket/common/otel"
	"fmt"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrInvalidSignature = errors.New("payment signature mismatch")
	ErrGatewayRejected  = errors.New("payment gateway rejected the request")
)

type CreateOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type Order struct {
	Id       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

//go:generate mockgen -source=gateway.go -destination=mocks/gateway.go -package=mocks
type Gateway interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (Order, error)
	// KeyId is the public key handed to the checkout widget.
	KeyId() string
}

type Config struct {
	BaseURL   string        `mapstructure:"base_url"`
	KeyId     string        `mapstructure:"key_id"`
	KeySecret string        `mapstructure:"key_secret"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type Client struct {
	baseURL   string
	keyId     string
	keySecret string
	hc        *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		keyId:     cfg.KeyId,
		keySecret: cfg.KeySecret,
		hc:        &http.Client{Timeout: timeout},
	}
}

func (c *Client) KeyId() string {
	return c.keyId
}

// CreateOrder registers a new order. Every call creates a distinct gateway order.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (Order, error) {
	ctx, span := otel.Tracer.Start(ctx, "gateway.CreateOrder", trace.WithAttributes(attribute.String("payment.receipt", req.Receipt)))
	defer span.End()

	body, err := json.Marshal(req)
	if err != nil {
		return Order{}, fmt.Errorf("createOrder: json.Marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return Order{}, fmt.Errorf("createOrder: http.NewRequest: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.keyId, c.keySecret)

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		return Order{}, fmt.Errorf("createOrder: http.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<12))
		return Order{}, fmt.Errorf("createOrder: status %d: %s: %w", resp.StatusCode, strings.TrimSpace(string(raw)), ErrGatewayRejected)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return Order{}, fmt.Errorf("createOrder: json.Decode: %w", err)
	}
	if order.Id == "" {
		return Order{}, fmt.Errorf("createOrder: empty order id: %w", ErrGatewayRejected)
	}

	return order, nil
}

// Sign computes the checkout signature for an (order, payment) pair.
func Sign(secret, orderId, paymentId string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderId + "|" + paymentId))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares in constant time.
func VerifySignature(secret, orderId, paymentId, signature string) error {
	expected := Sign(secret, orderId, paymentId)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return ErrInvalidSignature
	}
	return nil
}
