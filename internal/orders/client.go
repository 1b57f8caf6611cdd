package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/diprojose/nimvu-store/internal/domain"
)

// CreateRequest is the order-creation wire contract.
type CreateRequest struct {
	UserID           string             `json:"userId"`
	Items            []domain.OrderItem `json:"items"`
	Total            float64            `json:"total"`
	Status           string             `json:"status"`
	ShippingAddress  domain.Address     `json:"shippingAddress"`
	PaymentReference string             `json:"paymentReference,omitempty"`
	PaymentID        string             `json:"paymentId,omitempty"`
}

// CreatedOrder is the subset of the created order the caller needs back.
type CreatedOrder struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Client creates durable orders. Implemented in-process by *Service and over
// the wire by *HTTPClient.
type Client interface {
	Create(ctx context.Context, req *CreateRequest) (*CreatedOrder, error)
}

// HTTPClient talks to a remote order-creation endpoint.
type HTTPClient struct {
	url    string
	client *http.Client
}

func NewHTTPClient(url string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Create(ctx context.Context, req *CreateRequest) (*CreatedOrder, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal order request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("create order: status %d: %s", resp.StatusCode, payload)
	}

	var created CreatedOrder
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}
	return &created, nil
}
