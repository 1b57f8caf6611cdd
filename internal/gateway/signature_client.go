package gateway

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

// GatewayError wraps a failed signature fetch or widget interaction. It is
// recoverable: the user retries, which generates a fresh reference (no
// automatic retry, to avoid reusing a reference).
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// SignatureClient fetches the integrity signature for a payment descriptor.
type SignatureClient interface {
	FetchSignature(ctx context.Context, descriptor domain.PaymentDescriptor) (string, error)
}

// HTTPSignatureClient talks to the signature endpoint over HTTP. The secret
// stays behind that endpoint; only the computed signature crosses.
type HTTPSignatureClient struct {
	url    string
	client *http.Client
}

func NewHTTPSignatureClient(url string, timeout time.Duration) *HTTPSignatureClient {
	return &HTTPSignatureClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type signatureResponse struct {
	Signature string `json:"signature"`
	Chain     string `json:"chain"`
	Error     string `json:"error"`
}

func (c *HTTPSignatureClient) FetchSignature(ctx context.Context, descriptor domain.PaymentDescriptor) (string, error) {
	body, err := json.Marshal(descriptor)
	if err != nil {
		return "", &GatewayError{Op: "signature", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", &GatewayError{Op: "signature", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &GatewayError{Op: "signature", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &GatewayError{
			Op:  "signature",
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, payload),
		}
	}

	var parsed signatureResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &GatewayError{Op: "signature", Err: err}
	}
	if parsed.Signature == "" {
		return "", &GatewayError{Op: "signature", Err: fmt.Errorf("empty signature in response")}
	}
	return parsed.Signature, nil
}
