package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diprojose/nimvu-store/internal/domain"
)

var descriptor = domain.PaymentDescriptor{
	Reference:     "ORD-123",
	AmountInCents: 7200000,
	Currency:      "COP",
}

func TestHTTPSignatureClient_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got domain.PaymentDescriptor
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, descriptor, got)

		json.NewEncoder(w).Encode(map[string]string{"signature": "abc123"})
	}))
	defer server.Close()

	client := NewHTTPSignatureClient(server.URL, time.Second)
	sig, err := client.FetchSignature(context.Background(), descriptor)
	require.NoError(t, err)
	assert.Equal(t, "abc123", sig)
}

func TestHTTPSignatureClient_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"server configuration error"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPSignatureClient(server.URL, time.Second)
	_, err := client.FetchSignature(context.Background(), descriptor)

	var gatewayErr *GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Equal(t, "signature", gatewayErr.Op)
}

func TestHTTPSignatureClient_EmptySignature(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"signature": ""})
	}))
	defer server.Close()

	client := NewHTTPSignatureClient(server.URL, time.Second)
	_, err := client.FetchSignature(context.Background(), descriptor)

	var gatewayErr *GatewayError
	require.ErrorAs(t, err, &gatewayErr)
}

func TestHTTPSignatureClient_ConnectionRefused(t *testing.T) {
	client := NewHTTPSignatureClient("http://127.0.0.1:1", 100*time.Millisecond)
	_, err := client.FetchSignature(context.Background(), descriptor)

	var gatewayErr *GatewayError
	require.ErrorAs(t, err, &gatewayErr)
}
