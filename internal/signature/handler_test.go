package signature

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandler_Sign(t *testing.T) {
	handler := NewHandler(NewSigner("s3cr3t"))

	body := `{"reference":"ORD-1","amountInCents":50000,"currency":"COP"}`
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/wompi/signature", strings.NewReader(body))

	handler.Sign(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, recorder.Code)
	}

	var response signResponse
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Signature != "fc34e86a05a22ecee66b306c705fd51cb8a722887698973de3e92305023c290b" {
		t.Errorf("unexpected signature: %s", response.Signature)
	}
	if strings.Contains(response.Chain, "s3cr3t") {
		t.Errorf("chain leaks the secret: %s", response.Chain)
	}
}

func TestHandler_MissingSecretIs500(t *testing.T) {
	handler := NewHandler(NewSigner(""))

	body := `{"reference":"ORD-1","amountInCents":50000,"currency":"COP"}`
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/wompi/signature", strings.NewReader(body))

	handler.Sign(recorder, request)

	if recorder.Code != http.StatusInternalServerError {
		t.Errorf("expected %d, got %d", http.StatusInternalServerError, recorder.Code)
	}
}

func TestHandler_InvalidBodyIs400(t *testing.T) {
	handler := NewHandler(NewSigner("s3cr3t"))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/wompi/signature", strings.NewReader("{broken"))

	handler.Sign(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}
