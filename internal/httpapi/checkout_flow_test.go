package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diprojose/nimvu-store/internal/domain"
	"github.com/diprojose/nimvu-store/internal/orders"
	"github.com/diprojose/nimvu-store/internal/storage"
)

// --- Mocks ---

type signaturesMock struct {
	err error
}

func (m signaturesMock) FetchSignature(_ context.Context, d domain.PaymentDescriptor) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "sig-" + d.Reference, nil
}

type ordersClientMock struct {
	err   error
	calls []*orders.CreateRequest
}

func (m *ordersClientMock) Create(_ context.Context, req *orders.CreateRequest) (*orders.CreatedOrder, error) {
	m.calls = append(m.calls, req)
	if m.err != nil {
		return nil, m.err
	}
	return &orders.CreatedOrder{ID: "order-1", Status: "PROCESSING"}, nil
}

// --- helpers ---

func newManager(ordersClient orders.Client) *SessionManager {
	return NewSessionManager(
		func(string) (storage.Store, error) { return storage.NewMemoryStore(), nil },
		signaturesMock{},
		nil,
		ordersClient,
		"pub_test_key",
		"http://localhost/order",
	)
}

func withSession(r *http.Request, sessionID string) *http.Request {
	ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
	return r.WithContext(ctx)
}

func withUser(r *http.Request, userID, email string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	ctx = context.WithValue(ctx, userEmailKey, email)
	return r.WithContext(ctx)
}

const addItemBody = `{
	"product": {
		"id": "p1",
		"title": "Camiseta",
		"price": 30000,
		"variants": [{"id": "v1", "title": "M", "price": 30000}]
	},
	"variant_id": "v1",
	"quantity": 2
}`

const checkoutBody = `{
	"address": {"first_name": "Ana", "address_1": "Calle 1 # 2-3", "city": "Bogotá", "phone": "3001234567"},
	"receiver": {"full_name": "Ana María", "phone": "3001234567", "national_id": "1234567890"}
}`

func addItem(t *testing.T, manager *SessionManager, sessionID string) {
	t.Helper()
	handler := NewCartHandler(manager)
	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/api/v1/cart/items", strings.NewReader(addItemBody)), sessionID)

	handler.AddItem(recorder, request)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("add item: expected %d, got %d: %s", http.StatusCreated, recorder.Code, recorder.Body)
	}
}

// --- tests ---

func TestCheckoutFlow_EndToEnd(t *testing.T) {
	ordersClient := &ordersClientMock{}
	manager := newManager(ordersClient)
	const sessionID = "session-1"

	// One line: variant v1, 30000 × 2.
	addItem(t, manager, sessionID)

	cartHandler := NewCartHandler(manager)
	recorder := httptest.NewRecorder()
	cartHandler.GetCart(recorder, withSession(httptest.NewRequest("GET", "/api/v1/cart", nil), sessionID))

	var cartResp CartResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&cartResp); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if cartResp.Subtotal != 60000 {
		t.Errorf("expected subtotal 60000, got %f", cartResp.Subtotal)
	}
	if cartResp.Total != 72000 {
		t.Errorf("expected total 72000 (60000 + 12000 shipping), got %f", cartResp.Total)
	}

	// Checkout: signature requested for the cent amount.
	checkoutHandler := NewCheckoutHandler(manager)
	recorder = httptest.NewRecorder()
	request := withUser(withSession(httptest.NewRequest("POST", "/api/v1/checkout", strings.NewReader(checkoutBody)), sessionID), "user-1", "ana@example.com")
	checkoutHandler.StartCheckout(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("checkout: expected %d, got %d: %s", http.StatusCreated, recorder.Code, recorder.Body)
	}
	var checkoutResp StartCheckoutResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&checkoutResp); err != nil {
		t.Fatalf("decode checkout: %v", err)
	}
	if checkoutResp.AmountInCents != 7200000 {
		t.Errorf("expected 7200000 cents, got %d", checkoutResp.AmountInCents)
	}
	if checkoutResp.WidgetOptions.Signature.Integrity == "" {
		t.Error("expected a widget integrity signature")
	}

	// Approved payment redirects back; reconciliation creates one order.
	confirmationHandler := NewConfirmationHandler(manager)
	recorder = httptest.NewRecorder()
	confirmationHandler.Confirm(recorder, withSession(httptest.NewRequest("GET", "/order?id=tx-1", nil), sessionID))

	if recorder.Code != http.StatusOK {
		t.Fatalf("confirm: expected %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body)
	}
	var confirmResp ConfirmationResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&confirmResp); err != nil {
		t.Fatalf("decode confirmation: %v", err)
	}
	if confirmResp.Outcome != "ORDER_CREATED" {
		t.Errorf("expected ORDER_CREATED, got %s", confirmResp.Outcome)
	}
	if confirmResp.OrderID != "order-1" {
		t.Errorf("expected order-1, got %s", confirmResp.OrderID)
	}

	if len(ordersClient.calls) != 1 {
		t.Fatalf("expected 1 order creation, got %d", len(ordersClient.calls))
	}
	if ordersClient.calls[0].Total != 72000 {
		t.Errorf("expected order total 72000, got %f", ordersClient.calls[0].Total)
	}
	if ordersClient.calls[0].PaymentID != "tx-1" {
		t.Errorf("expected payment id tx-1, got %s", ordersClient.calls[0].PaymentID)
	}

	// Cart cleared after the durable order.
	recorder = httptest.NewRecorder()
	cartHandler.GetCart(recorder, withSession(httptest.NewRequest("GET", "/api/v1/cart", nil), sessionID))
	cartResp = CartResponseDTO{}
	if err := json.NewDecoder(recorder.Body).Decode(&cartResp); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if len(cartResp.Lines) != 0 {
		t.Errorf("expected empty cart, got %d lines", len(cartResp.Lines))
	}

	// Reload of the confirmation page does not create a second order.
	recorder = httptest.NewRecorder()
	confirmationHandler.Confirm(recorder, withSession(httptest.NewRequest("GET", "/order?id=tx-1", nil), sessionID))
	if recorder.Code != http.StatusOK {
		t.Fatalf("confirm reload: expected %d, got %d", http.StatusOK, recorder.Code)
	}
	if len(ordersClient.calls) != 1 {
		t.Errorf("reload created a duplicate order: %d calls", len(ordersClient.calls))
	}
}

func TestCheckout_ValidationErrorIs400(t *testing.T) {
	manager := newManager(&ordersClientMock{})
	const sessionID = "session-2"
	addItem(t, manager, sessionID)

	handler := NewCheckoutHandler(manager)
	recorder := httptest.NewRecorder()
	// No user identity on the request.
	request := withSession(httptest.NewRequest("POST", "/api/v1/checkout", strings.NewReader(checkoutBody)), sessionID)
	handler.StartCheckout(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestConfirm_NoTransactionIDIs404(t *testing.T) {
	manager := newManager(&ordersClientMock{})
	handler := NewConfirmationHandler(manager)

	recorder := httptest.NewRecorder()
	handler.Confirm(recorder, withSession(httptest.NewRequest("GET", "/order", nil), "session-3"))

	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestConfirm_FailureEchoesTransactionID(t *testing.T) {
	ordersClient := &ordersClientMock{err: errors.New("backend down")}
	manager := newManager(ordersClient)
	const sessionID = "session-4"
	addItem(t, manager, sessionID)

	checkoutHandler := NewCheckoutHandler(manager)
	recorder := httptest.NewRecorder()
	request := withUser(withSession(httptest.NewRequest("POST", "/api/v1/checkout", strings.NewReader(checkoutBody)), sessionID), "user-1", "ana@example.com")
	checkoutHandler.StartCheckout(recorder, request)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("checkout: expected %d, got %d", http.StatusCreated, recorder.Code)
	}

	confirmationHandler := NewConfirmationHandler(manager)
	recorder = httptest.NewRecorder()
	confirmationHandler.Confirm(recorder, withSession(httptest.NewRequest("GET", "/order?id=tx-99", nil), sessionID))

	if recorder.Code != http.StatusBadGateway {
		t.Fatalf("expected %d, got %d", http.StatusBadGateway, recorder.Code)
	}
	var resp ConfirmationResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TransactionID != "tx-99" {
		t.Errorf("the support reference must survive: got %q", resp.TransactionID)
	}
}

func TestConfirm_DeepLinkWithoutDraft(t *testing.T) {
	ordersClient := &ordersClientMock{}
	manager := newManager(ordersClient)
	handler := NewConfirmationHandler(manager)

	recorder := httptest.NewRecorder()
	handler.Confirm(recorder, withSession(httptest.NewRequest("GET", "/order?id=tx-7", nil), "session-5"))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, recorder.Code)
	}
	if len(ordersClient.calls) != 0 {
		t.Errorf("deep link must not create orders, got %d calls", len(ordersClient.calls))
	}
}
