package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/diprojose/nimvu-store/internal/checkout"
	"github.com/diprojose/nimvu-store/internal/domain"
	"github.com/diprojose/nimvu-store/internal/gateway"
	"github.com/diprojose/nimvu-store/internal/signature"
)

type CheckoutHandler struct {
	sessions *SessionManager
}

func NewCheckoutHandler(sessions *SessionManager) *CheckoutHandler {
	return &CheckoutHandler{sessions: sessions}
}

type StartCheckoutRequestDTO struct {
	Address  domain.Address  `json:"address"`
	Receiver domain.Receiver `json:"receiver"`
}

// StartCheckoutResponseDTO hands a thin client everything it needs to open
// the payment widget. The integrity signature travels; the secret never does.
type StartCheckoutResponseDTO struct {
	Reference     string                  `json:"reference"`
	AmountInCents int64                   `json:"amountInCents"`
	Currency      string                  `json:"currency"`
	WidgetOptions gateway.CheckoutOptions `json:"widgetOptions"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	session, err := h.sessions.Get(sessionID)
	if err != nil {
		log.Printf("session %s init failed: %v", sessionID, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "session unavailable")
		return
	}

	var req StartCheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	attempt, err := session.Checkout.Prepare(r.Context(), &checkout.Request{
		UserID:   getUserID(r.Context()),
		Email:    getUserEmail(r.Context()),
		Address:  req.Address,
		Receiver: req.Receiver,
	})
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, StartCheckoutResponseDTO{
		Reference:     attempt.Descriptor.Reference,
		AmountInCents: attempt.Descriptor.AmountInCents,
		Currency:      attempt.Descriptor.Currency,
		WidgetOptions: attempt.Options,
	})
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	var validationErr *checkout.ValidationError
	if errors.As(err, &validationErr) {
		respondError(w, http.StatusBadRequest, "validation_error", validationErr.Error())
		return
	}
	var configErr *checkout.ConfigurationError
	if errors.As(err, &configErr) {
		log.Printf("checkout aborted: %v", configErr)
		respondError(w, http.StatusInternalServerError, "configuration_error", "payment gateway is not configured")
		return
	}
	var signerErr *signature.ConfigurationError
	if errors.As(err, &signerErr) {
		log.Printf("checkout aborted: %v", signerErr)
		respondError(w, http.StatusInternalServerError, "configuration_error", "payment gateway is not configured")
		return
	}
	var gatewayErr *gateway.GatewayError
	if errors.As(err, &gatewayErr) {
		log.Printf("checkout aborted: %v", gatewayErr)
		respondError(w, http.StatusBadGateway, "gateway_error", "could not reach the payment gateway, try again")
		return
	}
	log.Printf("checkout failed: %v", err)
	respondError(w, http.StatusInternalServerError, "internal_error", "checkout failed")
}
