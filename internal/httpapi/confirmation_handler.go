package httpapi

import (
	"log"
	"net/http"

	"github.com/diprojose/nimvu-store/internal/reconcile"
)

// ConfirmationHandler is the post-payment landing surface. The widget either
// redirected here with ?id=<transaction> or the client navigated here after
// the approved callback; both paths converge on the same reconciliation.
type ConfirmationHandler struct {
	sessions *SessionManager
}

func NewConfirmationHandler(sessions *SessionManager) *ConfirmationHandler {
	return &ConfirmationHandler{sessions: sessions}
}

type ConfirmationResponseDTO struct {
	Outcome       string `json:"outcome"`
	OrderID       string `json:"order_id,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	Message       string `json:"message"`
}

// GET /order?id=<transaction id>
func (h *ConfirmationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	session, err := h.sessions.Get(sessionID)
	if err != nil {
		log.Printf("session %s init failed: %v", sessionID, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "session unavailable")
		return
	}

	transactionID := r.URL.Query().Get("id")
	result := session.Reconcile.Resume(r.Context(), transactionID)

	switch result.Outcome {
	case reconcile.OutcomeOrderCreated:
		respondJSON(w, http.StatusOK, ConfirmationResponseDTO{
			Outcome:       string(result.Outcome),
			OrderID:       result.OrderID,
			TransactionID: result.TransactionID,
			Message:       "thanks for your purchase, your order is being processed",
		})
	case reconcile.OutcomeAlreadyProcessed, reconcile.OutcomeDeepLink:
		respondJSON(w, http.StatusOK, ConfirmationResponseDTO{
			Outcome:       string(result.Outcome),
			TransactionID: result.TransactionID,
			Message:       "your payment was received",
		})
	case reconcile.OutcomeNotFound:
		respondJSON(w, http.StatusNotFound, ConfirmationResponseDTO{
			Outcome: string(result.Outcome),
			Message: "order not found",
		})
	case reconcile.OutcomeFailed:
		log.Printf("reconciliation failed: %v", result.Err)
		// The transaction id is the user's manual-support reference. Losing
		// it is the worst failure mode, so it always goes back in the body.
		respondJSON(w, http.StatusBadGateway, ConfirmationResponseDTO{
			Outcome:       string(result.Outcome),
			TransactionID: result.TransactionID,
			Message:       "your payment was captured but the order could not be created; contact support with this transaction id",
		})
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "unexpected reconciliation outcome")
	}
}
