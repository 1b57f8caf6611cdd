package signature

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/diprojose/nimvu-store/internal/domain"
)

type Handler struct {
	signer *Signer
}

func NewHandler(signer *Signer) *Handler {
	return &Handler{signer: signer}
}

type signResponse struct {
	Signature string `json:"signature"`
	Chain     string `json:"chain,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Sign handles POST with a JSON PaymentDescriptor body and returns the
// integrity signature. Missing configuration is a 500: the server must never
// sign with an empty secret.
func (h *Handler) Sign(w http.ResponseWriter, r *http.Request) {
	var descriptor domain.PaymentDescriptor
	if err := json.NewDecoder(r.Body).Decode(&descriptor); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	sig, err := h.signer.Sign(descriptor)
	if err != nil {
		var confErr *ConfigurationError
		if errors.As(err, &confErr) {
			log.Printf("signature refused: %v", err)
			respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "server configuration error"})
			return
		}
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "signature failed"})
		return
	}

	respondJSON(w, http.StatusOK, signResponse{
		Signature: sig,
		Chain:     h.signer.MaskedChain(descriptor),
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
