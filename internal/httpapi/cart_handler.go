package httpapi

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/diprojose/nimvu-store/internal/domain"
)

type CartHandler struct {
	sessions *SessionManager
}

func NewCartHandler(sessions *SessionManager) *CartHandler {
	return &CartHandler{sessions: sessions}
}

type AddItemRequestDTO struct {
	Product   domain.Product `json:"product"`
	VariantID string         `json:"variant_id"`
	Quantity  int            `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponseDTO struct {
	Lines    []domain.CartLine `json:"lines"`
	Subtotal float64           `json:"subtotal"`
	Total    float64           `json:"total"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respondCart(w, r, session, http.StatusOK)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Product.ID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product", "product is required")
		return
	}
	if req.VariantID == "" {
		// No variant chosen means the product itself is the purchasable unit.
		req.VariantID = req.Product.ID
	}

	if err := session.Cart.AddItem(r.Context(), &req.Product, req.VariantID, req.Quantity); err != nil {
		log.Printf("add item failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not update cart")
		return
	}
	h.respondCart(w, r, session, http.StatusCreated)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	lineID := chi.URLParam(r, "line_id")
	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := session.Cart.UpdateQuantity(r.Context(), lineID, req.Quantity); err != nil {
		log.Printf("update quantity failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not update cart")
		return
	}
	h.respondCart(w, r, session, http.StatusOK)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	lineID := chi.URLParam(r, "line_id")
	if err := session.Cart.RemoveItem(r.Context(), lineID); err != nil {
		log.Printf("remove item failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not update cart")
		return
	}
	h.respondCart(w, r, session, http.StatusOK)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := session.Cart.ClearCart(r.Context()); err != nil {
		log.Printf("clear cart failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not clear cart")
		return
	}
	h.respondCart(w, r, session, http.StatusOK)
}

func (h *CartHandler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no session id")
		return nil, false
	}
	session, err := h.sessions.Get(sessionID)
	if err != nil {
		log.Printf("session %s init failed: %v", sessionID, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "session unavailable")
		return nil, false
	}
	return session, true
}

func (h *CartHandler) respondCart(w http.ResponseWriter, r *http.Request, session *Session, status int) {
	ctx := r.Context()
	lines, err := session.Cart.Lines(ctx)
	if err != nil {
		log.Printf("read cart failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not read cart")
		return
	}
	subtotal, err := session.Cart.Subtotal(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not read cart")
		return
	}
	total, err := session.Cart.Total(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not read cart")
		return
	}

	if lines == nil {
		lines = []domain.CartLine{}
	}
	respondJSON(w, status, CartResponseDTO{
		Lines:    lines,
		Subtotal: subtotal,
		Total:    total,
	})
}
