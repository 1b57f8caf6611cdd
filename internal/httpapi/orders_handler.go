package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/diprojose/nimvu-store/internal/orders"
	"github.com/diprojose/nimvu-store/internal/orders/repository"
)

type OrdersHandler struct {
	service *orders.Service
}

func NewOrdersHandler(service *orders.Service) *OrdersHandler {
	return &OrdersHandler{service: service}
}

// POST /api/v1/orders
func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orders.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	created, err := h.service.Create(r.Context(), &req)
	if err != nil {
		log.Printf("create order failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not create order")
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order id must be a UUID")
		return
	}

	order, err := h.service.Get(r.Context(), orderID)
	if errors.Is(err, repository.ErrOrderNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	if err != nil {
		log.Printf("get order failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not load order")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	list, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		log.Printf("list orders failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not list orders")
		return
	}
	respondJSON(w, http.StatusOK, list)
}
