package orders

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/diprojose/nimvu-store/internal/domain"
	"github.com/diprojose/nimvu-store/internal/orders/repository"
)

const defaultCurrency = "COP"

// Service creates durable orders against the repository. Creation is
// idempotent per payment reference: the unique index rejects the duplicate
// insert and the existing order is returned instead.
type Service struct {
	repo repository.OrderRepository
}

func NewService(repo repository.OrderRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req *CreateRequest) (*CreatedOrder, error) {
	if req.UserID == "" {
		return nil, errors.New("userId is required")
	}
	if len(req.Items) == 0 {
		return nil, errors.New("order has no items")
	}

	status := domain.OrderStatus(req.Status)
	if status == "" {
		status = domain.OrderStatusProcessing
	}

	order := &domain.Order{
		ID:               uuid.New(),
		UserID:           req.UserID,
		Items:            req.Items,
		Total:            req.Total,
		Currency:         defaultCurrency,
		Status:           status,
		ShippingAddress:  req.ShippingAddress,
		PaymentReference: req.PaymentReference,
		PaymentID:        req.PaymentID,
	}

	err := s.repo.CreateOrder(ctx, order)
	if errors.Is(err, repository.ErrDuplicateReference) {
		existing, getErr := s.repo.GetOrderByPaymentReference(ctx, req.PaymentReference)
		if getErr != nil {
			return nil, fmt.Errorf("duplicate reference %s but lookup failed: %w", req.PaymentReference, getErr)
		}
		log.Printf("duplicate order create for reference %s, returning existing order %s",
			req.PaymentReference, existing.ID)
		return &CreatedOrder{ID: existing.ID.String(), Status: existing.Status.String()}, nil
	}
	if err != nil {
		return nil, err
	}

	return &CreatedOrder{ID: order.ID.String(), Status: order.Status.String()}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.repo.GetOrderByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.repo.ListOrdersByUserID(ctx, userID)
}
