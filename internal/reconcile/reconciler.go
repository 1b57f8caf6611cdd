// Package reconcile turns a completed external payment into a durable order
// exactly once. It runs whenever the confirmation surface loads with a
// transaction id in the URL: that page load is the single canonical
// resumption point, whether the widget fired its callback or redirected.
package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/diprojose/nimvu-store/internal/cart"
	"github.com/diprojose/nimvu-store/internal/domain"
	"github.com/diprojose/nimvu-store/internal/orders"
	"github.com/diprojose/nimvu-store/internal/storage"
)

type Outcome string

const (
	// OutcomeOrderCreated: the draft was turned into a durable order.
	OutcomeOrderCreated Outcome = "ORDER_CREATED"
	// OutcomeAlreadyProcessed: this reference already produced an order; a
	// reload or double navigation re-entered the flow.
	OutcomeAlreadyProcessed Outcome = "ALREADY_PROCESSED"
	// OutcomeDeepLink: a transaction id but no draft. Render a generic
	// confirmation, never invent a synthetic order.
	OutcomeDeepLink Outcome = "DEEP_LINK"
	// OutcomeNotFound: no transaction id at all.
	OutcomeNotFound Outcome = "NOT_FOUND"
	// OutcomeFailed: order creation failed after payment succeeded. The
	// transaction id must reach the user as a manual-support reference.
	OutcomeFailed Outcome = "FAILED"
)

// ReconciliationError means money was captured but the order could not be
// created. Not automatically recoverable; the transaction id it carries is
// the user's support reference and must never be dropped.
type ReconciliationError struct {
	TransactionID string
	Err           error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("order creation failed for transaction %s: %v", e.TransactionID, e.Err)
}

func (e *ReconciliationError) Unwrap() error {
	return e.Err
}

type Result struct {
	Outcome       Outcome
	TransactionID string
	OrderID       string
	Err           error
}

type Reconciler struct {
	state  storage.Store
	orders orders.Client
	cart   *cart.Store
}

func NewReconciler(state storage.Store, ordersClient orders.Client, cartStore *cart.Store) *Reconciler {
	return &Reconciler{
		state:  state,
		orders: ordersClient,
		cart:   cartStore,
	}
}

// Resume drives the per-draft state machine. The processed-reference marker
// is checked before the create call, not after, closing the race between two
// reconciliation attempts from a fast double navigation. On failure the draft
// stays in place: one manual retry path remains, but Resume itself never
// auto-retries against an unreliable network.
func (r *Reconciler) Resume(ctx context.Context, transactionID string) Result {
	if transactionID == "" {
		return Result{Outcome: OutcomeNotFound}
	}

	draft, ok := r.loadDraft(ctx)
	if !ok {
		// Payment id but nothing to create: the order already exists and
		// this is a deep link or a revisit in a fresh session.
		return Result{Outcome: OutcomeDeepLink, TransactionID: transactionID}
	}

	if r.alreadyProcessed(ctx, draft.PaymentReference) {
		// Success path already ran; the leftover draft is stale. Drop it.
		if err := r.state.Delete(ctx, storage.KeyPendingOrder); err != nil {
			log.Printf("failed to drop stale draft: %v", err)
		}
		return Result{Outcome: OutcomeAlreadyProcessed, TransactionID: transactionID}
	}

	created, err := r.orders.Create(ctx, buildCreateRequest(draft, transactionID))
	if err != nil {
		return Result{
			Outcome:       OutcomeFailed,
			TransactionID: transactionID,
			Err:           &ReconciliationError{TransactionID: transactionID, Err: err},
		}
	}

	// Durable order exists. Mark first, then clean up; a crash between the
	// two leaves a stale draft guarded by the marker.
	if err := r.state.Set(ctx, storage.KeyProcessedRef, []byte(draft.PaymentReference)); err != nil {
		log.Printf("failed to record processed reference %s: %v", draft.PaymentReference, err)
	}
	if err := r.state.Delete(ctx, storage.KeyPendingOrder); err != nil {
		log.Printf("failed to delete consumed draft: %v", err)
	}
	if err := r.cart.ClearCart(ctx); err != nil {
		log.Printf("failed to clear cart after order %s: %v", created.ID, err)
	}

	return Result{
		Outcome:       OutcomeOrderCreated,
		TransactionID: transactionID,
		OrderID:       created.ID,
	}
}

func (r *Reconciler) loadDraft(ctx context.Context) (*domain.PendingOrderDraft, bool) {
	data, err := r.state.Get(ctx, storage.KeyPendingOrder)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		log.Printf("failed to read pending draft: %v", err)
		return nil, false
	}

	var draft domain.PendingOrderDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		// Corrupt draft reads as absent.
		log.Printf("corrupt pending draft, ignoring: %v", err)
		return nil, false
	}
	if draft.PaymentReference == "" {
		return nil, false
	}
	return &draft, true
}

func (r *Reconciler) alreadyProcessed(ctx context.Context, reference string) bool {
	data, err := r.state.Get(ctx, storage.KeyProcessedRef)
	if err != nil {
		return false
	}
	return string(data) == reference
}

func buildCreateRequest(draft *domain.PendingOrderDraft, transactionID string) *orders.CreateRequest {
	items := make([]domain.OrderItem, 0, len(draft.Lines))
	for _, line := range draft.Lines {
		items = append(items, domain.OrderItem{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			Price:     line.UnitPrice,
		})
	}
	return &orders.CreateRequest{
		UserID:           draft.UserID,
		Items:            items,
		Total:            draft.Total,
		Status:           domain.OrderStatusProcessing.String(),
		ShippingAddress:  draft.ShippingAddress,
		PaymentReference: draft.PaymentReference,
		PaymentID:        transactionID,
	}
}
