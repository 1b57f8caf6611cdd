package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/diprojose/nimvu-store/internal/domain"
)

// CreateOrder inserts the order and its outbox event in one transaction, so
// an order never exists without a pending event and vice versa. A duplicate
// payment_reference surfaces as ErrDuplicateReference.
func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}
	addressJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO orders
	          (id, user_id, items, total, currency, status, shipping_address, payment_reference, payment_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())`

	_, insertErr := tx.ExecContext(ctx, query,
		order.ID,
		order.UserID,
		itemsJSON,
		order.Total,
		order.Currency,
		order.Status,
		addressJSON,
		order.PaymentReference,
		order.PaymentID)

	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateReference
		}
		return fmt.Errorf("insert order: %w", insertErr)
	}

	payload, err := json.Marshal(map[string]interface{}{
		"order_id":          order.ID,
		"user_id":           order.UserID,
		"total":             order.Total,
		"currency":          order.Currency,
		"payment_reference": order.PaymentReference,
		"payment_id":        order.PaymentID,
	})
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	outboxQuery := `INSERT INTO order_outbox (aggregate_id, event_type, payload, created_at)
	                VALUES ($1, $2, $3, NOW())`
	if _, err := tx.ExecContext(ctx, outboxQuery, order.ID.String(), "order.created", payload); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

func (r *Repository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.getOrder(ctx, `WHERE id = $1`, id)
}

func (r *Repository) GetOrderByPaymentReference(ctx context.Context, reference string) (*domain.Order, error) {
	return r.getOrder(ctx, `WHERE payment_reference = $1`, reference)
}

func (r *Repository) getOrder(ctx context.Context, where string, arg interface{}) (*domain.Order, error) {
	query := `SELECT id, user_id, items, total, currency, status, shipping_address, payment_reference, payment_id, created_at, updated_at
	          FROM orders ` + where

	var order domain.Order
	var itemsJSON, addressJSON []byte
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&order.ID,
		&order.UserID,
		&itemsJSON,
		&order.Total,
		&order.Currency,
		&order.Status,
		&addressJSON,
		&order.PaymentReference,
		&order.PaymentID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(addressJSON, &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("unmarshal shipping address: %w", err)
	}

	return &order, nil
}

func (r *Repository) ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	query := `SELECT id, user_id, items, total, currency, status, shipping_address, payment_reference, payment_id, created_at, updated_at
	          FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		var order domain.Order
		var itemsJSON, addressJSON []byte
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&itemsJSON,
			&order.Total,
			&order.Currency,
			&order.Status,
			&addressJSON,
			&order.PaymentReference,
			&order.PaymentID,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
			return nil, fmt.Errorf("unmarshal order items: %w", err)
		}
		if err := json.Unmarshal(addressJSON, &order.ShippingAddress); err != nil {
			return nil, fmt.Errorf("unmarshal shipping address: %w", err)
		}
		orders = append(orders, &order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := `SELECT id, aggregate_id, event_type, payload, created_at
	          FROM order_outbox WHERE processed_at IS NULL ORDER BY id LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var event OutboxEvent
		if err := rows.Scan(&event.ID, &event.AggregateID, &event.EventType, &event.Payload, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE order_outbox SET processed_at = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}
