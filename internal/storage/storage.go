package storage

import (
	"context"
	"errors"
)

// Store is the durable client-state store behind the cart snapshot, the
// pending order draft and the last-processed payment reference. Implementations
// must treat corrupt or unreadable values as absent, never as fatal.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var ErrNotFound = errors.New("storage: key not found")

// Storage keys owned by this subsystem.
const (
	KeyCart         = "shopping-cart-storage"
	KeyPendingOrder = "pendingOrder"
	KeyProcessedRef = "lastProcessedPaymentRef"
)
