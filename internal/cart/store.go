package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/diprojose/nimvu-store/internal/domain"
	"github.com/diprojose/nimvu-store/internal/storage"
)

// ShippingFee is the flat shipping charge in COP, applied only when the cart
// is non-empty.
const ShippingFee = 12000.0

// Store owns the cart lines for one browsing session. Mutations serialize on
// a single writer lock and the whole snapshot is persisted before a mutating
// call returns, so a reload always reflects the latest mutation and
// back-to-back calls from different components are ordered by call order.
type Store struct {
	persist storage.Store

	m      sync.RWMutex
	loaded bool
	lines  []domain.CartLine

	sfg singleflight.Group // collapses concurrent first loads
}

func NewStore(persist storage.Store) *Store {
	return &Store{persist: persist}
}

// AddItem resolves the unit price from the variant (discount applied when
// lower than base) and merges into an existing line for the same variant, or
// appends a new one. Non-positive quantities are clamped to 1.
func (s *Store) AddItem(ctx context.Context, product *domain.Product, variantID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	unitPrice := product.UnitPriceFor(variantID)

	s.m.Lock()
	defer s.m.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return err
	}

	for i := range s.lines {
		if s.lines[i].VariantID == variantID {
			s.lines[i].Quantity += quantity
			// Refresh the price in case it changed between visits.
			s.lines[i].UnitPrice = unitPrice
			return s.persistLocked(ctx)
		}
	}

	s.lines = append(s.lines, domain.CartLine{
		ID:        variantID,
		VariantID: variantID,
		ProductID: product.ID,
		Title:     product.Title,
		Thumbnail: product.Thumbnail,
		UnitPrice: unitPrice,
		Quantity:  quantity,
	})
	return s.persistLocked(ctx)
}

// UpdateQuantity sets the quantity of a line. Quantities below 1 are ignored:
// removal goes through RemoveItem, never through a zero-quantity line.
func (s *Store) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	if quantity < 1 {
		return nil
	}

	s.m.Lock()
	defer s.m.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return err
	}

	for i := range s.lines {
		if s.lines[i].ID == lineID {
			s.lines[i].Quantity = quantity
			return s.persistLocked(ctx)
		}
	}
	return nil
}

// RemoveItem deletes a line. Absent lines are a no-op.
func (s *Store) RemoveItem(ctx context.Context, lineID string) error {
	s.m.Lock()
	defer s.m.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return err
	}

	for i := range s.lines {
		if s.lines[i].ID == lineID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return s.persistLocked(ctx)
		}
	}
	return nil
}

// ClearCart empties the cart. Called after an order is durably created.
func (s *Store) ClearCart(ctx context.Context) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.loaded = true
	s.lines = nil
	return s.persistLocked(ctx)
}

// Lines returns a copy of the current lines in insertion order.
func (s *Store) Lines(ctx context.Context) ([]domain.CartLine, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.m.RLock()
	defer s.m.RUnlock()
	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out, nil
}

// Subtotal is Σ(unitPrice × quantity) over current lines.
func (s *Store) Subtotal(ctx context.Context) (float64, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return 0, err
	}
	s.m.RLock()
	defer s.m.RUnlock()
	var subtotal float64
	for _, line := range s.lines {
		subtotal += line.UnitPrice * float64(line.Quantity)
	}
	return subtotal, nil
}

// Total is subtotal plus the flat shipping fee when the cart is non-empty.
func (s *Store) Total(ctx context.Context) (float64, error) {
	subtotal, err := s.Subtotal(ctx)
	if err != nil {
		return 0, err
	}
	s.m.RLock()
	empty := len(s.lines) == 0
	s.m.RUnlock()
	if empty {
		return 0, nil
	}
	return subtotal + ShippingFee, nil
}

func (s *Store) ensureLoaded(ctx context.Context) error {
	s.m.RLock()
	loaded := s.loaded
	s.m.RUnlock()
	if loaded {
		return nil
	}

	_, err, _ := s.sfg.Do(storage.KeyCart, func() (interface{}, error) {
		s.m.Lock()
		defer s.m.Unlock()
		return nil, s.ensureLoadedLocked(ctx)
	})
	return err
}

func (s *Store) ensureLoadedLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	data, err := s.persist.Get(ctx, storage.KeyCart)
	if errors.Is(err, storage.ErrNotFound) {
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("load cart snapshot: %w", err)
	}

	var snapshot domain.Cart
	if err := json.Unmarshal(data, &snapshot); err != nil {
		// A corrupt snapshot is treated as an empty cart, not an error.
		log.Printf("corrupt cart snapshot, starting empty: %v", err)
		s.loaded = true
		return nil
	}

	s.lines = snapshot.Lines
	s.loaded = true
	return nil
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(domain.Cart{Lines: s.lines})
	if err != nil {
		return fmt.Errorf("marshal cart snapshot: %w", err)
	}
	if err := s.persist.Set(ctx, storage.KeyCart, data); err != nil {
		return fmt.Errorf("persist cart snapshot: %w", err)
	}
	return nil
}
