package httpapi

import (
	"sync"

	"github.com/diprojose/nimvu-store/internal/cart"
	"github.com/diprojose/nimvu-store/internal/checkout"
	"github.com/diprojose/nimvu-store/internal/gateway"
	"github.com/diprojose/nimvu-store/internal/orders"
	"github.com/diprojose/nimvu-store/internal/reconcile"
	"github.com/diprojose/nimvu-store/internal/storage"
)

// Session bundles the per-session engine: one cart store, one orchestrator,
// one reconciler, all sharing the same client-state store.
type Session struct {
	Cart      *cart.Store
	Checkout  *checkout.Orchestrator
	Reconcile *reconcile.Reconciler
}

// StoreFactory yields the client-state store for a session id (a file dir per
// session, or a redis namespace).
type StoreFactory func(sessionID string) (storage.Store, error)

type SessionManager struct {
	m        sync.Mutex
	sessions map[string]*Session

	newStore    StoreFactory
	signatures  gateway.SignatureClient
	widget      gateway.Widget
	orders      orders.Client
	publicKey   string
	redirectURL string
}

func NewSessionManager(
	newStore StoreFactory,
	signatures gateway.SignatureClient,
	widget gateway.Widget,
	ordersClient orders.Client,
	publicKey string,
	redirectURL string,
) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*Session),
		newStore:    newStore,
		signatures:  signatures,
		widget:      widget,
		orders:      ordersClient,
		publicKey:   publicKey,
		redirectURL: redirectURL,
	}
}

func (sm *SessionManager) Get(sessionID string) (*Session, error) {
	sm.m.Lock()
	defer sm.m.Unlock()

	if session, ok := sm.sessions[sessionID]; ok {
		return session, nil
	}

	state, err := sm.newStore(sessionID)
	if err != nil {
		return nil, err
	}

	cartStore := cart.NewStore(state)
	session := &Session{
		Cart:      cartStore,
		Checkout:  checkout.NewOrchestrator(cartStore, sm.signatures, sm.widget, state, sm.publicKey, sm.redirectURL),
		Reconcile: reconcile.NewReconciler(state, sm.orders, cartStore),
	}
	sm.sessions[sessionID] = session
	return session, nil
}
