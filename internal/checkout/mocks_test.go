package checkout

import (
	"context"
	"sync"

	"github.com/diprojose/nimvu-store/internal/domain"
	"github.com/diprojose/nimvu-store/internal/gateway"
)

// MockSignatureClient implements gateway.SignatureClient for testing.
type MockSignatureClient struct {
	Signature string
	Err       error

	m        sync.Mutex
	Requests []domain.PaymentDescriptor
}

func (m *MockSignatureClient) FetchSignature(_ context.Context, descriptor domain.PaymentDescriptor) (string, error) {
	m.m.Lock()
	m.Requests = append(m.Requests, descriptor)
	m.m.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return m.Signature, nil
}

// MockWidget implements gateway.Widget. Result, when set, is delivered to the
// callback synchronously on Open; a nil Result models the redirect flow where
// the callback never fires.
type MockWidget struct {
	IsLoaded bool
	OpenErr  error
	Result   *gateway.TransactionResult

	Opened []gateway.CheckoutOptions
}

func (m *MockWidget) Loaded() bool {
	return m.IsLoaded
}

func (m *MockWidget) Open(_ context.Context, opts gateway.CheckoutOptions, callback func(gateway.TransactionResult)) error {
	if m.OpenErr != nil {
		return m.OpenErr
	}
	m.Opened = append(m.Opened, opts)
	if m.Result != nil {
		callback(*m.Result)
	}
	return nil
}
