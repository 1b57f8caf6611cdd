// Package gateway holds the contract with the external Wompi payment widget.
// The widget is opaque: it either invokes the provided callback with a
// terminal transaction status, or redirects the browser to the configured
// return URL with the transaction id as a query parameter. Callers must cope
// with both, and with the callback never firing at all.
package gateway

import "context"

type TransactionStatus string

const (
	StatusApproved TransactionStatus = "APPROVED"
	StatusDeclined TransactionStatus = "DECLINED"
	StatusError    TransactionStatus = "ERROR"
)

type Transaction struct {
	ID     string            `json:"id"`
	Status TransactionStatus `json:"status"`
}

// TransactionResult is the callback payload shape the widget delivers.
type TransactionResult struct {
	Transaction Transaction `json:"transaction"`
}

// CustomerData is passed to the widget constructor for prefill.
type CustomerData struct {
	Email             string `json:"email"`
	FullName          string `json:"fullName"`
	PhoneNumber       string `json:"phoneNumber"`
	PhoneNumberPrefix string `json:"phoneNumberPrefix"`
	LegalID           string `json:"legalId"`
	LegalIDType       string `json:"legalIdType"`
}

type IntegritySignature struct {
	Integrity string `json:"integrity"`
}

// CheckoutOptions mirrors the widget constructor arguments.
type CheckoutOptions struct {
	Currency      string             `json:"currency"`
	AmountInCents int64              `json:"amountInCents"`
	Reference     string             `json:"reference"`
	PublicKey     string             `json:"publicKey"`
	Signature     IntegritySignature `json:"signature"`
	CustomerData  CustomerData       `json:"customerData"`
	RedirectURL   string             `json:"redirectUrl,omitempty"`
}

// Widget abstracts the external checkout widget. Open returns once the widget
// has been handed control; the callback fires at an arbitrary later time, or
// never if the widget redirects instead.
type Widget interface {
	Loaded() bool
	Open(ctx context.Context, opts CheckoutOptions, callback func(TransactionResult)) error
}
