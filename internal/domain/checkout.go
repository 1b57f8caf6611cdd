package domain

// PaymentDescriptor identifies a single payment attempt towards the gateway.
// Reference is unique per attempt; reusing a reference with a different amount
// is undefined behavior on the gateway side.
type PaymentDescriptor struct {
	Reference     string `json:"reference"`
	AmountInCents int64  `json:"amountInCents"`
	Currency      string `json:"currency"`
}

// Receiver holds the contact fields for whoever receives the shipment.
type Receiver struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	NationalID string `json:"national_id"`
}

// Address is the shipping address snapshot embedded into drafts and orders.
type Address struct {
	ID         string `json:"id,omitempty"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Address1   string `json:"address_1"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Phone      string `json:"phone"`
}

// DraftLine is the order-line snapshot captured at checkout time. VariantID is
// omitted when the variant is the product itself.
type DraftLine struct {
	ProductID string  `json:"productId"`
	VariantID string  `json:"variantId,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"price"`
}

// PendingOrderDraft is the provisional order saved to client storage strictly
// before the payment widget opens. It is the only state that survives the
// widget's callback-or-redirect gap: the page may be unloaded between opening
// the widget and the transaction coming back.
type PendingOrderDraft struct {
	UserID           string      `json:"userId"`
	Lines            []DraftLine `json:"items"`
	Total            float64     `json:"total"`
	PaymentReference string      `json:"paymentReference"`
	ShippingAddress  Address     `json:"shippingAddress"`
}
