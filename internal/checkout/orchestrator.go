package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/diprojose/nimvu-store/internal/cart"
	"github.com/diprojose/nimvu-store/internal/domain"
	"github.com/diprojose/nimvu-store/internal/gateway"
	"github.com/diprojose/nimvu-store/internal/storage"
)

const (
	currency          = "COP"
	phoneNumberPrefix = "+57"
	legalIDType       = "CC"
)

// Request carries everything the orchestrator needs to start an attempt.
type Request struct {
	UserID   string
	Email    string
	Address  domain.Address
	Receiver domain.Receiver
}

// Attempt is one prepared checkout: descriptor signed, draft persisted,
// widget options ready. The reference is fresh per attempt and never reused.
type Attempt struct {
	Descriptor domain.PaymentDescriptor
	Signature  string
	Options    gateway.CheckoutOptions
	Draft      domain.PendingOrderDraft
}

// Result is delivered when the widget invokes its callback. The widget may
// instead redirect, in which case no Result is ever delivered and the
// confirmation surface resumes from the persisted draft alone.
type Result struct {
	TransactionID string
	Status        gateway.TransactionStatus
}

type Orchestrator struct {
	cart       *cart.Store
	signatures gateway.SignatureClient
	widget     gateway.Widget
	state      storage.Store
	publicKey  string
	redirect   string
}

func NewOrchestrator(
	cartStore *cart.Store,
	signatures gateway.SignatureClient,
	widget gateway.Widget,
	state storage.Store,
	publicKey string,
	redirectURL string,
) *Orchestrator {
	return &Orchestrator{
		cart:       cartStore,
		signatures: signatures,
		widget:     widget,
		state:      state,
		publicKey:  publicKey,
		redirect:   redirectURL,
	}
}

// Prepare runs steps 1-3 of an attempt: validate preconditions, compute the
// amount, generate a fresh reference, fetch the integrity signature and
// persist the pending order draft. The draft goes down strictly before the
// widget could open, because the widget callback may never fire.
func (o *Orchestrator) Prepare(ctx context.Context, req *Request) (*Attempt, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if o.publicKey == "" {
		return nil, &ConfigurationError{Field: "gateway public key"}
	}

	lines, err := o.cart.Lines(ctx)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, &ValidationError{Field: "cart", Reason: "cart is empty"}
	}
	total, err := o.cart.Total(ctx)
	if err != nil {
		return nil, err
	}

	descriptor := domain.PaymentDescriptor{
		Reference:     newReference(),
		AmountInCents: int64(math.Round(total * 100)),
		Currency:      currency,
	}

	// Signature failure fails the whole attempt. The cart is untouched and
	// the next user-driven retry starts over with a fresh reference.
	sig, err := o.signatures.FetchSignature(ctx, descriptor)
	if err != nil {
		return nil, err
	}

	draft := buildDraft(req, lines, total, descriptor.Reference)
	if err := o.persistDraft(ctx, draft); err != nil {
		return nil, err
	}

	return &Attempt{
		Descriptor: descriptor,
		Signature:  sig,
		Draft:      draft,
		Options: gateway.CheckoutOptions{
			Currency:      descriptor.Currency,
			AmountInCents: descriptor.AmountInCents,
			Reference:     descriptor.Reference,
			PublicKey:     o.publicKey,
			Signature:     gateway.IntegritySignature{Integrity: sig},
			RedirectURL:   o.redirect,
			CustomerData: gateway.CustomerData{
				Email:             req.Email,
				FullName:          req.Receiver.FullName,
				PhoneNumber:       req.Receiver.Phone,
				PhoneNumberPrefix: phoneNumberPrefix,
				LegalID:           req.Receiver.NationalID,
				LegalIDType:       legalIDType,
			},
		},
	}, nil
}

// Start prepares an attempt and hands control to the widget. onResult fires
// only if the widget reports through its callback; a redirecting widget skips
// it entirely and the confirmation surface takes over. On DECLINED or ERROR
// the cart and the draft stay intact so the user can retry without
// re-entering data.
func (o *Orchestrator) Start(ctx context.Context, req *Request, onResult func(Result)) (*Attempt, error) {
	if !o.widget.Loaded() {
		return nil, &ValidationError{Field: "widget", Reason: "payment widget script not loaded"}
	}

	attempt, err := o.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	err = o.widget.Open(ctx, attempt.Options, func(result gateway.TransactionResult) {
		tx := result.Transaction
		if tx.Status != gateway.StatusApproved {
			log.Printf("payment %s for reference %s", tx.Status, attempt.Descriptor.Reference)
		}
		if onResult != nil {
			onResult(Result{TransactionID: tx.ID, Status: tx.Status})
		}
	})
	if err != nil {
		return nil, &gateway.GatewayError{Op: "widget open", Err: err}
	}
	return attempt, nil
}

func validate(req *Request) error {
	if req.UserID == "" {
		return &ValidationError{Field: "user", Reason: "sign in to check out"}
	}
	if req.Address.Address1 == "" {
		return &ValidationError{Field: "address", Reason: "select a shipping address"}
	}
	if req.Receiver.FullName == "" || req.Receiver.Phone == "" || req.Receiver.NationalID == "" {
		return &ValidationError{Field: "receiver", Reason: "complete the receiver contact fields"}
	}
	return nil
}

func buildDraft(req *Request, lines []domain.CartLine, total float64, reference string) domain.PendingOrderDraft {
	draftLines := make([]domain.DraftLine, 0, len(lines))
	for _, line := range lines {
		variantID := line.VariantID
		if variantID == line.ProductID {
			// The variant is the product itself, no separate id to carry.
			variantID = ""
		}
		draftLines = append(draftLines, domain.DraftLine{
			ProductID: line.ProductID,
			VariantID: variantID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return domain.PendingOrderDraft{
		UserID:           req.UserID,
		Lines:            draftLines,
		Total:            total,
		PaymentReference: reference,
		ShippingAddress:  req.Address,
	}
}

func (o *Orchestrator) persistDraft(ctx context.Context, draft domain.PendingOrderDraft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal order draft: %w", err)
	}
	if err := o.state.Set(ctx, storage.KeyPendingOrder, data); err != nil {
		return fmt.Errorf("persist order draft: %w", err)
	}
	return nil
}

// newReference builds a reference unique per attempt: millisecond timestamp
// plus a random suffix.
func newReference() string {
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
