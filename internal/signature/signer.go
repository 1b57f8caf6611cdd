package signature

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/diprojose/nimvu-store/internal/domain"
)

// ConfigurationError means the integrity secret (or another fatal config
// value) is missing. The attempt cannot proceed and the user cannot fix it.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing configuration: %s", e.Field)
}

// Signer computes the gateway integrity signature. It holds the integrity
// secret and must only ever run server-side.
type Signer struct {
	secret string
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: strings.TrimSpace(secret)}
}

// Sign hashes reference ∥ amountInCents ∥ currency ∥ secret with SHA-256, in
// that exact order. The order is a wire contract with the gateway.
func (s *Signer) Sign(descriptor domain.PaymentDescriptor) (string, error) {
	if s.secret == "" {
		return "", &ConfigurationError{Field: "integrity secret"}
	}

	chain := fmt.Sprintf("%s%d%s%s",
		descriptor.Reference,
		descriptor.AmountInCents,
		descriptor.Currency,
		s.secret)

	sum := sha256.Sum256([]byte(chain))
	return hex.EncodeToString(sum[:]), nil
}

// MaskedChain is the concatenation with the secret truncated, safe to echo in
// diagnostics.
func (s *Signer) MaskedChain(descriptor domain.PaymentDescriptor) string {
	masked := s.secret
	if len(masked) > 5 {
		masked = masked[:5] + "..."
	}
	return fmt.Sprintf("%s%d%s%s",
		descriptor.Reference,
		descriptor.AmountInCents,
		descriptor.Currency,
		masked)
}
