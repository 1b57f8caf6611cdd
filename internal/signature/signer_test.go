package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diprojose/nimvu-store/internal/domain"
)

var testDescriptor = domain.PaymentDescriptor{
	Reference:     "ORD-1",
	AmountInCents: 50000,
	Currency:      "COP",
}

func TestSign_Deterministic(t *testing.T) {
	signer := NewSigner("s3cr3t")

	first, err := signer.Sign(testDescriptor)
	require.NoError(t, err)
	second, err := signer.Sign(testDescriptor)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// sha256("ORD-1" + "50000" + "COP" + "s3cr3t")
	assert.Equal(t, "fc34e86a05a22ecee66b306c705fd51cb8a722887698973de3e92305023c290b", first)
}

func TestSign_EmptySecret(t *testing.T) {
	for _, secret := range []string{"", "   ", "\n"} {
		signer := NewSigner(secret)
		_, err := signer.Sign(testDescriptor)
		var confErr *ConfigurationError
		require.ErrorAs(t, err, &confErr, "secret %q must be refused", secret)
	}
}

func TestSign_TrimsSecretWhitespace(t *testing.T) {
	trimmed := NewSigner("s3cr3t")
	padded := NewSigner("  s3cr3t \n")

	want, err := trimmed.Sign(testDescriptor)
	require.NoError(t, err)
	got, err := padded.Sign(testDescriptor)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestMaskedChain_HidesSecret(t *testing.T) {
	signer := NewSigner("supersecretvalue")
	chain := signer.MaskedChain(testDescriptor)

	assert.NotContains(t, chain, "supersecretvalue")
	assert.Contains(t, chain, "ORD-1")
	assert.Contains(t, chain, "50000")
	assert.Contains(t, chain, "COP")
}
