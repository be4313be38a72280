package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const secret = "test_key_secret"

func TestVerifySignatureAcceptsGatewaySignature(t *testing.T) {
	sig := Sign(secret, "order_abc", "pay_123")

	assert.Len(t, sig, 64)
	assert.True(t, VerifySignature(secret, "order_abc", "pay_123", sig))
}

func TestVerifySignatureRejectsAnySingleByteChange(t *testing.T) {
	sig := Sign(secret, "order_abc", "pay_123")

	for i := 0; i < len(sig); i++ {
		b := []byte(sig)
		if b[i] == '0' {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
		assert.False(t, VerifySignature(secret, "order_abc", "pay_123", string(b)), "mutated index %d", i)
	}
}

func TestVerifySignatureBindsOrderPaymentAndSecret(t *testing.T) {
	sig := Sign(secret, "order_abc", "pay_123")

	assert.False(t, VerifySignature(secret, "order_abd", "pay_123", sig))
	assert.False(t, VerifySignature(secret, "order_abc", "pay_124", sig))
	assert.False(t, VerifySignature("other_secret", "order_abc", "pay_123", sig))
	// the separator matters: "a|bc" and "ab|c" must not collide
	assert.NotEqual(t, Sign(secret, "a", "bc"), Sign(secret, "ab", "c"))
}

func TestVerifySignatureRejectsMalformedInput(t *testing.T) {
	assert.False(t, VerifySignature(secret, "order_abc", "pay_123", ""))
	assert.False(t, VerifySignature(secret, "order_abc", "pay_123", "zz"))
	assert.False(t, VerifySignature(secret, "order_abc", "pay_123", Sign(secret, "order_abc", "pay_123")[:62]))
}
