package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashVerify(t *testing.T) {
	h, err := Hash("Test!")
	require.NoError(t, err)
	assert.True(t, Verify("Test!", h))
	assert.False(t, Verify("test!", h))
	assert.False(t, Verify("Test!", ""))
	assert.False(t, Verify("Test!", "not-a-hash"))

	_, err = Hash("")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestDefaultPolicy(t *testing.T) {
	assert.Empty(t, DefaultPolicy.Validate("Passw0rd"))
	assert.Empty(t, DefaultPolicy.Validate("Password!"))
	assert.Contains(t, DefaultPolicy.Validate("short"), "too_short")
	assert.Contains(t, DefaultPolicy.Validate("password1"), "missing_upper")
	assert.Contains(t, DefaultPolicy.Validate("Passwordxx"), "missing_digit_or_symbol")
}

func TestCustomPolicyDigitOrSymbol(t *testing.T) {
	p := DefaultPolicy
	p.MinLength = 12
	assert.Contains(t, p.Validate("Passwordxxxxx"), "missing_digit_or_symbol")
	assert.Empty(t, p.Validate("Passwordxxx1"))

	p.RequireDigitOrSymbol = false
	assert.Empty(t, p.Validate("Passwordxxxxx"))
}
