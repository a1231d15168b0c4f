package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCodeChallengeS256(t *testing.T) {
	// RFC 7636 appendix B
	got, err := ComputeCodeChallenge("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk", PKCES256)
	require.NoError(t, err)
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", got)

	mutated, err := ComputeCodeChallenge("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXK", PKCES256)
	require.NoError(t, err)
	assert.NotEqual(t, got, mutated)
}

func TestComputeCodeChallengePlain(t *testing.T) {
	got, err := ComputeCodeChallenge("abc", PKCEPlain)
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	got, err = ComputeCodeChallenge("abc", "")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	_, err = ComputeCodeChallenge("abc", "S512")
	assert.Error(t, err)
}

func TestGenerateNumericCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		c, err := GenerateNumericCode(6)
		require.NoError(t, err)
		assert.Len(t, c, 6)
		for _, r := range c {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
	_, err := GenerateNumericCode(0)
	assert.Error(t, err)
}

func TestGenerateOpaqueToken(t *testing.T) {
	a, err := GenerateOpaqueToken(32)
	require.NoError(t, err)
	b, err := GenerateOpaqueToken(32)
	require.NoError(t, err)
	assert.Len(t, a, 43)
	assert.NotEqual(t, a, b)
	assert.True(t, Equal(a, a))
	assert.False(t, Equal(a, b))
}
