package state

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

func newCodec(t *testing.T, now *time.Time) *Codec {
	t.Helper()
	c, err := New(secret, "https://auth.example.com/")
	require.NoError(t, err)
	return c.WithClock(func() time.Time { return *now })
}

func TestNewRejectsShortSecret(t *testing.T) {
	_, err := New([]byte("short"), "iss")
	require.Error(t, err)
}

func TestCodeRoundTrip(t *testing.T) {
	now := time.Now()
	c := newCodec(t, &now)
	in := CodePayload{
		TenantID:   "t1",
		UserID:     "email|1",
		AuthParams: repository.AuthParams{ClientID: "c1", RedirectURI: "https://app/cb", CodeChallenge: "abc", CodeChallengeMethod: "S256"},
		Nonce:      "n",
		State:      "s",
		SID:        "sid1",
	}
	tok, err := c.EncodeCode(in, 10*time.Minute)
	require.NoError(t, err)

	got, err := c.DecodeCode(tok)
	require.NoError(t, err)
	assert.Equal(t, in, got.CodePayload)
	assert.NotEmpty(t, got.JTI)
	assert.WithinDuration(t, now.Add(10*time.Minute), got.ExpiresAt, time.Second)
}

func TestCodeTamperedFails(t *testing.T) {
	now := time.Now()
	c := newCodec(t, &now)
	tok, err := c.EncodeCode(CodePayload{UserID: "u"}, time.Minute)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	_, err = c.DecodeCode(parts[0] + "." + parts[1] + "." + string(sig))
	require.ErrorIs(t, err, ErrInvalid)

	other, _ := New([]byte("ffffffffffffffffffffffffffffffff"), "https://auth.example.com/")
	_, err = other.DecodeCode(tok)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestCodeExpired(t *testing.T) {
	now := time.Now()
	c := newCodec(t, &now)
	tok, err := c.EncodeCode(CodePayload{UserID: "u"}, time.Minute)
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	_, err = c.DecodeCode(tok)
	require.ErrorIs(t, err, ErrExpired)
}

func TestPurposesDoNotCross(t *testing.T) {
	now := time.Now()
	c := newCodec(t, &now)
	social, err := c.EncodeSocial(SocialPayload{TenantID: "t", Connection: "google-oauth2"}, time.Minute)
	require.NoError(t, err)
	_, err = c.DecodeCode(social)
	require.ErrorIs(t, err, ErrInvalid)

	p, err := c.DecodeSocial(social)
	require.NoError(t, err)
	assert.Equal(t, "google-oauth2", p.Connection)
}
