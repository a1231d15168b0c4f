package jwt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authhero/internal/store/memory"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newIssuer(t *testing.T, c *clock) (*Issuer, *memory.Store) {
	t.Helper()
	st := memory.New()
	ks := NewKeystore(st.Keys()).WithClock(c.Now)
	require.NoError(t, ks.EnsureBootstrap(context.Background()))
	iss := NewIssuer(ks, time.Hour, time.Hour)
	iss.Now = c.Now
	return iss, st
}

func TestAccessTokenTTL(t *testing.T) {
	c := &clock{t: time.Now()}
	iss, _ := newIssuer(t, c)
	ctx := context.Background()

	tok, err := iss.CreateAccessToken(ctx, AccessTokenParams{
		Issuer: "https://auth.example.com/", Subject: "auth2|1", Audience: "https://api", Scope: "openid",
	})
	require.NoError(t, err)

	claims, err := iss.Verify(ctx, tok, VerifyOptions{Issuer: "https://auth.example.com/", Audience: "https://api"})
	require.NoError(t, err)
	iat, _ := claims["iat"].(float64)
	exp, _ := claims["exp"].(float64)
	assert.Equal(t, time.Hour, time.Duration(exp-iat)*time.Second)
	assert.Equal(t, "auth2|1", claims["sub"])

	// después de exp la verificación falla
	c.t = c.t.Add(time.Hour + time.Second)
	_, err = iss.Verify(ctx, tok, VerifyOptions{})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIDTokenClaims(t *testing.T) {
	c := &clock{t: time.Now()}
	iss, _ := newIssuer(t, c)
	ctx := context.Background()

	tok, err := iss.CreateIDToken(ctx, IDTokenParams{
		Issuer: "https://auth.example.com/", Subject: "email|1", Audience: "client-1",
		SID: "sess-1", Nonce: "n-123", Email: "a@example.com", EmailVerified: true,
	})
	require.NoError(t, err)

	claims, err := iss.Verify(ctx, tok, VerifyOptions{Audience: "client-1"})
	require.NoError(t, err)
	assert.Equal(t, "n-123", claims["nonce"])
	assert.Equal(t, "sess-1", claims["sid"])
	assert.Equal(t, true, claims["email_verified"])
	_, hasName := claims["name"]
	assert.False(t, hasName)

	_, err = iss.Verify(ctx, tok, VerifyOptions{Audience: "other"})
	assert.Error(t, err)
}

func TestRotateKeepsOldKeyDuringGrace(t *testing.T) {
	c := &clock{t: time.Now()}
	iss, st := newIssuer(t, c)
	ctx := context.Background()

	oldTok, err := iss.CreateAccessToken(ctx, AccessTokenParams{Issuer: "i", Subject: "s", Audience: "a"})
	require.NoError(t, err)
	oldKID := headerKID(t, oldTok)

	nk, err := iss.Keys.Rotate(ctx, 10*time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, oldKID, nk.KID)

	newTok, err := iss.CreateAccessToken(ctx, AccessTokenParams{Issuer: "i", Subject: "s", Audience: "a"})
	require.NoError(t, err)
	assert.Equal(t, nk.KID, headerKID(t, newTok))

	// ambos verifican durante la gracia y ambos se publican
	_, err = iss.Verify(ctx, oldTok, VerifyOptions{})
	require.NoError(t, err)
	_, err = iss.Verify(ctx, newTok, VerifyOptions{})
	require.NoError(t, err)
	assert.Len(t, jwksKIDs(t, iss), 2)

	// pasada la gracia la vieja deja de publicarse
	c.t = c.t.Add(11 * time.Minute)
	iss.Keys.Invalidate()
	_, err = iss.Verify(ctx, oldTok, VerifyOptions{})
	assert.Error(t, err)
	assert.Equal(t, []string{nk.KID}, jwksKIDs(t, iss))

	keys, err := st.Keys().List(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}

func TestRevokeStopsSigningAndPublishing(t *testing.T) {
	c := &clock{t: time.Now()}
	iss, _ := newIssuer(t, c)
	ctx := context.Background()

	tok, err := iss.CreateAccessToken(ctx, AccessTokenParams{Issuer: "i", Subject: "s", Audience: "a"})
	require.NoError(t, err)
	kid := headerKID(t, tok)

	c.t = c.t.Add(time.Second)
	require.NoError(t, iss.Keys.Revoke(ctx, kid))
	c.t = c.t.Add(time.Second)

	_, err = iss.CreateAccessToken(ctx, AccessTokenParams{Issuer: "i", Subject: "s", Audience: "a"})
	assert.ErrorIs(t, err, ErrNoActiveKey)
	_, err = iss.Verify(ctx, tok, VerifyOptions{})
	assert.Error(t, err)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	c := &clock{t: time.Now()}
	iss, _ := newIssuer(t, c)
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{"sub": "x", "exp": c.t.Add(time.Hour).Unix()})
	tk.Header["kid"] = "whatever"
	s, err := tk.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = iss.Verify(context.Background(), s, VerifyOptions{})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func headerKID(t *testing.T, tok string) string {
	t.Helper()
	parsed, _, err := jwtv5.NewParser().ParseUnverified(tok, jwtv5.MapClaims{})
	require.NoError(t, err)
	kid, _ := parsed.Header["kid"].(string)
	return kid
}

func jwksKIDs(t *testing.T, iss *Issuer) []string {
	t.Helper()
	b, err := iss.Keys.JWKS(context.Background())
	require.NoError(t, err)
	var set JWKSet
	require.NoError(t, json.Unmarshal(b, &set))
	out := make([]string, 0, len(set.Keys))
	for _, k := range set.Keys {
		assert.Equal(t, "RSA", k.Kty)
		assert.Equal(t, "RS256", k.Alg)
		out = append(out, k.KID)
	}
	return out
}
