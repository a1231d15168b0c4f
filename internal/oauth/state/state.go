// Package state firma y verifica los valores opacos que el servidor entrega
// al browser: el authorization code (continuación del code/PKCE grant) y el
// state del login social. Ambos son JWT HS256 con audiencia por propósito,
// exp y jti; nunca se aceptan sin firma.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
)

// Audiencias por propósito; un code nunca valida como state social y viceversa.
const (
	AudienceCode   = "authhero:authorization_code"
	AudienceSocial = "authhero:social_state"
)

// MinSecretLen es el largo mínimo del secreto HMAC.
const MinSecretLen = 32

var (
	ErrInvalid = errors.New("state: invalid")
	ErrExpired = errors.New("state: expired")
)

// Codec firma payloads con HMAC-SHA256.
type Codec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func New(secret []byte, issuer string) (*Codec, error) {
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("state: secret must be at least %d bytes", MinSecretLen)
	}
	return &Codec{secret: secret, issuer: issuer, now: time.Now}, nil
}

// WithClock reemplaza el reloj (tests).
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

type envelope struct {
	Data json.RawMessage `json:"d"`
	jwtv5.RegisteredClaims
}

func (c *Codec) encode(aud string, v any, ttl time.Duration) (string, string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", "", err
	}
	now := c.now().UTC()
	jti := uuid.NewString()
	env := envelope{
		Data: data,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    c.issuer,
			Audience:  jwtv5.ClaimStrings{aud},
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
	}
	signed, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, &env).SignedString(c.secret)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

func (c *Codec) decode(aud, token string, out any) (*jwtv5.RegisteredClaims, error) {
	var env envelope
	_, err := jwtv5.ParseWithClaims(token, &env,
		func(*jwtv5.Token) (any, error) { return c.secret, nil },
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithAudience(aud),
		jwtv5.WithIssuer(c.issuer),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrInvalid, err)
	}
	return &env.RegisteredClaims, nil
}

// CodePayload es la continuación del authorization code grant.
type CodePayload struct {
	TenantID   string                `json:"tenant_id"`
	UserID     string                `json:"user_id"`
	AuthParams repository.AuthParams `json:"auth_params"`
	Nonce      string                `json:"nonce,omitempty"`
	State      string                `json:"state,omitempty"`
	SID        string                `json:"sid,omitempty"`
	User       *repository.User      `json:"user,omitempty"`
}

// Code es un CodePayload verificado.
type Code struct {
	CodePayload
	JTI       string
	ExpiresAt time.Time
}

// EncodeCode emite un authorization code válido por ttl.
func (c *Codec) EncodeCode(p CodePayload, ttl time.Duration) (string, error) {
	s, _, err := c.encode(AudienceCode, p, ttl)
	return s, err
}

// DecodeCode verifica firma, audiencia y exp.
func (c *Codec) DecodeCode(token string) (*Code, error) {
	var p CodePayload
	rc, err := c.decode(AudienceCode, token, &p)
	if err != nil {
		return nil, err
	}
	out := &Code{CodePayload: p, JTI: rc.ID}
	if rc.ExpiresAt != nil {
		out.ExpiresAt = rc.ExpiresAt.Time
	}
	return out, nil
}

// SocialPayload viaja como state hacia el IdP federado.
type SocialPayload struct {
	TenantID   string                `json:"tenant_id"`
	Connection string                `json:"connection"`
	AuthParams repository.AuthParams `json:"auth_params"`
	// LoginState es el id de la universal login session cuando el flujo
	// arrancó desde /u/*.
	LoginState string `json:"login_state,omitempty"`
}

func (c *Codec) EncodeSocial(p SocialPayload, ttl time.Duration) (string, error) {
	s, _, err := c.encode(AudienceSocial, p, ttl)
	return s, err
}

func (c *Codec) DecodeSocial(token string) (*SocialPayload, error) {
	var p SocialPayload
	if _, err := c.decode(AudienceSocial, token, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
