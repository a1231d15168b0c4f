package jwt

import (
	"encoding/base64"
	"encoding/json"
	"math/big"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
)

// JWK es una clave pública RSA en formato RFC 7517.
type JWK struct {
	KID string `json:"kid"`
	Kty string `json:"kty"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JWKSet es el documento publicado en /.well-known/jwks.json.
type JWKSet struct {
	Keys []JWK `json:"keys"`
}

func buildJWKS(keys []repository.SigningKey) ([]byte, error) {
	set := JWKSet{Keys: make([]JWK, 0, len(keys))}
	for _, k := range keys {
		pub, err := ParsePublicKey(k.PublicKey)
		if err != nil {
			continue
		}
		set.Keys = append(set.Keys, JWK{
			KID: k.KID,
			Kty: "RSA",
			Use: "sig",
			Alg: "RS256",
			N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		})
	}
	return json.Marshal(set)
}
