// Package password hashea y verifica passwords de identidades auth2 con bcrypt.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Cost usado para hashes nuevos.
const Cost = 10

// ErrEmpty se devuelve al intentar hashear un password vacío.
var ErrEmpty = errors.New("password: empty")

// Hash devuelve el hash bcrypt de plain.
func Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmpty
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compara plain contra un hash bcrypt. Hash vacío o corrupto = false.
func Verify(plain, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
