package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	assert.Equal(t, Spanish, Match("es-AR", "", "en"))
	assert.Equal(t, Spanish, Match("", "es-ES,es;q=0.9,en;q=0.5", "en"))
	assert.Equal(t, English, Match("fr", "", "en"))
	assert.Equal(t, Spanish, Match("", "", "es"))
	assert.Equal(t, English, Match("", "", ""))
}

func TestT(t *testing.T) {
	assert.Equal(t, "Usuario no encontrado.", T(Spanish, MsgUserNotFound))
	assert.Equal(t, "User not found.", T("de", MsgUserNotFound))
	assert.Equal(t, "Continue as a@b.com?", T(English, MsgTitleCheckAccount, "a@b.com"))
	assert.Equal(t, "nope", T(English, "nope"))
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	for k := range catalog[English] {
		_, ok := catalog[Spanish][k]
		assert.True(t, ok, "missing es key %s", k)
	}
}
