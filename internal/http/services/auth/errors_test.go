package auth

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dropDatabas3/authhero/internal/i18n"
)

func TestOAuthMapping(t *testing.T) {
	code, desc, status := OAuth(newErr(KindInvalidClientSecret, "bad secret"))
	assert.Equal(t, "invalid_client", code)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "bad secret", desc)

	code, desc, status = OAuth(wrapErr(KindPrimaryAccountNotFound, errors.New("db row gone"), "primary missing"))
	assert.Equal(t, "server_error", code)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotContains(t, desc, "db row gone")

	code, _, status = OAuth(fmt.Errorf("boom"))
	assert.Equal(t, "server_error", code)
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("flow: %w", newErr(KindTicketNotFound, "gone"))
	assert.Equal(t, KindTicketNotFound, KindOf(err))
	assert.ErrorIs(t, err, ErrTicketNotFound)
	assert.NotErrorIs(t, err, ErrInvalidGrant)
}

func TestUIMessage(t *testing.T) {
	key, ok := UIMessage(newErr(KindInvalidPassword, "x"))
	assert.True(t, ok)
	assert.Equal(t, i18n.MsgInvalidPassword, key)

	key, ok = UIMessage(formErr(i18n.MsgPasswordsDontMatch, "x"))
	assert.True(t, ok)
	assert.Equal(t, i18n.MsgPasswordsDontMatch, key)

	_, ok = UIMessage(newErr(KindPrimaryAccountNotFound, "x"))
	assert.False(t, ok)
	_, ok = UIMessage(errors.New("plain"))
	assert.False(t, ok)
}
