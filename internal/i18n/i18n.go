// Package i18n resuelve el idioma del login hosteado y de los emails y
// traduce los mensajes de error de formulario.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

const (
	English = "en"
	Spanish = "es"
)

var (
	supported = []language.Tag{language.English, language.Spanish}
	matcher   = language.NewMatcher(supported)
)

// Match elige el idioma según ui_locales (separado por espacios), luego
// Accept-Language y por último el default del tenant.
func Match(uiLocales, acceptLanguage, fallback string) string {
	var prefs []language.Tag
	for _, l := range strings.Fields(uiLocales) {
		if t, err := language.Parse(l); err == nil {
			prefs = append(prefs, t)
		}
	}
	if acceptLanguage != "" {
		if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil {
			prefs = append(prefs, tags...)
		}
	}
	if t, err := language.Parse(fallback); err == nil && fallback != "" {
		prefs = append(prefs, t)
	}
	if len(prefs) == 0 {
		return English
	}
	_, idx, conf := matcher.Match(prefs...)
	if conf == language.No {
		return English
	}
	return base(supported[idx])
}

func base(t language.Tag) string {
	b, _ := t.Base()
	return b.String()
}

// T traduce key; si no existe en lang cae a inglés y después a la key.
func T(lang, key string, args ...any) string {
	msg, ok := catalog[lang][key]
	if !ok {
		msg, ok = catalog[English][key]
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}
