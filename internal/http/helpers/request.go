package helpers

import (
	"encoding/json"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
)

const maxBody = 1 << 20

// ClientIP: primer hop de X-Forwarded-For o RemoteAddr.
func ClientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		return strings.TrimSpace(parts[0])
	}
	if xr := strings.TrimSpace(r.Header.Get("X-Real-IP")); xr != "" {
		return xr
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

// BasicAuth devuelve client_id/secret de "Authorization: Basic"; los valores
// vienen form-urlencoded (RFC 6749 §2.3.1).
func BasicAuth(r *http.Request) (clientID, secret string, ok bool) {
	u, p, ok := r.BasicAuth()
	if !ok {
		return "", "", false
	}
	if v, err := url.QueryUnescape(u); err == nil {
		u = v
	}
	if v, err := url.QueryUnescape(p); err == nil {
		p = v
	}
	return u, p, true
}

// ReadParams lee el body como form-urlencoded o JSON (los SDKs de Auth0 usan
// ambos) y lo devuelve como url.Values. Los valores no-string del JSON se
// descartan salvo bool/number, que se formatean.
func ReadParams(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct != "application/json" {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return r.PostForm, nil
	}
	defer r.Body.Close()
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && err != io.EOF {
		return nil, err
	}
	out := url.Values{}
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			out.Set(k, t)
		case bool, float64:
			b, _ := json.Marshal(t)
			out.Set(k, string(b))
		case map[string]any:
			// authParams anidado de /co/authenticate y /passwordless/start
			for ik, iv := range t {
				if s, ok := iv.(string); ok {
					out.Set(k+"."+ik, s)
				}
			}
		}
	}
	return out, nil
}

// WriteJSON escribe v con status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NoStore marca la respuesta como no cacheable (token endpoint, userinfo).
func NoStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
