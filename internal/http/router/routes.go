package router

import (
	"github.com/go-chi/chi/v5"

	mw "github.com/dropDatabas3/authhero/internal/http/middlewares"
)

func registerHealthRoutes(r chi.Router, d Deps) {
	if d.Health != nil {
		r.Get("/healthz", d.Health.Healthz)
		r.Head("/healthz", d.Health.Healthz)
		r.Get("/readyz", d.Health.Readyz)
	}
	if d.Metrics != nil {
		r.Method("GET", "/metrics", d.Metrics)
	}
}

func registerOIDCRoutes(r chi.Router, d Deps) {
	if d.OIDC == nil {
		return
	}
	r.Group(func(r chi.Router) {
		r.Use(mw.Use(mw.WithCORS(d.CORSOrigins))...)
		r.With(mw.WithCacheControl("public, max-age=3600")).Get("/.well-known/openid-configuration", d.OIDC.Discovery)
		r.With(mw.WithCacheControl("public, max-age=600")).Get("/.well-known/jwks.json", d.OIDC.JWKS)
		r.Options("/.well-known/*", d.OIDC.Discovery)
		r.Get("/userinfo", d.OIDC.Userinfo)
		r.Post("/userinfo", d.OIDC.Userinfo)
		r.Options("/userinfo", d.OIDC.Userinfo)
	})
}

func registerOAuthRoutes(r chi.Router, d Deps) {
	if d.OAuth == nil {
		return
	}
	r.Get("/authorize", d.OAuth.Authorize.Authorize)
	r.Get("/callback", d.OAuth.Callback.Callback)
	r.Post("/callback", d.OAuth.Callback.Callback)
	r.Group(func(r chi.Router) {
		r.Use(mw.Use(mw.WithPreflight(), mw.WithNoStore())...)
		r.Post("/oauth/token", d.OAuth.Token.Token)
		r.Options("/oauth/token", d.OAuth.Token.Token)
	})
}

func registerAuthRoutes(r chi.Router, d Deps, limited mw.Middleware) {
	if d.Auth == nil {
		return
	}
	r.Get("/v2/logout", d.Auth.Logout.Logout)
	r.Get("/passwordless/verify_redirect", d.Auth.Passwordless.VerifyRedirect)

	r.Group(func(r chi.Router) {
		r.Use(mw.Use(mw.WithPreflight())...)
		r.Post("/dbconnections/signup", d.Auth.DBConnections.Signup)
		r.Post("/dbconnections/change_password", d.Auth.DBConnections.ChangePassword)
		r.Options("/dbconnections/*", d.Auth.DBConnections.Signup)

		r.With(limited).Post("/passwordless/start", d.Auth.Passwordless.Start)
		r.Options("/passwordless/start", d.Auth.Passwordless.Start)

		r.With(limited).Post("/co/authenticate", d.Auth.CrossOrigin.Authenticate)
		r.Options("/co/authenticate", d.Auth.CrossOrigin.Authenticate)
	})
}

func registerUniversalRoutes(r chi.Router, d Deps, limited mw.Middleware) {
	if d.Universal == nil {
		return
	}
	u := d.Universal
	r.Route("/u", func(r chi.Router) {
		r.Use(mw.Use(mw.WithNoStore())...)
		r.Get("/social", u.Social)
		r.Get("/validate-email", u.ValidateEmail)
		r.Get("/{page}", u.Page)
		r.With(limited).Post("/enter-password", u.Submit)
		r.With(limited).Post("/enter-code", u.Submit)
		r.Post("/{page}", u.Submit)
	})
}
