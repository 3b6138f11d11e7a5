// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"
)

type ctxKey string

const loginKey ctxKey = "login"

// RegisterPath is the only endpoint served without a client certificate.
const RegisterPath = "/api/register"

// CertAuth is a middleware that enforces mutual TLS authentication.
//
// Requests other than RegisterPath must carry a client certificate. The
// certificate's Common Name is the vault login and is stored in the
// request context for the handlers.
func CertAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == RegisterPath {
			next.ServeHTTP(w, r)
			return
		}
		if r.TLS == nil || len(r.TLS.PeerCertificates) == 0 {
			http.Error(w, "no client certificate provided", http.StatusUnauthorized)
			return
		}
		login := r.TLS.PeerCertificates[0].Subject.CommonName
		if login == "" {
			http.Error(w, "client certificate has no common name", http.StatusUnauthorized)
			return
		}
		setLoggedLogin(r.Context(), login)
		next.ServeHTTP(w, r.WithContext(WithLogin(r.Context(), login)))
	})
}

// WithLogin returns a copy of ctx carrying login.
func WithLogin(ctx context.Context, login string) context.Context {
	return context.WithValue(ctx, loginKey, login)
}

// GetLoginFromContext extracts the login (Common Name of the client
// certificate) from ctx. Returns an empty string if not found.
func GetLoginFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(loginKey).(string); ok {
		return s
	}
	return ""
}
