package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/pwdvault/internal/middleware"
)

// NewRouter constructs the HTTP handler of the vault API.
//
// Routes:
//
//	POST   /api/register                → authHandler.Register (no certificate)
//	POST   /api/login                   → authHandler.Login
//	POST   /api/pairs                   → vaultHandler.AddPair
//	DELETE /api/pairs                   → vaultHandler.RemovePair
//	GET    /api/hints/{hint}            → vaultHandler.Passwords
//	GET    /api/stats                   → vaultHandler.Stats
//	GET    /api/dump                    → vaultHandler.Dump (diagnostics only)
//	POST   /api/sessions                → sessionHandler.Open
//	GET    /api/sessions/{id}/next      → sessionHandler.Next
//	POST   /api/sessions/{id}/seek      → sessionHandler.Seek
//	POST   /api/sessions/{id}/rewind    → sessionHandler.Rewind
//	DELETE /api/sessions/{id}/current   → sessionHandler.DeleteCurrent
//	DELETE /api/sessions/{id}           → sessionHandler.Close
//
// Middleware chain (applied in order): request id, panic recovery,
// JSON content type for bodies, request logging, certificate auth.
func NewRouter(
	authHandler *AuthHandler,
	vaultHandler *VaultHandler,
	sessionHandler *SessionHandler,
	logger *zap.Logger,
	diagnostics bool,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.CertAuth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		r.Post("/pairs", vaultHandler.AddPair)
		r.Delete("/pairs", vaultHandler.RemovePair)
		r.Get("/hints/{hint}", vaultHandler.Passwords)
		r.Get("/stats", vaultHandler.Stats)
		if diagnostics {
			r.Get("/dump", vaultHandler.Dump)
		}

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Open)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/next", sessionHandler.Next)
				r.Post("/seek", sessionHandler.Seek)
				r.Post("/rewind", sessionHandler.Rewind)
				r.Delete("/current", sessionHandler.DeleteCurrent)
				r.Delete("/", sessionHandler.Close)
			})
		})
	})

	return r
}
