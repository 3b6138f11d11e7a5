// Package http provides the HTTP handlers and router of the vault server.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/atinyakov/pwdvault/internal/middleware"
	"github.com/atinyakov/pwdvault/internal/models"
)

// AuthService defines the interface for authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// UserExists checks whether a user with the given login exists.
	UserExists(context.Context, string) (bool, error)
	// RegisterUser registers a new user and returns its vault uid.
	RegisterUser(context.Context, string) (int, error)
	// LookupUID returns the vault uid of a registered login.
	LookupUID(context.Context, string) (int, error)
}

// CertificateIssuer signs client certificates for new users.
type CertificateIssuer interface {
	IssueClientCertificate(login string) (certPEM, keyPEM []byte, err error)
}

// AuthHandler handles HTTP requests for user registration and login.
type AuthHandler struct {
	AuthService AuthService
	Issuer      CertificateIssuer
}

// RegisterRequest represents the JSON payload for user registration.
type RegisterRequest struct {
	// Login is the username to register.
	Login string `json:"login"`
}

// Register handles POST /api/register.
// It issues a client certificate for a new login, assigns the login a
// vault uid and returns both. The certificate is issued before the user
// is stored so a signing failure leaves no orphan registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !validLogin(req.Login) {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	exists, err := h.AuthService.UserExists(r.Context(), req.Login)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if exists {
		http.Error(w, "user already exists", http.StatusConflict)
		return
	}

	certPEM, keyPEM, err := h.Issuer.IssueClientCertificate(req.Login)
	if err != nil {
		http.Error(w, "failed to generate certificate", http.StatusInternalServerError)
		return
	}

	uid, err := h.AuthService.RegisterUser(r.Context(), req.Login)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.Registration{
		UID:  uid,
		Cert: string(certPEM),
		Key:  string(keyPEM),
	})
}

// Login handles POST /api/login.
// The login is the Common Name of the client certificate; the response
// confirms it is registered and reports its uid.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	login := middleware.GetLoginFromContext(r.Context())
	if login == "" {
		http.Error(w, "client certificate required", http.StatusUnauthorized)
		return
	}

	uid, err := h.AuthService.LookupUID(r.Context(), login)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.User{Login: login, UID: uid})
}

func validLogin(login string) bool {
	return login != "" && len(login) <= 64 && !strings.ContainsAny(login, " \t\r\n\x00/")
}
