package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/pwdvault/internal/middleware"
	"github.com/atinyakov/pwdvault/internal/models"
	"github.com/atinyakov/pwdvault/internal/vault"
)

// VaultService is the subset of the vault service used by VaultHandler.
type VaultService interface {
	StorePair(ctx context.Context, login, hint, password string) error
	RemovePair(ctx context.Context, login, hint, password string) (bool, error)
	Passwords(ctx context.Context, login, hint string) ([]string, error)
	Stats(ctx context.Context, login string) (models.Stats, error)
	Dump(ctx context.Context, w io.Writer, dir vault.Direction) error
}

// VaultHandler serves pair, hint, stats and dump endpoints.
type VaultHandler struct {
	VaultService VaultService
}

func decodePair(r *http.Request) (models.Pair, bool) {
	var p models.Pair
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return p, false
	}
	return p, true
}

// AddPair handles POST /api/pairs.
func (h *VaultHandler) AddPair(w http.ResponseWriter, r *http.Request) {
	p, ok := decodePair(r)
	if !ok {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	login := middleware.GetLoginFromContext(r.Context())
	if err := h.VaultService.StorePair(r.Context(), login, p.Hint, p.Password); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// RemovePair handles DELETE /api/pairs. Absent pairs yield 404.
func (h *VaultHandler) RemovePair(w http.ResponseWriter, r *http.Request) {
	p, ok := decodePair(r)
	if !ok {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	login := middleware.GetLoginFromContext(r.Context())
	found, err := h.VaultService.RemovePair(r.Context(), login, p.Hint, p.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		http.Error(w, "pair not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Passwords handles GET /api/hints/{hint}.
func (h *VaultHandler) Passwords(w http.ResponseWriter, r *http.Request) {
	hint := chi.URLParam(r, "hint")
	login := middleware.GetLoginFromContext(r.Context())
	pw, err := h.VaultService.Passwords(r.Context(), login, hint)
	if err != nil {
		writeError(w, err)
		return
	}
	if pw == nil {
		pw = []string{}
	}
	writeJSON(w, http.StatusOK, models.Passwords{Hint: hint, Passwords: pw})
}

// Stats handles GET /api/stats.
func (h *VaultHandler) Stats(w http.ResponseWriter, r *http.Request) {
	login := middleware.GetLoginFromContext(r.Context())
	st, err := h.VaultService.Stats(r.Context(), login)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Dump handles GET /api/dump?dir=forward|reverse with a plain text
// listing of every user's entries.
func (h *VaultHandler) Dump(w http.ResponseWriter, r *http.Request) {
	dir, err := vault.ParseDirection(r.URL.Query().Get("dir"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var buf bytes.Buffer
	if err := h.VaultService.Dump(r.Context(), &buf, dir); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
