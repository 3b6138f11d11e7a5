package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/pwdvault/internal/middleware"
	"github.com/atinyakov/pwdvault/internal/models"
)

// SessionService is the subset of the vault service driving sequential
// sessions.
type SessionService interface {
	OpenSession(ctx context.Context, login string) (string, error)
	ReadSession(ctx context.Context, login, id string) (models.Record, bool, error)
	SeekSession(ctx context.Context, login, id, hint, password string) (bool, error)
	DeleteAtSession(ctx context.Context, login, id string) error
	RewindSession(ctx context.Context, login, id string) error
	CloseSession(ctx context.Context, login, id string) error
}

// SessionHandler serves /api/sessions.
type SessionHandler struct {
	SessionService SessionService
}

// Open handles POST /api/sessions.
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	login := middleware.GetLoginFromContext(r.Context())
	id, err := h.SessionService.OpenSession(r.Context(), login)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.Session{ID: id})
}

// Next handles GET /api/sessions/{id}/next. It answers 204 once the
// cursor has passed the last record.
func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	login := middleware.GetLoginFromContext(r.Context())
	rec, ok, err := h.SessionService.ReadSession(r.Context(), login, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Seek handles POST /api/sessions/{id}/seek with a pair body. It answers
// 404 when the pair is not stored.
func (h *SessionHandler) Seek(w http.ResponseWriter, r *http.Request) {
	p, ok := decodePair(r)
	if !ok {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	login := middleware.GetLoginFromContext(r.Context())
	found, err := h.SessionService.SeekSession(r.Context(), login, chi.URLParam(r, "id"), p.Hint, p.Password)
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

// Rewind handles POST /api/sessions/{id}/rewind.
func (h *SessionHandler) Rewind(w http.ResponseWriter, r *http.Request) {
	login := middleware.GetLoginFromContext(r.Context())
	if err := h.SessionService.RewindSession(r.Context(), login, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCurrent handles DELETE /api/sessions/{id}/current.
func (h *SessionHandler) DeleteCurrent(w http.ResponseWriter, r *http.Request) {
	login := middleware.GetLoginFromContext(r.Context())
	if err := h.SessionService.DeleteAtSession(r.Context(), login, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Close handles DELETE /api/sessions/{id}.
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	login := middleware.GetLoginFromContext(r.Context())
	if err := h.SessionService.CloseSession(r.Context(), login, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
