package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/pwdvault/internal/device"
	"github.com/atinyakov/pwdvault/internal/repository"
	"github.com/atinyakov/pwdvault/internal/service"
	"github.com/atinyakov/pwdvault/internal/vault"
)

// statusOf maps domain errors onto HTTP status codes and client-facing
// messages.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidPair),
		errors.Is(err, device.ErrInvalidRecord):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, vault.ErrInvalidUser):
		return http.StatusForbidden, "user not registered"
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, device.ErrClosed):
		return http.StatusNotFound, "session not found"
	case errors.Is(err, device.ErrNoCursor):
		return http.StatusNotFound, "no record under cursor"
	case errors.Is(err, repository.ErrUserExists):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, device.ErrNoSpace):
		return http.StatusInsufficientStorage, "no space for another hint"
	case errors.Is(err, repository.ErrNoFreeUID):
		return http.StatusInsufficientStorage, "vault is full"
	case errors.Is(err, device.ErrNoMemory):
		return http.StatusServiceUnavailable, "out of memory"
	}
	return http.StatusInternalServerError, "internal error"
}

func writeError(w http.ResponseWriter, err error) {
	code, msg := statusOf(err)
	http.Error(w, msg, code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
