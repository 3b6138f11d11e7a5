package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/atinyakov/pwdvault/internal/models"
)

// StatusError is returned for unexpected HTTP status codes.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(data))}
}

// API is a typed client of the vault HTTP API.
type API struct {
	BaseURL string
	HTTP    *http.Client
}

// NewAPI returns an API client for baseURL using hc.
func NewAPI(baseURL string, hc *http.Client) *API {
	return &API{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: hc}
}

// do sends a request with an optional JSON body. It returns the response
// when its status is one of ok, and a StatusError otherwise.
func (a *API) do(ctx context.Context, method, path string, body any, ok ...int) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := a.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	for _, code := range ok {
		if resp.StatusCode == code {
			return resp, nil
		}
	}
	defer resp.Body.Close()
	return nil, statusError(resp)
}

func (a *API) call(ctx context.Context, method, path string, body, out any, ok ...int) error {
	resp, err := a.do(ctx, method, path, body, ok...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Login confirms the certificate's user and returns it.
func (a *API) Login(ctx context.Context) (models.User, error) {
	var u models.User
	err := a.call(ctx, http.MethodPost, "/api/login", nil, &u, http.StatusOK)
	return u, err
}

// AddPair stores a hint-password pair.
func (a *API) AddPair(ctx context.Context, hint, password string) error {
	return a.call(ctx, http.MethodPost, "/api/pairs", models.Pair{Hint: hint, Password: password}, nil, http.StatusCreated)
}

// RemovePair deletes a pair and reports whether it was stored.
func (a *API) RemovePair(ctx context.Context, hint, password string) (bool, error) {
	err := a.call(ctx, http.MethodDelete, "/api/pairs", models.Pair{Hint: hint, Password: password}, nil, http.StatusNoContent)
	if IsStatus(err, http.StatusNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Passwords returns every password stored under hint.
func (a *API) Passwords(ctx context.Context, hint string) ([]string, error) {
	var pw models.Passwords
	err := a.call(ctx, http.MethodGet, "/api/hints/"+url.PathEscape(hint), nil, &pw, http.StatusOK)
	return pw.Passwords, err
}

// Stats returns the user's counters and vault totals.
func (a *API) Stats(ctx context.Context) (models.Stats, error) {
	var st models.Stats
	err := a.call(ctx, http.MethodGet, "/api/stats", nil, &st, http.StatusOK)
	return st, err
}

// Dump returns the diagnostic listing in dir ("forward" or "reverse").
func (a *API) Dump(ctx context.Context, dir string) (string, error) {
	resp, err := a.do(ctx, http.MethodGet, "/api/dump?dir="+url.QueryEscape(dir), nil, http.StatusOK)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	return string(data), err
}

// OpenSession opens a sequential session and returns its id.
func (a *API) OpenSession(ctx context.Context) (string, error) {
	var s models.Session
	err := a.call(ctx, http.MethodPost, "/api/sessions", nil, &s, http.StatusCreated)
	return s.ID, err
}

func sessionPath(id, suffix string) string {
	return "/api/sessions/" + url.PathEscape(id) + suffix
}

// Next reads the next record of a session. It reports false at the end.
func (a *API) Next(ctx context.Context, id string) (models.Record, bool, error) {
	resp, err := a.do(ctx, http.MethodGet, sessionPath(id, "/next"), nil, http.StatusOK, http.StatusNoContent)
	if err != nil {
		return models.Record{}, false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNoContent {
		return models.Record{}, false, nil
	}
	var rec models.Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return models.Record{}, false, fmt.Errorf("failed to decode response: %w", err)
	}
	return rec, true, nil
}

// Seek moves the session cursor to a pair. It reports false when the
// pair is not stored.
func (a *API) Seek(ctx context.Context, id, hint, password string) (bool, error) {
	err := a.call(ctx, http.MethodPost, sessionPath(id, "/seek"), models.Pair{Hint: hint, Password: password}, nil, http.StatusNoContent)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound && se.Message == "pair not found" {
		return false, nil
	}
	return err == nil, err
}

// Rewind moves the session cursor to the first record.
func (a *API) Rewind(ctx context.Context, id string) error {
	return a.call(ctx, http.MethodPost, sessionPath(id, "/rewind"), nil, nil, http.StatusNoContent)
}

// DeleteCurrent deletes the record under the session cursor.
func (a *API) DeleteCurrent(ctx context.Context, id string) error {
	return a.call(ctx, http.MethodDelete, sessionPath(id, "/current"), nil, nil, http.StatusNoContent)
}

// CloseSession closes a session.
func (a *API) CloseSession(ctx context.Context, id string) error {
	return a.call(ctx, http.MethodDelete, sessionPath(id, ""), nil, nil, http.StatusNoContent)
}
