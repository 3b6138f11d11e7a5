package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atinyakov/pwdvault/internal/device"
	"github.com/atinyakov/pwdvault/internal/models"
	"github.com/atinyakov/pwdvault/internal/vault"
)

var (
	// ErrInvalidPair is returned for empty hints or passwords, or ones
	// containing whitespace, which cannot round-trip through records.
	ErrInvalidPair = errors.New("service: hint and password must be non-empty and contain no whitespace")
	// ErrSessionNotFound is returned for unknown, expired or foreign sessions.
	ErrSessionNotFound = errors.New("service: session not found")
)

// Device is the locked vault the service drives.
type Device interface {
	Open(uid int) (*device.Session, error)
	Insert(uid int, hint, password string) error
	Delete(uid int, hint, password string) (bool, error)
	Passwords(uid int, hint string) ([]string, error)
	Stats(uid int) (device.Stats, error)
	Totals() device.Totals
	Dump(w io.Writer, dir vault.Direction) error
}

// UIDResolver maps a login to its vault uid.
type UIDResolver interface {
	LookupUID(ctx context.Context, login string) (int, error)
}

type openSession struct {
	login    string
	session  *device.Session
	lastUsed time.Time
}

// VaultService implements vault operations for authenticated logins and
// keeps the table of open sequential sessions.
type VaultService struct {
	dev   Device
	users UIDResolver
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*openSession
}

// NewVaultService constructs a VaultService over dev, resolving logins
// through users.
func NewVaultService(dev Device, users UIDResolver) *VaultService {
	return &VaultService{
		dev:      dev,
		users:    users,
		now:      time.Now,
		sessions: make(map[string]*openSession),
	}
}

func validPair(hint, password string) error {
	if hint == "" || password == "" ||
		strings.ContainsAny(hint, " \t\r\n\x00") || strings.ContainsAny(password, " \t\r\n\x00") {
		return ErrInvalidPair
	}
	return nil
}

// StorePair inserts a pair for login.
func (s *VaultService) StorePair(ctx context.Context, login, hint, password string) error {
	if err := validPair(hint, password); err != nil {
		return err
	}
	uid, err := s.users.LookupUID(ctx, login)
	if err != nil {
		return err
	}
	return s.dev.Insert(uid, hint, password)
}

// RemovePair deletes a pair for login, reporting whether it existed.
func (s *VaultService) RemovePair(ctx context.Context, login, hint, password string) (bool, error) {
	uid, err := s.users.LookupUID(ctx, login)
	if err != nil {
		return false, err
	}
	return s.dev.Delete(uid, hint, password)
}

// Passwords returns login's passwords stored under hint.
func (s *VaultService) Passwords(ctx context.Context, login, hint string) ([]string, error) {
	uid, err := s.users.LookupUID(ctx, login)
	if err != nil {
		return nil, err
	}
	return s.dev.Passwords(uid, hint)
}

// Stats returns login's counters together with the vault totals.
func (s *VaultService) Stats(ctx context.Context, login string) (models.Stats, error) {
	uid, err := s.users.LookupUID(ctx, login)
	if err != nil {
		return models.Stats{}, err
	}
	st, err := s.dev.Stats(uid)
	if err != nil {
		return models.Stats{}, err
	}
	tot := s.dev.Totals()
	return models.Stats{
		UID:            uid,
		Hints:          st.Hints,
		RemainingHints: st.Remaining,
		Entries:        st.Entries,
		VaultUsers:     tot.Users,
		VaultHints:     tot.Hints,
		VaultEntries:   tot.Entries,
	}, nil
}

// Dump writes the diagnostic listing of the whole vault.
func (s *VaultService) Dump(_ context.Context, w io.Writer, dir vault.Direction) error {
	return s.dev.Dump(w, dir)
}

// OpenSession opens a sequential session for login and returns its id.
func (s *VaultService) OpenSession(ctx context.Context, login string) (string, error) {
	uid, err := s.users.LookupUID(ctx, login)
	if err != nil {
		return "", err
	}
	sess, err := s.dev.Open(uid)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()

	s.mu.Lock()
	s.sessions[id] = &openSession{login: login, session: sess, lastUsed: s.now()}
	s.mu.Unlock()
	return id, nil
}

// session looks up login's session by id and marks it used.
func (s *VaultService) session(login, id string) (*device.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok || entry.login != login {
		return nil, ErrSessionNotFound
	}
	entry.lastUsed = s.now()
	return entry.session, nil
}

// ReadSession reads the next record. It reports false at the end.
func (s *VaultService) ReadSession(_ context.Context, login, id string) (models.Record, bool, error) {
	sess, err := s.session(login, id)
	if err != nil {
		return models.Record{}, false, err
	}
	buf := make([]byte, vault.MaxRecordSize)
	n, err := sess.Read(buf)
	if errors.Is(err, io.EOF) {
		return models.Record{}, false, nil
	}
	if err != nil {
		return models.Record{}, false, err
	}
	hint, password, _ := strings.Cut(string(buf[:n]), " ")
	return models.Record{Hint: hint, Password: password}, true, nil
}

// SeekSession moves the session cursor to the given pair. It reports
// false when the pair is absent.
func (s *VaultService) SeekSession(_ context.Context, login, id, hint, password string) (bool, error) {
	if err := validPair(hint, password); err != nil {
		return false, err
	}
	sess, err := s.session(login, id)
	if err != nil {
		return false, err
	}
	if err := sess.SetSeekKey(hint + " " + password); err != nil {
		return false, err
	}
	return sess.Seek()
}

// DeleteAtSession deletes the record under the session cursor.
func (s *VaultService) DeleteAtSession(_ context.Context, login, id string) error {
	sess, err := s.session(login, id)
	if err != nil {
		return err
	}
	_, err = sess.Write(nil)
	return err
}

// RewindSession moves the session cursor to the first record.
func (s *VaultService) RewindSession(_ context.Context, login, id string) error {
	sess, err := s.session(login, id)
	if err != nil {
		return err
	}
	return sess.Rewind()
}

// CloseSession closes and forgets a session.
func (s *VaultService) CloseSession(_ context.Context, login, id string) error {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	if !ok || entry.login != login {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	s.mu.Unlock()
	return entry.session.Close()
}

// Reap closes sessions idle for longer than ttl and returns how many.
func (s *VaultService) Reap(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)
	var stale []*device.Session

	s.mu.Lock()
	for id, entry := range s.sessions {
		if entry.lastUsed.Before(cutoff) {
			stale = append(stale, entry.session)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		_ = sess.Close()
	}
	return len(stale)
}

// OpenSessions returns the number of open sessions.
func (s *VaultService) OpenSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
