package device

import (
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/pwdvault/internal/vault"
)

// Session is one open handle on a user's records. The cursor it reads
// and writes through belongs to the user, so sessions of the same user
// share it.
type Session struct {
	dev     *Device
	uid     int
	seekKey string
	closed  bool
}

// UID returns the user the session is bound to.
func (s *Session) UID() int {
	return s.uid
}

// Read copies the record under the cursor into p as "hint password" and
// advances the cursor. It returns io.EOF past the last record and
// io.ErrShortBuffer, without advancing, if p is too small.
func (s *Session) Read(p []byte) (int, error) {
	d := s.dev
	d.mu.Lock()
	defer d.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	r, err := d.vault.Cursor(s.uid)
	if err != nil {
		return 0, err
	}
	if r.IsZero() {
		return 0, io.EOF
	}
	e, err := d.vault.Entry(s.uid, r)
	if err != nil {
		return 0, err
	}
	rec := e.String()
	if len(p) < len(rec) {
		return 0, io.ErrShortBuffer
	}
	if _, _, err := d.vault.ReadCursor(s.uid); err != nil {
		return 0, err
	}
	return copy(p, rec), nil
}

// Write interprets p as one record. An empty record deletes the entry
// under the cursor and leaves the cursor on the following record;
// anything else must be "hint password" and is inserted. Bytes past
// vault.MaxRecordSize-1 are dropped before parsing.
func (s *Session) Write(p []byte) (int, error) {
	d := s.dev
	d.mu.Lock()
	defer d.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	rec := boundRecord(string(p))
	if rec == "" {
		ok, err := d.vault.DeleteAtCursor(s.uid)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, ErrNoCursor
		}
		d.log.Debug("record deleted at cursor", zap.Int("uid", s.uid))
		return len(p), nil
	}

	hint, password, err := parseRecord(rec)
	if err != nil {
		return 0, err
	}
	if err := d.insert(s.uid, hint, password); err != nil {
		return 0, err
	}
	return len(p), nil
}

// SetSeekKey stores the "hint password" record the next Seek targets.
func (s *Session) SetSeekKey(key string) error {
	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.seekKey = boundRecord(key)
	return nil
}

// SeekKey returns the stored seek key.
func (s *Session) SeekKey() string {
	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	return s.seekKey
}

// Seek moves the cursor to the pair named by the seek key. It reports
// false, leaving the cursor alone, when the pair is not in the vault.
func (s *Session) Seek() (bool, error) {
	d := s.dev
	d.mu.Lock()
	defer d.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}

	hint, password, err := parseRecord(s.seekKey)
	if err != nil {
		return false, err
	}
	err = d.vault.SetCursor(s.uid, hint, password)
	if errors.Is(err, vault.ErrNotFound) {
		d.log.Debug("seek target absent", zap.Int("uid", s.uid), zap.String("hint", hint))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Rewind moves the cursor back to the user's first record.
func (s *Session) Rewind() error {
	d := s.dev
	d.mu.Lock()
	defer d.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	_, err := d.vault.Rewind(s.uid)
	return err
}

// Close ends the session. The user's cursor is left where it is.
func (s *Session) Close() error {
	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	s.closed = true
	return nil
}

// boundRecord strips the NUL or line terminator and cuts rec to the
// longest record a session accepts.
func boundRecord(rec string) string {
	rec = strings.TrimRight(rec, "\x00\r\n")
	if len(rec) > vault.MaxRecordSize-1 {
		rec = rec[:vault.MaxRecordSize-1]
	}
	return rec
}

func parseRecord(rec string) (string, string, error) {
	hint, password, ok := strings.Cut(rec, " ")
	if !ok || hint == "" || password == "" {
		return "", "", ErrInvalidRecord
	}
	return hint, password, nil
}
