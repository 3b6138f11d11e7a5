// Package device exposes a vault as a record device. A Device owns the
// vault and the lock that serializes every vault call; a Session is one
// user's open handle, reading and writing "hint password" records at the
// user's cursor.
package device

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/pwdvault/internal/vault"
)

var (
	// ErrNoSpace is returned when a user has no room for another hint.
	ErrNoSpace = errors.New("device: no space for another hint")
	// ErrNoMemory is returned when an entry cannot be allocated.
	ErrNoMemory = errors.New("device: out of memory")
	// ErrInvalidRecord is returned for a record that is not "hint password".
	ErrInvalidRecord = errors.New("device: malformed record")
	// ErrNoCursor is returned when deleting at a cursor past the last record.
	ErrNoCursor = errors.New("device: no record under cursor")
	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("device: session closed")
)

// Stats are one user's vault counters.
type Stats struct {
	Hints     int `json:"hints"`
	Remaining int `json:"remaining"`
	Entries   int `json:"entries"`
}

// Totals are the vault-wide counters.
type Totals struct {
	Users   int `json:"users"`
	Hints   int `json:"hints"`
	Entries int `json:"entries"`
}

// Device guards a vault with a single mutex.
type Device struct {
	mu    sync.Mutex
	vault *vault.Vault
	log   *zap.Logger
}

// New wraps v. The device takes ownership of v.
func New(v *vault.Vault, log *zap.Logger) *Device {
	if log == nil {
		log = zap.NewNop()
	}
	return &Device{vault: v, log: log}
}

// Close tears the vault down. Sessions still open fail afterwards.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := d.vault.Close()
	d.log.Info("vault released", zap.Int("entries", n))
}

// Open starts a session for uid with the cursor on the user's first record.
func (d *Device) Open(uid int) (*Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.vault.Rewind(uid); err != nil {
		return nil, err
	}
	d.log.Debug("session opened", zap.Int("uid", uid))
	return &Session{dev: d, uid: uid}, nil
}

// Insert stores a pair for uid.
func (d *Device) Insert(uid int, hint, password string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.insert(uid, hint, password)
}

func (d *Device) insert(uid int, hint, password string) error {
	if err := d.vault.Insert(uid, hint, password); err != nil {
		err = translate(err)
		d.log.Warn("insert rejected", zap.Int("uid", uid), zap.String("hint", hint), zap.Error(err))
		return err
	}
	d.log.Debug("pair inserted", zap.Int("uid", uid), zap.String("hint", hint))
	return nil
}

// Delete removes a pair for uid, reporting whether it existed.
func (d *Device) Delete(uid int, hint, password string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ok, err := d.vault.Delete(uid, hint, password)
	if ok {
		d.log.Debug("pair deleted", zap.Int("uid", uid), zap.String("hint", hint))
	}
	return ok, err
}

// Passwords returns every password stored under hint, oldest first.
func (d *Device) Passwords(uid int, hint string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.vault.EntryCount(uid)
	if err != nil {
		return nil, err
	}
	out := make([]string, n)
	n, err = d.vault.Passwords(uid, hint, out)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

// Stats returns uid's counters.
func (d *Device) Stats(uid int) (Stats, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var s Stats
	var err error
	if s.Hints, err = d.vault.HintCount(uid); err != nil {
		return Stats{}, err
	}
	if s.Remaining, err = d.vault.RemainingHints(uid); err != nil {
		return Stats{}, err
	}
	if s.Entries, err = d.vault.EntryCount(uid); err != nil {
		return Stats{}, err
	}
	return s, nil
}

// Totals returns the vault-wide counters.
func (d *Device) Totals() Totals {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Totals{
		Users:   d.vault.Capacity(),
		Hints:   d.vault.TotalHints(),
		Entries: d.vault.TotalEntries(),
	}
}

// Dump writes the whole vault in dir order.
func (d *Device) Dump(w io.Writer, dir vault.Direction) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.vault.Dump(w, dir)
}

func translate(err error) error {
	switch {
	case errors.Is(err, vault.ErrCapacityExceeded):
		return fmt.Errorf("%w: %w", ErrNoSpace, err)
	case errors.Is(err, vault.ErrAllocation):
		return fmt.Errorf("%w: %w", ErrNoMemory, err)
	}
	return err
}
