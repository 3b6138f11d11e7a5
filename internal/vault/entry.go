package vault

import (
	"fmt"
	"strings"
)

const (
	// MaxHintSize is the number of hint bytes kept and compared.
	MaxHintSize = 20
	// MaxPasswordSize is the number of password bytes kept and compared.
	MaxPasswordSize = 20
	// DefaultHintCapacity is the number of distinct hints a user may hold.
	DefaultHintCapacity = 20
	// DefaultUsers is the number of user records a device vault is built with.
	DefaultUsers = 20
	// MaxRecordSize is the size of a "hint password" record including the
	// separator and the terminating NUL.
	MaxRecordSize = MaxHintSize + 1 + MaxPasswordSize + 1
)

// Entry is a stored hint-password pair.
type Entry struct {
	Hint     string `json:"hint"`
	Password string `json:"password"`
}

// String formats the entry as a device record, "hint password".
func (e Entry) String() string {
	return e.Hint + " " + e.Password
}

func newEntry(hint, password string) Entry {
	return Entry{Hint: bound(hint, MaxHintSize), Password: bound(password, MaxPasswordSize)}
}

// bound cuts s at its first NUL and at max bytes.
func bound(s string, max int) string {
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	if len(s) > max {
		s = s[:max]
	}
	return s
}

// Direction selects the traversal order used by Next, First and Dump.
type Direction int

const (
	// Forward walks hints in first-insertion order and each chain head to tail.
	Forward Direction = iota
	// Reverse is the exact mirror of Forward.
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// ParseDirection accepts "forward", "reverse" or an empty string (forward).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "", "forward":
		return Forward, nil
	case "reverse":
		return Reverse, nil
	default:
		return Forward, fmt.Errorf("unknown direction %q", s)
	}
}

// Ref names one live entry of one user. The zero Ref means "none".
// A Ref goes stale when its entry is removed; stale refs are rejected
// with ErrStaleRef rather than aliasing a reused slot.
type Ref struct {
	user int32
	slot int32 // arena index + 1
	gen  uint32
}

// IsZero reports whether r names no entry.
func (r Ref) IsZero() bool {
	return r.slot == 0
}
