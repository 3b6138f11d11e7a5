// Package vault implements the in-memory password vault: per-user sets of
// hint chains kept in a dense chain index, with ordered traversal in both
// directions and a per-user cursor for sequential consumers.
//
// A Vault is not safe for concurrent use. The device layer serializes
// every call, including multi-step sequences such as seek-then-delete.
package vault

import "fmt"

// maxUsers caps the number of user records a single vault may allocate.
const maxUsers = 1 << 16

// Vault is a fixed-size array of user records addressed by 1-indexed uid.
type Vault struct {
	users        []userRecord
	hintCapacity int
	entryLimit   int
}

// Option configures a Vault at construction.
type Option func(*Vault)

// WithHintCapacity sets the number of distinct hints each user may hold.
// Values below 1 keep the default.
func WithHintCapacity(n int) Option {
	return func(v *Vault) {
		if n > 0 {
			v.hintCapacity = n
		}
	}
}

// WithEntryLimit caps the number of entries each user may hold. Reaching
// the cap makes Insert fail with ErrAllocation. Zero means unlimited.
func WithEntryLimit(n int) Option {
	return func(v *Vault) {
		if n >= 0 {
			v.entryLimit = n
		}
	}
}

// New allocates a vault with capacity empty user records.
func New(capacity int, opts ...Option) (*Vault, error) {
	if capacity < 1 || capacity > maxUsers {
		return nil, fmt.Errorf("%w: cannot hold %d users", ErrAllocation, capacity)
	}
	v := &Vault{hintCapacity: DefaultHintCapacity}
	for _, opt := range opts {
		opt(v)
	}
	v.users = make([]userRecord, capacity)
	for k := range v.users {
		v.users[k].id = int32(k + 1)
		v.users[k].nodes.limit = v.entryLimit
	}
	return v, nil
}

// Close releases every chain and user record and returns the number of
// entries that were held. Afterwards every uid is invalid.
func (v *Vault) Close() int {
	n := 0
	for k := range v.users {
		n += v.users[k].release()
	}
	v.users = nil
	return n
}

// Capacity returns the number of user records.
func (v *Vault) Capacity() int {
	return len(v.users)
}

// HintCapacity returns the per-user limit on distinct hints.
func (v *Vault) HintCapacity() int {
	return v.hintCapacity
}

func (v *Vault) user(uid int) (*userRecord, error) {
	if uid < 1 || uid > len(v.users) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidUser, uid)
	}
	return &v.users[uid-1], nil
}

// Insert stores a hint-password pair for uid. A new hint opens a chain in
// the next free index slot; a known hint appends to its chain. Hint and
// password are truncated to their maximum sizes. A failed insert leaves
// the vault unchanged.
func (v *Vault) Insert(uid int, hint, password string) error {
	u, err := v.user(uid)
	if err != nil {
		return err
	}
	e := newEntry(hint, password)
	if err := u.insert(e, v.hintCapacity); err != nil {
		return fmt.Errorf("insert %q for user %d: %w", e.Hint, uid, err)
	}
	return nil
}

// Delete removes the exact hint-password pair. It reports false, with no
// error, if the pair is absent.
func (v *Vault) Delete(uid int, hint, password string) (bool, error) {
	u, err := v.user(uid)
	if err != nil {
		return false, err
	}
	i := u.findPair(newEntry(hint, password))
	if i == none {
		return false, nil
	}
	u.remove(i)
	return true, nil
}

// FindHint returns the head entry of hint's chain and the chain's slot.
func (v *Vault) FindHint(uid int, hint string) (Ref, int, error) {
	u, err := v.user(uid)
	if err != nil {
		return Ref{}, 0, err
	}
	slot := u.slotOf(bound(hint, MaxHintSize))
	if slot < 0 {
		return Ref{}, 0, ErrNotFound
	}
	return u.ref(u.index[slot].head), slot, nil
}

// FindPair returns the entry holding exactly hint and password.
func (v *Vault) FindPair(uid int, hint, password string) (Ref, error) {
	u, err := v.user(uid)
	if err != nil {
		return Ref{}, err
	}
	i := u.findPair(newEntry(hint, password))
	if i == none {
		return Ref{}, ErrNotFound
	}
	return u.ref(i), nil
}

// Passwords copies hint's passwords, oldest first, into out and returns
// how many were copied. At most len(out) are copied; an absent hint
// copies none.
func (v *Vault) Passwords(uid int, hint string, out []string) (int, error) {
	u, err := v.user(uid)
	if err != nil {
		return 0, err
	}
	slot := u.slotOf(bound(hint, MaxHintSize))
	if slot < 0 {
		return 0, nil
	}
	n := 0
	for i := u.index[slot].head; i != none && n < len(out); i = u.nodes.at(i).next {
		out[n] = u.nodes.at(i).entry.Password
		n++
	}
	return n, nil
}

// HintCount returns the number of distinct hints held by uid.
func (v *Vault) HintCount(uid int) (int, error) {
	u, err := v.user(uid)
	if err != nil {
		return 0, err
	}
	return u.hints, nil
}

// RemainingHints returns how many more distinct hints uid may insert.
func (v *Vault) RemainingHints(uid int) (int, error) {
	u, err := v.user(uid)
	if err != nil {
		return 0, err
	}
	return v.hintCapacity - u.hints, nil
}

// EntryCount returns the number of hint-password pairs held by uid.
func (v *Vault) EntryCount(uid int) (int, error) {
	u, err := v.user(uid)
	if err != nil {
		return 0, err
	}
	return u.pairs, nil
}

// TotalHints sums HintCount over all users.
func (v *Vault) TotalHints() int {
	sum := 0
	for uid := 1; uid <= len(v.users); uid++ {
		n, _ := v.HintCount(uid)
		sum += n
	}
	return sum
}

// TotalEntries sums EntryCount over all users.
func (v *Vault) TotalEntries() int {
	sum := 0
	for uid := 1; uid <= len(v.users); uid++ {
		n, _ := v.EntryCount(uid)
		sum += n
	}
	return sum
}
