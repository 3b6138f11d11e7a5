package vault

import (
	"fmt"
	"io"
)

// Entry returns the hint-password pair named by r.
func (v *Vault) Entry(uid int, r Ref) (Entry, error) {
	u, err := v.user(uid)
	if err != nil {
		return Entry{}, err
	}
	i, ok := u.resolve(r)
	if !ok {
		return Entry{}, ErrStaleRef
	}
	return u.nodes.at(i).entry, nil
}

// First returns the user's first entry in dir order: the head of the
// first chain for Forward, the tail of the last chain for Reverse. It
// returns the zero Ref for a user with no entries.
func (v *Vault) First(dir Direction, uid int) (Ref, error) {
	u, err := v.user(uid)
	if err != nil {
		return Ref{}, err
	}
	return u.ref(u.first(dir)), nil
}

// Next returns the neighbour of r in dir order, crossing from one chain
// to the next through the chain index, or the zero Ref at the end.
//
// Next(Forward, uid, Ref{}) returns the zero Ref. Walking Reverse from
// the zero Ref is a caller error and returns ErrStaleRef, as does any ref
// whose entry has been removed.
func (v *Vault) Next(dir Direction, uid int, r Ref) (Ref, error) {
	u, err := v.user(uid)
	if err != nil {
		return Ref{}, err
	}
	if r.IsZero() && dir == Forward {
		return Ref{}, nil
	}
	i, ok := u.resolve(r)
	if !ok {
		return Ref{}, ErrStaleRef
	}
	return u.ref(u.step(dir, i)), nil
}

// Dump writes every entry of every user in dir order. Users are visited
// ascending for Forward and descending for Reverse; users without
// entries write nothing.
func (v *Vault) Dump(w io.Writer, dir Direction) error {
	n := len(v.users)
	for k := 0; k < n; k++ {
		u := &v.users[k]
		if dir == Reverse {
			u = &v.users[n-k-1]
		}
		if u.hints == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "user %d:\n", u.id); err != nil {
			return err
		}
		for i := u.first(dir); i != none; i = u.step(dir, i) {
			e := u.nodes.at(i).entry
			if _, err := fmt.Fprintf(w, "\t[%s %s]\n", e.Hint, e.Password); err != nil {
				return err
			}
		}
	}
	return nil
}
