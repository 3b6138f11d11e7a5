package vault

// The cursor is a weak per-user reference used by sequential consumers.
// It never keeps an entry alive: removing the entry it names moves it to
// that entry's forward neighbour in the same call.

// Rewind points uid's cursor at its first entry, or at none.
func (v *Vault) Rewind(uid int) (Ref, error) {
	u, err := v.user(uid)
	if err != nil {
		return Ref{}, err
	}
	u.cursor = u.ref(u.first(Forward))
	return u.cursor, nil
}

// Cursor returns uid's cursor.
func (v *Vault) Cursor(uid int) (Ref, error) {
	u, err := v.user(uid)
	if err != nil {
		return Ref{}, err
	}
	return u.cursor, nil
}

// ReadCursor yields the entry under uid's cursor and advances the cursor
// forward. It reports false once the cursor has run off the end.
func (v *Vault) ReadCursor(uid int) (Entry, bool, error) {
	u, err := v.user(uid)
	if err != nil {
		return Entry{}, false, err
	}
	i, ok := u.resolve(u.cursor)
	if !ok {
		u.cursor = Ref{}
		return Entry{}, false, nil
	}
	e := u.nodes.at(i).entry
	u.cursor = u.ref(u.forward(i))
	return e, true, nil
}

// DeleteAtCursor removes the entry under uid's cursor and leaves the
// cursor on its forward neighbour. It reports false if the cursor is at
// none.
func (v *Vault) DeleteAtCursor(uid int) (bool, error) {
	u, err := v.user(uid)
	if err != nil {
		return false, err
	}
	i, ok := u.resolve(u.cursor)
	if !ok {
		u.cursor = Ref{}
		return false, nil
	}
	u.remove(i)
	return true, nil
}

// SetCursor moves uid's cursor to the exact hint-password pair. The
// cursor is left untouched when the pair is absent.
func (v *Vault) SetCursor(uid int, hint, password string) error {
	r, err := v.FindPair(uid, hint, password)
	if err != nil {
		return err
	}
	v.users[uid-1].cursor = r
	return nil
}
