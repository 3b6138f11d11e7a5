package vault

// userRecord holds one user's hints. index[0:hints] are exactly the live
// chains, in order of each hint's first insertion; slots past hints are
// empty. The index is allocated on the user's first successful insert.
type userRecord struct {
	id     int32
	index  []chain
	hints  int
	pairs  int
	nodes  arena
	cursor Ref
}

func (u *userRecord) ref(i int32) Ref {
	if i == none {
		return Ref{}
	}
	return Ref{user: u.id, slot: i + 1, gen: u.nodes.at(i).gen}
}

// resolve maps r back to an arena index if it still names a live node.
func (u *userRecord) resolve(r Ref) (int32, bool) {
	if r.IsZero() || r.user != u.id || int(r.slot) > len(u.nodes.nodes) {
		return none, false
	}
	i := r.slot - 1
	nd := u.nodes.at(i)
	if !nd.live || nd.gen != r.gen {
		return none, false
	}
	return i, true
}

// slotOf scans the live chains for hint and returns its slot or -1.
// Stored hints are already bounded, so equal strings compare equal within
// MaxHintSize bytes.
func (u *userRecord) slotOf(hint string) int {
	for k := 0; k < u.hints; k++ {
		if u.nodes.at(u.index[k].head).entry.Hint == hint {
			return k
		}
	}
	return -1
}

func (u *userRecord) insert(e Entry, capacity int) error {
	slot := u.slotOf(e.Hint)
	if slot < 0 && u.hints >= capacity {
		return ErrCapacityExceeded
	}
	i, err := u.nodes.alloc(e)
	if err != nil {
		return err
	}
	if u.index == nil {
		u.index = make([]chain, capacity)
		for k := range u.index {
			u.index[k] = emptyChain
		}
	}
	if slot < 0 {
		slot = u.hints
		u.index[slot] = emptyChain
		u.hints++
	}
	u.appendNode(&u.index[slot], i)
	u.pairs++
	return nil
}

// findPair returns the node holding e or none.
func (u *userRecord) findPair(e Entry) int32 {
	slot := u.slotOf(e.Hint)
	if slot < 0 {
		return none
	}
	for i := u.index[slot].head; i != none; i = u.nodes.at(i).next {
		if u.nodes.at(i).entry.Password == e.Password {
			return i
		}
	}
	return none
}

// remove deletes node i. A chain emptied by the removal is compacted out
// of the index. If the cursor named i it moves to i's forward neighbour,
// captured before the node is unlinked.
func (u *userRecord) remove(i int32) {
	slot := u.slotOf(u.nodes.at(i).entry.Hint)
	if slot < 0 {
		return
	}
	after := u.forward(i)
	cur, onCursor := u.resolve(u.cursor)
	onCursor = onCursor && cur == i

	c := &u.index[slot]
	u.unlinkNode(c, i)
	if c.head == none {
		u.compact(slot)
	}
	u.pairs--

	if onCursor {
		u.cursor = u.ref(after)
	}
}

// compact closes the hole left at slot by an emptied chain.
func (u *userRecord) compact(slot int) {
	copy(u.index[slot:u.hints-1], u.index[slot+1:u.hints])
	u.hints--
	u.index[u.hints] = emptyChain
}

func (u *userRecord) forward(i int32) int32 {
	nd := u.nodes.at(i)
	if nd.next != none {
		return nd.next
	}
	slot := u.slotOf(nd.entry.Hint)
	if slot < 0 || slot == u.hints-1 {
		return none
	}
	return u.index[slot+1].head
}

func (u *userRecord) backward(i int32) int32 {
	nd := u.nodes.at(i)
	if nd.prev != none {
		return nd.prev
	}
	slot := u.slotOf(nd.entry.Hint)
	if slot <= 0 {
		return none
	}
	return u.lastInChain(u.index[slot-1].head)
}

func (u *userRecord) step(dir Direction, i int32) int32 {
	if dir == Reverse {
		return u.backward(i)
	}
	return u.forward(i)
}

func (u *userRecord) first(dir Direction) int32 {
	if u.hints == 0 {
		return none
	}
	if dir == Reverse {
		return u.lastInChain(u.index[u.hints-1].head)
	}
	return u.index[0].head
}

// release counts the nodes of every chain, then drops the index and the
// arena. It returns the number of nodes visited.
func (u *userRecord) release() int {
	n := 0
	for k := 0; k < u.hints; k++ {
		n += u.chainLen(u.index[k].head)
	}
	*u = userRecord{id: u.id}
	return n
}
