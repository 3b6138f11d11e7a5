package vault

// chain is one hint's doubly linked list of entries, oldest first.
type chain struct {
	head int32
	tail int32
}

var emptyChain = chain{head: none, tail: none}

// appendNode links node i as the new tail of c.
func (u *userRecord) appendNode(c *chain, i int32) {
	nd := u.nodes.at(i)
	nd.prev, nd.next = c.tail, none
	if c.tail == none {
		c.head = i
	} else {
		u.nodes.at(c.tail).next = i
	}
	c.tail = i
}

// unlinkNode removes node i from c and returns it to the arena.
func (u *userRecord) unlinkNode(c *chain, i int32) {
	nd := u.nodes.at(i)
	if nd.prev != none {
		u.nodes.at(nd.prev).next = nd.next
	} else {
		c.head = nd.next
	}
	if nd.next != none {
		u.nodes.at(nd.next).prev = nd.prev
	} else {
		c.tail = nd.prev
	}
	u.nodes.release(i)
}

// lastInChain walks next links from i to the terminal node.
func (u *userRecord) lastInChain(i int32) int32 {
	if i == none {
		return none
	}
	for u.nodes.at(i).next != none {
		i = u.nodes.at(i).next
	}
	return i
}

// chainLen counts the nodes reachable from head.
func (u *userRecord) chainLen(head int32) int {
	n := 0
	for i := head; i != none; i = u.nodes.at(i).next {
		n++
	}
	return n
}
