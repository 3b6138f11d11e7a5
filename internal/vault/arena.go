package vault

const none int32 = -1

type node struct {
	entry Entry
	prev  int32
	next  int32
	gen   uint32
	live  bool
}

// arena is a per-user pool of chain nodes. Links are arena indices, so
// compacting the chain index never moves a node and freed slots are
// reused through the free list.
type arena struct {
	nodes []node
	free  []int32
	live  int
	limit int
}

func (a *arena) alloc(e Entry) (int32, error) {
	if a.limit > 0 && a.live >= a.limit {
		return none, ErrAllocation
	}
	var i int32
	if n := len(a.free); n > 0 {
		i = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.nodes = append(a.nodes, node{})
		i = int32(len(a.nodes) - 1)
	}
	nd := &a.nodes[i]
	nd.entry = e
	nd.prev, nd.next = none, none
	nd.live = true
	a.live++
	return i, nil
}

func (a *arena) release(i int32) {
	nd := &a.nodes[i]
	nd.entry = Entry{}
	nd.prev, nd.next = none, none
	nd.live = false
	nd.gen++
	a.free = append(a.free, i)
	a.live--
}

func (a *arena) at(i int32) *node {
	return &a.nodes[i]
}
