package vault_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/pwdvault/internal/vault"
)

func newVault(t *testing.T, opts ...vault.Option) *vault.Vault {
	t.Helper()
	v, err := vault.New(4, opts...)
	require.NoError(t, err)
	return v
}

// walk collects uid's entries by repeated Next calls starting at First.
func walk(t *testing.T, v *vault.Vault, dir vault.Direction, uid int) []vault.Entry {
	t.Helper()
	var out []vault.Entry
	r, err := v.First(dir, uid)
	require.NoError(t, err)
	for !r.IsZero() {
		e, err := v.Entry(uid, r)
		require.NoError(t, err)
		out = append(out, e)
		r, err = v.Next(dir, uid, r)
		require.NoError(t, err)
	}
	return out
}

func pair(h, p string) vault.Entry {
	return vault.Entry{Hint: h, Password: p}
}

func TestNew_RejectsBadCapacity(t *testing.T) {
	for _, n := range []int{0, -1, 1 << 20} {
		v, err := vault.New(n)
		assert.Nil(t, v)
		assert.ErrorIs(t, err, vault.ErrAllocation, "capacity %d", n)
	}
}

func TestInvalidUser(t *testing.T) {
	v := newVault(t)
	for _, uid := range []int{0, -3, 5} {
		_, err := v.HintCount(uid)
		assert.ErrorIs(t, err, vault.ErrInvalidUser)
		_, err = v.RemainingHints(uid)
		assert.ErrorIs(t, err, vault.ErrInvalidUser)
		_, err = v.EntryCount(uid)
		assert.ErrorIs(t, err, vault.ErrInvalidUser)
		assert.ErrorIs(t, v.Insert(uid, "h", "p"), vault.ErrInvalidUser)
		_, err = v.Delete(uid, "h", "p")
		assert.ErrorIs(t, err, vault.ErrInvalidUser)
		_, _, err = v.FindHint(uid, "h")
		assert.ErrorIs(t, err, vault.ErrInvalidUser)
		_, err = v.Next(vault.Forward, uid, vault.Ref{})
		assert.ErrorIs(t, err, vault.ErrInvalidUser)
	}
}

func TestInsert_CapacityBound(t *testing.T) {
	v := newVault(t)
	for i := 0; i < vault.DefaultHintCapacity; i++ {
		require.NoError(t, v.Insert(1, fmt.Sprintf("hint%d", i), "pw"))
	}
	err := v.Insert(1, "one-too-many", "pw")
	assert.ErrorIs(t, err, vault.ErrCapacityExceeded)

	n, err := v.HintCount(1)
	require.NoError(t, err)
	assert.Equal(t, vault.DefaultHintCapacity, n)
	rem, err := v.RemainingHints(1)
	require.NoError(t, err)
	assert.Zero(t, rem)

	// a known hint still accepts more passwords
	require.NoError(t, v.Insert(1, "hint0", "another"))
	pairs, _ := v.EntryCount(1)
	assert.Equal(t, vault.DefaultHintCapacity+1, pairs)
}

func TestInsert_DuplicateHintGrouping(t *testing.T) {
	v := newVault(t)
	require.NoError(t, v.Insert(2, "mail", "p1"))
	require.NoError(t, v.Insert(2, "mail", "p2"))

	hints, _ := v.HintCount(2)
	pairs, _ := v.EntryCount(2)
	assert.Equal(t, 1, hints)
	assert.Equal(t, 2, pairs)

	out := make([]string, vault.DefaultHintCapacity)
	n, err := v.Passwords(2, "mail", out)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, out[:n])
}

func TestPasswords_BoundedBuffer(t *testing.T) {
	v := newVault(t)
	for _, p := range []string{"a", "b", "c"} {
		require.NoError(t, v.Insert(1, "h", p))
	}
	out := make([]string, 2)
	n, err := v.Passwords(1, "h", out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a", "b"}, out)

	n, err = v.Passwords(1, "absent", out)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInsert_TruncatesLongValues(t *testing.T) {
	v := newVault(t)
	long := strings.Repeat("x", vault.MaxHintSize) + "tail"
	require.NoError(t, v.Insert(1, long, strings.Repeat("p", 30)))
	require.NoError(t, v.Insert(1, long+"different-tail", "second"))

	hints, _ := v.HintCount(1)
	assert.Equal(t, 1, hints, "hints equal within the bound share a chain")

	r, slot, err := v.FindHint(1, strings.Repeat("x", vault.MaxHintSize))
	require.NoError(t, err)
	assert.Zero(t, slot)
	e, err := v.Entry(1, r)
	require.NoError(t, err)
	assert.Len(t, e.Hint, vault.MaxHintSize)
	assert.Len(t, e.Password, vault.MaxPasswordSize)
}

func TestDelete_Compaction(t *testing.T) {
	v := newVault(t)
	require.NoError(t, v.Insert(1, "h1", "a"))
	require.NoError(t, v.Insert(1, "h2", "b"))
	require.NoError(t, v.Insert(1, "h3", "c"))

	ok, err := v.Delete(1, "h2", "b")
	require.NoError(t, err)
	assert.True(t, ok)

	hints, _ := v.HintCount(1)
	assert.Equal(t, 2, hints)
	assert.Equal(t, []vault.Entry{pair("h1", "a"), pair("h3", "c")}, walk(t, v, vault.Forward, 1))

	_, slot, err := v.FindHint(1, "h3")
	require.NoError(t, err)
	assert.Equal(t, 1, slot, "h3 shifted left into the freed slot")

	// the freed slot is reusable and the new hint goes last
	require.NoError(t, v.Insert(1, "h4", "d"))
	assert.Equal(t,
		[]vault.Entry{pair("h1", "a"), pair("h3", "c"), pair("h4", "d")},
		walk(t, v, vault.Forward, 1))
}

func TestDelete_AbsentIsNoop(t *testing.T) {
	v := newVault(t)
	require.NoError(t, v.Insert(1, "h", "p"))

	ok, err := v.Delete(1, "h", "other")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = v.Delete(1, "nope", "p")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = v.Delete(3, "h", "p")
	require.NoError(t, err)
	assert.False(t, ok, "empty user")

	pairs, _ := v.EntryCount(1)
	assert.Equal(t, 1, pairs)
}

func TestDelete_MiddleOfChain(t *testing.T) {
	v := newVault(t)
	for _, p := range []string{"p1", "p2", "p3"} {
		require.NoError(t, v.Insert(1, "h", p))
	}
	ok, err := v.Delete(1, "h", "p2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []vault.Entry{pair("h", "p1"), pair("h", "p3")}, walk(t, v, vault.Forward, 1))
	assert.Equal(t, []vault.Entry{pair("h", "p3"), pair("h", "p1")}, walk(t, v, vault.Reverse, 1))

	ok, err = v.Delete(1, "h", "p1")
	require.NoError(t, err)
	require.True(t, ok)
	r, _, err := v.FindHint(1, "h")
	require.NoError(t, err)
	e, _ := v.Entry(1, r)
	assert.Equal(t, "p3", e.Password, "head moved to the next node")
}

func TestTraversal_Symmetry(t *testing.T) {
	v := newVault(t)
	inserts := []vault.Entry{
		pair("b", "1"), pair("a", "2"), pair("b", "3"), pair("c", "4"),
		pair("a", "5"), pair("d", "6"), pair("c", "7"),
	}
	for _, e := range inserts {
		require.NoError(t, v.Insert(3, e.Hint, e.Password))
	}

	fwd := walk(t, v, vault.Forward, 3)
	rev := walk(t, v, vault.Reverse, 3)
	require.Len(t, fwd, len(inserts))
	require.Len(t, rev, len(inserts))
	for i := range fwd {
		assert.Equal(t, fwd[i], rev[len(rev)-1-i])
	}
	assert.Equal(t, []vault.Entry{
		pair("b", "1"), pair("b", "3"), pair("a", "2"), pair("a", "5"),
		pair("c", "4"), pair("c", "7"), pair("d", "6"),
	}, fwd)
}

func TestRoundTrip(t *testing.T) {
	v := newVault(t)
	require.NoError(t, v.Insert(4, "bank", "s3cret"))

	r, err := v.FindPair(4, "bank", "s3cret")
	require.NoError(t, err)
	e, err := v.Entry(4, r)
	require.NoError(t, err)
	assert.Equal(t, pair("bank", "s3cret"), e)

	ok, err := v.Delete(4, "bank", "s3cret")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = v.FindPair(4, "bank", "s3cret")
	assert.ErrorIs(t, err, vault.ErrNotFound)
	_, _, err = v.FindHint(4, "bank")
	assert.ErrorIs(t, err, vault.ErrNotFound)

	_, err = v.Entry(4, r)
	assert.ErrorIs(t, err, vault.ErrStaleRef)
	_, err = v.Next(vault.Forward, 4, r)
	assert.ErrorIs(t, err, vault.ErrStaleRef)
}

func TestStaleRef_NotAliasedByReuse(t *testing.T) {
	v := newVault(t)
	require.NoError(t, v.Insert(1, "h", "old"))
	r, err := v.FindPair(1, "h", "old")
	require.NoError(t, err)
	_, err = v.Delete(1, "h", "old")
	require.NoError(t, err)
	require.NoError(t, v.Insert(1, "h", "new"))

	_, err = v.Entry(1, r)
	assert.ErrorIs(t, err, vault.ErrStaleRef)
}

func TestRefFromOtherUser(t *testing.T) {
	v := newVault(t)
	require.NoError(t, v.Insert(1, "h", "p"))
	require.NoError(t, v.Insert(2, "h", "p"))
	r, err := v.FindPair(1, "h", "p")
	require.NoError(t, err)

	_, err = v.Entry(2, r)
	assert.ErrorIs(t, err, vault.ErrStaleRef)
}

func TestNext_EdgeCases(t *testing.T) {
	v := newVault(t)
	r, err := v.Next(vault.Forward, 1, vault.Ref{})
	require.NoError(t, err)
	assert.True(t, r.IsZero())

	_, err = v.Next(vault.Reverse, 1, vault.Ref{})
	assert.ErrorIs(t, err, vault.ErrStaleRef)

	require.NoError(t, v.Insert(1, "only", "one"))
	first, err := v.First(vault.Forward, 1)
	require.NoError(t, err)
	last, err := v.First(vault.Reverse, 1)
	require.NoError(t, err)
	assert.Equal(t, first, last)

	r, err = v.Next(vault.Forward, 1, first)
	require.NoError(t, err)
	assert.True(t, r.IsZero())
	r, err = v.Next(vault.Reverse, 1, first)
	require.NoError(t, err)
	assert.True(t, r.IsZero())
}

func TestEmptyUser(t *testing.T) {
	v := newVault(t)
	require.NoError(t, v.Insert(2, "h", "p"))

	hints, err := v.HintCount(1)
	require.NoError(t, err)
	pairs, err := v.EntryCount(1)
	require.NoError(t, err)
	assert.Zero(t, hints)
	assert.Zero(t, pairs)

	r, err := v.First(vault.Forward, 1)
	require.NoError(t, err)
	assert.True(t, r.IsZero())

	var buf bytes.Buffer
	require.NoError(t, v.Dump(&buf, vault.Forward))
	assert.Equal(t, "user 2:\n\t[h p]\n", buf.String())
}

func TestDump_Directions(t *testing.T) {
	v := newVault(t)
	require.NoError(t, v.Insert(1, "a", "1"))
	require.NoError(t, v.Insert(1, "a", "2"))
	require.NoError(t, v.Insert(1, "b", "3"))
	require.NoError(t, v.Insert(3, "c", "4"))

	var fwd, rev bytes.Buffer
	require.NoError(t, v.Dump(&fwd, vault.Forward))
	require.NoError(t, v.Dump(&rev, vault.Reverse))

	assert.Equal(t, "user 1:\n\t[a 1]\n\t[a 2]\n\t[b 3]\nuser 3:\n\t[c 4]\n", fwd.String())
	assert.Equal(t, "user 3:\n\t[c 4]\nuser 1:\n\t[b 3]\n\t[a 2]\n\t[a 1]\n", rev.String())
}

func TestTotals(t *testing.T) {
	v := newVault(t)
	require.NoError(t, v.Insert(1, "a", "1"))
	require.NoError(t, v.Insert(1, "a", "2"))
	require.NoError(t, v.Insert(2, "b", "3"))
	require.NoError(t, v.Insert(4, "c", "4"))
	require.NoError(t, v.Insert(4, "d", "5"))

	assert.Equal(t, 4, v.TotalHints())
	assert.Equal(t, 5, v.TotalEntries())
}

func TestEntryLimit_FailedInsertLeavesNoTrace(t *testing.T) {
	v := newVault(t, vault.WithEntryLimit(2))
	require.NoError(t, v.Insert(1, "a", "1"))
	require.NoError(t, v.Insert(1, "b", "2"))

	err := v.Insert(1, "c", "3")
	assert.ErrorIs(t, err, vault.ErrAllocation)
	err = v.Insert(1, "a", "4")
	assert.ErrorIs(t, err, vault.ErrAllocation)

	hints, _ := v.HintCount(1)
	pairs, _ := v.EntryCount(1)
	assert.Equal(t, 2, hints)
	assert.Equal(t, 2, pairs)
	assert.Equal(t, []vault.Entry{pair("a", "1"), pair("b", "2")}, walk(t, v, vault.Forward, 1))

	// freeing a node makes room again
	_, err = v.Delete(1, "a", "1")
	require.NoError(t, err)
	require.NoError(t, v.Insert(1, "c", "3"))
}

func TestWithHintCapacity(t *testing.T) {
	v := newVault(t, vault.WithHintCapacity(2))
	assert.Equal(t, 2, v.HintCapacity())
	require.NoError(t, v.Insert(1, "a", "1"))
	require.NoError(t, v.Insert(1, "b", "1"))
	assert.ErrorIs(t, v.Insert(1, "c", "1"), vault.ErrCapacityExceeded)
}

func TestClose_VisitsEveryEntry(t *testing.T) {
	v := newVault(t)
	require.NoError(t, v.Insert(1, "a", "1"))
	require.NoError(t, v.Insert(1, "a", "2"))
	require.NoError(t, v.Insert(3, "b", "3"))
	want := v.TotalEntries()

	assert.Equal(t, want, v.Close())
	assert.Zero(t, v.Capacity())
	assert.Zero(t, v.TotalEntries())
	_, err := v.HintCount(1)
	assert.ErrorIs(t, err, vault.ErrInvalidUser)
}

func TestClose_UnpopulatedVault(t *testing.T) {
	v := newVault(t)
	assert.Zero(t, v.Close())
}

func TestParseDirection(t *testing.T) {
	d, err := vault.ParseDirection("")
	require.NoError(t, err)
	assert.Equal(t, vault.Forward, d)
	d, err = vault.ParseDirection("REVERSE")
	require.NoError(t, err)
	assert.Equal(t, vault.Reverse, d)
	assert.Equal(t, "reverse", d.String())
	_, err = vault.ParseDirection("sideways")
	assert.Error(t, err)
}
