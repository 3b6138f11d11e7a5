package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/pwdvault/internal/device"
	"github.com/atinyakov/pwdvault/internal/models"
	"github.com/atinyakov/pwdvault/internal/vault"
)

type staticUIDs map[string]int

func (m staticUIDs) LookupUID(_ context.Context, login string) (int, error) {
	uid, ok := m[login]
	if !ok {
		return 0, errors.New("unknown login")
	}
	return uid, nil
}

func newService(t *testing.T) *VaultService {
	t.Helper()
	v, err := vault.New(3)
	require.NoError(t, err)
	dev := device.New(v, zap.NewNop())
	return NewVaultService(dev, staticUIDs{"alice": 1, "bob": 2, "ghost": 7})
}

func TestVaultService_StoreAndQuery(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.StorePair(ctx, "alice", "mail", "p1"))
	require.NoError(t, svc.StorePair(ctx, "alice", "mail", "p2"))
	require.NoError(t, svc.StorePair(ctx, "bob", "bank", "p3"))

	pw, err := svc.Passwords(ctx, "alice", "mail")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, pw)

	st, err := svc.Stats(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.Stats{
		UID: 1, Hints: 1, RemainingHints: vault.DefaultHintCapacity - 1, Entries: 2,
		VaultUsers: 3, VaultHints: 2, VaultEntries: 3,
	}, st)

	ok, err := svc.RemovePair(ctx, "alice", "mail", "p1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.RemovePair(ctx, "alice", "mail", "p1")
	require.NoError(t, err)
	assert.False(t, ok)

	var buf bytes.Buffer
	require.NoError(t, svc.Dump(ctx, &buf, vault.Forward))
	assert.Equal(t, "user 1:\n\t[mail p2]\nuser 2:\n\t[bank p3]\n", buf.String())
}

func TestVaultService_RejectsInvalidPairs(t *testing.T) {
	svc := newService(t)
	for _, p := range [][2]string{{"", "x"}, {"x", ""}, {"my bank", "x"}, {"x", "a\tb"}} {
		err := svc.StorePair(context.Background(), "alice", p[0], p[1])
		assert.ErrorIs(t, err, ErrInvalidPair, "%q", p)
	}
}

func TestVaultService_UnknownLoginAndUID(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	assert.Error(t, svc.StorePair(ctx, "mallory", "h", "p"))

	err := svc.StorePair(ctx, "ghost", "h", "p")
	assert.ErrorIs(t, err, vault.ErrInvalidUser, "uid beyond vault capacity")
}

func TestVaultService_SessionWalkSeekDelete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.StorePair(ctx, "alice", "h1", "p1"))
	require.NoError(t, svc.StorePair(ctx, "alice", "h1", "p2"))
	require.NoError(t, svc.StorePair(ctx, "alice", "h2", "p3"))

	id, err := svc.OpenSession(ctx, "alice")
	require.NoError(t, err)

	rec, ok, err := svc.ReadSession(ctx, "alice", id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.Record{Hint: "h1", Password: "p1"}, rec)

	found, err := svc.SeekSession(ctx, "alice", id, "h1", "p1")
	require.NoError(t, err)
	require.True(t, found)
	require.NoError(t, svc.DeleteAtSession(ctx, "alice", id))

	var got []models.Record
	for {
		rec, ok, err := svc.ReadSession(ctx, "alice", id)
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, rec)
	}
	assert.Equal(t, []models.Record{{Hint: "h1", Password: "p2"}, {Hint: "h2", Password: "p3"}}, got)

	err = svc.DeleteAtSession(ctx, "alice", id)
	assert.ErrorIs(t, err, device.ErrNoCursor)

	require.NoError(t, svc.RewindSession(ctx, "alice", id))
	rec, ok, err = svc.ReadSession(ctx, "alice", id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "p2", rec.Password)

	found, err = svc.SeekSession(ctx, "alice", id, "h9", "none")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, svc.CloseSession(ctx, "alice", id))
	_, _, err = svc.ReadSession(ctx, "alice", id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestVaultService_SessionOwnership(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	id, err := svc.OpenSession(ctx, "alice")
	require.NoError(t, err)

	_, _, err = svc.ReadSession(ctx, "bob", id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, svc.CloseSession(ctx, "bob", id), ErrSessionNotFound)
	assert.Equal(t, 1, svc.OpenSessions())
}

func TestVaultService_Reap(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	idle, err := svc.OpenSession(ctx, "alice")
	require.NoError(t, err)
	now = now.Add(10 * time.Minute)
	busy, err := svc.OpenSession(ctx, "bob")
	require.NoError(t, err)

	now = now.Add(6 * time.Minute)
	assert.Equal(t, 1, svc.Reap(15*time.Minute))

	_, _, err = svc.ReadSession(ctx, "alice", idle)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, _, err = svc.ReadSession(ctx, "bob", busy)
	assert.NoError(t, err)
}
