package chat

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryReplacesPriorConnection(t *testing.T) {
	var changes int32
	reg := NewRegistry(func() { atomic.AddInt32(&changes, 1) })

	c1 := NewClient("conn-1", "alice", nil, 8)
	c2 := NewClient("conn-2", "alice", nil, 8)

	reg.Register(c1)
	reg.Register(c2)

	got, ok := reg.Lookup("alice")
	require.True(t, ok)
	require.Same(t, c2, got, "lookup must return only the newest handle")

	// the replaced connection is closed and can take no more deliveries
	require.Error(t, c1.Enqueue([]byte("x")))
	require.NoError(t, c2.Enqueue([]byte("x")))

	require.Equal(t, 1, reg.Size())
	require.EqualValues(t, 2, atomic.LoadInt32(&changes))
}

func TestRegistryStaleUnregisterIsNoOp(t *testing.T) {
	var changes int32
	reg := NewRegistry(func() { atomic.AddInt32(&changes, 1) })

	c1 := NewClient("conn-1", "alice", nil, 8)
	c2 := NewClient("conn-2", "alice", nil, 8)
	reg.Register(c1)
	reg.Register(c2)
	before := atomic.LoadInt32(&changes)

	// the superseded connection closing late must not evict the newer one
	reg.Unregister(c1)

	got, ok := reg.Lookup("alice")
	require.True(t, ok)
	require.Same(t, c2, got)
	require.Equal(t, before, atomic.LoadInt32(&changes), "no-op must not trigger a broadcast")

	reg.Unregister(c2)
	_, ok = reg.Lookup("alice")
	require.False(t, ok)
	require.Equal(t, before+1, atomic.LoadInt32(&changes))
}

func TestRegistrySnapshot(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(NewClient("c1", "bob", nil, 1))
	reg.Register(NewClient("c2", "alice", nil, 1))
	reg.Register(NewClient("c3", "carol", nil, 1))

	require.Equal(t, []string{"alice", "bob", "carol"}, reg.Snapshot())

	reg.Unregister(mustLookup(t, reg, "bob"))
	require.Equal(t, []string{"alice", "carol"}, reg.Snapshot())
}

func mustLookup(t *testing.T, reg *Registry, user string) *Client {
	t.Helper()
	c, ok := reg.Lookup(user)
	require.True(t, ok)
	return c
}
