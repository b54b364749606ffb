package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// drainPresence returns the users of the most recent presence frame seen on
// the client, or nil if none arrived yet.
func drainPresence(c *Client) []string {
	var users []string
	for {
		select {
		case data := <-c.send:
			if f, err := ParseFrame(data); err == nil && f.Type == FrameTypePresence {
				users = f.Users
			}
		default:
			return users
		}
	}
}

func TestPresenceBroadcastOnRegister(t *testing.T) {
	f := NewFanout(1, 16)
	defer f.Close()

	var b *Broadcaster
	reg := NewRegistry(func() { b.Notify() })
	b = NewBroadcaster(reg, f)
	defer b.Close()

	alice := NewClient("c1", "alice", nil, 16)
	bob := NewClient("c2", "bob", nil, 16)

	reg.Register(alice)
	reg.Register(bob)

	// both clients, including the one that just connected, converge on the
	// full snapshot
	for _, c := range []*Client{alice, bob} {
		var last []string
		require.Eventually(t, func() bool {
			if u := drainPresence(c); u != nil {
				last = u
			}
			return len(last) == 2
		}, time.Second, 5*time.Millisecond, "user %s never saw the full snapshot", c.UserID)
		require.Equal(t, []string{"alice", "bob"}, last)
	}
}

func TestPresenceBroadcastOnUnregister(t *testing.T) {
	f := NewFanout(1, 16)
	defer f.Close()

	var b *Broadcaster
	reg := NewRegistry(func() { b.Notify() })
	b = NewBroadcaster(reg, f)
	defer b.Close()

	alice := NewClient("c1", "alice", nil, 16)
	bob := NewClient("c2", "bob", nil, 16)
	reg.Register(alice)
	reg.Register(bob)

	reg.Unregister(bob)

	var last []string
	require.Eventually(t, func() bool {
		if u := drainPresence(alice); u != nil {
			last = u
		}
		return len(last) == 1
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, []string{"alice"}, last)
}

func TestPresenceFailedClientDoesNotBlockOthers(t *testing.T) {
	f := NewFanout(1, 16)
	defer f.Close()

	var b *Broadcaster
	reg := NewRegistry(func() { b.Notify() })
	b = NewBroadcaster(reg, f)
	defer b.Close()

	stuck := NewClient("c1", "alice", nil, 0) // zero-capacity queue, every send fails
	bob := NewClient("c2", "bob", nil, 16)
	reg.Register(stuck)
	reg.Register(bob)

	require.Eventually(t, func() bool {
		return len(drainPresence(bob)) > 0
	}, time.Second, 5*time.Millisecond, "healthy client must still receive presence")
}
