package chat

import (
	"testing"
	"time"

	"github.com/Ksaikiran28/NexChat/module/message/model"

	"github.com/stretchr/testify/require"
)

func newTestMessage(id, sender, receiver, text string) *model.Message {
	return &model.Message{
		ID:         id,
		SenderID:   sender,
		ReceiverID: receiver,
		Text:       text,
		CreatedAt:  time.Now().UTC(),
	}
}

func recvFrame(t *testing.T, c *Client) *Frame {
	t.Helper()
	select {
	case data := <-c.send:
		f, err := ParseFrame(data)
		require.NoError(t, err)
		return f
	case <-time.After(time.Second):
		t.Fatal("no frame received")
		return nil
	}
}

func TestDispatchToOnlineReceiver(t *testing.T) {
	reg := NewRegistry(nil)
	bob := NewClient("c1", "bob", nil, 8)
	reg.Register(bob)

	d := NewDispatcher(reg)
	d.Dispatch(newTestMessage("m1", "alice", "bob", "hi"))

	f := recvFrame(t, bob)
	require.Equal(t, FrameTypeMessage, f.Type)
	require.Equal(t, "m1", f.Message.ID)
	require.Equal(t, "hi", f.Message.Text)
}

func TestDispatchToOfflineReceiverIsNoError(t *testing.T) {
	reg := NewRegistry(nil)
	d := NewDispatcher(reg)
	// nothing registered; must neither panic nor block
	d.Dispatch(newTestMessage("m1", "alice", "bob", "hi"))
}

func TestDispatchPreservesPerReceiverOrder(t *testing.T) {
	reg := NewRegistry(nil)
	bob := NewClient("c1", "bob", nil, 16)
	reg.Register(bob)

	d := NewDispatcher(reg)
	d.Dispatch(newTestMessage("m1", "alice", "bob", "one"))
	d.Dispatch(newTestMessage("m2", "alice", "bob", "two"))
	d.Dispatch(newTestMessage("m3", "alice", "bob", "three"))

	for _, want := range []string{"m1", "m2", "m3"} {
		f := recvFrame(t, bob)
		require.Equal(t, want, f.Message.ID)
	}
}

func TestDispatchFullQueueClosesClient(t *testing.T) {
	reg := NewRegistry(nil)
	bob := NewClient("c1", "bob", nil, 1)
	bob.onClose = func(c *Client) { reg.Unregister(c) }
	reg.Register(bob)

	d := NewDispatcher(reg)
	d.Dispatch(newTestMessage("m1", "alice", "bob", "one"))
	// queue of one is now full; the stuck client is torn down, the message
	// stays recoverable from the store
	d.Dispatch(newTestMessage("m2", "alice", "bob", "two"))

	_, ok := reg.Lookup("bob")
	require.False(t, ok)
}
