package message

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Ksaikiran28/NexChat/module/message/model"
	"github.com/Ksaikiran28/NexChat/service/chat"
	"github.com/Ksaikiran28/NexChat/tools/errs"

	"github.com/stretchr/testify/require"
)

// fakeGateway records everything the service asks of the live side.
type fakeGateway struct {
	mu         sync.Mutex
	dispatched []*model.Message
	viewing    map[string]string
	unseen     map[string]map[string]int64
	reconciled map[string]map[string]int64
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		viewing:    make(map[string]string),
		unseen:     make(map[string]map[string]int64),
		reconciled: make(map[string]map[string]int64),
	}
}

func (g *fakeGateway) Dispatch(m *model.Message) {
	g.mu.Lock()
	defer g.mu.Unlock()
	cp := *m
	g.dispatched = append(g.dispatched, &cp)
}

func (g *fakeGateway) IsViewing(user, peer string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.viewing[user] == peer
}

func (g *fakeGateway) SetViewing(user, peer string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.viewing[user] = peer
}

func (g *fakeGateway) IncrUnseen(receiver, sender string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unseen[receiver] == nil {
		g.unseen[receiver] = make(map[string]int64)
	}
	g.unseen[receiver][sender]++
}

func (g *fakeGateway) ResetUnseen(receiver, sender string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if m := g.unseen[receiver]; m != nil {
		delete(m, sender)
	}
}

func (g *fakeGateway) ReconcileUnseen(receiver string, fromStore map[string]int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reconciled[receiver] = fromStore
	m := make(map[string]int64, len(fromStore))
	for k, v := range fromStore {
		m[k] = v
	}
	g.unseen[receiver] = m
}

func (g *fakeGateway) unseenCount(receiver, sender string) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.unseen[receiver][sender]
}

func (g *fakeGateway) dispatchedIDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.dispatched))
	for _, m := range g.dispatched {
		out = append(out, m.ID)
	}
	return out
}

type fakePeers struct{ peers []*Peer }

func (f *fakePeers) ListPeers(context.Context, string) ([]*Peer, error) {
	out := make([]*Peer, 0, len(f.peers))
	for _, p := range f.peers {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

type recordingCleaner struct {
	destroyed chan string
}

func (c *recordingCleaner) Destroy(_ context.Context, ref string) error {
	c.destroyed <- ref
	return nil
}

func newTestService(gw *fakeGateway, peers *fakePeers) (*Service, *MemoryStore) {
	store := NewMemoryStore()
	if peers == nil {
		peers = &fakePeers{}
	}
	return NewService(store, peers, gw, nil), store
}

func TestSendToOfflineReceiverThenFetch(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	svc, store := newTestService(gw, nil)

	m, err := svc.Send(ctx, "alice", "bob", "hi", "")
	require.NoError(t, err)
	require.False(t, m.Seen)

	// durable row exists unseen, counter bumped
	n, err := store.CountUnseen(ctx, "bob", "alice")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	require.EqualValues(t, 1, gw.unseenCount("bob", "alice"))

	// bob opens the conversation
	msgs, err := svc.FetchConversation(ctx, "bob", "alice")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "hi", msgs[0].Text)
	require.True(t, msgs[0].Seen)

	// unseen count recomputed from the store matches the core's view
	n, err = store.CountUnseen(ctx, "bob", "alice")
	require.NoError(t, err)
	require.Zero(t, n)
	require.Zero(t, gw.unseenCount("bob", "alice"))
	require.True(t, gw.IsViewing("bob", "alice"))
}

func TestSendWhileReceiverIsViewing(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	svc, store := newTestService(gw, nil)

	gw.SetViewing("bob", "alice")

	m, err := svc.Send(ctx, "alice", "bob", "hi", "")
	require.NoError(t, err)
	require.True(t, m.Seen, "live delivery into the open conversation is seen immediately")

	stored, err := store.GetByID(ctx, m.ID)
	require.NoError(t, err)
	require.True(t, stored.Seen)
	require.Zero(t, gw.unseenCount("bob", "alice"))
	require.Equal(t, []string{m.ID}, gw.dispatchedIDs())
}

func TestSendWhileReceiverViewsSomeoneElse(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	svc, store := newTestService(gw, nil)

	gw.SetViewing("bob", "carol")

	m, err := svc.Send(ctx, "alice", "bob", "hi", "")
	require.NoError(t, err)
	require.False(t, m.Seen)

	stored, err := store.GetByID(ctx, m.ID)
	require.NoError(t, err)
	require.False(t, stored.Seen)
	require.EqualValues(t, 1, gw.unseenCount("bob", "alice"))
}

func TestFetchWithoutConnectionLeavesLaterSendsUnseen(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	gw := chat.NewServer(chat.ServerConf{})
	defer gw.Close()
	svc := NewService(store, &fakePeers{}, gw, nil)

	// bob reads the history over REST with no live connection; that must
	// not leave him recorded as a viewer
	_, err := svc.FetchConversation(ctx, "bob", "alice")
	require.NoError(t, err)

	m, err := svc.Send(ctx, "alice", "bob", "hi", "")
	require.NoError(t, err)
	require.False(t, m.Seen)

	stored, err := store.GetByID(ctx, m.ID)
	require.NoError(t, err)
	require.False(t, stored.Seen, "offline receiver cannot have seen the message")

	n, err := store.CountUnseen(ctx, "bob", "alice")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestConversationOrderPreserved(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	svc, _ := newTestService(gw, nil)

	m1, err := svc.Send(ctx, "alice", "bob", "one", "")
	require.NoError(t, err)
	m2, err := svc.Send(ctx, "alice", "bob", "two", "")
	require.NoError(t, err)
	m3, err := svc.Send(ctx, "alice", "bob", "three", "")
	require.NoError(t, err)

	msgs, err := svc.FetchConversation(ctx, "bob", "alice")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	require.Equal(t, []string{m1.ID, m2.ID, m3.ID},
		[]string{msgs[0].ID, msgs[1].ID, msgs[2].ID})
	for _, m := range msgs {
		require.True(t, m.Seen)
	}

	require.Equal(t, []string{m1.ID, m2.ID, m3.ID}, gw.dispatchedIDs())
}

func TestFetchDoesNotMarkOwnMessages(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	svc, store := newTestService(gw, nil)

	m, err := svc.Send(ctx, "alice", "bob", "hi", "")
	require.NoError(t, err)

	// alice re-opens her side; bob still has not seen anything
	_, err = svc.FetchConversation(ctx, "alice", "bob")
	require.NoError(t, err)

	stored, err := store.GetByID(ctx, m.ID)
	require.NoError(t, err)
	require.False(t, stored.Seen)
	require.EqualValues(t, 1, gw.unseenCount("bob", "alice"))
}

func TestMarkSeenIdempotent(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	svc, store := newTestService(gw, nil)

	m, err := svc.Send(ctx, "alice", "bob", "hi", "")
	require.NoError(t, err)

	require.NoError(t, svc.MarkSeen(ctx, m.ID))
	require.NoError(t, svc.MarkSeen(ctx, m.ID), "second mark-seen is a no-op, not an error")

	stored, err := store.GetByID(ctx, m.ID)
	require.NoError(t, err)
	require.True(t, stored.Seen)

	err = svc.MarkSeen(ctx, "missing")
	require.ErrorIs(t, err, errs.ErrRecordNotFound)
}

func TestDeleteAuthorization(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	svc, store := newTestService(gw, nil)

	m, err := svc.Send(ctx, "alice", "bob", "hi", "")
	require.NoError(t, err)

	// only the sender may delete
	err = svc.Delete(ctx, m.ID, "bob")
	require.ErrorIs(t, err, errs.ErrNoPermission)
	stored, err := store.GetByID(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, "hi", stored.Text, "forbidden delete must leave the message unchanged")

	err = svc.Delete(ctx, "missing", "alice")
	require.ErrorIs(t, err, errs.ErrRecordNotFound)

	require.NoError(t, svc.Delete(ctx, m.ID, "alice"))
	_, err = store.GetByID(ctx, m.ID)
	require.ErrorIs(t, err, errs.ErrRecordNotFound)
}

func TestDeleteTriggersMediaCleanup(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	store := NewMemoryStore()
	cleaner := &recordingCleaner{destroyed: make(chan string, 1)}
	svc := NewService(store, &fakePeers{}, gw, cleaner)

	m, err := svc.Send(ctx, "alice", "bob", "", "https://media.example.com/img/abc123.png")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, m.ID, "alice"))

	select {
	case ref := <-cleaner.destroyed:
		require.Equal(t, "https://media.example.com/img/abc123.png", ref)
	case <-time.After(time.Second):
		t.Fatal("media cleanup never ran")
	}
}

func TestListPeersReconcilesUnseenCounts(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	peers := &fakePeers{peers: []*Peer{
		{ID: "alice", FullName: "Alice"},
		{ID: "carol", FullName: "Carol"},
	}}
	svc, _ := newTestService(gw, peers)

	_, err := svc.Send(ctx, "alice", "bob", "one", "")
	require.NoError(t, err)
	_, err = svc.Send(ctx, "alice", "bob", "two", "")
	require.NoError(t, err)

	got, err := svc.ListPeers(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, got, 2)

	byID := map[string]*Peer{got[0].ID: got[0], got[1].ID: got[1]}
	require.EqualValues(t, 2, byID["alice"].UnseenCount)
	require.EqualValues(t, 0, byID["carol"].UnseenCount)

	// the in-memory index now matches the store-derived counts
	require.EqualValues(t, 2, gw.unseenCount("bob", "alice"))
}
