package chat

import "sync"

// UnseenIndex caches, per receiver, how many messages from each sender have
// not been seen yet. It is a view-local materialization: the durable truth
// is the seen flag on the message rows, and Reconcile overwrites a
// receiver's slice from store-derived counts whenever they are recomputed.
type UnseenIndex struct {
	mu     sync.Mutex
	counts map[string]map[string]int64 // receiver -> sender -> n
}

func NewUnseenIndex() *UnseenIndex {
	return &UnseenIndex{counts: make(map[string]map[string]int64)}
}

func (u *UnseenIndex) Incr(receiver, sender string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	m := u.counts[receiver]
	if m == nil {
		m = make(map[string]int64)
		u.counts[receiver] = m
	}
	m[sender]++
}

// Reset clears one sender's count for a receiver, dropping empty entries so
// the index cannot accumulate stale keys.
func (u *UnseenIndex) Reset(receiver, sender string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if m := u.counts[receiver]; m != nil {
		delete(m, sender)
		if len(m) == 0 {
			delete(u.counts, receiver)
		}
	}
}

func (u *UnseenIndex) Get(receiver, sender string) int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.counts[receiver][sender]
}

// All returns a copy of the receiver's per-sender counts.
func (u *UnseenIndex) All(receiver string) map[string]int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make(map[string]int64, len(u.counts[receiver]))
	for sender, n := range u.counts[receiver] {
		out[sender] = n
	}
	return out
}

// Reconcile replaces the receiver's counts with values recomputed from the
// store. Zero counts are not kept.
func (u *UnseenIndex) Reconcile(receiver string, fromStore map[string]int64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	m := make(map[string]int64, len(fromStore))
	for sender, n := range fromStore {
		if n > 0 {
			m[sender] = n
		}
	}
	if len(m) == 0 {
		delete(u.counts, receiver)
		return
	}
	u.counts[receiver] = m
}

// ViewState tracks, per user, the single conversation currently open on
// screen. One viewed peer per user; opening another conversation replaces
// it, dropping the connection clears it.
type ViewState struct {
	mu      sync.RWMutex
	viewing map[string]string // user -> peer
}

func NewViewState() *ViewState {
	return &ViewState{viewing: make(map[string]string)}
}

func (v *ViewState) Set(user, peer string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.viewing[user] = peer
}

func (v *ViewState) Clear(user string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.viewing, user)
}

func (v *ViewState) Peer(user string) (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	p, ok := v.viewing[user]
	return p, ok
}

func (v *ViewState) IsViewing(user, peer string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.viewing[user] == peer
}
