package chat

import (
	"sort"
	"sync"
)

// Registry is the single source of truth for "is this user reachable right
// now". One client per user: a later connection replaces the earlier one.
// Only the map mutations run under the lock; closing sockets, broadcasting
// presence and the redis mirror all happen after unlock.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]*Client

	// called after every effective mutation, never under the lock
	onChange func()
}

func NewRegistry(onChange func()) *Registry {
	return &Registry{
		byUser:   make(map[string]*Client),
		onChange: onChange,
	}
}

// Register stores the client as the user's live connection. Any prior
// connection for the same user is closed and replaced; the previous client
// receives no further deliveries once this returns.
func (r *Registry) Register(c *Client) {
	if c == nil || c.UserID == "" {
		return
	}
	r.mu.Lock()
	prev := r.byUser[c.UserID]
	r.byUser[c.UserID] = c
	r.mu.Unlock()

	if prev != nil && prev != c {
		prev.Close()
	}
	r.notify()
}

// Unregister removes the client only if it is still the registered one.
// A superseded connection closing late is a no-op, so a stale close can
// never evict a newer connection.
func (r *Registry) Unregister(c *Client) {
	if c == nil || c.UserID == "" {
		return
	}
	r.mu.Lock()
	cur, ok := r.byUser[c.UserID]
	removed := ok && cur == c
	if removed {
		delete(r.byUser, c.UserID)
	}
	r.mu.Unlock()

	if removed {
		r.notify()
	}
}

// Lookup returns the user's live connection, if any.
func (r *Registry) Lookup(user string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byUser[user]
	return c, ok
}

// Snapshot returns the sorted set of currently reachable users. Always
// recomputed from the map so presence can never drift from registration.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	users := make([]string, 0, len(r.byUser))
	for u := range r.byUser {
		users = append(users, u)
	}
	r.mu.RUnlock()
	sort.Strings(users)
	return users
}

// Clients returns all live connections.
func (r *Registry) Clients() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.byUser))
	for _, c := range r.byUser {
		out = append(out, c)
	}
	return out
}

func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}

func (r *Registry) notify() {
	if r.onChange != nil {
		r.onChange()
	}
}
