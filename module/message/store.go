package message

import (
	"context"
	"sort"
	"sync"

	"github.com/Ksaikiran28/NexChat/module/message/model"
	"github.com/Ksaikiran28/NexChat/tools/errs"
)

// Store is the durable side of the message subsystem. Implementations must
// default Seen to false on insert and order pair queries by creation time,
// insertion order breaking ties.
type Store interface {
	Insert(ctx context.Context, m *model.Message) error
	// PairMessages returns every message between the two users, both
	// directions, oldest first.
	PairMessages(ctx context.Context, userA, userB string) ([]*model.Message, error)
	GetByID(ctx context.Context, id string) (*model.Message, error)
	// MarkSeenByID flips seen to true; already-seen is a no-op, unknown id
	// reports errs.ErrRecordNotFound.
	MarkSeenByID(ctx context.Context, id string) error
	// MarkSeenByPair marks every unseen message from sender to receiver as
	// seen and returns how many rows changed.
	MarkSeenByPair(ctx context.Context, receiver, sender string) (int64, error)
	CountUnseen(ctx context.Context, receiver, sender string) (int64, error)
	// UnseenBySender returns receiver's unseen counts grouped by sender.
	UnseenBySender(ctx context.Context, receiver string) (map[string]int64, error)
	DeleteByID(ctx context.Context, id string) error
}

// MemoryStore is an in-process Store used by tests and dev runs without
// Mongo. Messages keep insertion order, so snowflake CreatedAt ties behave
// like the mongo sort with _id tiebreak.
type MemoryStore struct {
	mu   sync.Mutex
	rows []*model.Message
	byID map[string]*model.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*model.Message)}
}

func (s *MemoryStore) Insert(_ context.Context, m *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[m.ID]; ok {
		return errs.ErrDuplicate.WithDetail("message id " + m.ID)
	}
	cp := *m
	s.rows = append(s.rows, &cp)
	s.byID[m.ID] = &cp
	return nil
}

func (s *MemoryStore) PairMessages(_ context.Context, userA, userB string) ([]*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Message
	for _, m := range s.rows {
		if (m.SenderID == userA && m.ReceiverID == userB) ||
			(m.SenderID == userB && m.ReceiverID == userA) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	if !ok {
		return nil, errs.ErrRecordNotFound.WithDetail("message " + id)
	}
	cp := *m
	return &cp, nil
}

func (s *MemoryStore) MarkSeenByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	if !ok {
		return errs.ErrRecordNotFound.WithDetail("message " + id)
	}
	m.Seen = true
	return nil
}

func (s *MemoryStore) MarkSeenByPair(_ context.Context, receiver, sender string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, m := range s.rows {
		if m.SenderID == sender && m.ReceiverID == receiver && !m.Seen {
			m.Seen = true
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CountUnseen(_ context.Context, receiver, sender string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, m := range s.rows {
		if m.SenderID == sender && m.ReceiverID == receiver && !m.Seen {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) UnseenBySender(_ context.Context, receiver string) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64)
	for _, m := range s.rows {
		if m.ReceiverID == receiver && !m.Seen {
			out[m.SenderID]++
		}
	}
	return out, nil
}

func (s *MemoryStore) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return errs.ErrRecordNotFound.WithDetail("message " + id)
	}
	delete(s.byID, id)
	for i, m := range s.rows {
		if m.ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			break
		}
	}
	return nil
}
