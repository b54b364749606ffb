package message

import (
	"context"
	"time"

	"github.com/Ksaikiran28/NexChat/logger"
	"github.com/Ksaikiran28/NexChat/module/media"
	"github.com/Ksaikiran28/NexChat/module/message/model"
	"github.com/Ksaikiran28/NexChat/tools/errs"
	"github.com/Ksaikiran28/NexChat/tools/ids"
)

// Gateway is the live-connection side the service talks to: delivery,
// viewing state and the unseen counters. Implemented by chat.Server; tests
// plug in fakes.
type Gateway interface {
	Dispatch(m *model.Message)
	IsViewing(user, peer string) bool
	SetViewing(user, peer string)
	IncrUnseen(receiver, sender string)
	ResetUnseen(receiver, sender string)
	ReconcileUnseen(receiver string, fromStore map[string]int64)
}

// PeerLister supplies the chat partners shown in the sidebar; backed by the
// user store.
type PeerLister interface {
	ListPeers(ctx context.Context, excludeUserID string) ([]*Peer, error)
}

// Peer is one sidebar entry.
type Peer struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName"`
	Bio         string `json:"bio,omitempty"`
	ProfilePic  string `json:"profilePic,omitempty"`
	UnseenCount int64  `json:"unseenCount"`
}

type Service struct {
	store   Store
	peers   PeerLister
	gw      Gateway
	cleaner media.Cleaner
}

func NewService(store Store, peers PeerLister, gw Gateway, cleaner media.Cleaner) *Service {
	if cleaner == nil {
		cleaner = media.Noop{}
	}
	return &Service{store: store, peers: peers, gw: gw, cleaner: cleaner}
}

// Send persists the message, settles the receiver's unseen state and then
// hands the message to the dispatcher. Success depends only on durable
// persistence; recipient reachability never fails a send.
func (s *Service) Send(ctx context.Context, senderID, receiverID, text, image string) (*model.Message, error) {
	if senderID == "" || receiverID == "" {
		return nil, errs.ErrArgs.WithDetail("sender and receiver required")
	}
	if senderID == receiverID {
		return nil, errs.ErrArgs.WithDetail("cannot message yourself")
	}
	if text == "" && image == "" {
		return nil, errs.ErrArgs.WithDetail("empty message")
	}

	m := &model.Message{
		ID:         ids.Generate(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Image:      image,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, m); err != nil {
		return nil, err
	}

	// Receiver looking at this conversation right now: the message counts
	// as seen immediately, by id so no unrelated rows are touched.
	// Otherwise it bumps the sender's unseen counter.
	if s.gw.IsViewing(receiverID, senderID) {
		if err := s.store.MarkSeenByID(ctx, m.ID); err != nil {
			logger.Warnf("[message] live mark-seen msg=%s: %v", m.ID, err)
		} else {
			m.Seen = true
		}
	} else {
		s.gw.IncrUnseen(receiverID, senderID)
	}

	s.gw.Dispatch(m)
	return m, nil
}

// FetchConversation returns the full history between the caller and peer,
// oldest first, bulk-marks the peer's messages to the caller as seen, zeroes
// the peer's unseen counter and records that the caller is now viewing this
// conversation. The viewing record only sticks while the caller holds a
// live connection.
func (s *Service) FetchConversation(ctx context.Context, userID, peerID string) ([]*model.Message, error) {
	msgs, err := s.store.PairMessages(ctx, userID, peerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.MarkSeenByPair(ctx, userID, peerID); err != nil {
		return nil, err
	}
	for _, m := range msgs {
		if m.SenderID == peerID {
			m.Seen = true
		}
	}
	s.gw.ResetUnseen(userID, peerID)
	s.gw.SetViewing(userID, peerID)
	return msgs, nil
}

// MarkSeen flips one message to seen. Idempotent: already-seen succeeds,
// only an unknown id reports not found.
func (s *Service) MarkSeen(ctx context.Context, id string) error {
	if err := s.store.MarkSeenByID(ctx, id); err != nil {
		return err
	}
	return nil
}

// Delete removes a message; only its sender may do so. Image cleanup runs
// after the durable delete, detached, best effort.
func (s *Service) Delete(ctx context.Context, id, requesterID string) error {
	m, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m.SenderID != requesterID {
		return errs.ErrNoPermission.WithDetail("not the sender of message " + id)
	}
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return err
	}

	if m.Image != "" {
		go func(ref string) {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := s.cleaner.Destroy(ctx, ref); err != nil {
				logger.Warnf("[message] media cleanup msg=%s: %v", id, err)
			}
		}(m.Image)
	}
	return nil
}

// ListPeers returns every other user with the caller's unseen count per
// peer, recomputed from the store. The in-memory index is reconciled to the
// recomputed values so it stays the derivable cache the store says it is.
func (s *Service) ListPeers(ctx context.Context, userID string) ([]*Peer, error) {
	peers, err := s.peers.ListPeers(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.UnseenBySender(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.gw.ReconcileUnseen(userID, counts)

	for _, p := range peers {
		p.UnseenCount = counts[p.ID]
	}
	return peers, nil
}
