package chat

import (
	"sync"
	"time"

	"github.com/Ksaikiran28/NexChat/logger"
	"github.com/Ksaikiran28/NexChat/module/message/model"
	storage "github.com/Ksaikiran28/NexChat/service/storage"
)

// PresenceMirror publishes who is online to an external system so ops
// tooling can see it without asking the process. Lookups never consult it;
// delivery truth stays in the registry.
type PresenceMirror interface {
	Online(user string, ttl time.Duration) error
	Offline(user string) error
}

type redisMirror struct{}

func (redisMirror) Online(user string, ttl time.Duration) error {
	return storage.PresenceOnline(user, ttl)
}

func (redisMirror) Offline(user string) error {
	return storage.PresenceOffline(user)
}

type ServerConf struct {
	SendQueueSize  int            // per-connection outbound queue
	FanoutWorkers  int            // presence broadcast workers
	FanoutQueue    int            // pending broadcast jobs
	MirrorPresence bool           // keep im:presence:* keys in redis
	MirrorTTL      time.Duration  // TTL of mirrored presence keys
	Mirror         PresenceMirror // overrides the redis mirror; nil + MirrorPresence uses redis
}

func (c *ServerConf) norm() {
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = 256
	}
	if c.FanoutWorkers <= 0 {
		c.FanoutWorkers = 4
	}
	if c.FanoutQueue <= 0 {
		c.FanoutQueue = 64
	}
	if c.MirrorTTL <= 0 {
		c.MirrorTTL = 5 * time.Minute
	}
}

// Server owns the live-connection side of the system: the registry, the
// presence broadcaster, the delivery dispatcher and the per-user
// unseen/viewing state. Created once at process start, closed at shutdown.
type Server struct {
	conf ServerConf

	reg    *Registry
	fanout *Fanout
	pres   *Broadcaster
	disp   *Dispatcher

	unseen *UnseenIndex
	views  *ViewState

	mirror   PresenceMirror
	stop     chan struct{}
	stopOnce sync.Once
}

func NewServer(conf ServerConf) *Server {
	conf.norm()
	s := &Server{conf: conf, mirror: conf.Mirror, stop: make(chan struct{})}
	if s.mirror == nil && conf.MirrorPresence {
		s.mirror = redisMirror{}
	}
	s.fanout = NewFanout(conf.FanoutWorkers, conf.FanoutQueue)
	s.reg = NewRegistry(func() { s.pres.Notify() })
	s.pres = NewBroadcaster(s.reg, s.fanout)
	s.disp = NewDispatcher(s.reg)
	s.unseen = NewUnseenIndex()
	s.views = NewViewState()
	if s.mirror != nil {
		go s.renewMirror()
	}
	return s
}

func (s *Server) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	for _, c := range s.reg.Clients() {
		c.Close()
	}
	s.pres.Close()
	s.fanout.Close()
}

func (s *Server) Registry() *Registry { return s.reg }

// OnConnectionOpened wires a freshly upgraded connection into the registry
// and starts its writer. Called by the transport once the identity is known.
func (s *Server) OnConnectionOpened(c *Client) {
	c.onClose = s.onClientClosed
	s.reg.Register(c)
	go c.writePump()
	s.mirrorOnline(c.UserID)
	logger.Infof("[chat] user connected user=%s conn=%s online=%d", c.UserID, c.ConnID, s.reg.Size())
}

// onClientClosed runs exactly once per client, whatever killed it: clean
// close, read error, write error or replacement by a newer connection.
func (s *Server) onClientClosed(c *Client) {
	s.reg.Unregister(c)
	// no live connection means no conversation can be on screen
	if cur, ok := s.reg.Lookup(c.UserID); !ok || cur == nil {
		s.views.Clear(c.UserID)
		s.mirrorOffline(c.UserID)
	}
	logger.Infof("[chat] user disconnected user=%s conn=%s online=%d", c.UserID, c.ConnID, s.reg.Size())
}

// Dispatch pushes a durably created message to its receiver, if reachable.
func (s *Server) Dispatch(m *model.Message) {
	s.disp.Dispatch(m)
}

// IsViewing reports whether user currently has the conversation with peer
// open on screen.
func (s *Server) IsViewing(user, peer string) bool {
	return s.views.IsViewing(user, peer)
}

// SetViewing records that user opened the conversation with peer. Ignored
// when the user holds no live connection: nothing can be on screen without
// one, and a viewer recorded here would have later messages marked seen.
func (s *Server) SetViewing(user, peer string) {
	if _, ok := s.reg.Lookup(user); !ok {
		return
	}
	s.views.Set(user, peer)
}

func (s *Server) IncrUnseen(receiver, sender string) {
	s.unseen.Incr(receiver, sender)
}

func (s *Server) ResetUnseen(receiver, sender string) {
	s.unseen.Reset(receiver, sender)
}

func (s *Server) UnseenCounts(receiver string) map[string]int64 {
	return s.unseen.All(receiver)
}

func (s *Server) ReconcileUnseen(receiver string, fromStore map[string]int64) {
	s.unseen.Reconcile(receiver, fromStore)
}

// renewMirror re-writes the presence key of every registered user at half
// the TTL, so a session longer than one TTL never drops out of the mirror.
func (s *Server) renewMirror() {
	ticker := time.NewTicker(s.conf.MirrorTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			for _, c := range s.reg.Clients() {
				if err := s.mirror.Online(c.UserID, s.conf.MirrorTTL); err != nil {
					logger.Warnf("[chat] presence mirror renew user=%s: %v", c.UserID, err)
				}
			}
		}
	}
}

// Mirror writes on the register/unregister path are best effort and must
// never slow it down.
func (s *Server) mirrorOnline(user string) {
	if s.mirror == nil {
		return
	}
	go func() {
		if err := s.mirror.Online(user, s.conf.MirrorTTL); err != nil {
			logger.Warnf("[chat] presence mirror online user=%s: %v", user, err)
		}
	}()
}

func (s *Server) mirrorOffline(user string) {
	if s.mirror == nil {
		return
	}
	go func() {
		if err := s.mirror.Offline(user); err != nil {
			logger.Warnf("[chat] presence mirror offline user=%s: %v", user, err)
		}
	}()
}
