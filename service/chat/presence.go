package chat

import (
	"sync"

	"github.com/Ksaikiran28/NexChat/logger"
)

// Broadcaster recomputes the registry snapshot on every mutation and pushes
// the full online list to every live connection, including the one that just
// registered. Notifications coalesce: any number of mutations while a
// broadcast is running collapse into one follow-up broadcast, and callers
// never block on delivery.
type Broadcaster struct {
	reg    *Registry
	fanout *Fanout

	kick     chan struct{}
	stopOnce sync.Once
	stop     chan struct{}
}

func NewBroadcaster(reg *Registry, fanout *Fanout) *Broadcaster {
	b := &Broadcaster{
		reg:    reg,
		fanout: fanout,
		kick:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
	}
	go b.loop()
	return b
}

// Notify schedules a presence broadcast; never blocks.
func (b *Broadcaster) Notify() {
	select {
	case b.kick <- struct{}{}:
	default:
	}
}

func (b *Broadcaster) Close() {
	b.stopOnce.Do(func() { close(b.stop) })
}

func (b *Broadcaster) loop() {
	for {
		select {
		case <-b.stop:
			return
		case <-b.kick:
			b.broadcastOnce()
		}
	}
}

func (b *Broadcaster) broadcastOnce() {
	users := b.reg.Snapshot()
	payload, err := EncodePresenceFrame(users)
	if err != nil {
		logger.Errorf("[presence] encode failed: %v", err)
		return
	}
	b.fanout.Broadcast(b.reg.Clients(), payload)
}
