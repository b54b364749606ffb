package chat

import (
	"github.com/Ksaikiran28/NexChat/logger"
	"github.com/Ksaikiran28/NexChat/module/message/model"
)

// Dispatcher delivers a freshly persisted message to the receiver's live
// connection. The message is already durable when Dispatch runs, so every
// failure here is non-fatal: an offline receiver picks the message up on
// the next conversation fetch, and a push failure is logged and dropped,
// never retried and never surfaced to the sender.
type Dispatcher struct {
	reg *Registry
}

func NewDispatcher(reg *Registry) *Dispatcher {
	return &Dispatcher{reg: reg}
}

// Dispatch is called exactly once per created message. Per-receiver order
// holds because each caller enqueues synchronously and the client's send
// queue is drained FIFO by a single writer.
func (d *Dispatcher) Dispatch(m *model.Message) {
	c, ok := d.reg.Lookup(m.ReceiverID)
	if !ok {
		logger.Debugf("[dispatch] receiver=%s offline, msg=%s stays store-only", m.ReceiverID, m.ID)
		return
	}

	payload, err := EncodeMessageFrame(m)
	if err != nil {
		logger.Errorf("[dispatch] encode msg=%s failed: %v", m.ID, err)
		return
	}

	if err := c.Enqueue(payload); err != nil {
		// closed between lookup and send, or a stuck client
		logger.Infof("[dispatch] push to user=%s conn=%s failed: %v", c.UserID, c.ConnID, err)
		c.Close()
	}
}
