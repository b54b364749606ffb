package chat

import (
	"github.com/Ksaikiran28/NexChat/logger"
)

type fanoutJob struct {
	conns   []*Client
	payload []byte
}

// Fanout pushes one payload to many clients through a small worker pool so
// a broadcast never runs on the caller's goroutine. Per-client enqueue is
// non-blocking; a client that cannot keep up is closed and takes the
// registry's unregister path.
type Fanout struct {
	jobs chan fanoutJob
	stop chan struct{}
}

func NewFanout(workers, queue int) *Fanout {
	if workers <= 0 {
		workers = 2
	}
	if queue <= 0 {
		queue = 64
	}
	f := &Fanout{jobs: make(chan fanoutJob, queue), stop: make(chan struct{})}
	for i := 0; i < workers; i++ {
		go f.worker()
	}
	return f
}

func (f *Fanout) worker() {
	for {
		select {
		case <-f.stop:
			return
		case job := <-f.jobs:
			for _, c := range job.conns {
				if err := c.Enqueue(job.payload); err != nil {
					logger.Infof("[fanout] drop user=%s conn=%s: %v", c.UserID, c.ConnID, err)
					c.Close()
				}
			}
		}
	}
}

// Broadcast queues one payload for delivery to all given clients. Best
// effort: if the job queue itself is full the broadcast is dropped, the
// next full-snapshot broadcast heals anything missed.
func (f *Fanout) Broadcast(conns []*Client, payload []byte) {
	if len(conns) == 0 || len(payload) == 0 {
		return
	}
	select {
	case f.jobs <- fanoutJob{conns: conns, payload: payload}:
	default:
		logger.Warnf("[fanout] job queue full, dropping broadcast to %d conns", len(conns))
	}
}

func (f *Fanout) Close() {
	close(f.stop)
}
