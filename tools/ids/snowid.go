package ids

import (
	"strconv"
	"sync"
	"time"
)

// Message ids must sort by creation time with insertion-order tiebreak
// inside one millisecond. A snowflake layout gives that: 41 bits of millis
// since a fixed epoch, 10 bits node, 12 bits sequence, rendered as a
// decimal string of constant width for decades.
const (
	nodeBits = 10
	seqBits  = 12
	maxNode  = (1 << nodeBits) - 1
	seqMask  = (1 << seqBits) - 1
)

var epochMS = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

type source struct {
	mu     sync.Mutex
	nodeID int64
	seq    int64
	lastMS int64
}

var def = &source{nodeID: 1}

// Generate returns the next id.
func Generate() string {
	return strconv.FormatInt(def.next(), 10)
}

// SetNodeID sets the node part (0..1023); call once at startup. Out-of-range
// values fall back to node 1.
func SetNodeID(nodeID int64) {
	if nodeID < 0 || nodeID > maxNode {
		nodeID = 1
	}
	def.mu.Lock()
	def.nodeID = nodeID
	def.mu.Unlock()
}

func (s *source) next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()
	for now < s.lastMS {
		// clock went backwards, wait it out
		time.Sleep(time.Duration(s.lastMS-now) * time.Millisecond)
		now = time.Now().UnixMilli()
	}
	if now == s.lastMS {
		s.seq = (s.seq + 1) & seqMask
		if s.seq == 0 {
			// sequence exhausted, spin to the next millisecond
			for now <= s.lastMS {
				now = time.Now().UnixMilli()
			}
		}
	} else {
		s.seq = 0
	}
	s.lastMS = now

	return ((now - epochMS) << (nodeBits + seqBits)) | (s.nodeID << seqBits) | s.seq
}
