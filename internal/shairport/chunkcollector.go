package shairport

import "sync"

// ChunkCollector reassembles chunked payloads keyed by packet tag
// (here, the chunk's data_type string -- see message.go's header-size
// reconciliation note). Completes once every chunk index in
// [0, totalChunks) has arrived; on completion the bytes are
// concatenated in index order and the entry is removed (spec §3, §8
// property 8).
type ChunkCollector struct {
	mu      sync.Mutex
	pending map[string]*pendingEntry
}

type pendingEntry struct {
	totalChunks uint32
	received    map[uint32][]byte
}

// NewChunkCollector builds an empty collector.
func NewChunkCollector() *ChunkCollector {
	return &ChunkCollector{pending: make(map[string]*pendingEntry)}
}

// Add feeds one chunk. If this completes the set, the concatenated
// payload is returned with ok=true and the entry is removed.
func (c *ChunkCollector) Add(tag string, chunkID, totalChunks uint32, data []byte) (completed []byte, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.pending[tag]
	if !exists {
		entry = &pendingEntry{totalChunks: totalChunks, received: make(map[uint32][]byte)}
		c.pending[tag] = entry
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	entry.received[chunkID] = buf

	if uint32(len(entry.received)) != entry.totalChunks {
		return nil, false
	}

	out := make([]byte, 0)
	for i := uint32(0); i < entry.totalChunks; i++ {
		out = append(out, entry.received[i]...)
	}
	delete(c.pending, tag)
	return out, true
}

// PendingCount reports how many packet tags currently have incomplete
// chunk sets -- exposed for the unbounded-memory concern spec §9 flags
// as an open question.
func (c *ChunkCollector) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
