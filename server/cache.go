package server

import (
	"bytes"
	"sync"
)

// responseCache memoizes encoded responses for one snapshot sequence. Any
// request for a newer sequence clears it.
type responseCache struct {
	mu      sync.Mutex
	seq     uint64
	entries map[string][]byte
}

func newResponseCache() *responseCache {
	return &responseCache{entries: map[string][]byte{}}
}

func memoKey(args ...string) string {
	var b bytes.Buffer
	for i, a := range args {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(a)
	}
	return b.String()
}

func (c *responseCache) get(seq uint64, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return nil, false
	}
	b, ok := c.entries[key]
	return b, ok
}

func (c *responseCache) put(seq uint64, key string, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq < c.seq {
		return
	}
	if seq > c.seq {
		c.seq = seq
		c.entries = map[string][]byte{}
	}
	c.entries[key] = b
}

func (c *responseCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
