// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package multiline // import "github.com/logmerge/multiline/operator/transformer/multiline"

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

const shardCount = 64

type shard struct {
	mu      sync.Mutex
	buffers map[StreamKey]*buffer
}

// bufferTable maps stream keys to their open buffers. Keys are spread over
// shards so that unrelated streams rarely share a lock. A shard's mutex
// guards both its map and every buffer stored in it.
type bufferTable struct {
	shards [shardCount]shard
	open   atomic.Int64
	seq    atomic.Uint64
}

func newBufferTable() *bufferTable {
	t := &bufferTable{}
	for i := range t.shards {
		t.shards[i].buffers = make(map[StreamKey]*buffer)
	}
	return t
}

func (t *bufferTable) shardFor(key StreamKey) *shard {
	return &t.shards[xxhash.Sum64String(string(key))%shardCount]
}

// newBuffer allocates an empty buffer for key, ordered after every buffer
// allocated before it.
func (t *bufferTable) newBuffer(key StreamKey) *buffer {
	return &buffer{key: key, seq: t.seq.Add(1)}
}

// update runs fn with exclusive access to the buffer stored for key (nil if
// none) and stores the buffer fn returns. Returning nil removes the key.
func (t *bufferTable) update(key StreamKey, fn func(cur *buffer) *buffer) {
	s := t.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, existed := s.buffers[key]
	next := fn(cur)
	switch {
	case next == nil && existed:
		delete(s.buffers, key)
		t.open.Add(-1)
	case next != nil && !existed:
		s.buffers[key] = next
		t.open.Add(1)
	case next != nil:
		s.buffers[key] = next
	}
}

// sweep removes and returns every buffer for which remove reports true. The
// returned buffers are owned by the caller.
func (t *bufferTable) sweep(remove func(b *buffer) bool) []*buffer {
	var removed []*buffer
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		for key, b := range s.buffers {
			if remove(b) {
				delete(s.buffers, key)
				t.open.Add(-1)
				removed = append(removed, b)
			}
		}
		s.mu.Unlock()
	}
	sortBySeq(removed)
	return removed
}

// drain removes and returns every buffer.
func (t *bufferTable) drain() []*buffer {
	return t.sweep(func(*buffer) bool { return true })
}

func (t *bufferTable) has(key StreamKey) bool {
	s := t.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.buffers[key]
	return ok
}

func (t *bufferTable) len() int {
	return int(t.open.Load())
}

func sortBySeq(buffers []*buffer) {
	sort.Slice(buffers, func(i, j int) bool { return buffers[i].seq < buffers[j].seq })
}
