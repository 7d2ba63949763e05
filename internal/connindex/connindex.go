// Package connindex implements the sharded, reader-writer live-connection
// map described in spec §5 ("Concurrent live-connection map... sharded
// reader-writer map... N buckets... Snapshot operations lock all buckets
// for reading"). Grounded on kenba/via-httplib's threadsafe_hash_map.hpp
// (original_source/_INDEX.md) for the shape, and on the pack's
// ShardedCache (capacitor/pkg/cache/memory/sharded_cache.go) for the
// bucket-count-is-power-of-2 + per-bucket RWMutex idiom — swapping its
// hash/maphash seed for xxhash.Sum64String since keys here are always
// string connection ids, not generic comparable keys, and §9 explicitly
// says exactness to the source's 19 fixed buckets is not a contract.
package connindex

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

const defaultShardCount = 32

type shard struct {
	mu    sync.RWMutex
	items map[string]any
}

// Index is a sharded map from connection id to an arbitrary connection
// value (typically *viahttp.Connection); kept in internal/connindex rather
// than viahttp itself so the core parser/connection package stays free of
// any notion of a global registry.
type Index struct {
	shards    []*shard
	shardMask uint64
}

// New returns an Index with shardCount shards, rounded up to the next
// power of two (0 selects the default of 32).
func New(shardCount int) *Index {
	if shardCount <= 0 {
		shardCount = defaultShardCount
	}
	if shardCount&(shardCount-1) != 0 {
		n := 1
		for n < shardCount {
			n <<= 1
		}
		shardCount = n
	}

	idx := &Index{
		shards:    make([]*shard, shardCount),
		shardMask: uint64(shardCount - 1),
	}
	for i := range idx.shards {
		idx.shards[i] = &shard{items: make(map[string]any)}
	}
	return idx
}

func (idx *Index) shardFor(id string) *shard {
	h := xxhash.Sum64String(id)
	return idx.shards[h&idx.shardMask]
}

// Store inserts or replaces the value for id.
func (idx *Index) Store(id string, value any) {
	s := idx.shardFor(id)
	s.mu.Lock()
	s.items[id] = value
	s.mu.Unlock()
}

// Load returns the value stored for id, if any.
func (idx *Index) Load(id string) (value any, ok bool) {
	s := idx.shardFor(id)
	s.mu.RLock()
	value, ok = s.items[id]
	s.mu.RUnlock()
	return value, ok
}

// Delete removes id from the index.
func (idx *Index) Delete(id string) {
	s := idx.shardFor(id)
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

// Len returns the total number of entries across all shards. It locks
// every shard for reading in turn (a genuine "snapshot" would lock them
// all at once; since shard iteration order is fixed, locking one at a time
// cannot deadlock, and the approximate result is sufficient for the
// monitoring use spec §5 calls out).
func (idx *Index) Len() int {
	total := 0
	for _, s := range idx.shards {
		s.mu.RLock()
		total += len(s.items)
		s.mu.RUnlock()
	}
	return total
}

// Snapshot returns every stored value across all shards. Every shard is
// locked for reading before any of them is copied, and all are released
// together afterwards.
func (idx *Index) Snapshot() []any {
	for _, s := range idx.shards {
		s.mu.RLock()
	}
	total := 0
	for _, s := range idx.shards {
		total += len(s.items)
	}
	out := make([]any, 0, total)
	for _, s := range idx.shards {
		for _, v := range s.items {
			out = append(out, v)
		}
	}
	for _, s := range idx.shards {
		s.mu.RUnlock()
	}
	return out
}

// Range calls fn for every entry across all shards, stopping early if fn
// returns false. Each shard is locked for reading only while its own
// entries are visited.
func (idx *Index) Range(fn func(id string, value any) bool) {
	for _, s := range idx.shards {
		s.mu.RLock()
		items := make(map[string]any, len(s.items))
		for k, v := range s.items {
			items[k] = v
		}
		s.mu.RUnlock()

		for k, v := range items {
			if !fn(k, v) {
				return
			}
		}
	}
}
