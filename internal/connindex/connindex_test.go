package connindex

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexStoreLoadDelete(t *testing.T) {
	idx := New(0)
	idx.Store("conn-1", 42)

	v, ok := idx.Load("conn-1")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	idx.Delete("conn-1")
	_, ok = idx.Load("conn-1")
	assert.False(t, ok)
}

func TestIndexRoundsShardCountToPowerOfTwo(t *testing.T) {
	idx := New(5)
	assert.Len(t, idx.shards, 8)
}

func TestIndexLenAndSnapshot(t *testing.T) {
	idx := New(4)
	for i := 0; i < 10; i++ {
		idx.Store(fmt.Sprintf("c-%d", i), i)
	}
	assert.Equal(t, 10, idx.Len())
	assert.Len(t, idx.Snapshot(), 10)
}

func TestIndexConcurrentAccess(t *testing.T) {
	idx := New(16)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c-%d", i)
			idx.Store(id, i)
			_, _ = idx.Load(id)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 100, idx.Len())
}

func TestIndexRangeVisitsAllEntries(t *testing.T) {
	idx := New(4)
	for i := 0; i < 5; i++ {
		idx.Store(fmt.Sprintf("c-%d", i), i)
	}
	seen := 0
	idx.Range(func(id string, value any) bool {
		seen++
		return true
	})
	assert.Equal(t, 5, seen)
}
