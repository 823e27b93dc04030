package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryStore_PointOperations(t *testing.T) {
	s := newEntryStore[int](4)

	_, ok := s.tryGet("a")
	assert.False(t, ok)
	assert.False(t, s.contains("a"))

	assert.True(t, s.set("a", 1), "first set reports a new key")
	assert.False(t, s.set("a", 2), "overwrite reports an existing key")
	value, ok := s.tryGet("a")
	require.True(t, ok)
	assert.Equal(t, 2, value)
	assert.Equal(t, 1, s.count())

	removed, ok := s.remove("a")
	require.True(t, ok)
	assert.Equal(t, 2, removed)
	_, ok = s.remove("a")
	assert.False(t, ok)
	assert.Equal(t, 0, s.count())
}

func TestEntryStore_ZeroValuesAreStored(t *testing.T) {
	s := newEntryStore[*int](1)

	s.set("nil", nil)
	value, ok := s.tryGet("nil")
	assert.True(t, ok)
	assert.Nil(t, value)
}

func TestEntryStore_Clear(t *testing.T) {
	s := newEntryStore[string](2)
	s.set("a", "x")
	s.set("b", "y")

	s.clear()
	assert.Equal(t, 0, s.count())
	assert.False(t, s.contains("a"))
}

func TestEntryStore_ConcurrentPointOperations(t *testing.T) {
	s := newEntryStore[int](100)

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("w%d-%d", worker, i%10)
				s.set(key, i)
				s.tryGet(key)
				s.contains(key)
				if i%3 == 0 {
					s.remove(key)
				}
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, s.count(), 80)
}
