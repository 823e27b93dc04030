package cache

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
)

func benchmarkCache(b *testing.B, maxSize int) *Cache[int] {
	b.Helper()
	c, err := New[int](Config{MaxSize: maxSize}, WithLogger[int](slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		b.Fatal(err)
	}
	return c
}

func benchmarkKeys(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("key%d", i)
	}
	return keys
}

func BenchmarkCache_Set(b *testing.B) {
	c := benchmarkCache(b, 1000)
	keys := benchmarkKeys(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(keys[i%len(keys)], i)
	}
}

func BenchmarkCache_SetWithEviction(b *testing.B) {
	c := benchmarkCache(b, 100)
	keys := benchmarkKeys(1000)
	c.SubscribeDelete(func(string, DeletionReason, int) {})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(keys[i%len(keys)], i)
	}
}

func BenchmarkCache_TryGet(b *testing.B) {
	c := benchmarkCache(b, 1000)
	keys := benchmarkKeys(1000)
	for i, key := range keys {
		c.Set(key, i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.TryGet(keys[i%len(keys)])
	}
}

func BenchmarkCache_Peek(b *testing.B) {
	c := benchmarkCache(b, 1000)
	keys := benchmarkKeys(1000)
	for i, key := range keys {
		c.Set(key, i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Peek(keys[i%len(keys)])
	}
}

func BenchmarkCache_Parallel(b *testing.B) {
	c := benchmarkCache(b, 500)
	keys := benchmarkKeys(1000)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := keys[i%len(keys)]
			if i%4 == 0 {
				c.Set(key, i)
			} else {
				c.TryGet(key)
			}
			i++
		}
	})
}
