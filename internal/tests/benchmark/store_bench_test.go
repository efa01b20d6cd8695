package benchmark

import (
	"fmt"
	"testing"
	"time"

	"github.com/yndnr/respkv/internal/storage/memory"
)

// BenchmarkStoreSet benchmarks writes into stores of various sizes.
func BenchmarkStoreSet(b *testing.B) {
	runWithKeyCounts(b, KeyCounts, func(b *testing.B, count int) {
		store := memory.New()
		prefillStore(store, count)
		value := []byte("value")

		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			store.Set(fmt.Sprintf("bench:%d", i%count), value)
		}

		b.StopTimer()
		reportMemory(b, "mem")
	})
}

// BenchmarkStoreGet benchmarks reads from stores of various sizes.
func BenchmarkStoreGet(b *testing.B) {
	runWithKeyCounts(b, KeyCounts, func(b *testing.B, count int) {
		store := memory.New()
		keys := prefillStore(store, count)

		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			if _, ok := store.Get(keys[i%len(keys)]); !ok {
				b.Fatal("key missing")
			}
		}
	})
}

// BenchmarkStoreGetParallel benchmarks concurrent reads across shards.
func BenchmarkStoreGetParallel(b *testing.B) {
	store := memory.New()
	keys := prefillStore(store, 100000)

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			store.Get(keys[i%len(keys)])
			i++
		}
	})
}

// BenchmarkStoreMixedParallel benchmarks a 80/20 read/write mix.
func BenchmarkStoreMixedParallel(b *testing.B) {
	store := memory.New()
	keys := prefillStore(store, 100000)
	value := []byte("value")

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			k := keys[i%len(keys)]
			if i%5 == 0 {
				store.SetWithTTL(k, value, time.Hour)
			} else {
				store.Get(k)
			}
			i++
		}
	})
}

// BenchmarkShardCount compares shard counts under parallel writes.
func BenchmarkShardCount(b *testing.B) {
	for _, shards := range []int{1, 8, 32, 128} {
		b.Run(fmt.Sprintf("shards_%d", shards), func(b *testing.B) {
			store := memory.New(memory.WithShardCount(shards))
			value := []byte("value")

			b.ReportAllocs()
			b.ResetTimer()

			b.RunParallel(func(pb *testing.PB) {
				i := 0
				for pb.Next() {
					store.Set(fmt.Sprintf("k:%d", i%10000), value)
					i++
				}
			})
		})
	}
}

// BenchmarkDeleteExpired benchmarks an active sweep over expired keys.
func BenchmarkDeleteExpired(b *testing.B) {
	runWithKeyCounts(b, []int{1000, 10000}, func(b *testing.B, count int) {
		now := time.Now()
		clock := func() time.Time { return now }
		value := []byte("value")

		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			b.StopTimer()
			store := memory.New(memory.WithClock(clock))
			for j := 0; j < count; j++ {
				store.SetWithTTL(fmt.Sprintf("k:%d", j), value, time.Millisecond)
			}
			now = now.Add(time.Second)
			b.StartTimer()

			if n := store.DeleteExpired(0); n != count {
				b.Fatalf("DeleteExpired = %d, want %d", n, count)
			}
		}
	})
}
