package benchmark

import (
	"fmt"
	"testing"

	"github.com/yndnr/respkv/internal/server/redisserver"
	"github.com/yndnr/respkv/internal/storage/memory"
)

// BenchmarkServerRoundTrip benchmarks one GET per round trip.
func BenchmarkServerRoundTrip(b *testing.B) {
	store := memory.New()
	store.Set("k", []byte("value"))
	c := dial(b, startServer(b, store))
	frame := redisserver.EncodeCommandStrings("GET", "k")

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := c.w.Write(frame); err != nil {
			b.Fatal(err)
		}
		if err := c.w.Flush(); err != nil {
			b.Fatal(err)
		}
		if _, err := redisserver.ReadReply(c.r); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkServerPipeline benchmarks pipelined SETs at various depths.
func BenchmarkServerPipeline(b *testing.B) {
	for _, depth := range []int{1, 16, 128} {
		b.Run(fmt.Sprintf("depth_%d", depth), func(b *testing.B) {
			c := dial(b, startServer(b, memory.New()))
			var batch []byte
			for i := 0; i < depth; i++ {
				batch = append(batch, redisserver.EncodeCommandStrings("SET", fmt.Sprintf("k:%d", i), "value")...)
			}

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := c.w.Write(batch); err != nil {
					b.Fatal(err)
				}
				if err := c.w.Flush(); err != nil {
					b.Fatal(err)
				}
				for j := 0; j < depth; j++ {
					if _, err := redisserver.ReadReply(c.r); err != nil {
						b.Fatal(err)
					}
				}
			}
			b.ReportMetric(float64(b.N*depth)/b.Elapsed().Seconds(), "cmds/s")
		})
	}
}

// BenchmarkServerParallelClients benchmarks many connections at once.
func BenchmarkServerParallelClients(b *testing.B) {
	addr := startServer(b, memory.New())
	frame := redisserver.EncodeCommandStrings("SET", "shared", "value")

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		c, err := newBenchConn(addr)
		if err != nil {
			b.Error(err)
			return
		}
		defer c.Close()

		for pb.Next() {
			if _, err := c.w.Write(frame); err != nil {
				b.Error(err)
				return
			}
			if err := c.w.Flush(); err != nil {
				b.Error(err)
				return
			}
			if _, err := redisserver.ReadReply(c.r); err != nil {
				b.Error(err)
				return
			}
		}
	})
}
