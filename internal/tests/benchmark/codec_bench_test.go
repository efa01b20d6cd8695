package benchmark

import (
	"bufio"
	"bytes"
	"fmt"
	"testing"

	"github.com/yndnr/respkv/internal/server/redisserver"
)

// BenchmarkDecodeSet benchmarks decoding a SET frame at various value sizes.
func BenchmarkDecodeSet(b *testing.B) {
	for _, size := range ValueSizes {
		b.Run(fmt.Sprintf("value_%dB", size), func(b *testing.B) {
			frame := redisserver.EncodeCommand([]byte("SET"), []byte("key:1"), bytes.Repeat([]byte("x"), size))

			b.SetBytes(int64(len(frame)))
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, _, err := redisserver.Decode(frame); err != nil {
					b.Fatalf("Decode failed: %v", err)
				}
			}
		})
	}
}

// BenchmarkDecodePipeline benchmarks draining a buffer of pipelined GETs.
func BenchmarkDecodePipeline(b *testing.B) {
	const depth = 100
	var buf []byte
	for i := 0; i < depth; i++ {
		buf = append(buf, redisserver.EncodeCommandStrings("GET", fmt.Sprintf("key:%d", i))...)
	}

	b.SetBytes(int64(len(buf)))
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		rest := buf
		for len(rest) > 0 {
			_, n, err := redisserver.Decode(rest)
			if err != nil {
				b.Fatalf("Decode failed: %v", err)
			}
			rest = rest[n:]
		}
	}
}

// BenchmarkDecodeInline benchmarks the telnet-style inline form.
func BenchmarkDecodeInline(b *testing.B) {
	line := []byte("SET key:1 somevalue EX 100\r\n")

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, _, err := redisserver.Decode(line); err != nil {
			b.Fatalf("Decode failed: %v", err)
		}
	}
}

// BenchmarkWriteReply benchmarks encoding bulk replies.
func BenchmarkWriteReply(b *testing.B) {
	for _, size := range ValueSizes {
		b.Run(fmt.Sprintf("value_%dB", size), func(b *testing.B) {
			reply := redisserver.Bulk(bytes.Repeat([]byte("x"), size))
			var sink bytes.Buffer
			w := bufio.NewWriter(&sink)

			b.SetBytes(int64(size))
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if err := redisserver.WriteReply(w, reply); err != nil {
					b.Fatalf("WriteReply failed: %v", err)
				}
				_ = w.Flush()
				sink.Reset()
			}
		})
	}
}
