package bufstream_test

import (
	"testing"

	bs "github.com/sushydev/bufstream/bufstream"
)

// infiniteSource hands out an unbounded stream of zero bytes as fast as it
// is asked, so the benchmark measures the coordination overhead of the ring
// and its semaphores rather than being limited by a finite fixture.
type infiniteSource struct{}

func (infiniteSource) Read(p []byte) int { return len(p) }
func (infiniteSource) Close() error      { return nil }
func (infiniteSource) Size() int64       { return 0 }

// BenchmarkBufferedStream_Throughput measures sustained Read throughput with
// the background producer running concurrently, mirroring the teacher's
// producer/consumer throughput benchmark.
func BenchmarkBufferedStream_Throughput(b *testing.B) {
	stream, err := bs.New(bs.Config{
		Name:              "bench",
		BufferSize:        1 << 20,
		ReadThreshold:     1 << 16,
		ReadSize:          4096,
		ReadyThreshold:    1 << 16,
		NotReadyThreshold: 1 << 12,
	})
	if err != nil {
		b.Fatal(err)
	}

	if !stream.Open(infiniteSource{}) {
		b.Fatal("open failed")
	}
	defer stream.Close()

	buf := make([]byte, 1024)

	b.ReportAllocs()
	b.SetBytes(int64(len(buf)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		for stream.Read(buf) == 0 {
		}
	}
}

// BenchmarkBufferedStream_SmallReads exercises the hot path with reads much
// smaller than ReadSize, which is the common case for framed/line-oriented
// consumers layered on top of a BufferedStream.
func BenchmarkBufferedStream_SmallReads(b *testing.B) {
	stream, err := bs.New(bs.Config{
		Name:              "bench-small",
		BufferSize:        1 << 16,
		ReadThreshold:     1 << 12,
		ReadSize:          512,
		ReadyThreshold:    1 << 12,
		NotReadyThreshold: 1 << 8,
	})
	if err != nil {
		b.Fatal(err)
	}

	if !stream.Open(infiniteSource{}) {
		b.Fatal("open failed")
	}
	defer stream.Close()

	buf := make([]byte, 16)

	b.ReportAllocs()
	b.SetBytes(int64(len(buf)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		for stream.Read(buf) == 0 {
		}
	}
}
