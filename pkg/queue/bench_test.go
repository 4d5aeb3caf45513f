package queue

import (
	"testing"
)

func BenchmarkSendReceive(b *testing.B) {
	q := New[int]()
	done := make(chan struct{})
	go func() {
		for i := 0; i < b.N; i++ {
			_, _ = q.Receive()
		}
		close(done)
	}()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = q.Send(i)
	}
	<-done
}
