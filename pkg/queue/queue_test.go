package queue

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMessageQueue_FIFO(t *testing.T) {
	q := New[int]()
	assert.True(t, q.IsEmpty())

	for i := 1; i <= 100; i++ {
		require.NoError(t, q.Send(i))
	}
	assert.Equal(t, 100, q.Len())

	for i := 1; i <= 100; i++ {
		v, err := q.Receive()
		require.NoError(t, err)
		require.Equal(t, i, v)
	}
	assert.True(t, q.IsEmpty())
}

func TestMessageQueue_ReceiveBlocksUntilSend(t *testing.T) {
	q := New[string]()
	got := make(chan string, 1)

	go func() {
		v, err := q.Receive()
		assert.NoError(t, err)
		got <- v
	}()

	select {
	case <-got:
		t.Fatal("receive returned before any send")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, q.Send("x"))

	select {
	case v := <-got:
		assert.Equal(t, "x", v)
	case <-time.After(time.Second):
		t.Fatal("receive was not woken by send")
	}
}

func TestMessageQueue_NoLostWakeup(t *testing.T) {
	// a receiver that starts before the matching send must always observe it
	for i := 0; i < 2000; i++ {
		q := New[int]()
		done := make(chan int, 1)
		go func() {
			v, err := q.Receive()
			if err != nil {
				done <- -1
				return
			}
			done <- v
		}()
		runtime.Gosched()
		require.NoError(t, q.Send(i))

		select {
		case v := <-done:
			require.Equal(t, i, v)
		case <-time.After(time.Second):
			t.Fatalf("iteration %d: receiver never woke up", i)
		}
	}
}

func TestMessageQueue_ConcurrentReceiversGetDistinctValues(t *testing.T) {
	q := New[int]()
	const total = 1000
	workers := runtime.GOMAXPROCS(0) * 2

	var (
		mu   sync.Mutex
		seen = make(map[int]int, total)
		wg   sync.WaitGroup
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				v, err := q.ReceiveContext(ctx)
				if err != nil {
					return
				}
				mu.Lock()
				seen[v]++
				mu.Unlock()
			}
		}()
	}

	for i := 0; i < total; i++ {
		require.NoError(t, q.Send(i))
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == total
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	wg.Wait()

	for v, n := range seen {
		assert.Equalf(t, 1, n, "value %d delivered %d times", v, n)
	}
}

func TestMessageQueue_SingleProducerOrderPerReceiver(t *testing.T) {
	q := New[int]()
	const total = 500
	got := make([]int, 0, total)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for len(got) < total {
			v, err := q.Receive()
			if err != nil {
				return
			}
			got = append(got, v)
		}
	}()

	for i := 0; i < total; i++ {
		require.NoError(t, q.Send(i))
	}
	<-done

	for i := range got {
		require.Equal(t, i, got[i])
	}
}

func TestMessageQueue_ReceiveContextCancel(t *testing.T) {
	q := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := q.ReceiveContext(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestMessageQueue_CancelledReceiverDoesNotStealSignal(t *testing.T) {
	q := New[int]()

	ctx, cancel := context.WithCancel(context.Background())
	cancelled := make(chan error, 1)
	go func() {
		_, err := q.ReceiveContext(ctx)
		cancelled <- err
	}()

	survivor := make(chan int, 1)
	go func() {
		v, err := q.Receive()
		if err == nil {
			survivor <- v
		}
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	require.ErrorIs(t, <-cancelled, context.Canceled)

	require.NoError(t, q.Send(7))
	select {
	case v := <-survivor:
		assert.Equal(t, 7, v)
	case <-time.After(time.Second):
		t.Fatal("remaining receiver did not get the value")
	}
}

func TestMessageQueue_Close(t *testing.T) {
	q := New[int]()
	require.NoError(t, q.Send(1))

	blocked := make(chan error, 1)
	q2 := New[int]()
	go func() {
		_, err := q2.Receive()
		blocked <- err
	}()
	time.Sleep(10 * time.Millisecond)
	q2.Close()
	select {
	case err := <-blocked:
		assert.ErrorIs(t, err, ErrQueueClosed)
	case <-time.After(time.Second):
		t.Fatal("close did not wake receiver")
	}

	q.Close()
	q.Close()
	assert.True(t, q.Closed())
	assert.ErrorIs(t, q.Send(2), ErrQueueClosed)

	// queued values drain before the closed error surfaces
	v, err := q.Receive()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	_, err = q.Receive()
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestMessageQueue_TryReceive(t *testing.T) {
	q := NewWithCapacity[string](4)
	_, ok := q.TryReceive()
	assert.False(t, ok)

	require.NoError(t, q.Send("a"))
	v, ok := q.TryReceive()
	assert.True(t, ok)
	assert.Equal(t, "a", v)
}
