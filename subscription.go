package phaselight

import (
	"context"
	"errors"
	"sync"

	"github.com/anggasct/phaselight/pkg/queue"
)

// Subscription receives every phase change of a light from the moment it was
// created, independently of WaitForGreen callers and of other subscriptions.
type Subscription struct {
	light *TrafficLight
	queue *queue.MessageQueue[PhaseChange]
	once  sync.Once
}

// Subscribe creates a broadcast subscription to the light's phase changes
func (l *TrafficLight) Subscribe() (*Subscription, error) {
	l.subsMutex.Lock()
	defer l.subsMutex.Unlock()
	if l.State() == LightStateStopped {
		return nil, NewLightClosedError(l.id, "Subscribe")
	}
	sub := &Subscription{
		light: l,
		queue: queue.New[PhaseChange](),
	}
	l.subscriptions[sub] = struct{}{}
	return sub, nil
}

// Subscribers returns the number of active subscriptions
func (l *TrafficLight) Subscribers() int {
	l.subsMutex.Lock()
	defer l.subsMutex.Unlock()
	return len(l.subscriptions)
}

func (l *TrafficLight) broadcast(change PhaseChange) {
	l.subsMutex.Lock()
	defer l.subsMutex.Unlock()
	for sub := range l.subscriptions {
		_ = sub.queue.Send(change)
	}
}

func (l *TrafficLight) closeSubscriptions() {
	l.subsMutex.Lock()
	defer l.subsMutex.Unlock()
	for sub := range l.subscriptions {
		sub.queue.Close()
		delete(l.subscriptions, sub)
	}
}

// Next blocks until the next change is available. Once the subscription or
// its light is closed, queued changes are still returned before
// ErrLightClosed.
func (s *Subscription) Next(ctx context.Context) (PhaseChange, error) {
	change, err := s.queue.ReceiveContext(ctx)
	if errors.Is(err, queue.ErrQueueClosed) {
		return change, NewLightClosedError(s.light.id, "Next")
	}
	return change, err
}

// Pending returns the number of changes not yet read
func (s *Subscription) Pending() int {
	return s.queue.Len()
}

// Unsubscribe detaches the subscription from its light. It is idempotent.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.light.subsMutex.Lock()
		delete(s.light.subscriptions, s)
		s.light.subsMutex.Unlock()
		s.queue.Close()
	})
}
