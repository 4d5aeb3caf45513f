package phaselight

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/anggasct/phaselight/pkg/log"
	"github.com/anggasct/phaselight/pkg/queue"
)

// TaskPool is an externally owned pool of joinable background tasks. A light
// registers its cycle loop into it; the owner joins the pool on shutdown.
// *tasks.Pool implements it.
type TaskPool interface {
	Go(name string, task func(ctx context.Context) error)
}

// TrafficLight toggles between Red and Green on a randomized timer and
// publishes every new phase to a single-notify queue consumed by WaitForGreen.
type TrafficLight struct {
	id        string
	config    *config
	logger    log.Logger
	machine   *phaseMachine
	timer     *cycleTimer
	queue     *queue.MessageQueue[Phase]
	observers *ObserverManager

	state    *atomic.Int32
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	// commitMutex orders a toggle and its delivery against teardown
	commitMutex sync.Mutex

	subsMutex     sync.Mutex
	subscriptions map[*Subscription]struct{}
}

// New creates a light in the Red phase. The light does nothing until
// Simulate is called.
func New(opts ...Option) (*TrafficLight, error) {
	config := newConfig()
	for _, opt := range opts {
		opt.Apply(config)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	light := &TrafficLight{
		id:            config.id,
		config:        config,
		logger:        config.logger.With("light", config.id),
		machine:       newPhaseMachine(config.id),
		timer:         newCycleTimer(config.minCycle, config.maxCycle, config.cycleSeed()),
		queue:         queue.NewWithCapacity[Phase](config.queueCapacity),
		observers:     NewObserverManager(),
		state:         atomic.NewInt32(int32(LightStateIdle)),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
		subscriptions: make(map[*Subscription]struct{}),
	}
	for _, observer := range config.observers {
		light.observers.AddObserver(observer)
	}
	return light, nil
}

// ID returns the light identifier
func (l *TrafficLight) ID() string {
	return l.id
}

// State returns the lifecycle state
func (l *TrafficLight) State() LightState {
	return LightState(l.state.Load())
}

// CurrentPhase returns the last committed phase. It never blocks.
func (l *TrafficLight) CurrentPhase() Phase {
	return l.machine.current()
}

// LastChange returns when the phase last toggled, or the zero time before the
// first toggle
func (l *TrafficLight) LastChange() time.Time {
	return l.machine.changedAt()
}

// Transitions returns the number of phase changes so far
func (l *TrafficLight) Transitions() uint64 {
	return l.machine.transitions()
}

// Pending returns the number of phases sent but not yet consumed by a waiter
func (l *TrafficLight) Pending() int {
	return l.queue.Len()
}

// Done is closed once the light is closed and its loop, if any, has returned
func (l *TrafficLight) Done() <-chan struct{} {
	return l.done
}

// AddObserver registers an observer of phase changes
func (l *TrafficLight) AddObserver(observer Observer) {
	l.observers.AddObserver(observer)
}

// RemoveObserver unregisters an observer
func (l *TrafficLight) RemoveObserver(observer Observer) {
	l.observers.RemoveObserver(observer)
}

// Simulate starts the cycle loop as a task of pool. It may be called once.
func (l *TrafficLight) Simulate(pool TaskPool) error {
	if pool == nil {
		return NewLightError(ErrCodeNilTaskPool, l.id, "Simulate", "task pool is nil")
	}
	if !l.state.CompareAndSwap(int32(LightStateIdle), int32(LightStateRunning)) {
		if l.State() == LightStateStopped {
			return NewLightClosedError(l.id, "Simulate")
		}
		return NewAlreadySimulatingError(l.id)
	}

	pool.Go("traffic-light/"+l.id, l.cycleThroughPhases)
	return nil
}

// WaitForGreen blocks until a Green phase is delivered to this caller.
//
// Delivered phases that are not Green are discarded. The wait is triggered by
// queue delivery, not by the current phase: if a Green was already consumed by
// another waiter, this call blocks until the next Green. Concurrent waiters
// compete for deliveries and each delivery wakes exactly one of them.
func (l *TrafficLight) WaitForGreen() error {
	return l.WaitForPhase(context.Background(), Green)
}

// WaitForGreenContext is WaitForGreen bounded by ctx
func (l *TrafficLight) WaitForGreenContext(ctx context.Context) error {
	return l.WaitForPhase(ctx, Green)
}

// WaitForPhase blocks until target is delivered to this caller, ctx is done,
// or the light is closed and no queued phase matches.
func (l *TrafficLight) WaitForPhase(ctx context.Context, target Phase) error {
	if !target.IsValid() {
		return NewInvalidPhaseError(target.String())
	}
	for {
		phase, err := l.queue.ReceiveContext(ctx)
		if err != nil {
			if errors.Is(err, queue.ErrQueueClosed) {
				return NewLightClosedError(l.id, "WaitForPhase")
			}
			return err
		}
		if phase == target {
			return nil
		}
	}
}

// Close stops the cycle loop at its next poll and wakes every waiter with
// ErrLightClosed. Close is idempotent and does not wait for the loop; use
// Done or the task pool for that.
func (l *TrafficLight) Close() error {
	prev := LightState(l.state.Swap(int32(LightStateStopped)))
	if prev == LightStateStopped {
		return nil
	}
	l.teardown()
	if prev == LightStateIdle {
		close(l.done)
	}
	l.logger.Debugf("light closed in phase %s", l.CurrentPhase())
	return nil
}

// teardown releases the stop channel and every queue once
func (l *TrafficLight) teardown() {
	l.stopOnce.Do(func() {
		l.commitMutex.Lock()
		defer l.commitMutex.Unlock()
		close(l.stop)
		l.queue.Close()
		l.closeSubscriptions()
	})
}

// cycleThroughPhases is the background loop. Every poll interval it checks
// the time spent in the current phase; once the drawn duration has elapsed it
// toggles, publishes the new phase and draws the next duration.
func (l *TrafficLight) cycleThroughPhases(ctx context.Context) error {
	defer close(l.done)

	l.logger.Infof("light started in phase %s", l.CurrentPhase())
	l.observers.NotifySimulationStarted(l.id, l.CurrentPhase())
	defer func() {
		l.logger.Infof("light stopped in phase %s after %d transitions", l.CurrentPhase(), l.Transitions())
		l.observers.NotifySimulationStopped(l.id, l.CurrentPhase())
	}()

	ticker := time.NewTicker(l.config.pollInterval)
	defer ticker.Stop()

	cycle := l.timer.next()
	lastUpdate := time.Now()
	for {
		select {
		case <-l.stop:
			return nil
		case <-ctx.Done():
			l.state.Store(int32(LightStateStopped))
			l.teardown()
			return ctx.Err()
		case <-ticker.C:
			now := time.Now()
			elapsed := now.Sub(lastUpdate)
			if elapsed < cycle {
				continue
			}
			change, err := l.commit(now, cycle, elapsed)
			if errors.Is(err, ErrLightClosed) {
				return nil
			}
			if err != nil {
				l.observers.NotifyError(l.id, err)
				return nil
			}
			l.logger.Debugf("phase changed %s after %s (planned %s)", change.Transition(), change.Elapsed, change.Planned)
			l.observers.NotifyPhaseChange(change)
			lastUpdate = now
			cycle = l.timer.next()
		}
	}
}

// commit toggles the phase and hands the change to the waiters queue and the
// subscribers. Once the light is torn down it returns ErrLightClosed without
// toggling, so every committed phase is delivered.
func (l *TrafficLight) commit(now time.Time, planned, elapsed time.Duration) (PhaseChange, error) {
	l.commitMutex.Lock()
	defer l.commitMutex.Unlock()

	select {
	case <-l.stop:
		return PhaseChange{}, NewLightClosedError(l.id, "commit")
	default:
	}

	change := l.machine.toggle(now, planned, elapsed)
	if err := l.queue.Send(change.To); err != nil {
		return change, err
	}
	l.broadcast(change)
	return change, nil
}
