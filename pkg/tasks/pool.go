// Package tasks provides a pool of named, joinable background tasks. The owner
// of a simulation creates the pool, hands it to every component that needs to
// run in the background, and joins everything through Wait or Shutdown.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/anggasct/phaselight/pkg/log"
)

// Pool runs tasks on their own goroutines and joins them on Wait.
type Pool struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
	logger log.Logger

	mu   sync.Mutex
	errs error

	registered *atomic.Int64
	running    *atomic.Int64
}

// Option configures a Pool.
type Option interface {
	// Apply sets the Option value of a Pool.
	Apply(pool *Pool)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(pool *Pool)

// Apply applies the option
func (f OptionFunc) Apply(pool *Pool) {
	f(pool)
}

// WithLogger sets the pool logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(pool *Pool) {
		if logger != nil {
			pool.logger = logger
		}
	})
}

// New creates a Pool whose tasks observe a context derived from parent.
func New(parent context.Context, opts ...Option) *Pool {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	pool := &Pool{
		ctx:        ctx,
		cancel:     cancel,
		group:      new(errgroup.Group),
		logger:     log.DiscardLogger,
		registered: atomic.NewInt64(0),
		running:    atomic.NewInt64(0),
	}
	for _, opt := range opts {
		opt.Apply(pool)
	}
	return pool
}

// Go registers and starts task on its own goroutine. task must return once
// ctx is done. A panic inside task is recovered and reported as an error from
// Wait.
func (p *Pool) Go(name string, task func(ctx context.Context) error) {
	p.registered.Inc()
	p.running.Inc()
	p.group.Go(func() (err error) {
		defer p.running.Dec()
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("task %s panicked: %v", name, r)
			}
			if err != nil && !isStopped(err) {
				p.logger.Errorf("task %s failed: %v", name, err)
				p.mu.Lock()
				p.errs = multierr.Append(p.errs, err)
				p.mu.Unlock()
			}
			p.logger.Debugf("task %s stopped", name)
		}()

		p.logger.Debugf("task %s started", name)
		return task(p.ctx)
	})
}

// Context returns the context handed to every task.
func (p *Pool) Context() context.Context {
	return p.ctx
}

// Len returns the number of tasks registered so far.
func (p *Pool) Len() int {
	return int(p.registered.Load())
}

// Running returns the number of tasks that have not returned yet.
func (p *Pool) Running() int {
	return int(p.running.Load())
}

func isStopped(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Wait blocks until every registered task has returned and reports every task
// failure. Tasks that return a context error are considered stopped cleanly.
func (p *Pool) Wait() error {
	_ = p.group.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errs
}

// Shutdown cancels the context shared by all tasks and waits for them to
// return, giving up when ctx is done.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.cancel()

	done := make(chan error, 1)
	go func() {
		done <- p.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("tasks still running after shutdown: %d: %w", p.Running(), ctx.Err())
	}
}
