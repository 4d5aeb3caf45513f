package phaselight

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/anggasct/phaselight/pkg/log"
)

// config holds the settings a light is constructed with
type config struct {
	id            string
	minCycle      time.Duration
	maxCycle      time.Duration
	pollInterval  time.Duration
	seed          uint64
	seeded        bool
	queueCapacity int
	logger        log.Logger
	observers     []Observer
}

// newConfig creates a config holding the defaults
func newConfig() *config {
	return &config{
		id:           uuid.NewString(),
		minCycle:     DefaultMinCycle,
		maxCycle:     DefaultMaxCycle,
		pollInterval: DefaultPollInterval,
		logger:       log.DiscardLogger,
	}
}

// validate checks the option values
func (c *config) validate() error {
	switch {
	case c.id == "":
		return NewConfigurationError("TrafficLight", "id must not be empty")
	case c.minCycle <= 0:
		return NewConfigurationError("TrafficLight", fmt.Sprintf("minimum cycle must be positive, got %s", c.minCycle))
	case c.maxCycle < c.minCycle:
		return NewConfigurationError("TrafficLight", fmt.Sprintf("maximum cycle %s is below minimum %s", c.maxCycle, c.minCycle))
	case c.pollInterval <= 0:
		return NewConfigurationError("TrafficLight", fmt.Sprintf("poll interval must be positive, got %s", c.pollInterval))
	case c.pollInterval > c.minCycle:
		return NewConfigurationError("TrafficLight", fmt.Sprintf("poll interval %s exceeds minimum cycle %s", c.pollInterval, c.minCycle))
	case c.queueCapacity < 0:
		return NewConfigurationError("TrafficLight", "queue capacity must not be negative")
	}
	return nil
}

// cycleSeed returns the configured seed or a random one
func (c *config) cycleSeed() uint64 {
	if c.seeded {
		return c.seed
	}
	return rand.Uint64()
}

// Option is the interface that applies a TrafficLight option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(config *config)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(config *config)

// Apply applies the option
func (f OptionFunc) Apply(c *config) {
	f(c)
}

// WithID sets the light identifier. A random UUID is used by default.
func WithID(id string) Option {
	return OptionFunc(func(config *config) {
		config.id = id
	})
}

// WithCycleRange sets the closed interval phase durations are drawn from.
// The default range is 4s to 6s.
func WithCycleRange(minCycle, maxCycle time.Duration) Option {
	return OptionFunc(func(config *config) {
		config.minCycle = minCycle
		config.maxCycle = maxCycle
	})
}

// WithPollInterval sets the sleep quantum between two elapsed-time checks of
// the cycle loop. The default is 1ms.
func WithPollInterval(d time.Duration) Option {
	return OptionFunc(func(config *config) {
		config.pollInterval = d
	})
}

// WithSeed makes the sequence of cycle durations reproducible
func WithSeed(seed uint64) Option {
	return OptionFunc(func(config *config) {
		config.seed = seed
		config.seeded = true
	})
}

// WithQueueCapacity preallocates the phase queue
func WithQueueCapacity(capacity int) Option {
	return OptionFunc(func(config *config) {
		config.queueCapacity = capacity
	})
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(config *config) {
		if logger != nil {
			config.logger = logger
		}
	})
}

// WithObserver registers observers before the light starts
func WithObserver(observers ...Observer) Option {
	return OptionFunc(func(config *config) {
		config.observers = append(config.observers, observers...)
	})
}
