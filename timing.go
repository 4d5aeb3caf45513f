package phaselight

import (
	"math/rand/v2"
	"time"
)

const (
	// DefaultMinCycle is the shortest randomized phase duration
	DefaultMinCycle = 4000 * time.Millisecond
	// DefaultMaxCycle is the longest randomized phase duration
	DefaultMaxCycle = 6000 * time.Millisecond
	// DefaultPollInterval is the sleep quantum of the cycle loop
	DefaultPollInterval = time.Millisecond
)

// cycleTimer draws phase durations uniformly from [min, max] at millisecond
// resolution when the range allows it. One generator is seeded per light and
// reused for its lifetime. Not safe for concurrent use; only the cycle loop
// draws from it.
type cycleTimer struct {
	lo   time.Duration
	hi   time.Duration
	rand *rand.Rand
}

func newCycleTimer(lo, hi time.Duration, seed uint64) *cycleTimer {
	return &cycleTimer{
		lo:   lo,
		hi:   hi,
		rand: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// next returns the next cycle duration, closed interval on both ends
func (c *cycleTimer) next() time.Duration {
	span := c.hi - c.lo
	if span <= 0 {
		return c.lo
	}
	step := time.Duration(1)
	if span >= time.Millisecond && span%time.Millisecond == 0 && c.lo%time.Millisecond == 0 {
		step = time.Millisecond
	}
	n := int64(span/step) + 1
	return c.lo + time.Duration(c.rand.Int64N(n))*step
}
