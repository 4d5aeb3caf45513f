package observers

import (
	"sync"
	"time"

	"github.com/anggasct/phaselight"
)

// MetricsObserver collects metrics about the phases of one or more lights
type MetricsObserver struct {
	phaseVisits      map[phaselight.Phase]int
	phaseTimeSpent   map[phaselight.Phase]time.Duration
	transitionCounts map[string]int
	errorCount       int
	minInterval      time.Duration
	maxInterval      time.Duration
	lastInterval     time.Duration
	mutex            sync.RWMutex
}

var _ phaselight.ExtendedObserver = (*MetricsObserver)(nil)

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		phaseVisits:      make(map[phaselight.Phase]int),
		phaseTimeSpent:   make(map[phaselight.Phase]time.Duration),
		transitionCounts: make(map[string]int),
	}
}

// OnPhaseChange records the visit of the new phase and the time spent in the old one
func (o *MetricsObserver) OnPhaseChange(change phaselight.PhaseChange) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.phaseVisits[change.To]++
	o.phaseTimeSpent[change.From] += change.Elapsed
	o.transitionCounts[change.Transition()]++

	if o.minInterval == 0 || change.Elapsed < o.minInterval {
		o.minInterval = change.Elapsed
	}
	if change.Elapsed > o.maxInterval {
		o.maxInterval = change.Elapsed
	}
	o.lastInterval = change.Elapsed
}

// OnSimulationStarted records the visit of the initial phase
func (o *MetricsObserver) OnSimulationStarted(_ string, initial phaselight.Phase) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.phaseVisits[initial]++
}

// OnSimulationStopped implements phaselight.ExtendedObserver
func (o *MetricsObserver) OnSimulationStopped(string, phaselight.Phase) {}

// OnError records error metrics
func (o *MetricsObserver) OnError(string, error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.errorCount++
}

// GetPhaseVisitCounts returns the number of times each phase was entered
func (o *MetricsObserver) GetPhaseVisitCounts() map[phaselight.Phase]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[phaselight.Phase]int, len(o.phaseVisits))
	for phase, count := range o.phaseVisits {
		result[phase] = count
	}
	return result
}

// GetPhaseTimeSpent returns the completed time spent in each phase
func (o *MetricsObserver) GetPhaseTimeSpent() map[phaselight.Phase]time.Duration {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[phaselight.Phase]time.Duration, len(o.phaseTimeSpent))
	for phase, d := range o.phaseTimeSpent {
		result[phase] = d
	}
	return result
}

// GetTransitionCounts returns the number of times each transition occurred,
// keyed "red->green" and "green->red"
func (o *MetricsObserver) GetTransitionCounts() map[string]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[string]int, len(o.transitionCounts))
	for transition, count := range o.transitionCounts {
		result[transition] = count
	}
	return result
}

// GetIntervals returns the shortest, longest and latest measured phase durations
func (o *MetricsObserver) GetIntervals() (shortest, longest, last time.Duration) {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.minInterval, o.maxInterval, o.lastInterval
}

// GetErrorCount returns the number of errors
func (o *MetricsObserver) GetErrorCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.errorCount
}

// Reset resets all metrics
func (o *MetricsObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.phaseVisits = make(map[phaselight.Phase]int)
	o.phaseTimeSpent = make(map[phaselight.Phase]time.Duration)
	o.transitionCounts = make(map[string]int)
	o.errorCount = 0
	o.minInterval = 0
	o.maxInterval = 0
	o.lastInterval = 0
}
