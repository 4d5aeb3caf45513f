package observers

import (
	"fmt"
	"sync"
	"time"

	"github.com/anggasct/phaselight"
)

// ValidationObserver checks that the changes of each light strictly alternate
// starting from red, have contiguous sequence numbers, and last within an
// interval range. Every breach is recorded as a violation.
type ValidationObserver struct {
	minInterval time.Duration
	maxInterval time.Duration
	tolerance   time.Duration
	last        map[string]phaselight.PhaseChange
	violations  []string
	mutex       sync.RWMutex
}

var _ phaselight.ExtendedObserver = (*ValidationObserver)(nil)

// NewValidationObserver creates a validation observer that only checks alternation
func NewValidationObserver() *ValidationObserver {
	return &ValidationObserver{
		last:       make(map[string]phaselight.PhaseChange),
		violations: make([]string, 0),
	}
}

// WithIntervalBounds also checks that every measured phase duration lies in
// [lo, hi+tolerance]
func (o *ValidationObserver) WithIntervalBounds(lo, hi, tolerance time.Duration) *ValidationObserver {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.minInterval = lo
	o.maxInterval = hi
	o.tolerance = tolerance
	return o
}

// OnPhaseChange validates the change against the previous one of the same light
func (o *ValidationObserver) OnPhaseChange(change phaselight.PhaseChange) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	prev, seen := o.last[change.LightID]
	switch {
	case !seen && change.From != phaselight.Red:
		o.violations = append(o.violations, fmt.Sprintf(
			"light '%s' first transition starts from '%s', want 'red'", change.LightID, change.From))
	case seen && change.From != prev.To:
		o.violations = append(o.violations, fmt.Sprintf(
			"light '%s' transition %d starts from '%s' but previous ended in '%s'",
			change.LightID, change.Sequence, change.From, prev.To))
	}
	if seen && change.Sequence != prev.Sequence+1 {
		o.violations = append(o.violations, fmt.Sprintf(
			"light '%s' sequence jumped from %d to %d", change.LightID, prev.Sequence, change.Sequence))
	}
	if change.To != change.From.Toggle() {
		o.violations = append(o.violations, fmt.Sprintf(
			"light '%s' invalid transition '%s'", change.LightID, change.Transition()))
	}
	if o.maxInterval > 0 {
		if change.Elapsed < o.minInterval || change.Elapsed > o.maxInterval+o.tolerance {
			o.violations = append(o.violations, fmt.Sprintf(
				"light '%s' transition %d after %s, outside [%s, %s]",
				change.LightID, change.Sequence, change.Elapsed, o.minInterval, o.maxInterval))
		}
	}
	o.last[change.LightID] = change
}

// OnSimulationStarted validates the initial phase
func (o *ValidationObserver) OnSimulationStarted(lightID string, initial phaselight.Phase) {
	if initial != phaselight.Red {
		o.addViolation(fmt.Sprintf("light '%s' started in '%s', want 'red'", lightID, initial))
	}
}

// OnSimulationStopped implements phaselight.ExtendedObserver
func (o *ValidationObserver) OnSimulationStopped(string, phaselight.Phase) {}

// OnError records errors as violations
func (o *ValidationObserver) OnError(lightID string, err error) {
	o.addViolation(fmt.Sprintf("light '%s' error: %v", lightID, err))
}

// addViolation adds a violation
func (o *ValidationObserver) addViolation(message string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.violations = append(o.violations, message)
}

// GetViolations returns all validation violations
func (o *ValidationObserver) GetViolations() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make([]string, len(o.violations))
	copy(result, o.violations)
	return result
}

// HasViolations returns whether any violations occurred
func (o *ValidationObserver) HasViolations() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.violations) > 0
}

// Reset resets the validation state
func (o *ValidationObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.last = make(map[string]phaselight.PhaseChange)
	o.violations = make([]string, 0)
}
