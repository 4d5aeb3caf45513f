// Package observers provides observers for monitoring traffic light phase changes
package observers

import (
	"sync"

	"github.com/anggasct/phaselight"
	"github.com/anggasct/phaselight/pkg/log"
)

// LoggingObserver logs light events through a structured logger
type LoggingObserver struct {
	mutex  sync.RWMutex
	logger log.Logger
	prefix string
}

var _ phaselight.ExtendedObserver = (*LoggingObserver)(nil)

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger log.Logger, prefix string) *LoggingObserver {
	if logger == nil {
		logger = log.DiscardLogger
	}
	if prefix != "" {
		logger = logger.With("component", prefix)
	}
	return &LoggingObserver{
		logger: logger,
		prefix: prefix,
	}
}

// SetLogger replaces the logger
func (o *LoggingObserver) SetLogger(logger log.Logger) {
	if logger == nil {
		return
	}
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if o.prefix != "" {
		logger = logger.With("component", o.prefix)
	}
	o.logger = logger
}

func (o *LoggingObserver) log() log.Logger {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.logger
}

// OnPhaseChange logs phase changes
func (o *LoggingObserver) OnPhaseChange(change phaselight.PhaseChange) {
	o.log().With(
		"light", change.LightID,
		"sequence", change.Sequence,
		"elapsed", change.Elapsed,
		"planned", change.Planned,
	).Infof("Transition: %s", change.Transition())
}

// OnSimulationStarted logs the loop start
func (o *LoggingObserver) OnSimulationStarted(lightID string, initial phaselight.Phase) {
	o.log().With("light", lightID).Infof("Simulation started in phase: %s", initial)
}

// OnSimulationStopped logs the loop stop
func (o *LoggingObserver) OnSimulationStopped(lightID string, last phaselight.Phase) {
	o.log().With("light", lightID).Infof("Simulation stopped in phase: %s", last)
}

// OnError logs errors
func (o *LoggingObserver) OnError(lightID string, err error) {
	o.log().With("light", lightID).Errorf("Error: %v", err)
}
