package phaselight

import (
	"fmt"
	"reflect"
	"sync"
)

// Observer represents an entity that observes phase changes of a light
type Observer interface {
	// OnPhaseChange is called after every committed toggle
	OnPhaseChange(change PhaseChange)
}

// ExtendedObserver provides additional optional observation methods
type ExtendedObserver interface {
	Observer

	// OnSimulationStarted is called when the background loop starts
	OnSimulationStarted(lightID string, initial Phase)

	// OnSimulationStopped is called when the background loop returns
	OnSimulationStopped(lightID string, last Phase)

	// OnError is called when an error occurs while publishing a change
	OnError(lightID string, err error)
}

// BaseObserver provides a default implementation with no-op methods
type BaseObserver struct{}

// OnPhaseChange implements the required Observer method
func (o *BaseObserver) OnPhaseChange(PhaseChange) {}

// OnSimulationStarted implements the optional ExtendedObserver method
func (o *BaseObserver) OnSimulationStarted(string, Phase) {}

// OnSimulationStopped implements the optional ExtendedObserver method
func (o *BaseObserver) OnSimulationStopped(string, Phase) {}

// OnError implements the optional ExtendedObserver method
func (o *BaseObserver) OnError(string, error) {}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(change PhaseChange)

// OnPhaseChange calls f(change)
func (f ObserverFunc) OnPhaseChange(change PhaseChange) {
	f(change)
}

// ObserverManager manages a collection of observers. A panicking observer
// never affects the light or the other observers.
type ObserverManager struct {
	mutex     sync.RWMutex
	observers []Observer
}

// NewObserverManager creates a new observer manager
func NewObserverManager() *ObserverManager {
	return &ObserverManager{
		observers: make([]Observer, 0),
	}
}

// AddObserver adds an observer to the manager
func (om *ObserverManager) AddObserver(observer Observer) {
	if observer == nil {
		return
	}
	om.mutex.Lock()
	defer om.mutex.Unlock()
	om.observers = append(om.observers, observer)
}

// RemoveObserver removes an observer from the manager. Observers whose type
// is not comparable, such as an ObserverFunc, cannot be removed and are ignored.
func (om *ObserverManager) RemoveObserver(observer Observer) {
	if observer == nil {
		return
	}
	target := reflect.TypeOf(observer)
	if !target.Comparable() {
		return
	}
	om.mutex.Lock()
	defer om.mutex.Unlock()
	for i, obs := range om.observers {
		if reflect.TypeOf(obs) == target && obs == observer {
			om.observers = append(om.observers[:i], om.observers[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered observers
func (om *ObserverManager) Len() int {
	om.mutex.RLock()
	defer om.mutex.RUnlock()
	return len(om.observers)
}

func (om *ObserverManager) snapshot() []Observer {
	om.mutex.RLock()
	defer om.mutex.RUnlock()
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)
	return observers
}

// NotifyPhaseChange notifies all observers of a toggle
func (om *ObserverManager) NotifyPhaseChange(change PhaseChange) {
	for _, observer := range om.snapshot() {
		func() {
			defer om.recoverObserver(observer, change.LightID, "OnPhaseChange")
			observer.OnPhaseChange(change)
		}()
	}
}

// NotifySimulationStarted notifies all observers that the loop has started
func (om *ObserverManager) NotifySimulationStarted(lightID string, initial Phase) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			func() {
				defer om.recoverObserver(observer, lightID, "OnSimulationStarted")
				extObs.OnSimulationStarted(lightID, initial)
			}()
		}
	}
}

// NotifySimulationStopped notifies all observers that the loop has returned
func (om *ObserverManager) NotifySimulationStopped(lightID string, last Phase) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			func() {
				defer om.recoverObserver(observer, lightID, "OnSimulationStopped")
				extObs.OnSimulationStopped(lightID, last)
			}()
		}
	}
}

// NotifyError notifies all observers of errors
func (om *ObserverManager) NotifyError(lightID string, err error) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			func() {
				defer func() { _ = recover() }()
				extObs.OnError(lightID, err)
			}()
		}
	}
}

// recoverObserver reports a panic to the panicking observer itself, if it can
// receive errors, and swallows any panic raised while doing so.
func (om *ObserverManager) recoverObserver(observer Observer, lightID, callback string) {
	r := recover()
	if r == nil {
		return
	}
	if extObs, ok := observer.(ExtendedObserver); ok {
		func() {
			defer func() { _ = recover() }()
			extObs.OnError(lightID, NewObserverError(lightID, callback, fmt.Errorf("observer panic: %v", r)))
		}()
	}
}
