package phaselight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panickingObserver struct {
	BaseObserver
	errors []error
}

func (o *panickingObserver) OnPhaseChange(PhaseChange) {
	panic("observer exploded")
}

func (o *panickingObserver) OnError(_ string, err error) {
	o.errors = append(o.errors, err)
}

type sliceObserver struct {
	seen []uint64
}

func (o sliceObserver) OnPhaseChange(PhaseChange) {}

func TestObserver_BasicInterface(t *testing.T) {
	var _ Observer = NewTestObserver()
	var _ ExtendedObserver = NewTestObserver()
	var _ ExtendedObserver = &BaseObserver{}
	var _ Observer = ObserverFunc(nil)
}

func TestObserverManager_Notify(t *testing.T) {
	manager := NewObserverManager()
	observer := NewTestObserver()
	var calls []PhaseChange
	fn := ObserverFunc(func(change PhaseChange) { calls = append(calls, change) })

	manager.AddObserver(observer)
	manager.AddObserver(fn)
	manager.AddObserver(nil)
	assert.Equal(t, 2, manager.Len())

	change := newPhaseChange("a", 1, Red, Green, time.Now(), time.Millisecond, time.Millisecond)
	manager.NotifySimulationStarted("a", Red)
	manager.NotifyPhaseChange(change)
	manager.NotifySimulationStopped("a", Green)

	assert.Equal(t, []Phase{Red}, observer.Started)
	assert.Equal(t, []Phase{Green}, observer.Stopped)
	require.Len(t, observer.Changes, 1)
	assert.Equal(t, change.ID, observer.Changes[0].ID)
	require.Len(t, calls, 1)
	assert.Equal(t, change.ID, calls[0].ID)
}

func TestObserverManager_Remove(t *testing.T) {
	manager := NewObserverManager()
	a := NewTestObserver()
	b := NewTestObserver()
	fn := ObserverFunc(func(PhaseChange) {})

	manager.AddObserver(a)
	manager.AddObserver(b)
	manager.AddObserver(fn)

	manager.RemoveObserver(a)
	manager.RemoveObserver(fn)
	manager.RemoveObserver(nil)
	assert.Equal(t, 2, manager.Len())

	manager.NotifyPhaseChange(newPhaseChange("a", 1, Red, Green, time.Now(), 0, 0))
	assert.Zero(t, a.ChangeCount())
	assert.Equal(t, 1, b.ChangeCount())
}

func TestObserverManager_RemoveUncomparable(t *testing.T) {
	manager := NewObserverManager()
	kept := NewTestObserver()
	manager.AddObserver(sliceObserver{seen: []uint64{1}})
	manager.AddObserver(kept)

	assert.NotPanics(t, func() {
		manager.RemoveObserver(sliceObserver{seen: []uint64{1}})
		manager.RemoveObserver(sliceObserver{})
	})
	assert.Equal(t, 2, manager.Len())

	manager.RemoveObserver(kept)
	assert.Equal(t, 1, manager.Len())

	light := newFastLight(t)
	defer light.Close()
	light.AddObserver(sliceObserver{})
	assert.NotPanics(t, func() { light.RemoveObserver(sliceObserver{}) })
}

func TestObserverManager_PanicIsolation(t *testing.T) {
	manager := NewObserverManager()
	bad := &panickingObserver{}
	good := NewTestObserver()
	manager.AddObserver(bad)
	manager.AddObserver(good)

	assert.NotPanics(t, func() {
		manager.NotifyPhaseChange(newPhaseChange("a", 1, Red, Green, time.Now(), 0, 0))
	})

	assert.Equal(t, 1, good.ChangeCount())
	require.Len(t, bad.errors, 1)
	assert.Equal(t, ErrCodeObserverFailed, GetErrorCode(bad.errors[0]))
	assert.Contains(t, bad.errors[0].Error(), "observer exploded")
}
