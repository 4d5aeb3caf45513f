package observers

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"

	"github.com/anggasct/phaselight"
)

const (
	instrumentationName = "github.com/anggasct/phaselight"

	transitionCounterName = "phaselight_transitions_count"
	errorCounterName      = "phaselight_errors_count"
	phaseDurationName     = "phaselight_phase_duration"
	runningGaugeName      = "phaselight_running_lights"
	greenGaugeName        = "phaselight_green"
	pendingGaugeName      = "phaselight_pending_phases"
)

// Tracked is the read-only view of a light polled by TelemetryObserver.Track
type Tracked interface {
	ID() string
	CurrentPhase() phaselight.Phase
	Pending() int
}

// TelemetryOption is the interface that applies a TelemetryObserver option.
type TelemetryOption interface {
	// Apply sets the Option value of a config.
	Apply(o *TelemetryObserver)
}

var _ TelemetryOption = TelemetryOptionFunc(nil)

// TelemetryOptionFunc implements the TelemetryOption interface.
type TelemetryOptionFunc func(o *TelemetryObserver)

// Apply applies the option
func (f TelemetryOptionFunc) Apply(o *TelemetryObserver) {
	f(o)
}

// WithMeterProvider specifies the meter provider instruments are created
// from. If none is specified, the global provider is used.
func WithMeterProvider(provider metric.MeterProvider) TelemetryOption {
	return TelemetryOptionFunc(func(o *TelemetryObserver) {
		o.provider = provider
	})
}

// TelemetryObserver exports phase changes as OpenTelemetry metrics
type TelemetryObserver struct {
	provider metric.MeterProvider
	meter    metric.Meter

	transitions   metric.Int64Counter
	errors        metric.Int64Counter
	phaseDuration metric.Float64Histogram
	running       metric.Int64UpDownCounter
	green         metric.Int64ObservableGauge
	pending       metric.Int64ObservableGauge

	mutex         sync.Mutex
	registrations []metric.Registration
}

var _ phaselight.ExtendedObserver = (*TelemetryObserver)(nil)

// NewTelemetryObserver creates the instruments of the observer
func NewTelemetryObserver(opts ...TelemetryOption) (*TelemetryObserver, error) {
	o := &TelemetryObserver{provider: otel.GetMeterProvider()}
	for _, opt := range opts {
		opt.Apply(o)
	}
	o.meter = o.provider.Meter(instrumentationName)

	var err error
	if o.transitions, err = o.meter.Int64Counter(
		transitionCounterName,
		metric.WithDescription("The total number of phase changes"),
	); err != nil {
		return nil, fmt.Errorf("failed to create transitions instrument, %w", err)
	}

	if o.errors, err = o.meter.Int64Counter(
		errorCounterName,
		metric.WithDescription("The total number of errors reported by lights"),
	); err != nil {
		return nil, fmt.Errorf("failed to create errors instrument, %w", err)
	}

	if o.phaseDuration, err = o.meter.Float64Histogram(
		phaseDurationName,
		metric.WithDescription("The measured duration of a phase in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("failed to create phase duration instrument, %w", err)
	}

	if o.running, err = o.meter.Int64UpDownCounter(
		runningGaugeName,
		metric.WithDescription("The number of lights cycling"),
	); err != nil {
		return nil, fmt.Errorf("failed to create running instrument, %w", err)
	}

	if o.green, err = o.meter.Int64ObservableGauge(
		greenGaugeName,
		metric.WithDescription("1 when the light is green, 0 otherwise"),
	); err != nil {
		return nil, fmt.Errorf("failed to create green instrument, %w", err)
	}

	if o.pending, err = o.meter.Int64ObservableGauge(
		pendingGaugeName,
		metric.WithDescription("The number of phases not yet consumed by a waiter"),
	); err != nil {
		return nil, fmt.Errorf("failed to create pending instrument, %w", err)
	}

	return o, nil
}

// Track registers a callback observing the phase and the queue length of light
func (o *TelemetryObserver) Track(light Tracked) error {
	labels := metric.WithAttributes(attribute.String("light.id", light.ID()))
	registration, err := o.meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		var green int64
		if light.CurrentPhase().IsGreen() {
			green = 1
		}
		observer.ObserveInt64(o.green, green, labels)
		observer.ObserveInt64(o.pending, int64(light.Pending()), labels)
		return nil
	}, o.green, o.pending)
	if err != nil {
		return err
	}

	o.mutex.Lock()
	o.registrations = append(o.registrations, registration)
	o.mutex.Unlock()
	return nil
}

// Close unregisters every tracking callback
func (o *TelemetryObserver) Close() error {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	var err error
	for _, registration := range o.registrations {
		err = multierr.Append(err, registration.Unregister())
	}
	o.registrations = nil
	return err
}

// OnPhaseChange records the change and the duration of the phase that ended
func (o *TelemetryObserver) OnPhaseChange(change phaselight.PhaseChange) {
	ctx := context.Background()
	o.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("light.id", change.LightID),
		attribute.String("transition", change.Transition()),
	))
	o.phaseDuration.Record(ctx, float64(change.Elapsed.Microseconds())/1000, metric.WithAttributes(
		attribute.String("light.id", change.LightID),
		attribute.String("phase", change.From.String()),
	))
}

// OnSimulationStarted increments the running lights
func (o *TelemetryObserver) OnSimulationStarted(lightID string, _ phaselight.Phase) {
	o.running.Add(context.Background(), 1, metric.WithAttributes(attribute.String("light.id", lightID)))
}

// OnSimulationStopped decrements the running lights
func (o *TelemetryObserver) OnSimulationStopped(lightID string, _ phaselight.Phase) {
	o.running.Add(context.Background(), -1, metric.WithAttributes(attribute.String("light.id", lightID)))
}

// OnError counts errors
func (o *TelemetryObserver) OnError(lightID string, _ error) {
	o.errors.Add(context.Background(), 1, metric.WithAttributes(attribute.String("light.id", lightID)))
}
