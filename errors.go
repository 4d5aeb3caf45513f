package phaselight

import (
	"errors"
	"fmt"
)

// ErrorCode represents specific error conditions of a traffic light
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// Phase value or name is not red or green
	ErrCodeInvalidPhase
	// Simulate was called more than once
	ErrCodeAlreadySimulating
	// Light has been closed
	ErrCodeLightClosed
	// No task pool was supplied to Simulate
	ErrCodeNilTaskPool
	// Light configuration is invalid
	ErrCodeInvalidConfiguration
	// An observer failed while handling a notification
	ErrCodeObserverFailed
)

var (
	// ErrAlreadySimulating is returned when Simulate is called on a light that is already cycling
	ErrAlreadySimulating = errors.New("light is already simulating")
	// ErrLightClosed is returned by operations on a closed light
	ErrLightClosed = errors.New("light is closed")
	// ErrNilTaskPool is returned when Simulate receives no task pool
	ErrNilTaskPool = errors.New("task pool is nil")
	// ErrInvalidPhase is returned for phases other than red and green
	ErrInvalidPhase = errors.New("invalid phase")
)

var codeSentinels = map[ErrorCode]error{
	ErrCodeInvalidPhase:      ErrInvalidPhase,
	ErrCodeAlreadySimulating: ErrAlreadySimulating,
	ErrCodeLightClosed:       ErrLightClosed,
	ErrCodeNilTaskPool:       ErrNilTaskPool,
}

// LightError represents an operation failure on a traffic light
type LightError struct {
	Code      ErrorCode
	LightID   string
	Operation string
	Message   string
	Cause     error
}

func (e *LightError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("light error [%s] during %s: %s: %v", e.LightID, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("light error [%s] during %s: %s", e.LightID, e.Operation, e.Message)
}

// Unwrap returns the underlying cause
func (e *LightError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel error of the error code
func (e *LightError) Is(target error) bool {
	sentinel, ok := codeSentinels[e.Code]
	return ok && sentinel == target
}

// NewLightError creates a new light error
func NewLightError(code ErrorCode, lightID, operation, message string) *LightError {
	return &LightError{
		Code:      code,
		LightID:   lightID,
		Operation: operation,
		Message:   message,
	}
}

// NewAlreadySimulatingError creates an error for a second Simulate call
func NewAlreadySimulatingError(lightID string) *LightError {
	return NewLightError(ErrCodeAlreadySimulating, lightID, "Simulate", "background loop already started")
}

// NewLightClosedError creates an error for an operation on a closed light
func NewLightClosedError(lightID, operation string) *LightError {
	return NewLightError(ErrCodeLightClosed, lightID, operation, "light is closed")
}

// NewInvalidPhaseError creates an error for an unknown phase
func NewInvalidPhaseError(name string) *LightError {
	return &LightError{
		Code:      ErrCodeInvalidPhase,
		Operation: "ParsePhase",
		Message:   fmt.Sprintf("phase '%s' is not red or green", name),
	}
}

// NewObserverError wraps a failure raised by an observer
func NewObserverError(lightID, callback string, cause error) *LightError {
	return &LightError{
		Code:      ErrCodeObserverFailed,
		LightID:   lightID,
		Operation: callback,
		Message:   "observer failed",
		Cause:     cause,
	}
}

// ConfigurationError represents invalid light options
type ConfigurationError struct {
	Component string
	Issue     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Issue)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(component, issue string) *ConfigurationError {
	return &ConfigurationError{
		Component: component,
		Issue:     issue,
	}
}

// IsLightError checks if an error is a LightError
func IsLightError(err error) bool {
	var target *LightError
	return errors.As(err, &target)
}

// IsConfigurationError checks if an error is a ConfigurationError
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// GetErrorCode returns the error code for known error types
func GetErrorCode(err error) ErrorCode {
	var lightErr *LightError
	if errors.As(err, &lightErr) {
		return lightErr.Code
	}
	var configErr *ConfigurationError
	if errors.As(err, &configErr) {
		return ErrCodeInvalidConfiguration
	}
	return ErrCodeNone
}
