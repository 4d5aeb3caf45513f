package phaselight

import (
	"strings"
)

// Phase is the signal state of a traffic light.
type Phase int32

const (
	// Red is the OFF phase. It is the zero value and the initial phase of every light.
	Red Phase = iota
	// Green is the ON phase.
	Green
)

var phaseNames = [...]string{
	Red:   "red",
	Green: "green",
}

// String returns the lower-case phase name
func (p Phase) String() string {
	if p.IsValid() {
		return phaseNames[p]
	}
	return "unknown"
}

// IsValid reports whether p is Red or Green
func (p Phase) IsValid() bool {
	return p == Red || p == Green
}

// IsGreen reports whether p is the ON phase
func (p Phase) IsGreen() bool {
	return p == Green
}

// Toggle returns the other phase. Red and Green are the only possible results.
func (p Phase) Toggle() Phase {
	if p == Green {
		return Red
	}
	return Green
}

// ParsePhase converts a phase name, case-insensitively, into a Phase.
func ParsePhase(name string) (Phase, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "red", "off":
		return Red, nil
	case "green", "on":
		return Green, nil
	}
	return Red, NewInvalidPhaseError(name)
}

// MarshalText implements encoding.TextMarshaler
func (p Phase) MarshalText() ([]byte, error) {
	if !p.IsValid() {
		return nil, NewInvalidPhaseError(p.String())
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
