package phaselight

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PhaseChange describes one toggle of a traffic light
type PhaseChange struct {
	// ID uniquely identifies the change
	ID string `json:"id"`
	// LightID is the light that changed
	LightID string `json:"light_id"`
	// Sequence counts transitions of the light, starting at 1
	Sequence uint64 `json:"sequence"`
	From     Phase  `json:"from"`
	To       Phase  `json:"to"`
	// Timestamp is when the toggle was committed
	Timestamp time.Time `json:"timestamp"`
	// Planned is the cycle duration drawn for the phase that just ended
	Planned time.Duration `json:"planned"`
	// Elapsed is the measured time the previous phase lasted
	Elapsed time.Duration `json:"elapsed"`
}

// newPhaseChange creates a new change stamped with a fresh ID
func newPhaseChange(lightID string, seq uint64, from, to Phase, at time.Time, planned, elapsed time.Duration) PhaseChange {
	return PhaseChange{
		ID:        uuid.NewString(),
		LightID:   lightID,
		Sequence:  seq,
		From:      from,
		To:        to,
		Timestamp: at,
		Planned:   planned,
		Elapsed:   elapsed,
	}
}

// String renders the change as "light#seq red->green"
func (c PhaseChange) String() string {
	return fmt.Sprintf("%s#%d %s->%s", c.LightID, c.Sequence, c.From, c.To)
}

// Transition returns the "from->to" key of the change
func (c PhaseChange) Transition() string {
	return c.From.String() + "->" + c.To.String()
}
