// Package phaselight models a traffic light that toggles between red and green
// on a randomized timer and hands every new phase to waiting goroutines.
//
// A light owns a blocking single-notify queue of phases. Its cycle loop runs as
// a task of a caller-owned TaskPool (see pkg/tasks), draws each phase duration
// uniformly from a closed range (4s to 6s by default), and sends every new
// phase to the queue. WaitForGreen drains that queue until it receives Green,
// so each delivery wakes exactly one waiter. Subscribe offers a broadcast view
// where every subscription sees every change, and observers are notified
// synchronously from the loop.
//
//	pool := tasks.New(ctx)
//	light, err := phaselight.New()
//	if err != nil {
//		return err
//	}
//	if err := light.Simulate(pool); err != nil {
//		return err
//	}
//	if err := light.WaitForGreen(); err != nil {
//		return err
//	}
//	fmt.Println(light.CurrentPhase()) // green
//
// CurrentPhase is an atomic read and never blocks.
package phaselight

import "time"

// Duration converts an integer number of milliseconds to a time.Duration
func Duration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
