// Package ledvis turns an energy envelope into on/off decisions for a single
// LED.
package ledvis

import (
	"fmt"
	"time"
)

// DefaultThreshold is the energy an envelope value must exceed to turn the
// LED on.
const DefaultThreshold = 0.1

// State is the level of the output.
type State bool

const (
	// Low means the LED is off. It is the initial and final state.
	Low State = false
	// High means the LED is on.
	High State = true
)

func (s State) String() string {
	if s {
		return "high"
	}
	return "low"
}

// Event is a state change at a given envelope frame.
type Event struct {
	Frame int
	State State
}

func (e Event) String() string {
	return fmt.Sprintf("frame %d: %s", e.Frame, e.State)
}

// VisualizerConfig is the configuration for the visualizer.
type VisualizerConfig struct {
	// Threshold is compared strictly: a value equal to it is low.
	Threshold float64
	// Frame is the duration of one envelope value. The visualizer holds each
	// decision for this long.
	Frame time.Duration
}

// Decide returns the state for a single envelope value.
func (c VisualizerConfig) Decide(energy float64) State {
	return State(energy > c.Threshold)
}

// Transitions returns the events a Blinking visualizer would emit for
// energies, starting from Low, without driving anything or waiting.
func Transitions(energies []float64, threshold float64) []Event {
	cfg := VisualizerConfig{Threshold: threshold}

	var events []Event
	state := Low
	for i, e := range energies {
		if next := cfg.Decide(e); next != state {
			events = append(events, Event{Frame: i, State: next})
			state = next
		}
	}
	return events
}
