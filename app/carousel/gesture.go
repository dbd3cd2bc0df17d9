package carousel

import "math"

// Direction of a completed swipe.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return "unknown"
}

// Swipe is a normalized completed gesture. Velocity is in the recognizer's
// units per millisecond and is never negative.
type Swipe struct {
	Direction Direction
	Velocity  float64
}

const (
	// MaxBounce caps the edge nudge in pixels.
	MaxBounce = 40.0
	// bounceFactor scales swipe velocity into a nudge.
	bounceFactor = 50.0
)

// BounceMagnitude is the unsigned edge nudge for a swipe of velocity v.
func BounceMagnitude(v float64) float64 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return math.Min(MaxBounce, v*bounceFactor)
}

// Outcome of a completed swipe.
type Outcome string

const (
	Moved   Outcome = "moved"
	Bounced Outcome = "bounced"
	Ignored Outcome = "ignored"
)
