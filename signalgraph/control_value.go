package signalgraph

import (
	"math"
	"sync/atomic"
)

// ControlValue is a mutable scalar node: unlike ConstSignal (baked in at
// construction), its value can be changed at any time from any goroutine,
// which is how a UI or MIDI handler pushes a fader move or a CC value
// into a running graph without rebuilding it. Stored as the raw bits of
// a float32 behind an atomic uint32 so reads never tear.
type ControlValue struct {
	bits uint32
}

// NewControlValue creates a node holding initial.
func NewControlValue(initial float32) *ControlValue {
	cv := &ControlValue{}
	cv.Set(initial)
	return cv
}

// Set atomically updates the held value.
func (c *ControlValue) Set(v float32) {
	atomic.StoreUint32(&c.bits, math.Float32bits(v))
}

// Value atomically reads the held value.
func (c *ControlValue) Value() float32 {
	return math.Float32frombits(atomic.LoadUint32(&c.bits))
}

func (c *ControlValue) Eval(g *Graph) float32 { return c.Value() }
