// Package signalgraph implements the typed DAG of audio-rate nodes (§4.3):
// node table addressed by NodeId, a per-sample evaluation cache, and the
// node variants (sources, filters, envelopes, effects, routing, bridges).
package signalgraph

import "phonon/pattern"

// NodeId is an opaque handle into a Graph's node table. Edges reference
// other nodes only by NodeId, never by pointer, so acyclicity can be
// checked by topological inspection of the table alone.
type NodeId int32

// InvalidNodeId marks an unset edge.
const InvalidNodeId NodeId = -1

// SignalKind discriminates the three shapes a Signal can take.
type SignalKind int

const (
	// SignalConstant is a bare float32, never driven by anything.
	SignalConstant SignalKind = iota
	// SignalNodeRef is evaluated by the graph at the current sample.
	SignalNodeRef
	// SignalPattern is sample-and-held from a Pattern[string]'s current
	// event value.
	SignalPattern
)

// Signal is the type of every continuous node parameter (frequencies,
// gains, times, amounts), so none of those is ever a bare number. Discrete
// settings are plain values: a Filter's Kind, an Oscillator's Shape, and a
// SamplePattern's CutGroup and Priority are not Signals.
type Signal struct {
	Kind     SignalKind
	Constant float32
	Node     NodeId
	Pattern  *PatternSignal
}

// ConstSignal wraps a bare constant as a Signal.
func ConstSignal(v float32) Signal { return Signal{Kind: SignalConstant, Constant: v} }

// NodeSignal wraps a graph node reference as a Signal.
func NodeSignal(id NodeId) Signal { return Signal{Kind: SignalNodeRef, Node: id} }

// FromPatternSignal wraps a PatternSignal bridge as a Signal.
func FromPatternSignal(ps *PatternSignal) Signal { return Signal{Kind: SignalPattern, Pattern: ps} }

// PatternSignal implements the PatternAsSignal bridge (§4.3, §9): at every
// sample, the pattern's value-at-now becomes the signal's sample, with
// sample-and-hold between events.
type PatternSignal struct {
	Pat  pattern.Pattern[string]
	last float32
	set  bool
}

// NewPatternSignal wraps p as a PatternSignal bridge with no held value
// until the first event is seen.
func NewPatternSignal(p pattern.Pattern[string]) *PatternSignal {
	return &PatternSignal{Pat: p}
}

// sampleAt evaluates the pattern at cycle-position t with a point query
// and updates (or holds) the last scalar value.
func (ps *PatternSignal) sampleAt(t pattern.Fraction) float32 {
	span := pattern.NewTimeSpan(t, t)
	haps := ps.Pat.Query(pattern.State{Span: span})
	for _, h := range haps {
		if v, ok := resolveNumeric(h.Value); ok {
			ps.last = v
			ps.set = true
		}
	}
	if !ps.set {
		return 0
	}
	return ps.last
}

// SignalAsPattern is the inverse bridge (§4.3, §9): it freezes a
// continuous Signal's value at an event onset into a scalar, for
// parameters that should vary per-trigger (e.g. a per-event gain driven
// by an LFO) rather than continuously.
type SignalAsPattern struct {
	Source Signal
}

// Freeze evaluates src once, via g at the current sample, and returns the
// frozen scalar. Called by SamplePattern at event onset (§4.3).
func Freeze(g *Graph, src Signal) float32 {
	return g.evalSignal(src)
}
