package signalgraph

import (
	"math"
	"sync/atomic"

	"phonon/pattern"
	"phonon/voice"
)

// SignalNode is the common interface every node variant implements:
// Eval computes this node's single mono sample at the graph's current
// transport position, recursively pulling whatever inputs it needs.
// Implementations hold their own mutable state (oscillator phase, filter
// memory, envelope stage) since a node is evaluated in place every sample.
type SignalNode interface {
	Eval(g *Graph) float32
}

// StereoNode is implemented by node kinds that produce an inherently
// stereo signal (SamplePattern voice playback, Pan, Reverb) rather than
// a plain mono scalar. The graph's output evaluation prefers this over
// Eval when present.
type StereoNode interface {
	EvalStereo(g *Graph) (float32, float32)
}

// Graph is the typed DAG of audio-rate nodes (§3/§4.3): a NodeId-indexed
// table with holes (so replacing a subtree never invalidates other IDs),
// named outputs/buses, and the transport position driving every
// pattern-as-signal bridge and SamplePattern node.
type Graph struct {
	nodes   []SignalNode
	outputs map[string]NodeId
	buses   map[string]NodeId

	SampleRate float64
	cps        float64
	cpsStep    pattern.Fraction
	cyclePos   pattern.Fraction

	Voices *voice.Pool

	// SampleIndex counts every Sample() call, used by nodes (SamplePattern)
	// that must not repeat side effects if evaluated more than once within
	// the same sample (e.g. both as the "out" sink and as an upstream
	// Signal feeding another node).
	SampleIndex uint64

	cache    []float32
	cacheSet []bool

	// These counters are incremented from the synthesis thread and read
	// from a UI/observability goroutine (§6/§7), hence atomic rather than
	// plain fields.
	NumericAnomalies uint64
	MissingSamples   uint64
	MissingBuses     uint64
	PatternQueryErrs uint64
}

// NewGraph creates an empty graph at the given sample rate and initial
// cps (cycles per second), sharing voices with the engine's pool.
func NewGraph(sampleRate float64, cps float64, voices *voice.Pool) *Graph {
	g := &Graph{
		outputs:    map[string]NodeId{},
		buses:      map[string]NodeId{},
		SampleRate: sampleRate,
		Voices:     voices,
	}
	g.SetCps(cps)
	return g
}

// SetCps updates the transport rate, rationalizing cps once (§4.3, §9)
// so cycle position accumulates exactly rather than drifting.
func (g *Graph) SetCps(cps float64) {
	g.cps = cps
	g.cpsStep = pattern.FromFloat(cps).Div(pattern.FromFloat(g.SampleRate))
}

// Cps returns the current transport rate.
func (g *Graph) Cps() float64 { return g.cps }

// CyclePosition returns the current exact transport position.
func (g *Graph) CyclePosition() pattern.Fraction { return g.cyclePos }

// AddNode appends a new node and returns its id.
func (g *Graph) AddNode(n SignalNode) NodeId {
	g.nodes = append(g.nodes, n)
	id := NodeId(len(g.nodes) - 1)
	g.growCache()
	return id
}

// ReplaceNode overwrites the node at id in place, so edges elsewhere in
// the graph referencing id keep working against the new subtree.
func (g *Graph) ReplaceNode(id NodeId, n SignalNode) {
	for int(id) >= len(g.nodes) {
		g.nodes = append(g.nodes, nil)
	}
	g.nodes[id] = n
	g.growCache()
}

// RemoveNode punches a hole at id (it becomes silent).
func (g *Graph) RemoveNode(id NodeId) {
	if int(id) < len(g.nodes) {
		g.nodes[id] = nil
	}
}

func (g *Graph) growCache() {
	for len(g.cache) < len(g.nodes) {
		g.cache = append(g.cache, 0)
		g.cacheSet = append(g.cacheSet, false)
	}
}

// SetOutput names a labelled sink ("out", "out1", ...).
func (g *Graph) SetOutput(name string, id NodeId) { g.outputs[name] = id }

// Output returns the node id for a named sink.
func (g *Graph) Output(name string) (NodeId, bool) { id, ok := g.outputs[name]; return id, ok }

// SetBus names a referenceable subgraph root.
func (g *Graph) SetBus(name string, id NodeId) { g.buses[name] = id }

// Bus resolves a "~name" bus reference. ok is false if unknown (§4.3/§7
// MissingBus: caller renders silence and counts it).
func (g *Graph) Bus(name string) (NodeId, bool) {
	id, ok := g.buses[name]
	if !ok {
		atomic.AddUint64(&g.MissingBuses, 1)
	}
	return id, ok
}

// evalNode evaluates (or returns the cached value for) node id within the
// current sample, clamping NaN/Inf to 0 per §4.3/§7.
func (g *Graph) evalNode(id NodeId) float32 {
	if id < 0 || int(id) >= len(g.nodes) {
		return 0
	}
	if g.cacheSet[id] {
		return g.cache[id]
	}
	g.cacheSet[id] = true // guard against feedback cycles re-entering evalNode
	n := g.nodes[id]
	if n == nil {
		g.cache[id] = 0
		return 0
	}
	v := n.Eval(g)
	if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
		atomic.AddUint64(&g.NumericAnomalies, 1)
		v = 0
	}
	g.cache[id] = v
	return v
}

// RenderBusOneShot synthesizes numSamples of the bus subgraph rooted at
// id in isolation (§4.3 "Bus reference in pattern"): it calls the node's
// own Eval/EvalStereo directly and evaluates its inputs against a cache
// that is cleared for every one-shot sample; the main pass's cache is
// restored afterwards, so it has no side effects on the main pass (cache,
// cyclePos, SampleIndex are all left as they were). The node's own internal state (an
// oscillator's phase, a filter's history) does advance across the calls,
// since that's what makes the render audible -- this is the one-shot
// buffer a SamplePattern bus reference then plays back as a voice.
func (g *Graph) RenderBusOneShot(id NodeId, numSamples int) []float32 {
	if id < 0 || int(id) >= len(g.nodes) || numSamples <= 0 {
		return nil
	}
	n := g.nodes[id]
	if n == nil {
		return nil
	}
	savedCache := append([]float32(nil), g.cache...)
	savedSet := append([]bool(nil), g.cacheSet...)
	defer func() {
		copy(g.cache, savedCache)
		copy(g.cacheSet, savedSet)
	}()
	buf := make([]float32, numSamples)
	for i := range buf {
		for j := range g.cacheSet {
			g.cacheSet[j] = false
		}
		var v float32
		if sn, ok := n.(StereoNode); ok {
			l, r := sn.EvalStereo(g)
			v = (l + r) / 2
		} else {
			v = n.Eval(g)
		}
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			atomic.AddUint64(&g.NumericAnomalies, 1)
			v = 0
		}
		buf[i] = v
	}
	return buf
}

// evalSignal resolves any Signal (constant, node reference, or pattern
// bridge) to its current scalar value. Uniform across every node
// parameter per §9.
func (g *Graph) evalSignal(s Signal) float32 {
	switch s.Kind {
	case SignalConstant:
		return s.Constant
	case SignalNodeRef:
		return g.evalNode(s.Node)
	case SignalPattern:
		if s.Pattern == nil {
			return 0
		}
		return s.Pattern.sampleAt(g.cyclePos)
	default:
		return 0
	}
}

// Sample advances the voice pool once and evaluates the "out" output
// for exactly one stereo sample, then advances the
// transport. This is the per-sample evaluator spec.md §9 calls the
// simplest-to-reason-about baseline; Renderer's buffer-mode loop calls
// this once per sample, which keeps the two modes bit-identical by
// construction (§9 buffer-mode integration test requirement).
func (g *Graph) Sample() (float32, float32) {
	for i := range g.cacheSet {
		g.cacheSet[i] = false
	}
	if g.Voices != nil {
		g.Voices.AdvanceSample()
	}

	var left, right float32
	if id, ok := g.outputs["out"]; ok {
		left, right = g.evalOutputNode(id)
	}
	if g.Voices != nil {
		ul, ur := g.Voices.MixUnowned()
		left += ul
		right += ur
	}

	g.cyclePos = g.cyclePos.Add(g.cpsStep)
	g.SampleIndex++
	return left, right
}

func (g *Graph) evalOutputNode(id NodeId) (float32, float32) {
	if id < 0 || int(id) >= len(g.nodes) || g.nodes[id] == nil {
		return 0, 0
	}
	if sn, ok := g.nodes[id].(StereoNode); ok {
		l, r := sn.EvalStereo(g)
		if math.IsNaN(float64(l)) || math.IsInf(float64(l), 0) {
			atomic.AddUint64(&g.NumericAnomalies, 1)
			l = 0
		}
		if math.IsNaN(float64(r)) || math.IsInf(float64(r), 0) {
			atomic.AddUint64(&g.NumericAnomalies, 1)
			r = 0
		}
		return l, r
	}
	m := g.evalNode(id)
	return m, m
}
