package signalgraph

import (
	"math"
	"sort"
	"strings"
	"sync/atomic"

	"phonon/pattern"
	"phonon/voice"
)

// SampleBank resolves a sample-pattern atom's bank name and index to
// playable PCM. A UI or loader owns the concrete implementation; this
// package only depends on the interface.
type SampleBank interface {
	Lookup(name string, index int) (*voice.SampleData, bool)
}

// SamplePattern is the node that drives the voice pool from a compiled
// mini-notation pattern (§4.3): once per cycle it queries the pattern for
// that cycle's events, then triggers a voice at each event's onset,
// freezing every per-voice parameter Signal at that exact instant (§9).
// It is itself a StereoNode: its output is the mix of only the voices it
// triggered (SelfID is used as the voice owner), never the global mix.
type SamplePattern struct {
	Pat  pattern.Pattern[string]
	Bank SampleBank

	Gain   Signal // linear
	Pan    Signal // -1..+1
	Speed  Signal // 1 = unity
	Begin  Signal // 0..1 fraction of sample
	End    Signal // 0..1 fraction of sample
	Attack Signal // seconds
	Release Signal // seconds

	CutGroup uint32
	Priority uint8

	SelfID NodeId // set by AddSamplePattern; used as voice ownership key

	lastCycle    int64
	cycleValid   bool
	cachedHaps   []pattern.Hap[string]
	nextIdx      int

	lastSampleIndex uint64
	lastIndexValid  bool
	cachedLeft      float32
	cachedRight     float32
}

// NewSamplePattern builds a SamplePattern with sensible unity defaults
// for every Signal parameter, overridable by assigning the fields
// directly before wiring it into a Graph.
func NewSamplePattern(pat pattern.Pattern[string], bank SampleBank) *SamplePattern {
	return &SamplePattern{
		Pat:     pat,
		Bank:    bank,
		Gain:    ConstSignal(1),
		Pan:     ConstSignal(0),
		Speed:   ConstSignal(1),
		Begin:   ConstSignal(0),
		End:     ConstSignal(1),
		Attack:  ConstSignal(0.002),
		Release: ConstSignal(0.05),
	}
}

// AddSamplePattern adds sp to g and records its own id so it can own the
// voices it triggers.
func (g *Graph) AddSamplePattern(sp *SamplePattern) NodeId {
	id := g.AddNode(sp)
	sp.SelfID = id
	return id
}

func (sp *SamplePattern) Eval(g *Graph) float32 {
	l, r := sp.evalBoth(g)
	return (l + r) / 2
}

func (sp *SamplePattern) EvalStereo(g *Graph) (float32, float32) {
	return sp.evalBoth(g)
}

func (sp *SamplePattern) evalBoth(g *Graph) (float32, float32) {
	if sp.lastIndexValid && sp.lastSampleIndex == g.SampleIndex {
		return sp.cachedLeft, sp.cachedRight
	}
	sp.lastSampleIndex = g.SampleIndex
	sp.lastIndexValid = true

	sp.ensureCycleCached(g)
	sp.triggerDue(g)

	if g.Voices != nil {
		sp.cachedLeft, sp.cachedRight = g.Voices.MixOwned(voice.NodeRef(sp.SelfID))
	} else {
		sp.cachedLeft, sp.cachedRight = 0, 0
	}
	return sp.cachedLeft, sp.cachedRight
}

func (sp *SamplePattern) ensureCycleCached(g *Graph) {
	cycle := g.cyclePos.FloorInt()
	if sp.cycleValid && cycle == sp.lastCycle {
		return
	}
	span := pattern.NewTimeSpan(pattern.FromInt(cycle), pattern.FromInt(cycle+1))
	haps := sp.Pat.Query(pattern.State{Span: span})
	sort.Slice(haps, func(i, j int) bool { return haps[i].Part.Begin.Lt(haps[j].Part.Begin) })
	sp.cachedHaps = haps
	sp.nextIdx = 0
	sp.lastCycle = cycle
	sp.cycleValid = true
}

// triggerDue triggers every cached event whose onset falls within
// [cyclePos, cyclePos+cpsStep), this sample's window.
func (sp *SamplePattern) triggerDue(g *Graph) {
	windowEnd := g.cyclePos.Add(g.cpsStep)
	for sp.nextIdx < len(sp.cachedHaps) {
		h := sp.cachedHaps[sp.nextIdx]
		if h.Part.Begin.Gte(windowEnd) {
			break
		}
		if h.Part.Begin.Lt(g.cyclePos) {
			sp.nextIdx++
			continue
		}
		if h.HasOnset() {
			sp.triggerHap(g, h)
		}
		sp.nextIdx++
	}
}

func (sp *SamplePattern) triggerHap(g *Graph, h pattern.Hap[string]) {
	if g.Voices == nil {
		return
	}
	atom := h.Value

	gain := Freeze(g, sp.Gain)
	pan := Freeze(g, sp.Pan)
	speed := float64(Freeze(g, sp.Speed))
	begin := float64(Freeze(g, sp.Begin))
	end := float64(Freeze(g, sp.End))
	attack := int(float64(Freeze(g, sp.Attack)) * g.SampleRate)
	release := int(float64(Freeze(g, sp.Release)) * g.SampleRate)

	// "~bus" atom (§4.3 "Bus reference in pattern"): synthesize a
	// one-shot buffer from the referenced bus subgraph instead of
	// looking up a sample bank entry.
	if busName, ok := strings.CutPrefix(atom, "~"); ok && busName != "" {
		sp.triggerBusVoice(g, busName, gain, pan, speed, begin, end, attack, release, h.Whole)
		return
	}

	if sp.Bank == nil {
		return
	}
	name, bankIdx := SplitSampleBank(atom)

	root, chordType, hasChord := SplitChord(name)
	if !hasChord {
		sp.triggerVoice(g, name, bankIdx, gain, pan, speed, begin, end, attack, release, h.Whole)
		return
	}

	offsets, ok := voice.ExpandChord(chordType)
	if !ok {
		sp.triggerVoice(g, root, bankIdx, gain, pan, speed, begin, end, attack, release, h.Whole)
		return
	}
	for _, semis := range offsets {
		ratio := math.Pow(2, float64(semis)/12)
		sp.triggerVoice(g, root, bankIdx, gain, pan, speed*ratio, begin, end, attack, release, h.Whole)
	}
}

func (sp *SamplePattern) triggerVoice(g *Graph, name string, bankIdx int, gain, pan float32, speed, begin, end float64, attack, release int, whole *pattern.TimeSpan) {
	data, ok := sp.Bank.Lookup(name, bankIdx)
	if !ok {
		atomic.AddUint64(&g.MissingSamples, 1)
		return
	}
	triggerTime := g.cyclePos
	if whole != nil {
		triggerTime = whole.Begin
	}
	g.Voices.Trigger(voice.TriggerParams{
		Sample:         data,
		Gain:           gain,
		Pan:            pan,
		Speed:          speed,
		Begin:          begin,
		End:            end,
		AttackSamples:  attack,
		ReleaseSamples: release,
		CutGroup:       sp.CutGroup,
		Priority:       sp.Priority,
		Owner:          voice.NodeRef(sp.SelfID),
		TriggerTime:    triggerTime,
	})
}

// triggerBusVoice implements the "~bus" atom rule (§4.3): it renders
// event_duration samples of the named bus subgraph in isolation via
// RenderBusOneShot, then triggers the rendered buffer as an ordinary
// voice, the same as a sample-bank hit. A missing bus produces silence
// (g.Bus already counts it in MissingBuses); this node does not retry
// or fall back to any sample bank lookup.
func (sp *SamplePattern) triggerBusVoice(g *Graph, busName string, gain, pan float32, speed, begin, end float64, attack, release int, whole *pattern.TimeSpan) {
	id, ok := g.Bus(busName)
	if !ok {
		return
	}
	numSamples := eventDurationSamples(g, whole)
	if numSamples <= 0 {
		return
	}
	buf := g.RenderBusOneShot(id, numSamples)
	if buf == nil {
		return
	}
	data := &voice.SampleData{Samples: buf, SampleRate: g.SampleRate}

	triggerTime := g.cyclePos
	if whole != nil {
		triggerTime = whole.Begin
	}
	g.Voices.Trigger(voice.TriggerParams{
		Sample:         data,
		Gain:           gain,
		Pan:            pan,
		Speed:          speed,
		Begin:          begin,
		End:            end,
		AttackSamples:  attack,
		ReleaseSamples: release,
		CutGroup:       sp.CutGroup,
		Priority:       sp.Priority,
		Owner:          voice.NodeRef(sp.SelfID),
		TriggerTime:    triggerTime,
	})
}

// eventDurationSamples converts a hap's whole-span duration (in cycles)
// to samples at the graph's current transport rate. A hap with no whole
// (a fragment carrying no onset-to-onset duration) falls back to a
// single sample's worth, since there is no better duration to infer.
func eventDurationSamples(g *Graph, whole *pattern.TimeSpan) int {
	cps := g.Cps()
	if cps <= 0 {
		return 0
	}
	dur := g.cpsStep
	if whole != nil {
		dur = whole.Duration()
	}
	seconds := dur.Float64() / cps
	return int(seconds * g.SampleRate)
}
