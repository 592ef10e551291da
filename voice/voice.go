// Package voice implements the dynamically sized pool of sample-playback
// voices (§4.4): allocation, stealing, cut groups, and chord expansion.
package voice

import (
	"math"

	"phonon/pattern"
)

// State is a Voice's lifecycle stage.
type State int

const (
	Free State = iota
	Playing
	Releasing
)

// NodeRef identifies the signalgraph node that owns a voice, so that
// node's output mixes only its own triggered voices (§4.3), including the
// bus one-shots it triggers. Voices triggered independently of any
// SamplePattern node (directly on the Pool) use NoOwner and are swept into
// the VoiceManager's global mix instead.
type NodeRef int32

// NoOwner marks a voice with no claiming node.
const NoOwner NodeRef = -1

// SampleData is shared-immutable mono PCM, analogous to the spec's
// Arc<Vec<f32>>: once constructed it is never mutated, so voices may share
// one backing slice safely across the graph-swap boundary (§4.5, §5).
type SampleData struct {
	Samples    []float32
	SampleRate float64
}

// Len returns the sample count.
func (s *SampleData) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Samples)
}

type envelopeStage int

const (
	stageAttack envelopeStage = iota
	stageSustain
	stageRelease
	stageDone
)

// PercEnvelope is the click-free linear attack/release shape applied to
// every voice's output, independent of any continuous ADSR graph node.
type PercEnvelope struct {
	attackSamples  int
	releaseSamples int
	stage          envelopeStage
	pos            int
	releasePos     int
	level          float64
}

// NewPercEnvelope builds an envelope with the given attack/release
// lengths in samples (each floored to at least 1 to avoid division by
// zero).
func NewPercEnvelope(attackSamples, releaseSamples int) PercEnvelope {
	if attackSamples < 1 {
		attackSamples = 1
	}
	if releaseSamples < 1 {
		releaseSamples = 1
	}
	return PercEnvelope{attackSamples: attackSamples, releaseSamples: releaseSamples}
}

// Release transitions the envelope into its release stage, unless it is
// already releasing or done.
func (e *PercEnvelope) Release() {
	if e.stage == stageAttack || e.stage == stageSustain {
		e.stage = stageRelease
		e.releasePos = 0
	}
}

// Done reports whether the envelope has decayed to silence.
func (e *PercEnvelope) Done() bool { return e.stage == stageDone }

// Level returns the envelope's current value without advancing it.
func (e *PercEnvelope) Level() float64 { return e.level }

// Advance steps the envelope by one sample and returns its new level in
// [0,1].
func (e *PercEnvelope) Advance() float64 {
	switch e.stage {
	case stageAttack:
		e.pos++
		e.level = float64(e.pos) / float64(e.attackSamples)
		if e.level >= 1 {
			e.level = 1
			e.stage = stageSustain
		}
	case stageSustain:
		e.level = 1
	case stageRelease:
		e.releasePos++
		e.level = 1 - float64(e.releasePos)/float64(e.releaseSamples)
		if e.level <= 0 {
			e.level = 0
			e.stage = stageDone
		}
	case stageDone:
		e.level = 0
	}
	return e.level
}

// TriggerParams describes a single sample-playback trigger (§4.4).
type TriggerParams struct {
	Sample        *SampleData
	Gain          float32
	Pan           float32 // -1 (left) .. +1 (right)
	Speed         float64 // 1 = unity, negative = reverse
	Begin, End    float64 // fraction of sample length, 0..1
	AttackSamples int
	ReleaseSamples int
	CutGroup      uint32
	Priority      uint8
	Owner         NodeRef
	TriggerTime   pattern.Fraction
}

// Voice is one active sample-playback instance.
type Voice struct {
	ID          uint64
	Owner       NodeRef
	CutGroup    uint32
	Priority    uint8
	TriggerTime pattern.Fraction

	state    State
	sample   *SampleData
	position float64
	begin    float64
	end      float64
	gain     float32
	pan      float32
	speed    float64
	envelope PercEnvelope

	lastLeft, lastRight float32
}

// State reports the voice's current lifecycle stage.
func (v *Voice) State() State { return v.state }

func (v *Voice) trigger(id uint64, p TriggerParams) {
	v.ID = id
	v.Owner = p.Owner
	v.CutGroup = p.CutGroup
	v.Priority = p.Priority
	v.TriggerTime = p.TriggerTime
	v.sample = p.Sample
	v.gain = p.Gain
	v.pan = p.Pan
	v.speed = p.Speed
	if v.speed == 0 {
		v.speed = 1
	}
	v.begin = p.Begin
	v.end = p.End
	if v.end <= v.begin {
		v.end = 1
		v.begin = 0
	}
	n := float64(p.Sample.Len())
	if v.speed >= 0 {
		v.position = v.begin * n
	} else {
		v.position = v.end * n
	}
	v.envelope = NewPercEnvelope(p.AttackSamples, p.ReleaseSamples)
	v.state = Playing
}

// EnvelopeLevel exposes the current envelope level, used by the Quietest
// stealing policy.
func (v *Voice) EnvelopeLevel() float64 { return v.envelope.Level() }

// release forces an immediate short release, used for cut groups and
// "panic".
func (v *Voice) release(shortSamples int) {
	if v.state == Free {
		return
	}
	if shortSamples > 0 {
		v.envelope.releaseSamples = shortSamples
	}
	v.envelope.Release()
	v.state = Releasing
}

// advance steps the voice by exactly one output sample and returns its
// equal-power-panned stereo contribution. Free voices contribute silence.
func (v *Voice) advance() (float32, float32) {
	if v.state == Free || v.sample == nil || v.sample.Len() == 0 {
		v.lastLeft, v.lastRight = 0, 0
		return 0, 0
	}

	n := float64(v.sample.Len())
	lowBound := v.begin * n
	highBound := v.end * n

	raw := sampleLinear(v.sample.Samples, v.position)
	level := v.envelope.Advance()
	out := float32(float64(raw) * float64(v.gain) * level)

	v.position += v.speed

	if v.position < lowBound || v.position > highBound || (v.envelope.Done() && v.state == Releasing) {
		v.state = Free
	}

	angle := (float64(v.pan) + 1) * math.Pi / 4
	left := out * float32(math.Cos(angle))
	right := out * float32(math.Sin(angle))
	v.lastLeft, v.lastRight = left, right
	return left, right
}

// sampleLinear reads data at a fractional index using linear
// interpolation between the floor and ceil sample, clamped to bounds.
func sampleLinear(data []float32, pos float64) float32 {
	if len(data) == 0 {
		return 0
	}
	if pos < 0 {
		pos = 0
	}
	max := float64(len(data) - 1)
	if pos > max {
		pos = max
	}
	lo := int(math.Floor(pos))
	hi := lo + 1
	if hi > len(data)-1 {
		hi = len(data) - 1
	}
	frac := pos - float64(lo)
	return data[lo] + float32(frac)*(data[hi]-data[lo])
}
