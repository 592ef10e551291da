package signalgraph

import (
	"math"
	"math/rand"
)

// Waveform selects an Oscillator's shape.
type Waveform int

const (
	Sine Waveform = iota
	Saw
	Square
	Triangle
)

// Oscillator is a band-naive audio-rate source (§4.3 SignalNode variant).
// Freq and PhaseOffset are Signals per §9: either may be driven by a
// pattern, another node, or a plain constant.
type Oscillator struct {
	Shape       Waveform
	Freq        Signal
	PhaseOffset Signal

	phase float64 // 0..1
}

// NewOscillator builds an oscillator starting at phase 0.
func NewOscillator(shape Waveform, freq Signal) *Oscillator {
	return &Oscillator{Shape: shape, Freq: freq, PhaseOffset: ConstSignal(0)}
}

func (o *Oscillator) Eval(g *Graph) float32 {
	freq := g.evalSignal(o.Freq)
	off := g.evalSignal(o.PhaseOffset)

	p := o.phase + float64(off)
	p -= math.Floor(p)

	var v float64
	switch o.Shape {
	case Sine:
		v = math.Sin(2 * math.Pi * p)
	case Saw:
		v = 2*p - 1
	case Square:
		if p < 0.5 {
			v = 1
		} else {
			v = -1
		}
	case Triangle:
		v = 4*math.Abs(p-0.5) - 1
	}

	o.phase += float64(freq) / g.SampleRate
	o.phase -= math.Floor(o.phase)
	return float32(v)
}

// Noise is a white-noise source scaled by Amp.
type Noise struct {
	Amp Signal

	rng *rand.Rand
}

// NewNoise builds a noise source seeded deterministically from seed, so
// offline renders (§4.5 RenderBuffer) are reproducible.
func NewNoise(amp Signal, seed int64) *Noise {
	return &Noise{Amp: amp, rng: rand.New(rand.NewSource(seed))}
}

func (n *Noise) Eval(g *Graph) float32 {
	amp := g.evalSignal(n.Amp)
	return amp * float32(n.rng.Float64()*2-1)
}
