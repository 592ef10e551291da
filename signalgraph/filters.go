package signalgraph

import "math"

// biquad is the shared Robert Bristow-Johnson cookbook direct-form-I state
// used by LowPass/HighPass/BandPass/Notch below.
type biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

func (b *biquad) process(x float64) float64 {
	y := b.b0*x + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
	b.x2, b.x1 = b.x1, x
	b.y2, b.y1 = b.y1, y
	return y
}

func (b *biquad) setLowPass(sampleRate float64, freq, q float64) {
	w0 := 2 * math.Pi * freq / sampleRate
	alpha := math.Sin(w0) / (2 * q)
	cosw0 := math.Cos(w0)
	a0 := 1 + alpha
	b.b0 = ((1 - cosw0) / 2) / a0
	b.b1 = (1 - cosw0) / a0
	b.b2 = b.b0
	b.a1 = (-2 * cosw0) / a0
	b.a2 = (1 - alpha) / a0
}

func (b *biquad) setHighPass(sampleRate float64, freq, q float64) {
	w0 := 2 * math.Pi * freq / sampleRate
	alpha := math.Sin(w0) / (2 * q)
	cosw0 := math.Cos(w0)
	a0 := 1 + alpha
	b.b0 = ((1 + cosw0) / 2) / a0
	b.b1 = (-(1 + cosw0)) / a0
	b.b2 = b.b0
	b.a1 = (-2 * cosw0) / a0
	b.a2 = (1 - alpha) / a0
}

func (b *biquad) setBandPass(sampleRate float64, freq, q float64) {
	w0 := 2 * math.Pi * freq / sampleRate
	alpha := math.Sin(w0) / (2 * q)
	cosw0 := math.Cos(w0)
	a0 := 1 + alpha
	b.b0 = alpha / a0
	b.b1 = 0
	b.b2 = -alpha / a0
	b.a1 = (-2 * cosw0) / a0
	b.a2 = (1 - alpha) / a0
}

func (b *biquad) setNotch(sampleRate float64, freq, q float64) {
	w0 := 2 * math.Pi * freq / sampleRate
	alpha := math.Sin(w0) / (2 * q)
	cosw0 := math.Cos(w0)
	a0 := 1 + alpha
	b.b0 = 1 / a0
	b.b1 = (-2 * cosw0) / a0
	b.b2 = b.b0
	b.a1 = b.b1
	b.a2 = (1 - alpha) / a0
}

// filterKind selects the biquad coefficient set a Filter node recomputes
// whenever Freq or Q changes.
type filterKind int

const (
	FilterLowPass filterKind = iota
	FilterHighPass
	FilterBandPass
	FilterNotch
)

// Filter is the LowPass/HighPass/BandPass/Notch node family (§4.3),
// collapsed into one implementation since they differ only in their
// coefficient formula. Freq and Q are Signals, recomputed every sample
// since either may be pattern- or LFO-driven.
type Filter struct {
	Kind filterKind
	In   Signal
	Freq Signal
	Q    Signal

	bq biquad
}

func NewFilter(kind filterKind, in, freq, q Signal) *Filter {
	return &Filter{Kind: kind, In: in, Freq: freq, Q: q}
}

func (f *Filter) Eval(g *Graph) float32 {
	x := g.evalSignal(f.In)
	freq := float64(g.evalSignal(f.Freq))
	q := float64(g.evalSignal(f.Q))
	if q <= 0 {
		q = 0.707
	}
	if freq <= 0 {
		freq = 1
	}
	if freq >= g.SampleRate/2 {
		freq = g.SampleRate/2 - 1
	}
	switch f.Kind {
	case FilterLowPass:
		f.bq.setLowPass(g.SampleRate, freq, q)
	case FilterHighPass:
		f.bq.setHighPass(g.SampleRate, freq, q)
	case FilterBandPass:
		f.bq.setBandPass(g.SampleRate, freq, q)
	case FilterNotch:
		f.bq.setNotch(g.SampleRate, freq, q)
	}
	return float32(f.bq.process(float64(x)))
}

// Comb is a feedback comb filter: a delay line whose length (DelayMs) and
// feedback gain are both Signals. Reverb does not use it; its network in
// effects.go has its own damped combs.
type Comb struct {
	In      Signal
	DelayMs Signal
	Feedback Signal

	buf   []float64
	write int
}

func NewComb(in, delayMs, feedback Signal, sampleRate float64, maxDelayMs float64) *Comb {
	n := int(maxDelayMs/1000*sampleRate) + 1
	if n < 1 {
		n = 1
	}
	return &Comb{In: in, DelayMs: delayMs, Feedback: feedback, buf: make([]float64, n)}
}

func (c *Comb) Eval(g *Graph) float32 {
	x := float64(g.evalSignal(c.In))
	delaySamples := float64(g.evalSignal(c.DelayMs)) / 1000 * g.SampleRate
	fb := float64(g.evalSignal(c.Feedback))

	n := len(c.buf)
	readPos := float64(c.write) - delaySamples
	for readPos < 0 {
		readPos += float64(n)
	}
	lo := int(readPos) % n
	hi := (lo + 1) % n
	frac := readPos - math.Floor(readPos)
	delayed := c.buf[lo] + frac*(c.buf[hi]-c.buf[lo])

	out := x + delayed*fb
	c.buf[c.write] = out
	c.write = (c.write + 1) % n
	return float32(out)
}

// MoogLadder is a simplified four-pole transistor-ladder lowpass: a
// cascade of one-pole smoothers with a resonance feedback tap, per the
// classic (non-oversampled) approximation.
type MoogLadder struct {
	In        Signal
	Freq      Signal
	Resonance Signal

	s1, s2, s3, s4 float64
}

func NewMoogLadder(in, freq, resonance Signal) *MoogLadder {
	return &MoogLadder{In: in, Freq: freq, Resonance: resonance}
}

func (m *MoogLadder) Eval(g *Graph) float32 {
	x := float64(g.evalSignal(m.In))
	freq := float64(g.evalSignal(m.Freq))
	res := float64(g.evalSignal(m.Resonance))
	if freq <= 0 {
		freq = 1
	}
	if res < 0 {
		res = 0
	}
	if res > 4 {
		res = 4
	}

	g_ := 1 - math.Exp(-2*math.Pi*freq/g.SampleRate)
	input := x - res*m.s4

	m.s1 += g_ * (math.Tanh(input) - math.Tanh(m.s1))
	m.s2 += g_ * (math.Tanh(m.s1) - math.Tanh(m.s2))
	m.s3 += g_ * (math.Tanh(m.s2) - math.Tanh(m.s3))
	m.s4 += g_ * (math.Tanh(m.s3) - math.Tanh(m.s4))

	return float32(m.s4)
}
